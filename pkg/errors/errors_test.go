package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailOK  bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed"},
		{code: CodeInvalidAmount, status: http.StatusBadRequest, publicMsg: "Invalid amount"},
		{code: CodeInvalidState, status: http.StatusUnprocessableEntity, publicMsg: "payment state transition disallowed"},
		{code: CodeIntentNotFound, status: http.StatusNotFound, publicMsg: "payment intent not found", detailOK: true},
		{code: CodeGatewayRejected, status: http.StatusInternalServerError, publicMsg: "payment gateway rejected the request", detailOK: true},
		{code: CodeGatewayUnavailable, status: http.StatusInternalServerError, publicMsg: "payment gateway unavailable", retryable: true, detailOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded"},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailAllowed != tt.detailOK {
			t.Fatalf("code %s expected detail allowed %v got %v", tt.code, tt.detailOK, meta.DetailAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeInvalidAmount, "amount must be positive")
	if base.Code() != CodeInvalidAmount {
		t.Fatalf("expected invalid amount code, got %s", base.Code())
	}
	if base.Message() != "amount must be positive" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"amount": -5}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("connection reset")
	wrapped := Wrap(CodeGatewayUnavailable, cause, "create intent")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeGatewayUnavailable {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeInvalidState, "capture out of sequence")
	if As(err) == nil {
		t.Fatalf("expected typed error")
	}
	wrapped := Wrap(CodeInternal, err, "outer")
	if As(wrapped).Code() != CodeInternal {
		t.Fatalf("expected outermost code")
	}
	if As(stdErrors.New("plain")) != nil {
		t.Fatalf("plain errors should not convert")
	}
	if As(nil) != nil {
		t.Fatalf("nil should not convert")
	}
}

func TestDumpCollectsChainAndCode(t *testing.T) {
	cause := stdErrors.New("socket closed")
	err := Wrap(CodeGatewayUnavailable, cause, "capture intent")

	d := Dump(err)
	if d.Code != CodeGatewayUnavailable {
		t.Fatalf("unexpected code %s", d.Code)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected full chain, got %v", d.Chain)
	}
	if d.TopMessage == "" {
		t.Fatalf("top message missing")
	}
	if Dump(nil).TopMessage != "" {
		t.Fatalf("nil dump should be empty")
	}
}
