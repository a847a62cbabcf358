package paypal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/tdbstore/tdb-backend/pkg/errors"
)

// Provider issue names that mean the intent can never be captured again.
// A second capture of the same intent lands here, as does an expired one.
var finalizedIssues = []string{
	"ORDER_ALREADY_CAPTURED",
	"ORDER_EXPIRED",
	"RESOURCE_NOT_FOUND",
}

func mapTransportError(err error, operation string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return pkgerrors.Wrap(pkgerrors.CodeGatewayUnavailable, err,
			fmt.Sprintf("paypal %s timed out", operation))
	}
	return pkgerrors.Wrap(pkgerrors.CodeGatewayUnavailable, err,
		fmt.Sprintf("paypal %s request failed", operation))
}

// mapProviderError classifies a non-success provider response. A missing or
// finalized intent is its own class so callers can stop retrying it; every
// other 4xx is a rejection of the request, and 5xx means the provider itself
// is down.
func mapProviderError(operation string, statusCode int, body string) error {
	msg := fmt.Sprintf("paypal %s returned %d", operation, statusCode)

	var code pkgerrors.Code
	switch {
	case statusCode == http.StatusNotFound:
		code = pkgerrors.CodeIntentNotFound
	case statusCode == http.StatusUnprocessableEntity && isFinalizedBody(body):
		code = pkgerrors.CodeIntentNotFound
	case statusCode >= 400 && statusCode < 500:
		code = pkgerrors.CodeGatewayRejected
	default:
		code = pkgerrors.CodeGatewayUnavailable
	}

	mapped := pkgerrors.New(code, msg)
	if details := bodyDetails(body); details != nil {
		mapped = mapped.WithDetails(details)
	}
	return mapped
}

func isFinalizedBody(body string) bool {
	for _, issue := range finalizedIssues {
		if strings.Contains(body, issue) {
			return true
		}
	}
	return false
}

func bodyDetails(body string) map[string]any {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	return map[string]any{"provider_response": body}
}
