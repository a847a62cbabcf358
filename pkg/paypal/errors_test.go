package paypal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/tdbstore/tdb-backend/pkg/errors"
)

func TestMapTransportError(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		err := mapTransportError(context.DeadlineExceeded, "create intent")
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeGatewayUnavailable, typed.Code())
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})

	t.Run("connection failure", func(t *testing.T) {
		cause := errors.New("dial tcp: connection refused")
		err := mapTransportError(cause, "capture intent")
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeGatewayUnavailable, typed.Code())
		assert.True(t, errors.Is(err, cause))
	})
}

func TestMapProviderError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantCode   pkgerrors.Code
	}{
		{
			name:       "unknown intent",
			statusCode: 404,
			body:       `{"name":"RESOURCE_NOT_FOUND"}`,
			wantCode:   pkgerrors.CodeIntentNotFound,
		},
		{
			name:       "already captured",
			statusCode: 422,
			body:       `{"details":[{"issue":"ORDER_ALREADY_CAPTURED"}]}`,
			wantCode:   pkgerrors.CodeIntentNotFound,
		},
		{
			name:       "expired intent",
			statusCode: 422,
			body:       `{"details":[{"issue":"ORDER_EXPIRED"}]}`,
			wantCode:   pkgerrors.CodeIntentNotFound,
		},
		{
			name:       "not approved yet",
			statusCode: 422,
			body:       `{"details":[{"issue":"ORDER_NOT_APPROVED"}]}`,
			wantCode:   pkgerrors.CodeGatewayRejected,
		},
		{
			name:       "bad request",
			statusCode: 400,
			body:       `{"name":"INVALID_REQUEST"}`,
			wantCode:   pkgerrors.CodeGatewayRejected,
		},
		{
			name:       "unauthorized",
			statusCode: 401,
			body:       "",
			wantCode:   pkgerrors.CodeGatewayRejected,
		},
		{
			name:       "provider outage",
			statusCode: 503,
			body:       "upstream unavailable",
			wantCode:   pkgerrors.CodeGatewayUnavailable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := mapProviderError("capture intent", tc.statusCode, tc.body)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, tc.wantCode, typed.Code())
		})
	}
}

func TestMapProviderError_Details(t *testing.T) {
	err := mapProviderError("create intent", 400, `{"name":"INVALID_REQUEST"}`)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)

	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, `{"name":"INVALID_REQUEST"}`, details["provider_response"])

	bare := mapProviderError("create intent", 401, "")
	assert.Nil(t, pkgerrors.As(bare).Details())
}
