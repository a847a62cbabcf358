package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindowStore struct {
	scopes map[string]int64
	err    error

	lastLimit  int64
	lastWindow time.Duration
}

func (f *fakeWindowStore) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	if f.scopes == nil {
		f.scopes = make(map[string]int64)
	}
	f.scopes[scope]++
	f.lastLimit = limit
	f.lastWindow = window
	count := f.scopes[scope]
	return count <= limit, count, nil
}

func rateLimitedHandler(store *fakeWindowStore, window time.Duration, limit int) http.Handler {
	policy := NewPaymentRateLimitPolicy(window, limit)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return PaymentRateLimit(policy, store, nil)(next)
}

func TestPaymentRateLimitUsesFixedWindow(t *testing.T) {
	store := &fakeWindowStore{}
	handler := rateLimitedHandler(store, time.Minute, 2)

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/payments/create-order", nil)
		req.RemoteAddr = ip + ":51000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, do("10.0.0.1").Code)
	assert.Equal(t, http.StatusNoContent, do("10.0.0.1").Code)

	rec := do("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "rate limit exceeded", body["message"])

	// the limiter counts per scope, so another address is unaffected
	assert.Equal(t, http.StatusNoContent, do("10.0.0.2").Code)
	assert.Equal(t, int64(2), store.lastLimit)
	assert.Equal(t, time.Minute, store.lastWindow)
	assert.Equal(t, int64(3), store.scopes["ip:payments:10.0.0.1"])
	assert.Equal(t, int64(1), store.scopes["ip:payments:10.0.0.2"])
}

func TestPaymentRateLimitStoreFailure(t *testing.T) {
	store := &fakeWindowStore{err: errors.New("connection refused")}
	handler := rateLimitedHandler(store, time.Minute, 2)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/create-order", nil)
	req.RemoteAddr = "10.0.0.9:51000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPaymentRateLimitDisabledPolicy(t *testing.T) {
	store := &fakeWindowStore{}
	handler := rateLimitedHandler(store, 0, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/create-order", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, store.scopes)
}
