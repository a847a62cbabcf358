package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdbstore/tdb-backend/internal/payments"
	"github.com/tdbstore/tdb-backend/pkg/config"
	"github.com/tdbstore/tdb-backend/pkg/db/models"
	"github.com/tdbstore/tdb-backend/pkg/logger"
	"github.com/tdbstore/tdb-backend/pkg/paypal"
	"github.com/tdbstore/tdb-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type routerStubService struct{}

func (routerStubService) CreateIntent(ctx context.Context, input payments.CreateIntentInput) (string, error) {
	return "PAYID-ROUTER", nil
}

func (routerStubService) Capture(ctx context.Context, intentID string) (*paypal.CaptureResult, error) {
	return &paypal.CaptureResult{
		IntentID: intentID,
		Status:   "COMPLETED",
		Raw:      types.JSONMap{"status": "COMPLETED"},
	}, nil
}

func (routerStubService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: orderID}, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Checkout.ClientURL = "https://shop.example.com"

	return NewRouter(Dependencies{
		Config:   cfg,
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		DBPinger: stubPinger{},
		Payments: routerStubService{},
		Registry: prometheus.NewRegistry(),
	})
}

func TestRouterPaymentEndpoints(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/create-order", strings.NewReader(`{"amount":10}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "PAYID-ROUTER")

	req = httptest.NewRequest(http.MethodPost, "/api/payments/capture-order", strings.NewReader(`{"orderID":"PAYID-ROUTER"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "COMPLETED")
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router := testRouter(t)

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouterRequestIDHeader(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}
