package paypal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pay/gopay"
	gppaypal "github.com/go-pay/gopay/paypal"

	"github.com/tdbstore/tdb-backend/pkg/config"
	pkgerrors "github.com/tdbstore/tdb-backend/pkg/errors"
	"github.com/tdbstore/tdb-backend/pkg/logger"
	"github.com/tdbstore/tdb-backend/pkg/metrics"
	"github.com/tdbstore/tdb-backend/pkg/types"
)

var (
	errClientIDRequired = errors.New("paypal client id is required")
	errSecretRequired   = errors.New("paypal client secret is required")
	errLoggerRequired   = errors.New("paypal logger is required")
)

// CaptureResult is the finalized outcome of a capture call. Raw carries the
// provider's full response for audit and reconciliation.
type CaptureResult struct {
	IntentID string
	Status   string
	Raw      types.JSONMap
}

// AuditEvent is one request/response/error record of gateway traffic.
type AuditEvent struct {
	Operation  string
	Phase      string
	IntentID   string
	Payload    types.JSONMap
	StatusCode *int
}

// AuditRecorder persists gateway traffic. Implementations must be best
// effort: a recording failure is logged and swallowed, never surfaced.
type AuditRecorder interface {
	Record(ctx context.Context, event AuditEvent)
}

// Client wraps the two PayPal Orders v2 calls the checkout flow needs, with
// centralized logging, audit recording, metrics, and error mapping. The
// sandbox/live environment and credentials are bound once at construction.
type Client struct {
	sdk      *gppaypal.Client
	live     bool
	timeout  time.Duration
	logger   *logger.Logger
	audit    AuditRecorder
	observer *metrics.GatewayMetrics
}

// NewClient validates the credentials and binds the PayPal environment.
// Construction performs the OAuth handshake, so a bad credential pair fails
// fast at startup rather than on the first checkout.
func NewClient(ctx context.Context, cfg config.PayPalConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}

	clientID := strings.TrimSpace(cfg.ClientID)
	if clientID == "" {
		return nil, errClientIDRequired
	}
	secret := strings.TrimSpace(cfg.ClientSecret)
	if secret == "" {
		return nil, errSecretRequired
	}

	sdk, err := gppaypal.NewClient(clientID, secret, cfg.IsLive())
	if err != nil {
		return nil, fmt.Errorf("create paypal client: %w", err)
	}
	sdk.DebugSwitch = gopay.DebugOff

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		sdk:     sdk,
		live:    cfg.IsLive(),
		timeout: timeout,
		logger:  logg,
	}

	env := "sandbox"
	if c.live {
		env = "live"
	}
	logg.Info(logg.WithField(ctx, "paypal_env", env), "paypal client initialized")
	return c, nil
}

// WithAudit attaches the audit recorder. Separate from construction so the
// recorder can be built on the same DB client after the gateway is up.
func (c *Client) WithAudit(recorder AuditRecorder) *Client {
	if c != nil {
		c.audit = recorder
	}
	return c
}

// WithMetrics attaches the gateway call observer.
func (c *Client) WithMetrics(observer *metrics.GatewayMetrics) *Client {
	if c != nil {
		c.observer = observer
	}
	return c
}

// IsLive reports whether the client is bound to the live environment.
func (c *Client) IsLive() bool {
	return c != nil && c.live
}

// CreateIntent asks PayPal to create a CAPTURE-intent order and returns the
// issued id. The full created object is requested in one round trip.
func (c *Client) CreateIntent(ctx context.Context, req IntentRequest) (string, error) {
	bm, err := req.toBodyMap()
	if err != nil {
		return "", err
	}

	c.record(ctx, "create_intent", "request", "", types.JSONMap(bm), nil)

	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rsp, err := c.sdk.CreateOrder(callCtx, bm)
	if err != nil {
		mapped := mapTransportError(err, "create intent")
		c.fail(ctx, "create_intent", "", mapped)
		c.observe("create_intent", "unavailable", start)
		return "", mapped
	}
	if rsp.Code != gppaypal.Success {
		mapped := mapProviderError("create intent", rsp.Code, rsp.Error)
		c.record(ctx, "create_intent", "error", "", rawBody(rsp.Error), &rsp.Code)
		c.fail(ctx, "create_intent", "", mapped)
		c.observe("create_intent", "rejected", start)
		return "", mapped
	}
	if rsp.Response == nil || rsp.Response.Id == "" {
		mapped := pkgerrors.New(pkgerrors.CodeGatewayUnavailable, "create intent returned no id")
		c.fail(ctx, "create_intent", "", mapped)
		c.observe("create_intent", "unavailable", start)
		return "", mapped
	}

	intentID := rsp.Response.Id
	c.record(ctx, "create_intent", "response", intentID, rawJSON(rsp.Response), nil)
	c.observe("create_intent", "success", start)

	logCtx := c.logger.WithIntentID(ctx, intentID)
	c.logger.Info(logCtx, "paypal intent created")
	return intentID, nil
}

// CaptureIntent finalizes a previously created and approved intent. The
// capture body is empty: all terms were fixed at creation time, and PayPal
// treats capture as idempotent per intent id.
func (c *Client) CaptureIntent(ctx context.Context, intentID string) (*CaptureResult, error) {
	if strings.TrimSpace(intentID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orderID is required")
	}

	c.record(ctx, "capture_intent", "request", intentID, nil, nil)

	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rsp, err := c.sdk.OrderCapture(callCtx, intentID, nil)
	if err != nil {
		mapped := mapTransportError(err, "capture intent")
		c.fail(ctx, "capture_intent", intentID, mapped)
		c.observe("capture_intent", "unavailable", start)
		return nil, mapped
	}
	if rsp.Code != gppaypal.Success {
		mapped := mapProviderError("capture intent", rsp.Code, rsp.Error)
		c.record(ctx, "capture_intent", "error", intentID, rawBody(rsp.Error), &rsp.Code)
		c.fail(ctx, "capture_intent", intentID, mapped)
		c.observe("capture_intent", outcomeFor(mapped), start)
		return nil, mapped
	}

	raw := rawJSON(rsp.Response)
	result := &CaptureResult{
		IntentID: intentID,
		Raw:      raw,
	}
	if rsp.Response != nil {
		result.Status = rsp.Response.Status
	}

	c.record(ctx, "capture_intent", "response", intentID, raw, nil)
	c.observe("capture_intent", "success", start)

	logCtx := c.logger.WithFields(ctx, map[string]any{
		"intent_id":      intentID,
		"capture_status": result.Status,
	})
	c.logger.Info(logCtx, "paypal intent captured")
	return result, nil
}

func (c *Client) record(ctx context.Context, operation, phase, intentID string, payload types.JSONMap, statusCode *int) {
	if c == nil || c.audit == nil {
		return
	}
	c.audit.Record(ctx, AuditEvent{
		Operation:  operation,
		Phase:      phase,
		IntentID:   intentID,
		Payload:    payload,
		StatusCode: statusCode,
	})
}

func (c *Client) fail(ctx context.Context, operation, intentID string, err error) {
	if c == nil || c.logger == nil {
		return
	}
	if intentID != "" {
		ctx = c.logger.WithIntentID(ctx, intentID)
	}
	c.logger.Error(ctx, fmt.Sprintf("paypal %s failed", strings.ReplaceAll(operation, "_", " ")), err)
}

func (c *Client) observe(operation, outcome string, start time.Time) {
	if c == nil || c.observer == nil {
		return
	}
	c.observer.ObserveCall(operation, outcome, time.Since(start))
}

func outcomeFor(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return "unavailable"
	}
	switch typed.Code() {
	case pkgerrors.CodeIntentNotFound:
		return "not_found"
	case pkgerrors.CodeGatewayRejected:
		return "rejected"
	default:
		return "unavailable"
	}
}

// rawJSON round-trips an SDK struct through encoding/json into a JSONMap so
// the exact provider representation can be stored.
func rawJSON(v any) types.JSONMap {
	if v == nil {
		return nil
	}
	bs, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m types.JSONMap
	if err := json.Unmarshal(bs, &m); err != nil {
		return nil
	}
	return m
}

// rawBody wraps a non-JSON provider error body so it still fits the audit
// payload column.
func rawBody(body string) types.JSONMap {
	if body == "" {
		return nil
	}
	var m types.JSONMap
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return types.JSONMap{"body": body}
	}
	return m
}
