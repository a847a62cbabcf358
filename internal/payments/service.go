package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tdbstore/tdb-backend/internal/orders"
	"github.com/tdbstore/tdb-backend/pkg/config"
	"github.com/tdbstore/tdb-backend/pkg/db/models"
	"github.com/tdbstore/tdb-backend/pkg/enums"
	pkgerrors "github.com/tdbstore/tdb-backend/pkg/errors"
	"github.com/tdbstore/tdb-backend/pkg/logger"
	"github.com/tdbstore/tdb-backend/pkg/money"
	"github.com/tdbstore/tdb-backend/pkg/paypal"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Gateway is the slice of the payment provider the orchestrator needs.
type Gateway interface {
	CreateIntent(ctx context.Context, req paypal.IntentRequest) (string, error)
	CaptureIntent(ctx context.Context, intentID string) (*paypal.CaptureResult, error)
}

// LineItem is one cart entry snapshotted onto the order.
type LineItem struct {
	Name           string
	Qty            int
	UnitPriceCents int64
}

// CreateIntentInput captures everything the checkout page sends when the
// shopper starts paying.
type CreateIntentInput struct {
	Amount      float64
	Currency    string
	Description string
	Items       []LineItem
	UserID      *uuid.UUID
	GuestName   string
	GuestEmail  string
}

// Service orchestrates the payment lifecycle against the gateway and the
// order store.
type Service interface {
	CreateIntent(ctx context.Context, input CreateIntentInput) (string, error)
	Capture(ctx context.Context, intentID string) (*paypal.CaptureResult, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

type service struct {
	tx       txRunner
	repo     orders.Repository
	gateway  Gateway
	checkout config.CheckoutConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the payments service.
func NewService(
	tx txRunner,
	repo orders.Repository,
	gateway Gateway,
	checkout config.CheckoutConfig,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		gateway:  gateway,
		checkout: checkout,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// CreateIntent validates the amount, persists a placeholder order, then asks
// the gateway for an intent. Validation failures never reach the gateway.
// The intent id is stamped onto the payment exactly once.
func (s *service) CreateIntent(ctx context.Context, input CreateIntentInput) (string, error) {
	amount, err := money.Parse(input.Amount, input.Currency, s.checkout.DefaultCurrency)
	if err != nil {
		return "", err
	}
	if err := validateItemTotal(amount, input.Items); err != nil {
		return "", err
	}

	order, err := s.persistPlaceholder(ctx, amount, input)
	if err != nil {
		return "", err
	}

	logCtx := s.logg.WithOrderID(ctx, order.ID.String())

	intentID, err := s.gateway.CreateIntent(ctx, paypal.IntentRequest{
		ReferenceID: order.ID.String(),
		Amount:      amount,
		Description: input.Description,
		Checkout:    s.checkout,
	})
	if err != nil {
		s.abandonOrder(logCtx, order.ID, err)
		return "", err
	}

	if err := s.repo.StampIntentID(ctx, order.ID, intentID); err != nil {
		s.logg.Error(s.logg.WithIntentID(logCtx, intentID), "stamping intent id failed", err)
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording intent id")
	}

	s.logg.Info(s.logg.WithIntentID(logCtx, intentID), "payment intent created")
	return intentID, nil
}

// Capture finalizes the payment for an approved intent. The pending to
// completed transition is a conditional write, so concurrent captures of the
// same intent settle to exactly one completion. A gateway failure leaves the
// payment pending and retryable unless the provider says the intent is gone.
func (s *service) Capture(ctx context.Context, intentID string) (*paypal.CaptureResult, error) {
	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orderID is required")
	}

	order, err := s.repo.FindOrderByIntentID(ctx, intentID)
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":  order.ID.String(),
		"intent_id": intentID,
	})

	if order.Payment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order has no payment record")
	}
	switch order.Payment.Status {
	case enums.PaymentStatusCompleted:
		return nil, pkgerrors.New(pkgerrors.CodeInvalidState, "payment already captured")
	case enums.PaymentStatusFailed:
		return nil, pkgerrors.New(pkgerrors.CodeInvalidState, "payment already failed")
	}
	if order.Status == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidState, "order was cancelled")
	}

	result, err := s.gateway.CaptureIntent(ctx, intentID)
	if err != nil {
		typed := pkgerrors.As(err)
		if typed != nil && typed.Code() == pkgerrors.CodeIntentNotFound {
			// the gateway object is gone, this payment can never complete
			if markErr := s.repo.MarkPaymentFailed(ctx, order.ID, typed.Message()); markErr != nil {
				s.logg.Error(logCtx, "marking payment failed", markErr)
			}
		}
		return nil, err
	}

	applied, err := s.repo.CompleteCapture(ctx, order.ID, result.Raw, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording capture")
	}
	if !applied {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidState, "payment already captured")
	}

	s.logg.Info(logCtx, "payment captured")
	return result, nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	return s.repo.FindOrderByID(ctx, orderID)
}

func (s *service) persistPlaceholder(ctx context.Context, amount money.Amount, input CreateIntentInput) (*models.Order, error) {
	order := &models.Order{
		ID:          uuid.New(),
		Status:      enums.OrderStatusPending,
		TotalCents:  amount.Cents(),
		Currency:    amount.Currency(),
		Description: descriptionOrDefault(input.Description, s.checkout.DefaultDescription),
		UserID:      input.UserID,
		Payment: &models.Payment{
			ID:       uuid.New(),
			Provider: enums.PaymentProviderPayPal,
			Status:   enums.PaymentStatusPending,
		},
	}
	if input.UserID == nil {
		if name := strings.TrimSpace(input.GuestName); name != "" {
			order.GuestName = &name
		}
		if email := strings.TrimSpace(input.GuestEmail); email != "" {
			order.GuestEmail = &email
		}
	}
	for _, item := range input.Items {
		order.Items = append(order.Items, models.OrderLineItem{
			ID:             uuid.New(),
			Name:           item.Name,
			Qty:            item.Qty,
			UnitPriceCents: item.UnitPriceCents,
			TotalCents:     item.UnitPriceCents * int64(item.Qty),
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, createErr := s.repo.WithTx(tx).CreateOrder(ctx, order)
		return createErr
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting order")
	}
	return order, nil
}

// abandonOrder closes out the placeholder after a failed create-intent call
// so it never shows up as an open order.
func (s *service) abandonOrder(ctx context.Context, orderID uuid.UUID, cause error) {
	reason := cause.Error()
	if typed := pkgerrors.As(cause); typed != nil {
		reason = typed.Message()
	}
	if err := s.repo.MarkPaymentFailed(ctx, orderID, reason); err != nil {
		s.logg.Error(ctx, "marking payment failed", err)
	}
	if err := s.repo.MarkOrderCancelled(ctx, orderID); err != nil {
		s.logg.Error(ctx, "cancelling order", err)
	}
}

// validateItemTotal rejects a cart whose line items do not add up to the
// charged amount. Orders without line items carry the amount alone.
func validateItemTotal(amount money.Amount, items []LineItem) error {
	if len(items) == 0 {
		return nil
	}
	var sum int64
	for _, item := range items {
		sum += item.UnitPriceCents * int64(item.Qty)
	}
	if sum != amount.Cents() {
		return pkgerrors.New(pkgerrors.CodeInvalidAmount, "Invalid amount").
			WithDetails(map[string]any{
				"amount_cents": amount.Cents(),
				"items_cents":  sum,
			})
	}
	return nil
}

func descriptionOrDefault(description, fallback string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return fallback
	}
	return description
}
