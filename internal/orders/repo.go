package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tdbstore/tdb-backend/pkg/db/models"
	"github.com/tdbstore/tdb-backend/pkg/enums"
	pkgerrors "github.com/tdbstore/tdb-backend/pkg/errors"
	"github.com/tdbstore/tdb-backend/pkg/types"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payment").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOrderByIntentID(ctx context.Context, intentID string) (*models.Order, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("intent_id = ?", intentID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeIntentNotFound, "no order for intent")
		}
		return nil, err
	}
	return r.FindOrderByID(ctx, payment.OrderID)
}

// StampIntentID writes the gateway intent id exactly once. A second stamp
// attempt for the same order fails instead of silently reassigning the
// payment to a different gateway object.
func (r *repository) StampIntentID(ctx context.Context, orderID uuid.UUID, intentID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("order_id = ? AND intent_id IS NULL", orderID).
		Update("intent_id", intentID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidState, "payment already has an intent id")
	}
	return nil
}

// CompleteCapture flips the payment from pending to completed with a
// conditional write, so two concurrent captures of the same intent produce
// exactly one completion. Returns false when another caller won the race or
// the payment was not pending.
func (r *repository) CompleteCapture(ctx context.Context, orderID uuid.UUID, raw types.JSONMap, capturedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("order_id = ? AND status = ?", orderID, enums.PaymentStatusPending).
		Updates(map[string]any{
			"status":             enums.PaymentStatusCompleted,
			"raw_capture_result": raw,
			"captured_at":        capturedAt,
			"failure_reason":     nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", enums.OrderStatusPaid).Error
	if err != nil {
		return true, err
	}
	return true, nil
}

// MarkPaymentFailed records a failure reason while keeping the payment
// retryable: only a pending payment is touched, never a completed one.
func (r *repository) MarkPaymentFailed(ctx context.Context, orderID uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("order_id = ? AND status = ?", orderID, enums.PaymentStatusPending).
		Updates(map[string]any{
			"status":         enums.PaymentStatusFailed,
			"failure_reason": reason,
		}).Error
}

func (r *repository) MarkOrderCancelled(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", enums.OrderStatusCancelled).Error
}

func (r *repository) RecordPaymentEvent(ctx context.Context, event *models.PaymentEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}
