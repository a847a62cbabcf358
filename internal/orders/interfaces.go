package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tdbstore/tdb-backend/pkg/db/models"
	"github.com/tdbstore/tdb-backend/pkg/types"
)

// Repository defines persistence operations for the order/payment tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOrderByIntentID(ctx context.Context, intentID string) (*models.Order, error)
	StampIntentID(ctx context.Context, orderID uuid.UUID, intentID string) error
	CompleteCapture(ctx context.Context, orderID uuid.UUID, raw types.JSONMap, capturedAt time.Time) (bool, error)
	MarkPaymentFailed(ctx context.Context, orderID uuid.UUID, reason string) error
	MarkOrderCancelled(ctx context.Context, orderID uuid.UUID) error
	RecordPaymentEvent(ctx context.Context, event *models.PaymentEvent) error
}
