package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tdbstore/tdb-backend/pkg/enums"
	"github.com/tdbstore/tdb-backend/pkg/types"
)

// Payment tracks the gateway side of an order. IntentID is the only handle
// the system keeps on the gateway object; it is stamped once after a
// successful create-intent call and never reassigned.
type Payment struct {
	ID               uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID             `gorm:"column:order_id;type:uuid;not null"`
	Provider         enums.PaymentProvider `gorm:"column:provider;type:text;not null;default:'paypal'"`
	IntentID         *string               `gorm:"column:intent_id;uniqueIndex"`
	Status           enums.PaymentStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	RawCaptureResult types.JSONMap         `gorm:"column:raw_capture_result;type:jsonb"`
	FailureReason    *string               `gorm:"column:failure_reason"`
	CapturedAt       *time.Time            `gorm:"column:captured_at"`
	CreatedAt        time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
