package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tdbstore/tdb-backend/pkg/types"
)

// PaymentEvent is the audit trail for gateway traffic: one row per
// request/response/error phase, kept for reconciliation and dispute
// handling. Writing it is best effort and never blocks the payment flow.
type PaymentEvent struct {
	ID         uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Operation  string        `gorm:"column:operation;not null"`
	Phase      string        `gorm:"column:phase;not null"`
	IntentID   *string       `gorm:"column:intent_id;index"`
	Payload    types.JSONMap `gorm:"column:payload;type:jsonb"`
	StatusCode *int          `gorm:"column:status_code"`
	CreatedAt  time.Time     `gorm:"column:created_at;autoCreateTime"`
}
