package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tdbstore/tdb-backend/pkg/enums"
)

// Order is the internal record reconciled against the gateway. The customer
// is either an authenticated user reference or a guest contact snapshot,
// never both. Orders are never deleted; cancellation is a status flag.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	TotalCents  int64             `gorm:"column:total_cents;not null"`
	Currency    string            `gorm:"column:currency;type:text;not null"`
	Description string            `gorm:"column:description;not null"`
	UserID      *uuid.UUID        `gorm:"column:user_id;type:uuid"`
	GuestName   *string           `gorm:"column:guest_name"`
	GuestEmail  *string           `gorm:"column:guest_email"`
	Items       []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment     *Payment          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// IsGuest reports whether the order was placed without an authenticated user.
func (o *Order) IsGuest() bool {
	return o != nil && o.UserID == nil
}
