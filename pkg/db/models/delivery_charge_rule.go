package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campuskart/campuskart-backend/pkg/enums"
)

// DeliveryChargeRule is one admin-managed fee tier. Rules for a kind form a
// tier set evaluated against the order subtotal at checkout.
type DeliveryChargeRule struct {
	ID         uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Kind       enums.DeliveryChargeKind `gorm:"column:kind;type:delivery_charge_kind;not null;index"`
	FromAmount decimal.Decimal         `gorm:"column:from_amount;type:numeric(12,2);not null"`
	ToAmount   *decimal.Decimal        `gorm:"column:to_amount;type:numeric(12,2)"`
	Charge     decimal.Decimal         `gorm:"column:charge;type:numeric(12,2);not null"`
	Position   int                     `gorm:"column:position;not null;default:0"`
	CreatedAt  time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
