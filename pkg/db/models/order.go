package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/campuskart/campuskart-backend/pkg/enums"
	"github.com/campuskart/campuskart-backend/pkg/types"
)

// Order is one purchased line item. Rows sharing a group_id were placed in
// the same checkout and form an order group.
type Order struct {
	ID       uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID  uuid.UUID      `gorm:"column:group_id;type:uuid;not null;index"`
	UserID   uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index"`
	SellerID uuid.UUID      `gorm:"column:seller_id;type:uuid;not null;index"`
	Category enums.Category `gorm:"column:category;type:category;not null"`

	// Catalog items carry a product snapshot; xerox items carry a print
	// config instead. Exactly one of the two shapes is populated.
	ProductID   *uuid.UUID         `gorm:"column:product_id;type:uuid"`
	ProductName *string            `gorm:"column:product_name"`
	PrintConfig *types.PrintConfig `gorm:"column:print_config;type:jsonb"`

	Quantity          int               `gorm:"column:quantity;not null"`
	UnitPrice         decimal.Decimal   `gorm:"column:unit_price;type:numeric(12,2);not null"`
	DeliveryCharge    decimal.Decimal   `gorm:"column:delivery_charge;type:numeric(12,2);not null;default:0"`
	IsDeliveryFeePaid bool              `gorm:"column:is_delivery_fee_paid;not null;default:false"`
	Status            enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'pending_confirmation'"`

	ReturnType      *enums.ReturnType `gorm:"column:return_type;type:return_type"`
	RejectionReason *string           `gorm:"column:rejection_reason"`
	ReturnReason    *string           `gorm:"column:return_reason"`

	// Milestone timestamps. Each is written at most once and never drives
	// transition decisions.
	ConfirmedAt            *time.Time `gorm:"column:confirmed_at"`
	PackedAt               *time.Time `gorm:"column:packed_at"`
	ShippedAt              *time.Time `gorm:"column:shipped_at"`
	OutForDeliveryAt       *time.Time `gorm:"column:out_for_delivery_at"`
	DeliveredAt            *time.Time `gorm:"column:delivered_at"`
	ReturnRequestedAt      *time.Time `gorm:"column:return_requested_at"`
	ReturnApprovedAt       *time.Time `gorm:"column:return_approved_at"`
	OutForPickupAt         *time.Time `gorm:"column:out_for_pickup_at"`
	PickedUpAt             *time.Time `gorm:"column:picked_up_at"`
	ReturnCompletedAt      *time.Time `gorm:"column:return_completed_at"`
	ReplacementConfirmedAt *time.Time `gorm:"column:replacement_confirmed_at"`
	ReplacementCompletedAt *time.Time `gorm:"column:replacement_completed_at"`
	ExpectedDeliveryAt     *time.Time `gorm:"column:expected_delivery_at"`

	ShippingAddress types.Address  `gorm:"column:shipping_address;type:address_t;not null"`
	Mobile          string         `gorm:"column:mobile;not null"`
	AltMobiles      pq.StringArray `gorm:"column:alt_mobiles;type:text[]"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Subtotal is the item subtotal before any delivery charge.
func (o Order) Subtotal() decimal.Decimal {
	return o.UnitPrice.Mul(decimal.NewFromInt(int64(o.Quantity)))
}
