package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campuskart/campuskart-backend/pkg/db/models"
	"github.com/campuskart/campuskart-backend/pkg/enums"
	"github.com/campuskart/campuskart-backend/pkg/types"
)

// Actor identifies the authenticated caller of an order operation. SellerID
// is set only for seller-role actors.
type Actor struct {
	UserID   uuid.UUID
	SellerID *uuid.UUID
	Role     enums.Role
}

// DecisionInput covers the single-order operations that need no extra data:
// confirm, cancel, approve return, approve replacement.
type DecisionInput struct {
	OrderID uuid.UUID
	Actor   Actor
}

// RejectInput covers order rejection and return rejection; Reason is
// mandatory.
type RejectInput struct {
	OrderID uuid.UUID
	Reason  string
	Actor   Actor
}

// AdvanceInput applies the forward transition table. BelievedStatus is the
// status the caller last read; the write is refused when it is stale.
// ExpectedDeliveryAt is accepted only on the advance into Shipped.
type AdvanceInput struct {
	OrderID            uuid.UUID
	BelievedStatus     enums.OrderStatus
	ExpectedDeliveryAt *time.Time
	Actor              Actor
}

// ReturnRequestInput opens the return/replacement sub-workflow.
type ReturnRequestInput struct {
	OrderID uuid.UUID
	Type    enums.ReturnType
	Reason  string
	Actor   Actor
}

// FeeSettlementInput marks every order in a group as delivery-fee paid.
type FeeSettlementInput struct {
	GroupID uuid.UUID
	Actor   Actor
}

// FeeSettlementResult reports the per-member outcome of a settlement pass.
// The operation is idempotent per member, so a retry after a partial failure
// settles only the remainder.
type FeeSettlementResult struct {
	GroupID     uuid.UUID       `json:"group_id"`
	Updated     []uuid.UUID     `json:"updated"`
	AlreadyPaid []uuid.UUID     `json:"already_paid"`
	Failed      []uuid.UUID     `json:"failed,omitempty"`
	TotalFee    decimal.Decimal `json:"total_fee"`
}

// StatusConflictDetails is attached to state-conflict errors so the operator
// sees the real stored status instead of a bare failure.
type StatusConflictDetails struct {
	ActualStatus   enums.OrderStatus `json:"actual_status"`
	BelievedStatus enums.OrderStatus `json:"believed_status"`
}

// Tracking is the audit trail of milestone timestamps. Derived output only;
// transition decisions never read it.
type Tracking struct {
	ConfirmedAt            *time.Time `json:"confirmed_at,omitempty"`
	PackedAt               *time.Time `json:"packed_at,omitempty"`
	ShippedAt              *time.Time `json:"shipped_at,omitempty"`
	OutForDeliveryAt       *time.Time `json:"out_for_delivery_at,omitempty"`
	DeliveredAt            *time.Time `json:"delivered_at,omitempty"`
	ReturnRequestedAt      *time.Time `json:"return_requested_at,omitempty"`
	ReturnApprovedAt       *time.Time `json:"return_approved_at,omitempty"`
	OutForPickupAt         *time.Time `json:"out_for_pickup_at,omitempty"`
	PickedUpAt             *time.Time `json:"picked_up_at,omitempty"`
	ReturnCompletedAt      *time.Time `json:"return_completed_at,omitempty"`
	ReplacementConfirmedAt *time.Time `json:"replacement_confirmed_at,omitempty"`
	ReplacementCompletedAt *time.Time `json:"replacement_completed_at,omitempty"`
	ExpectedDeliveryAt     *time.Time `json:"expected_delivery_at,omitempty"`
}

// OrderView is the API projection of one order row.
type OrderView struct {
	ID                uuid.UUID          `json:"id"`
	GroupID           uuid.UUID          `json:"group_id"`
	UserID            uuid.UUID          `json:"user_id"`
	SellerID          uuid.UUID          `json:"seller_id"`
	Category          enums.Category     `json:"category"`
	ProductID         *uuid.UUID         `json:"product_id,omitempty"`
	ProductName       *string            `json:"product_name,omitempty"`
	PrintConfig       *types.PrintConfig `json:"print_config,omitempty"`
	Quantity          int                `json:"quantity"`
	UnitPrice         decimal.Decimal    `json:"unit_price"`
	Subtotal          decimal.Decimal    `json:"subtotal"`
	DeliveryCharge    decimal.Decimal    `json:"delivery_charge"`
	IsDeliveryFeePaid bool               `json:"is_delivery_fee_paid"`
	Status            enums.OrderStatus  `json:"status"`
	StatusLabel       string             `json:"status_label"`
	Bucket            enums.OrderBucket  `json:"bucket"`
	ReturnType        *enums.ReturnType  `json:"return_type,omitempty"`
	RejectionReason   *string            `json:"rejection_reason,omitempty"`
	ReturnReason      *string            `json:"return_reason,omitempty"`
	Tracking          Tracking           `json:"tracking"`
	ShippingAddress   types.Address      `json:"shipping_address"`
	Mobile            string             `json:"mobile"`
	AltMobiles        []string           `json:"alt_mobiles,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}

// NewOrderView maps a stored order onto its API projection.
func NewOrderView(order models.Order) OrderView {
	return OrderView{
		ID:                order.ID,
		GroupID:           order.GroupID,
		UserID:            order.UserID,
		SellerID:          order.SellerID,
		Category:          order.Category,
		ProductID:         order.ProductID,
		ProductName:       order.ProductName,
		PrintConfig:       order.PrintConfig,
		Quantity:          order.Quantity,
		UnitPrice:         order.UnitPrice,
		Subtotal:          order.Subtotal(),
		DeliveryCharge:    order.DeliveryCharge,
		IsDeliveryFeePaid: order.IsDeliveryFeePaid,
		Status:            order.Status,
		StatusLabel:       order.Status.Label(),
		Bucket:            order.Status.Bucket(),
		ReturnType:        order.ReturnType,
		RejectionReason:   order.RejectionReason,
		ReturnReason:      order.ReturnReason,
		Tracking: Tracking{
			ConfirmedAt:            order.ConfirmedAt,
			PackedAt:               order.PackedAt,
			ShippedAt:              order.ShippedAt,
			OutForDeliveryAt:       order.OutForDeliveryAt,
			DeliveredAt:            order.DeliveredAt,
			ReturnRequestedAt:      order.ReturnRequestedAt,
			ReturnApprovedAt:       order.ReturnApprovedAt,
			OutForPickupAt:         order.OutForPickupAt,
			PickedUpAt:             order.PickedUpAt,
			ReturnCompletedAt:      order.ReturnCompletedAt,
			ReplacementConfirmedAt: order.ReplacementConfirmedAt,
			ReplacementCompletedAt: order.ReplacementCompletedAt,
			ExpectedDeliveryAt:     order.ExpectedDeliveryAt,
		},
		ShippingAddress: order.ShippingAddress,
		Mobile:          order.Mobile,
		AltMobiles:      order.AltMobiles,
		CreatedAt:       order.CreatedAt,
	}
}
