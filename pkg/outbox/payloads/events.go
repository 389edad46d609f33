package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campuskart/campuskart-backend/pkg/enums"
)

// OrderGroupCreatedEvent signals a checkout that produced one or more orders.
type OrderGroupCreatedEvent struct {
	GroupID        uuid.UUID       `json:"group_id"`
	UserID         uuid.UUID       `json:"user_id"`
	OrderIDs       []uuid.UUID     `json:"order_ids"`
	SellerIDs      []uuid.UUID     `json:"seller_ids"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
}

// OrderStatusChangedEvent is emitted on every guarded status transition.
type OrderStatusChangedEvent struct {
	OrderID    uuid.UUID         `json:"order_id"`
	GroupID    uuid.UUID         `json:"group_id"`
	UserID     uuid.UUID         `json:"user_id"`
	SellerID   uuid.UUID         `json:"seller_id"`
	FromStatus enums.OrderStatus `json:"from_status"`
	ToStatus   enums.OrderStatus `json:"to_status"`
	Reason     string            `json:"reason,omitempty"`
}

// OrderReturnRequestedEvent replaces the plain status event when a buyer
// opens a return, so consumers see the return type and reason.
type OrderReturnRequestedEvent struct {
	OrderID     uuid.UUID        `json:"order_id"`
	GroupID     uuid.UUID        `json:"group_id"`
	UserID      uuid.UUID        `json:"user_id"`
	SellerID    uuid.UUID        `json:"seller_id"`
	ReturnType  enums.ReturnType `json:"return_type"`
	Reason      string           `json:"reason"`
	RequestedAt time.Time        `json:"requested_at"`
}

// GroupFeeSettledEvent reports a completed delivery-fee settlement sweep.
type GroupFeeSettledEvent struct {
	GroupID          uuid.UUID       `json:"group_id"`
	UserID           uuid.UUID       `json:"user_id"`
	SettledOrderIDs  []uuid.UUID     `json:"settled_order_ids"`
	AlreadyPaidCount int             `json:"already_paid_count"`
	TotalFee         decimal.Decimal `json:"total_fee"`
}
