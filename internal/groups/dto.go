package groups

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campuskart/campuskart-backend/internal/orders"
	"github.com/campuskart/campuskart-backend/pkg/enums"
	"github.com/campuskart/campuskart-backend/pkg/types"
)

// CustomerSummary is the buyer identity attached to a group view.
type CustomerSummary struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name,omitempty"`
	Email  string    `json:"email,omitempty"`
	Mobile *string   `json:"mobile,omitempty"`
}

// SellerSummary is the vendor identity attached to a sub-group.
type SellerSummary struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name,omitempty"`
	CampusLocation string    `json:"campus_location,omitempty"`
}

// SellerSubGroup is one seller's slice of an order group.
type SellerSubGroup struct {
	Seller   SellerSummary      `json:"seller"`
	Orders   []orders.OrderView `json:"orders"`
	Subtotal decimal.Decimal    `json:"subtotal"`
	Bucket   enums.OrderBucket  `json:"bucket"`
}

// GroupView is the full aggregation of one order group.
type GroupView struct {
	GroupID         uuid.UUID         `json:"group_id"`
	PlacedAt        time.Time         `json:"placed_at"`
	Customer        CustomerSummary   `json:"customer"`
	ShippingAddress types.Address     `json:"shipping_address"`
	Mobile          string            `json:"mobile"`
	Sellers         []SellerSubGroup  `json:"sellers"`
	ProductSubtotal decimal.Decimal   `json:"product_subtotal"`
	XeroxSubtotal   decimal.Decimal   `json:"xerox_subtotal"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	DeliveryCharge  decimal.Decimal   `json:"delivery_charge"`
	Total           decimal.Decimal   `json:"total"`
	FeePaid         bool              `json:"fee_paid"`
	Bucket          enums.OrderBucket `json:"bucket"`
}

// GroupPage is one page of group views plus the cursor for the next page.
type GroupPage struct {
	Groups     []GroupView `json:"groups"`
	NextCursor string      `json:"next_cursor,omitempty"`
}
