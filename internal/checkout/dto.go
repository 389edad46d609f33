package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campuskart/campuskart-backend/internal/orders"
	"github.com/campuskart/campuskart-backend/pkg/deliveryfee"
	"github.com/campuskart/campuskart-backend/pkg/enums"
	"github.com/campuskart/campuskart-backend/pkg/types"
)

// ItemInput is one line of a checkout request. Catalog items carry a product
// snapshot captured by the storefront; xerox items carry a print config.
type ItemInput struct {
	SellerID    uuid.UUID          `json:"seller_id"`
	Category    enums.Category     `json:"category"`
	ProductID   *uuid.UUID         `json:"product_id,omitempty"`
	ProductName *string            `json:"product_name,omitempty"`
	PrintConfig *types.PrintConfig `json:"print_config,omitempty"`
	Quantity    int                `json:"quantity"`
	UnitPrice   decimal.Decimal    `json:"unit_price"`
}

// CheckoutInput is the full checkout request for one customer.
type CheckoutInput struct {
	Items           []ItemInput   `json:"items"`
	ShippingAddress types.Address `json:"shipping_address"`
	Mobile          string        `json:"mobile"`
	AltMobiles      []string      `json:"alt_mobiles,omitempty"`
}

// FeeBreakdown reports the per-bucket delivery quotes applied to the group.
type FeeBreakdown struct {
	Product deliveryfee.Quote `json:"product"`
	Xerox   deliveryfee.Quote `json:"xerox"`
}

// CheckoutResult is the created order group.
type CheckoutResult struct {
	GroupID        uuid.UUID          `json:"group_id"`
	Orders         []orders.OrderView `json:"orders"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	DeliveryCharge decimal.Decimal    `json:"delivery_charge"`
	Total          decimal.Decimal    `json:"total"`
	Fees           FeeBreakdown       `json:"fees"`
}
