package enums

import "fmt"

// OrderStatus tracks the lifecycle of one order line item.
type OrderStatus string

const (
	OrderStatusPendingConfirmation            OrderStatus = "pending_confirmation"
	OrderStatusProcessing                     OrderStatus = "processing"
	OrderStatusPacked                         OrderStatus = "packed"
	OrderStatusShipped                        OrderStatus = "shipped"
	OrderStatusOutForDelivery                 OrderStatus = "out_for_delivery"
	OrderStatusPendingDeliveryConfirmation    OrderStatus = "pending_delivery_confirmation"
	OrderStatusDelivered                      OrderStatus = "delivered"
	OrderStatusRejected                       OrderStatus = "rejected"
	OrderStatusCancelled                      OrderStatus = "cancelled"
	OrderStatusReturnRequested                OrderStatus = "return_requested"
	OrderStatusReturnApproved                 OrderStatus = "return_approved"
	OrderStatusOutForPickup                   OrderStatus = "out_for_pickup"
	OrderStatusPickedUp                       OrderStatus = "picked_up"
	OrderStatusPendingReturnConfirmation      OrderStatus = "pending_return_confirmation"
	OrderStatusReturnCompleted                OrderStatus = "return_completed"
	OrderStatusReturnRejected                 OrderStatus = "return_rejected"
	OrderStatusReplacementConfirmed           OrderStatus = "replacement_confirmed"
	OrderStatusPendingReplacementConfirmation OrderStatus = "pending_replacement_confirmation"
	OrderStatusReplacementCompleted           OrderStatus = "replacement_completed"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPendingConfirmation,
	OrderStatusProcessing,
	OrderStatusPacked,
	OrderStatusShipped,
	OrderStatusOutForDelivery,
	OrderStatusPendingDeliveryConfirmation,
	OrderStatusDelivered,
	OrderStatusRejected,
	OrderStatusCancelled,
	OrderStatusReturnRequested,
	OrderStatusReturnApproved,
	OrderStatusOutForPickup,
	OrderStatusPickedUp,
	OrderStatusPendingReturnConfirmation,
	OrderStatusReturnCompleted,
	OrderStatusReturnRejected,
	OrderStatusReplacementConfirmed,
	OrderStatusPendingReplacementConfirmation,
	OrderStatusReplacementCompleted,
}

var terminalOrderStatuses = map[OrderStatus]struct{}{
	OrderStatusDelivered:            {},
	OrderStatusRejected:             {},
	OrderStatusCancelled:            {},
	OrderStatusReturnCompleted:      {},
	OrderStatusReturnRejected:       {},
	OrderStatusReplacementCompleted: {},
}

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPendingConfirmation:            "Pending Confirmation",
	OrderStatusProcessing:                     "Processing",
	OrderStatusPacked:                         "Packed",
	OrderStatusShipped:                        "Shipped",
	OrderStatusOutForDelivery:                 "Out for Delivery",
	OrderStatusPendingDeliveryConfirmation:    "Pending Delivery Confirmation",
	OrderStatusDelivered:                      "Delivered",
	OrderStatusRejected:                       "Rejected",
	OrderStatusCancelled:                      "Cancelled",
	OrderStatusReturnRequested:                "Return Requested",
	OrderStatusReturnApproved:                 "Return Approved",
	OrderStatusOutForPickup:                   "Out for Pickup",
	OrderStatusPickedUp:                       "Picked Up",
	OrderStatusPendingReturnConfirmation:      "Pending Return Confirmation",
	OrderStatusReturnCompleted:                "Return Completed",
	OrderStatusReturnRejected:                 "Return Rejected",
	OrderStatusReplacementConfirmed:           "Replacement Confirmed",
	OrderStatusPendingReplacementConfirmation: "Pending Replacement Confirmation",
	OrderStatusReplacementCompleted:           "Replacement Completed",
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// Label returns the customer-facing display name for the status.
func (s OrderStatus) Label() string {
	if label, ok := orderStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition leaves this status.
func (s OrderStatus) IsTerminal() bool {
	_, ok := terminalOrderStatuses[s]
	return ok
}

// Bucket maps the status onto the dashboard partition used by seller and
// staff views.
func (s OrderStatus) Bucket() OrderBucket {
	switch s {
	case OrderStatusPendingDeliveryConfirmation,
		OrderStatusPendingReturnConfirmation,
		OrderStatusPendingReplacementConfirmation:
		return OrderBucketInProgress
	}
	if s.IsTerminal() {
		return OrderBucketCompleted
	}
	return OrderBucketNeedsAction
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
