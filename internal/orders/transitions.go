package orders

import (
	"github.com/campuskart/campuskart-backend/pkg/enums"
)

// Side marks which side of the marketplace drives a transition. Staff and
// admin actors may drive either side.
type Side int

const (
	SideSeller Side = iota
	SideCustomer
)

// Step is one legal move out of a status: the successor, the milestone column
// stamped on success (empty for the waiting states) and the driving side.
type Step struct {
	Next      enums.OrderStatus
	Milestone string
	Side      Side
}

// Successor computes the deterministic next step for (status, returnType).
// Statuses whose exits are dedicated decision operations (confirmation,
// rejection, return approval) and terminal statuses have no successor here.
func Successor(current enums.OrderStatus, returnType *enums.ReturnType) (Step, bool) {
	switch current {
	case enums.OrderStatusPendingConfirmation:
		return Step{Next: enums.OrderStatusProcessing, Milestone: "confirmed_at", Side: SideSeller}, true
	case enums.OrderStatusProcessing:
		return Step{Next: enums.OrderStatusPacked, Milestone: "packed_at", Side: SideSeller}, true
	case enums.OrderStatusPacked:
		return Step{Next: enums.OrderStatusShipped, Milestone: "shipped_at", Side: SideSeller}, true
	case enums.OrderStatusShipped:
		return Step{Next: enums.OrderStatusOutForDelivery, Milestone: "out_for_delivery_at", Side: SideSeller}, true
	case enums.OrderStatusOutForDelivery:
		if returnType != nil && *returnType == enums.ReturnTypeReplacement {
			return Step{Next: enums.OrderStatusPendingReplacementConfirmation, Side: SideSeller}, true
		}
		return Step{Next: enums.OrderStatusPendingDeliveryConfirmation, Side: SideSeller}, true
	case enums.OrderStatusPendingDeliveryConfirmation:
		return Step{Next: enums.OrderStatusDelivered, Milestone: "delivered_at", Side: SideCustomer}, true
	case enums.OrderStatusPendingReplacementConfirmation:
		return Step{Next: enums.OrderStatusReplacementCompleted, Milestone: "replacement_completed_at", Side: SideCustomer}, true
	case enums.OrderStatusReturnApproved:
		return Step{Next: enums.OrderStatusOutForPickup, Milestone: "out_for_pickup_at", Side: SideSeller}, true
	case enums.OrderStatusOutForPickup:
		return Step{Next: enums.OrderStatusPickedUp, Milestone: "picked_up_at", Side: SideSeller}, true
	case enums.OrderStatusPickedUp:
		return Step{Next: enums.OrderStatusPendingReturnConfirmation, Side: SideSeller}, true
	case enums.OrderStatusPendingReturnConfirmation:
		return Step{Next: enums.OrderStatusReturnCompleted, Milestone: "return_completed_at", Side: SideCustomer}, true
	case enums.OrderStatusReplacementConfirmed:
		return Step{Next: enums.OrderStatusProcessing, Milestone: "confirmed_at", Side: SideSeller}, true
	default:
		return Step{}, false
	}
}
