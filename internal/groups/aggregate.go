package groups

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campuskart/campuskart-backend/internal/orders"
	"github.com/campuskart/campuskart-backend/pkg/db/models"
	"github.com/campuskart/campuskart-backend/pkg/enums"
)

// buildGroupView projects the member orders of one group into the aggregated
// dashboard shape. Profiles are optional; an unresolved id degrades to a
// bare-id summary rather than failing the view.
func buildGroupView(groupID uuid.UUID, members []models.Order, customers map[uuid.UUID]models.User, sellers map[uuid.UUID]models.Seller) GroupView {
	view := GroupView{
		GroupID:         groupID,
		ProductSubtotal: decimal.Zero,
		XeroxSubtotal:   decimal.Zero,
		DeliveryCharge:  decimal.Zero,
		FeePaid:         len(members) > 0,
	}
	if len(members) == 0 {
		view.Bucket = enums.OrderBucketCompleted
		return view
	}

	first := members[0]
	view.PlacedAt = first.CreatedAt
	view.ShippingAddress = first.ShippingAddress
	view.Mobile = first.Mobile
	view.Customer = CustomerSummary{ID: first.UserID}
	if customer, ok := customers[first.UserID]; ok {
		view.Customer.Name = customer.Name
		view.Customer.Email = customer.Email
		view.Customer.Mobile = customer.Mobile
	}

	bySeller := make(map[uuid.UUID][]models.Order)
	sellerOrder := make([]uuid.UUID, 0)
	for _, member := range members {
		if member.CreatedAt.Before(view.PlacedAt) {
			view.PlacedAt = member.CreatedAt
		}
		if _, seen := bySeller[member.SellerID]; !seen {
			sellerOrder = append(sellerOrder, member.SellerID)
		}
		bySeller[member.SellerID] = append(bySeller[member.SellerID], member)

		subtotal := member.Subtotal()
		if member.Category == enums.CategoryXerox {
			view.XeroxSubtotal = view.XeroxSubtotal.Add(subtotal)
		} else {
			view.ProductSubtotal = view.ProductSubtotal.Add(subtotal)
		}
		view.DeliveryCharge = view.DeliveryCharge.Add(member.DeliveryCharge)
		view.FeePaid = view.FeePaid && member.IsDeliveryFeePaid
	}

	view.Sellers = make([]SellerSubGroup, 0, len(sellerOrder))
	for _, sellerID := range sellerOrder {
		view.Sellers = append(view.Sellers, buildSubGroup(sellerID, bySeller[sellerID], sellers))
	}

	view.Subtotal = view.ProductSubtotal.Add(view.XeroxSubtotal)
	view.Total = view.Subtotal.Add(view.DeliveryCharge)
	view.Bucket = rollupBucket(members)
	return view
}

func buildSubGroup(sellerID uuid.UUID, members []models.Order, sellers map[uuid.UUID]models.Seller) SellerSubGroup {
	sub := SellerSubGroup{
		Seller:   SellerSummary{ID: sellerID},
		Orders:   make([]orders.OrderView, 0, len(members)),
		Subtotal: decimal.Zero,
	}
	if seller, ok := sellers[sellerID]; ok {
		sub.Seller.Name = seller.Name
		sub.Seller.CampusLocation = seller.CampusLocation
	}

	sort.SliceStable(members, func(i, j int) bool {
		return members[i].CreatedAt.Before(members[j].CreatedAt)
	})
	for _, member := range members {
		sub.Orders = append(sub.Orders, orders.NewOrderView(member))
		sub.Subtotal = sub.Subtotal.Add(member.Subtotal())
	}
	sub.Bucket = rollupBucket(members)
	return sub
}

// rollupBucket folds member buckets into one: needs-action dominates, a group
// is completed only when every member is terminal, anything else is
// in-progress.
func rollupBucket(members []models.Order) enums.OrderBucket {
	if len(members) == 0 {
		return enums.OrderBucketCompleted
	}
	allCompleted := true
	for _, member := range members {
		switch member.Status.Bucket() {
		case enums.OrderBucketNeedsAction:
			return enums.OrderBucketNeedsAction
		case enums.OrderBucketInProgress:
			allCompleted = false
		}
	}
	if allCompleted {
		return enums.OrderBucketCompleted
	}
	return enums.OrderBucketInProgress
}
