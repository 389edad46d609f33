package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/campuskart/campuskart-backend/internal/orders"
	"github.com/campuskart/campuskart-backend/pkg/db/models"
	"github.com/campuskart/campuskart-backend/pkg/deliveryfee"
	"github.com/campuskart/campuskart-backend/pkg/enums"
	pkgerrors "github.com/campuskart/campuskart-backend/pkg/errors"
	"github.com/campuskart/campuskart-backend/pkg/outbox"
	"github.com/campuskart/campuskart-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type feeQuoter interface {
	Quote(ctx context.Context, kind enums.DeliveryChargeKind, subtotal decimal.Decimal) (deliveryfee.Quote, error)
}

// Service executes checkout orchestration: one request becomes a group of
// per-line orders created atomically with the group-created event.
type Service interface {
	Execute(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*CheckoutResult, error)
}

type service struct {
	tx         txRunner
	ordersRepo orders.Repository
	fees       feeQuoter
	outbox     outboxPublisher
}

// NewService builds the checkout service.
func NewService(tx txRunner, ordersRepo orders.Repository, fees feeQuoter, publisher outboxPublisher) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if fees == nil {
		return nil, fmt.Errorf("fee quoter required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{tx: tx, ordersRepo: ordersRepo, fees: fees, outbox: publisher}, nil
}

func (s *service) Execute(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*CheckoutResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	productSubtotal, xeroxSubtotal := bucketSubtotals(input.Items)

	var fees FeeBreakdown
	if hasBucket(input.Items, false) {
		quote, err := s.fees.Quote(ctx, enums.DeliveryChargeKindProduct, productSubtotal)
		if err != nil {
			return nil, err
		}
		fees.Product = quote
	}
	if hasBucket(input.Items, true) {
		quote, err := s.fees.Quote(ctx, enums.DeliveryChargeKindXerox, xeroxSubtotal)
		if err != nil {
			return nil, err
		}
		fees.Xerox = quote
	}

	groupID := uuid.New()
	batch := buildOrders(groupID, userID, input, fees)

	var result *CheckoutResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.ordersRepo.WithTx(tx)
		if err := repo.CreateOrders(ctx, batch); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order group")
		}

		created, err := repo.FindByGroup(ctx, groupID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order group")
		}

		if err := s.emitGroupCreated(ctx, tx, groupID, userID, created); err != nil {
			return err
		}

		result = buildResult(groupID, created, fees)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// bucketSubtotals sums item subtotals per fee bucket. Xerox lines form their
// own bucket; every other category shares the product bucket.
func bucketSubtotals(items []ItemInput) (product, xerox decimal.Decimal) {
	for _, item := range items {
		subtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		if item.Category == enums.CategoryXerox {
			xerox = xerox.Add(subtotal)
		} else {
			product = product.Add(subtotal)
		}
	}
	return product, xerox
}

func hasBucket(items []ItemInput, xerox bool) bool {
	for _, item := range items {
		if (item.Category == enums.CategoryXerox) == xerox {
			return true
		}
	}
	return false
}

// buildOrders materializes one order row per item. Each bucket's fee rides on
// the bucket's first line in input order; the rest carry zero, so the group
// fee always equals the sum of member charges.
func buildOrders(groupID, userID uuid.UUID, input CheckoutInput, fees FeeBreakdown) []models.Order {
	productFeeAssigned := false
	xeroxFeeAssigned := false

	batch := make([]models.Order, 0, len(input.Items))
	for _, item := range input.Items {
		charge := decimal.Zero
		if item.Category == enums.CategoryXerox {
			if !xeroxFeeAssigned {
				charge = fees.Xerox.Charge
				xeroxFeeAssigned = true
			}
		} else {
			if !productFeeAssigned {
				charge = fees.Product.Charge
				productFeeAssigned = true
			}
		}

		batch = append(batch, models.Order{
			ID:              uuid.New(),
			GroupID:         groupID,
			UserID:          userID,
			SellerID:        item.SellerID,
			Category:        item.Category,
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			PrintConfig:     item.PrintConfig,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DeliveryCharge:  charge,
			Status:          enums.OrderStatusPendingConfirmation,
			ShippingAddress: input.ShippingAddress,
			Mobile:          input.Mobile,
			AltMobiles:      input.AltMobiles,
		})
	}
	return batch
}

func (s *service) emitGroupCreated(ctx context.Context, tx *gorm.DB, groupID, userID uuid.UUID, created []models.Order) error {
	orderIDs := make([]uuid.UUID, 0, len(created))
	sellerSeen := make(map[uuid.UUID]bool, len(created))
	sellerIDs := make([]uuid.UUID, 0, len(created))
	subtotal := decimal.Zero
	charge := decimal.Zero
	for _, order := range created {
		orderIDs = append(orderIDs, order.ID)
		if !sellerSeen[order.SellerID] {
			sellerSeen[order.SellerID] = true
			sellerIDs = append(sellerIDs, order.SellerID)
		}
		subtotal = subtotal.Add(order.Subtotal())
		charge = charge.Add(order.DeliveryCharge)
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventOrderGroupCreated,
		AggregateType: enums.AggregateOrderGroup,
		AggregateID:   groupID,
		Version:       1,
		Actor:         &outbox.ActorRef{UserID: userID, Role: string(enums.RoleCustomer)},
		Data: payloads.OrderGroupCreatedEvent{
			GroupID:        groupID,
			UserID:         userID,
			OrderIDs:       orderIDs,
			SellerIDs:      sellerIDs,
			Subtotal:       subtotal,
			DeliveryCharge: charge,
		},
	}
	return s.outbox.Emit(ctx, tx, event)
}

func buildResult(groupID uuid.UUID, created []models.Order, fees FeeBreakdown) *CheckoutResult {
	views := make([]orders.OrderView, 0, len(created))
	subtotal := decimal.Zero
	charge := decimal.Zero
	for _, order := range created {
		views = append(views, orders.NewOrderView(order))
		subtotal = subtotal.Add(order.Subtotal())
		charge = charge.Add(order.DeliveryCharge)
	}
	return &CheckoutResult{
		GroupID:        groupID,
		Orders:         views,
		Subtotal:       subtotal,
		DeliveryCharge: charge,
		Total:          subtotal.Add(charge),
		Fees:           fees,
	}
}
