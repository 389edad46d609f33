package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/campuskart/campuskart-backend/pkg/db/models"
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
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service owns every status-changing order operation. All writes go through
// the conditional-update guard; a stale caller is refused, never overwritten.
type Service interface {
	Confirm(ctx context.Context, input DecisionInput) (*OrderView, error)
	Reject(ctx context.Context, input RejectInput) (*OrderView, error)
	Advance(ctx context.Context, input AdvanceInput) (*OrderView, error)
	Cancel(ctx context.Context, input DecisionInput) (*OrderView, error)
	RequestReturn(ctx context.Context, input ReturnRequestInput) (*OrderView, error)
	ApproveReturn(ctx context.Context, input DecisionInput) (*OrderView, error)
	RejectReturn(ctx context.Context, input RejectInput) (*OrderView, error)
	ApproveReplacement(ctx context.Context, input DecisionInput) (*OrderView, error)
	MarkGroupDeliveryFeePaid(ctx context.Context, input FeeSettlementInput) (*FeeSettlementResult, error)
	CancelStalePending(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outboxSvc}, nil
}

func (s *service) Confirm(ctx context.Context, input DecisionInput) (*OrderView, error) {
	if err := validateActor(input.OrderID, input.Actor); err != nil {
		return nil, err
	}

	change := StatusChange{
		To:        enums.OrderStatusProcessing,
		Milestone: "confirmed_at",
		StampAt:   time.Now().UTC(),
	}
	return s.runGuarded(ctx, input.OrderID, enums.OrderStatusPendingConfirmation, change, input.Actor, SideSeller, "")
}

func (s *service) Reject(ctx context.Context, input RejectInput) (*OrderView, error) {
	if err := validateActor(input.OrderID, input.Actor); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason required")
	}

	change := StatusChange{
		To:              enums.OrderStatusRejected,
		RejectionReason: &reason,
	}
	return s.runGuarded(ctx, input.OrderID, enums.OrderStatusPendingConfirmation, change, input.Actor, SideSeller, reason)
}

func (s *service) Advance(ctx context.Context, input AdvanceInput) (*OrderView, error) {
	if err := validateActor(input.OrderID, input.Actor); err != nil {
		return nil, err
	}
	if !input.BelievedStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", input.BelievedStatus))
	}

	var view *OrderView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}

		step, ok := Successor(input.BelievedStatus, order.ReturnType)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("no forward transition from %s", input.BelievedStatus))
		}
		if err := authorize(order, input.Actor, step.Side); err != nil {
			return err
		}
		if input.ExpectedDeliveryAt != nil && step.Next != enums.OrderStatusShipped {
			return pkgerrors.New(pkgerrors.CodeValidation, "delivery estimate only accepted when shipping")
		}

		change := StatusChange{
			To:                 step.Next,
			Milestone:          step.Milestone,
			StampAt:            time.Now().UTC(),
			ExpectedDeliveryAt: input.ExpectedDeliveryAt,
		}
		fresh, applied, err := s.applyGuarded(ctx, tx, input.OrderID, input.BelievedStatus, change)
		if err != nil {
			return err
		}
		if applied {
			if err := s.emitStatusChanged(ctx, tx, fresh, input.BelievedStatus, input.Actor, ""); err != nil {
				return err
			}
		}
		v := NewOrderView(*fresh)
		view = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) Cancel(ctx context.Context, input DecisionInput) (*OrderView, error) {
	if err := validateActor(input.OrderID, input.Actor); err != nil {
		return nil, err
	}

	change := StatusChange{To: enums.OrderStatusCancelled}
	return s.runGuarded(ctx, input.OrderID, enums.OrderStatusPendingConfirmation, change, input.Actor, SideCustomer, "cancelled by customer")
}

func (s *service) RequestReturn(ctx context.Context, input ReturnRequestInput) (*OrderView, error) {
	if err := validateActor(input.OrderID, input.Actor); err != nil {
		return nil, err
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown return type %q", input.Type))
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return reason required")
	}

	returnType := input.Type
	now := time.Now().UTC()

	var view *OrderView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if err := authorize(order, input.Actor, SideCustomer); err != nil {
			return err
		}
		if order.ReturnType != nil {
			// Replay of an accepted request is a no-op; any other follow-up
			// request is refused, the type is set once and never cleared.
			if order.Status == enums.OrderStatusReturnRequested && *order.ReturnType == returnType {
				v := NewOrderView(*order)
				view = &v
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeValidation, "return already requested")
		}

		change := StatusChange{
			To:           enums.OrderStatusReturnRequested,
			Milestone:    "return_requested_at",
			StampAt:      now,
			ReturnType:   &returnType,
			ReturnReason: &reason,
		}
		fresh, applied, err := s.applyGuarded(ctx, tx, input.OrderID, enums.OrderStatusDelivered, change)
		if err != nil {
			return err
		}
		if applied {
			event := outbox.DomainEvent{
				EventType:     enums.EventOrderReturnRequested,
				AggregateType: enums.AggregateOrder,
				AggregateID:   fresh.ID,
				Version:       1,
				Actor:         eventActor(input.Actor),
				Data: payloads.OrderReturnRequestedEvent{
					OrderID:     fresh.ID,
					GroupID:     fresh.GroupID,
					UserID:      fresh.UserID,
					SellerID:    fresh.SellerID,
					ReturnType:  returnType,
					Reason:      reason,
					RequestedAt: now,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}
		}
		v := NewOrderView(*fresh)
		view = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) ApproveReturn(ctx context.Context, input DecisionInput) (*OrderView, error) {
	if err := validateActor(input.OrderID, input.Actor); err != nil {
		return nil, err
	}
	return s.decideReturn(ctx, input, enums.ReturnTypeRefund, StatusChange{
		To:        enums.OrderStatusReturnApproved,
		Milestone: "return_approved_at",
		StampAt:   time.Now().UTC(),
	}, "")
}

func (s *service) ApproveReplacement(ctx context.Context, input DecisionInput) (*OrderView, error) {
	if err := validateActor(input.OrderID, input.Actor); err != nil {
		return nil, err
	}
	return s.decideReturn(ctx, input, enums.ReturnTypeReplacement, StatusChange{
		To:        enums.OrderStatusReplacementConfirmed,
		Milestone: "replacement_confirmed_at",
		StampAt:   time.Now().UTC(),
	}, "")
}

func (s *service) RejectReturn(ctx context.Context, input RejectInput) (*OrderView, error) {
	if err := validateActor(input.OrderID, input.Actor); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason required")
	}

	var view *OrderView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if err := authorize(order, input.Actor, SideSeller); err != nil {
			return err
		}

		change := StatusChange{
			To:              enums.OrderStatusReturnRejected,
			RejectionReason: &reason,
		}
		fresh, applied, err := s.applyGuarded(ctx, tx, input.OrderID, enums.OrderStatusReturnRequested, change)
		if err != nil {
			return err
		}
		if applied {
			if err := s.emitStatusChanged(ctx, tx, fresh, enums.OrderStatusReturnRequested, input.Actor, reason); err != nil {
				return err
			}
		}
		v := NewOrderView(*fresh)
		view = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) decideReturn(ctx context.Context, input DecisionInput, wantType enums.ReturnType, change StatusChange, reason string) (*OrderView, error) {
	var view *OrderView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if err := authorize(order, input.Actor, SideSeller); err != nil {
			return err
		}
		if order.ReturnType == nil || *order.ReturnType != wantType {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("order is not on the %s path", wantType))
		}

		fresh, applied, err := s.applyGuarded(ctx, tx, input.OrderID, enums.OrderStatusReturnRequested, change)
		if err != nil {
			return err
		}
		if applied {
			if err := s.emitStatusChanged(ctx, tx, fresh, enums.OrderStatusReturnRequested, input.Actor, reason); err != nil {
				return err
			}
		}
		v := NewOrderView(*fresh)
		view = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) MarkGroupDeliveryFeePaid(ctx context.Context, input FeeSettlementInput) (*FeeSettlementResult, error) {
	if input.GroupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Actor.Role.IsOperator() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "fee settlement is restricted to staff")
	}

	members, err := s.repo.FindByGroup(ctx, input.GroupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order group")
	}
	if len(members) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order group not found")
	}

	result := &FeeSettlementResult{
		GroupID:     input.GroupID,
		Updated:     []uuid.UUID{},
		AlreadyPaid: []uuid.UUID{},
	}
	var memberErrs error

	// Sequential per-member conditional writes, each idempotent. A retry
	// after a partial failure settles only the remainder.
	for _, member := range members {
		result.TotalFee = result.TotalFee.Add(member.DeliveryCharge)
		rows, err := s.repo.MarkDeliveryFeePaid(ctx, member.ID)
		if err != nil {
			result.Failed = append(result.Failed, member.ID)
			memberErrs = multierr.Append(memberErrs, fmt.Errorf("order %s: %w", member.ID, err))
			continue
		}
		if rows > 0 {
			result.Updated = append(result.Updated, member.ID)
		} else {
			result.AlreadyPaid = append(result.AlreadyPaid, member.ID)
		}
	}

	if memberErrs != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, memberErrs, "settle group delivery fee").
			WithDetails(result)
	}
	if len(result.Updated) == 0 {
		return result, nil
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventGroupFeeSettled,
		AggregateType: enums.AggregateOrderGroup,
		AggregateID:   input.GroupID,
		Version:       1,
		Actor:         eventActor(input.Actor),
		Data: payloads.GroupFeeSettledEvent{
			GroupID:          input.GroupID,
			UserID:           members[0].UserID,
			SettledOrderIDs:  result.Updated,
			AlreadyPaidCount: len(result.AlreadyPaid),
			TotalFee:         result.TotalFee,
		},
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.outbox.EmitIfNotExists(ctx, tx, event)
	})
	if err != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record fee settlement event")
	}
	return result, nil
}

func (s *service) CancelStalePending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	stale, err := s.repo.FindPendingConfirmationBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stale pending orders")
	}

	cancelled := 0
	var sweepErrs error
	for _, order := range stale {
		order := order
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			change := StatusChange{To: enums.OrderStatusCancelled}
			fresh, applied, err := s.applyGuarded(ctx, tx, order.ID, enums.OrderStatusPendingConfirmation, change)
			if err != nil {
				// A conflict means the seller acted between the scan and the
				// write; the sweep leaves that order alone.
				if pkgerrors.Is(err, pkgerrors.CodeStateConflict) || pkgerrors.Is(err, pkgerrors.CodeNotFound) {
					return nil
				}
				return err
			}
			if !applied {
				return nil
			}
			cancelled++
			event := outbox.DomainEvent{
				EventType:     enums.EventOrderStatusChanged,
				AggregateType: enums.AggregateOrder,
				AggregateID:   fresh.ID,
				Version:       1,
				Actor:         &outbox.ActorRef{Role: "system"},
				Data: payloads.OrderStatusChangedEvent{
					OrderID:    fresh.ID,
					GroupID:    fresh.GroupID,
					UserID:     fresh.UserID,
					SellerID:   fresh.SellerID,
					FromStatus: enums.OrderStatusPendingConfirmation,
					ToStatus:   enums.OrderStatusCancelled,
					Reason:     "confirmation window expired",
				},
			}
			return s.outbox.Emit(ctx, tx, event)
		})
		if err != nil {
			sweepErrs = multierr.Append(sweepErrs, fmt.Errorf("order %s: %w", order.ID, err))
		}
	}
	return cancelled, sweepErrs
}

// runGuarded handles the operations whose believed status and successor are
// fixed by the operation itself rather than supplied by the caller.
func (s *service) runGuarded(ctx context.Context, orderID uuid.UUID, believed enums.OrderStatus, change StatusChange, actor Actor, side Side, reason string) (*OrderView, error) {
	var view *OrderView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if err := authorize(order, actor, side); err != nil {
			return err
		}

		fresh, applied, err := s.applyGuarded(ctx, tx, orderID, believed, change)
		if err != nil {
			return err
		}
		if applied {
			if err := s.emitStatusChanged(ctx, tx, fresh, believed, actor, reason); err != nil {
				return err
			}
		}
		v := NewOrderView(*fresh)
		view = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// applyGuarded performs the conditional write and classifies the outcome:
// applied, idempotent replay (stored status already equals the target), or
// state conflict carrying the actual status.
func (s *service) applyGuarded(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, believed enums.OrderStatus, change StatusChange) (fresh *models.Order, applied bool, err error) {
	repo := s.repo.WithTx(tx)
	rows, err := repo.ApplyTransition(ctx, orderID, believed, change)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply status transition")
	}

	order, err := loadOrder(ctx, repo, orderID)
	if err != nil {
		return nil, false, err
	}
	if rows > 0 {
		return order, true, nil
	}
	if order.Status == change.To {
		return order, false, nil
	}
	return nil, false, pkgerrors.New(pkgerrors.CodeStateConflict, "order status has changed").
		WithDetails(StatusConflictDetails{ActualStatus: order.Status, BelievedStatus: believed})
}

func (s *service) emitStatusChanged(ctx context.Context, tx *gorm.DB, order *models.Order, from enums.OrderStatus, actor Actor, reason string) error {
	event := outbox.DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Actor:         eventActor(actor),
		Data: payloads.OrderStatusChangedEvent{
			OrderID:    order.ID,
			GroupID:    order.GroupID,
			UserID:     order.UserID,
			SellerID:   order.SellerID,
			FromStatus: from,
			ToStatus:   order.Status,
			Reason:     reason,
		},
	}
	return s.outbox.Emit(ctx, tx, event)
}

func validateActor(orderID uuid.UUID, actor Actor) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return nil
}

func authorize(order *models.Order, actor Actor, side Side) error {
	if actor.Role.IsOperator() {
		return nil
	}
	switch side {
	case SideSeller:
		if actor.Role == enums.RoleSeller && actor.SellerID != nil && *actor.SellerID == order.SellerID {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to seller")
	case SideCustomer:
		if order.UserID == actor.UserID {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
}

func loadOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func eventActor(actor Actor) *outbox.ActorRef {
	ref := &outbox.ActorRef{
		UserID: actor.UserID,
		Role:   string(actor.Role),
	}
	if actor.SellerID != nil {
		sellerID := *actor.SellerID
		ref.SellerID = &sellerID
	}
	return ref
}
