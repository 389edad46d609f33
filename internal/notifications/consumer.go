package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/campuskart/campuskart-backend/pkg/db/models"
	"github.com/campuskart/campuskart-backend/pkg/enums"
	"github.com/campuskart/campuskart-backend/pkg/logger"
	"github.com/campuskart/campuskart-backend/pkg/outbox"
	"github.com/campuskart/campuskart-backend/pkg/outbox/payloads"
)

const orderNotificationConsumer = "order-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer watches the order event stream and appends buyer-facing
// notification rows. Seller dashboards read order state directly, so only
// the buying user is notified.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  idempotencyChecker
	logg         *logger.Logger
}

// NewConsumer builds an order notification consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager idempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("order subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": string(eventType),
	})

	if !eventType.IsValid() {
		c.logg.Info(logCtx, "skipping unknown event type")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, orderNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	notification, err := mapEvent(eventType, envelope.Data)
	if err != nil {
		// A payload that never decodes won't decode on redelivery either,
		// so it is dropped like an undecodable envelope.
		c.logg.Error(logCtx, "dropping undecodable payload", err)
		return processResult{ack: true}
	}
	if notification == nil {
		c.logg.Info(logCtx, "event carries no notification")
		return processResult{ack: true}
	}

	if err := c.repo.Create(ctx, notification); err != nil {
		c.logg.Error(logCtx, "notification append failed", err)
		_ = c.idempotency.Delete(ctx, orderNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	c.logg.Info(c.logg.WithField(logCtx, "user_id", notification.UserID.String()), "buyer notified")
	return processResult{ack: true}
}

// mapEvent turns one decoded event into the notification row it produces,
// or nil when the event is not buyer-facing.
func mapEvent(eventType enums.OutboxEventType, data json.RawMessage) (*models.Notification, error) {
	switch eventType {
	case enums.EventOrderGroupCreated:
		var payload payloads.OrderGroupCreatedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return groupCreatedNotification(payload), nil
	case enums.EventOrderStatusChanged:
		var payload payloads.OrderStatusChangedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return statusChangedNotification(payload), nil
	case enums.EventOrderReturnRequested:
		var payload payloads.OrderReturnRequestedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return returnRequestedNotification(payload), nil
	case enums.EventGroupFeeSettled:
		var payload payloads.GroupFeeSettledEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return feeSettledNotification(payload), nil
	}
	return nil, nil
}

func groupCreatedNotification(event payloads.OrderGroupCreatedEvent) *models.Notification {
	if event.UserID == uuid.Nil {
		return nil
	}
	items := "items"
	if len(event.OrderIDs) == 1 {
		items = "item"
	}
	total := event.Subtotal.Add(event.DeliveryCharge)
	return &models.Notification{
		UserID:  event.UserID,
		Type:    enums.NotificationTypeOrderPlaced,
		Title:   "Order placed",
		Message: fmt.Sprintf("Your order of %d %s totalling ₹%s has been placed.", len(event.OrderIDs), items, total.StringFixed(2)),
		Link:    groupLink(event.GroupID),
	}
}

func statusChangedNotification(event payloads.OrderStatusChangedEvent) *models.Notification {
	if event.UserID == uuid.Nil {
		return nil
	}
	title, message := statusCopy(event)
	return &models.Notification{
		UserID:  event.UserID,
		Type:    notificationTypeFor(event.ToStatus),
		Title:   title,
		Message: message,
		Link:    groupLink(event.GroupID),
	}
}

// statusCopy picks the buyer-facing wording for a transition. States that
// wait on the buyer ask for an action; everything else reports progress.
func statusCopy(event payloads.OrderStatusChangedEvent) (string, string) {
	switch event.ToStatus {
	case enums.OrderStatusProcessing:
		if event.FromStatus == enums.OrderStatusReplacementConfirmed {
			return "Replacement started", "Your replacement is being prepared."
		}
		return "Order confirmed", "The seller confirmed your order and is preparing it."
	case enums.OrderStatusRejected:
		message := "The seller rejected your order."
		if event.Reason != "" {
			message = fmt.Sprintf("The seller rejected your order. Reason: %s", event.Reason)
		}
		return "Order rejected", message
	case enums.OrderStatusCancelled:
		message := "Your order has been cancelled."
		if event.Reason != "" {
			message = fmt.Sprintf("Your order has been cancelled: %s.", event.Reason)
		}
		return "Order cancelled", message
	case enums.OrderStatusPendingDeliveryConfirmation:
		return "Confirm delivery", "Your order is marked delivered. Please confirm receipt."
	case enums.OrderStatusDelivered:
		return "Order delivered", "Your order has been delivered. Thank you for shopping on campus."
	case enums.OrderStatusReturnApproved:
		return "Return approved", "The seller approved your return. Pickup will be arranged."
	case enums.OrderStatusReturnRejected:
		message := "The seller rejected your return request."
		if event.Reason != "" {
			message = fmt.Sprintf("The seller rejected your return request. Reason: %s", event.Reason)
		}
		return "Return rejected", message
	case enums.OrderStatusPendingReturnConfirmation:
		return "Confirm pickup", "Your return was picked up. Please confirm to complete it."
	case enums.OrderStatusReturnCompleted:
		return "Return completed", "Your return is complete."
	case enums.OrderStatusReplacementConfirmed:
		return "Replacement confirmed", "The seller approved a replacement for your order."
	case enums.OrderStatusPendingReplacementConfirmation:
		return "Confirm replacement", "Your replacement is marked delivered. Please confirm receipt."
	case enums.OrderStatusReplacementCompleted:
		return "Replacement completed", "Your replacement order is complete."
	}
	return "Order update", fmt.Sprintf("Your order is now %s.", event.ToStatus.Label())
}

func returnRequestedNotification(event payloads.OrderReturnRequestedEvent) *models.Notification {
	if event.UserID == uuid.Nil {
		return nil
	}
	kind := "return"
	if event.ReturnType == enums.ReturnTypeReplacement {
		kind = "replacement"
	}
	return &models.Notification{
		UserID:  event.UserID,
		Type:    enums.NotificationTypeReturnUpdate,
		Title:   "Request received",
		Message: fmt.Sprintf("We received your %s request. The seller will review it shortly.", kind),
		Link:    groupLink(event.GroupID),
	}
}

func feeSettledNotification(event payloads.GroupFeeSettledEvent) *models.Notification {
	if event.UserID == uuid.Nil {
		return nil
	}
	return &models.Notification{
		UserID:  event.UserID,
		Type:    enums.NotificationTypeDeliveryFee,
		Title:   "Delivery fee settled",
		Message: fmt.Sprintf("Your delivery fee of ₹%s has been recorded as paid.", event.TotalFee.StringFixed(2)),
		Link:    groupLink(event.GroupID),
	}
}

// notificationTypeFor partitions statuses between order progress and the
// return/replacement sub-workflow.
func notificationTypeFor(status enums.OrderStatus) enums.NotificationType {
	switch status {
	case enums.OrderStatusReturnRequested,
		enums.OrderStatusReturnApproved,
		enums.OrderStatusOutForPickup,
		enums.OrderStatusPickedUp,
		enums.OrderStatusPendingReturnConfirmation,
		enums.OrderStatusReturnCompleted,
		enums.OrderStatusReturnRejected,
		enums.OrderStatusReplacementConfirmed,
		enums.OrderStatusPendingReplacementConfirmation,
		enums.OrderStatusReplacementCompleted:
		return enums.NotificationTypeReturnUpdate
	}
	return enums.NotificationTypeOrderUpdate
}

func groupLink(groupID uuid.UUID) *string {
	link := fmt.Sprintf("/orders/%s", groupID)
	return &link
}
