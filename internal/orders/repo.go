package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campuskart/campuskart-backend/internal/repo"
	"github.com/campuskart/campuskart-backend/pkg/db/models"
	"github.com/campuskart/campuskart-backend/pkg/enums"
)

type repository struct {
	repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Base.Rebind(tx)}
}

func (r *repository) CreateOrders(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&orders).Error
}

func (r *repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.DB(ctx).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByGroup(ctx context.Context, groupID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB(ctx).
		Where("group_id = ?", groupID).
		Order("created_at ASC, id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) ApplyTransition(ctx context.Context, orderID uuid.UUID, from enums.OrderStatus, change StatusChange) (int64, error) {
	updates := map[string]any{
		"status":     change.To,
		"updated_at": time.Now().UTC(),
	}
	if change.Milestone != "" {
		stampAt := change.StampAt
		if stampAt.IsZero() {
			stampAt = time.Now().UTC()
		}
		updates[change.Milestone] = gorm.Expr("COALESCE("+change.Milestone+", ?)", stampAt)
	}
	if change.ReturnType != nil {
		updates["return_type"] = *change.ReturnType
	}
	if change.ReturnReason != nil {
		updates["return_reason"] = *change.ReturnReason
	}
	if change.RejectionReason != nil {
		updates["rejection_reason"] = *change.RejectionReason
	}
	if change.ExpectedDeliveryAt != nil {
		updates["expected_delivery_at"] = gorm.Expr("COALESCE(expected_delivery_at, ?)", *change.ExpectedDeliveryAt)
	}

	res := r.DB(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) MarkDeliveryFeePaid(ctx context.Context, orderID uuid.UUID) (int64, error) {
	res := r.DB(ctx).
		Model(&models.Order{}).
		Where("id = ? AND is_delivery_fee_paid = ?", orderID, false).
		Updates(map[string]any{
			"is_delivery_fee_paid": true,
			"updated_at":           time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) FindPendingConfirmationBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	var orders []models.Order
	query := r.DB(ctx).
		Where("status = ? AND created_at < ?", enums.OrderStatusPendingConfirmation, cutoff).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
