package deliveryrules

import (
	"context"

	"gorm.io/gorm"

	"github.com/campuskart/campuskart-backend/internal/repo"
	"github.com/campuskart/campuskart-backend/pkg/db/models"
	"github.com/campuskart/campuskart-backend/pkg/enums"
)

// Repository exposes delivery-charge rule persistence.
type Repository struct {
	repo.Base
}

// NewRepository constructs a rule repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListByKind returns the rule set for a kind in evaluation order.
func (r *Repository) ListByKind(ctx context.Context, kind enums.DeliveryChargeKind) ([]models.DeliveryChargeRule, error) {
	var rows []models.DeliveryChargeRule
	err := r.DB(ctx).
		Where("kind = ?", kind).
		Order("position ASC").Order("from_amount ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReplaceForKind swaps the entire rule set for a kind inside the caller's
// transaction, so readers never observe a half-replaced set.
func (r *Repository) ReplaceForKind(ctx context.Context, tx *gorm.DB, kind enums.DeliveryChargeKind, rules []models.DeliveryChargeRule) error {
	db := r.DB(nil)
	if tx != nil {
		db = tx
	}
	if err := db.WithContext(ctx).
		Where("kind = ?", kind).
		Delete(&models.DeliveryChargeRule{}).Error; err != nil {
		return err
	}
	if len(rules) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&rules).Error
}
