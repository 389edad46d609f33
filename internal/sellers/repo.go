package sellers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campuskart/campuskart-backend/internal/repo"
	"github.com/campuskart/campuskart-backend/pkg/db/models"
)

// Repository reads the seller projection maintained by the onboarding
// service.
type Repository struct {
	repo.Base
}

// NewRepository constructs a sellers repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByID loads a seller by UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Seller, error) {
	var seller models.Seller
	if err := r.DB(ctx).First(&seller, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &seller, nil
}

// FindByIDs loads a batch of sellers keyed by id. Missing ids are simply
// absent from the result.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Seller, error) {
	result := make(map[uuid.UUID]models.Seller, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []models.Seller
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ID] = row
	}
	return result, nil
}
