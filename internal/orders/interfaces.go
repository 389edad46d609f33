package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campuskart/campuskart-backend/pkg/db/models"
	"github.com/campuskart/campuskart-backend/pkg/enums"
)

// StatusChange is the write half of one guarded transition: the target
// status plus every column the transition touches. Milestone columns are
// stamped with COALESCE so a replayed transition never rewrites them.
type StatusChange struct {
	To                 enums.OrderStatus
	Milestone          string
	StampAt            time.Time
	ReturnType         *enums.ReturnType
	ReturnReason       *string
	RejectionReason    *string
	ExpectedDeliveryAt *time.Time
}

// Repository defines persistence operations for order rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrders(ctx context.Context, orders []models.Order) error
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindByGroup(ctx context.Context, groupID uuid.UUID) ([]models.Order, error)
	// ApplyTransition performs the conditional write `status = from -> change`
	// and reports how many rows it touched; zero means the stored status no
	// longer matches from.
	ApplyTransition(ctx context.Context, orderID uuid.UUID, from enums.OrderStatus, change StatusChange) (int64, error)
	// MarkDeliveryFeePaid flips is_delivery_fee_paid false -> true and reports
	// whether this call performed the flip.
	MarkDeliveryFeePaid(ctx context.Context, orderID uuid.UUID) (int64, error)
	FindPendingConfirmationBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}
