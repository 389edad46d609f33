package groups

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campuskart/campuskart-backend/internal/repo"
	"github.com/campuskart/campuskart-backend/pkg/db/models"
	"github.com/campuskart/campuskart-backend/pkg/enums"
	"github.com/campuskart/campuskart-backend/pkg/pagination"
)

// ListFilter narrows a group listing. UserID selects the buyer's groups,
// SellerID the groups the seller participates in, and Bucket keeps only
// groups whose rolled-up state falls in that partition. When SellerID is
// set, the rollup covers the seller's own member orders only.
type ListFilter struct {
	UserID   *uuid.UUID
	SellerID *uuid.UUID
	Bucket   *enums.OrderBucket
}

// Repository reads order rows grouped by group_id.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

const memberCountIn = "SUM(CASE WHEN status IN ? THEN 1 ELSE 0 END)"

type havingClause struct {
	expr string
	args []any
}

// bucketHaving translates a bucket filter into HAVING conditions over the
// grouped member statuses. A group needs action as soon as one member does;
// it is completed only when every member reached a terminal status.
func bucketHaving(bucket *enums.OrderBucket) []havingClause {
	if bucket == nil {
		return nil
	}
	needsAction := enums.OrderBucketNeedsAction.Statuses()
	inProgress := enums.OrderBucketInProgress.Statuses()
	switch *bucket {
	case enums.OrderBucketNeedsAction:
		return []havingClause{
			{expr: memberCountIn + " > 0", args: []any{needsAction}},
		}
	case enums.OrderBucketInProgress:
		return []havingClause{
			{expr: memberCountIn + " = 0", args: []any{needsAction}},
			{expr: memberCountIn + " > 0", args: []any{inProgress}},
		}
	case enums.OrderBucketCompleted:
		return []havingClause{
			{expr: memberCountIn + " = 0", args: []any{needsAction}},
			{expr: memberCountIn + " = 0", args: []any{inProgress}},
		}
	}
	return nil
}

// ListGroupIDs pages over group ids ordered by placement time, newest first.
// Placement is MIN(created_at) over the filtered members, so a group keeps
// its listing position while its members change status; the cursor compares
// against the same aggregate.
func (r *Repository) ListGroupIDs(ctx context.Context, filter ListFilter, limit int, cursor *pagination.Cursor) ([]uuid.UUID, error) {
	query := r.DB(ctx).
		Model(&models.Order{}).
		Select("group_id")

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}

	query = query.Group("group_id")
	for _, clause := range bucketHaving(filter.Bucket) {
		query = query.Having(clause.expr, clause.args...)
	}
	if cursor != nil {
		query = query.Having(
			"(MIN(created_at) < ?) OR (MIN(created_at) = ? AND group_id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var ids []uuid.UUID
	err := query.
		Order("MIN(created_at) DESC").
		Order("group_id DESC").
		Limit(limit).
		Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// FindMembersByGroups loads every member order of the given groups in one
// read, keyed by group id. Members are ordered oldest first within a group.
func (r *Repository) FindMembersByGroups(ctx context.Context, groupIDs []uuid.UUID) (map[uuid.UUID][]models.Order, error) {
	members := make(map[uuid.UUID][]models.Order, len(groupIDs))
	if len(groupIDs) == 0 {
		return members, nil
	}

	var rows []models.Order
	err := r.DB(ctx).
		Where("group_id IN ?", groupIDs).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		members[row.GroupID] = append(members[row.GroupID], row)
	}
	return members, nil
}

// FindGroupMembers returns every order in one group, oldest first.
func (r *Repository) FindGroupMembers(ctx context.Context, groupID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.DB(ctx).
		Where("group_id = ?", groupID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
