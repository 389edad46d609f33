package groups

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campuskart/campuskart-backend/internal/orders"
	"github.com/campuskart/campuskart-backend/pkg/db/models"
	"github.com/campuskart/campuskart-backend/pkg/enums"
	pkgerrors "github.com/campuskart/campuskart-backend/pkg/errors"
	"github.com/campuskart/campuskart-backend/pkg/pagination"
)

// groupsRepository is the slice of the repo the service reads.
type groupsRepository interface {
	ListGroupIDs(ctx context.Context, filter ListFilter, limit int, cursor *pagination.Cursor) ([]uuid.UUID, error)
	FindMembersByGroups(ctx context.Context, groupIDs []uuid.UUID) (map[uuid.UUID][]models.Order, error)
	FindGroupMembers(ctx context.Context, groupID uuid.UUID) ([]models.Order, error)
}

// userDirectory resolves buyer profiles for group summaries.
type userDirectory interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}

// sellerDirectory resolves seller profiles for sub-group summaries.
type sellerDirectory interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Seller, error)
}

// Service projects order rows into group dashboards.
type Service interface {
	// GroupDetail returns one group scoped to the viewer: buyers see their
	// own groups in full, sellers see their slice of the group, operators
	// see everything. A group outside the viewer's scope reads as absent.
	GroupDetail(ctx context.Context, groupID uuid.UUID, viewer orders.Actor) (*GroupView, error)
	// ListUserGroups pages over the buyer's groups, newest first.
	ListUserGroups(ctx context.Context, userID uuid.UUID, bucket *enums.OrderBucket, params pagination.Params) (*GroupPage, error)
	// ListSellerGroups pages over groups the seller participates in; views
	// and bucket filtering cover only the seller's own member orders.
	ListSellerGroups(ctx context.Context, sellerID uuid.UUID, bucket *enums.OrderBucket, params pagination.Params) (*GroupPage, error)
	// ListAllGroups pages over every group for operator dashboards.
	ListAllGroups(ctx context.Context, bucket *enums.OrderBucket, params pagination.Params) (*GroupPage, error)
}

type service struct {
	repo    groupsRepository
	users   userDirectory
	sellers sellerDirectory
}

// NewService wires the group read service.
func NewService(repo groupsRepository, users userDirectory, sellers sellerDirectory) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("groups repository is required")
	}
	if users == nil {
		return nil, fmt.Errorf("user directory is required")
	}
	if sellers == nil {
		return nil, fmt.Errorf("seller directory is required")
	}
	return &service{repo: repo, users: users, sellers: sellers}, nil
}

func (s *service) GroupDetail(ctx context.Context, groupID uuid.UUID, viewer orders.Actor) (*GroupView, error) {
	if groupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group id required")
	}
	if viewer.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	members, err := s.repo.FindGroupMembers(ctx, groupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order group")
	}
	members = scopeMembers(members, viewer)
	if len(members) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order group not found")
	}

	users, sellers, err := s.resolveProfiles(ctx, members)
	if err != nil {
		return nil, err
	}
	view := buildGroupView(groupID, members, users, sellers)
	return &view, nil
}

func (s *service) ListUserGroups(ctx context.Context, userID uuid.UUID, bucket *enums.OrderBucket, params pagination.Params) (*GroupPage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return s.listGroups(ctx, ListFilter{UserID: &userID, Bucket: bucket}, params)
}

func (s *service) ListSellerGroups(ctx context.Context, sellerID uuid.UUID, bucket *enums.OrderBucket, params pagination.Params) (*GroupPage, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing")
	}
	return s.listGroups(ctx, ListFilter{SellerID: &sellerID, Bucket: bucket}, params)
}

func (s *service) ListAllGroups(ctx context.Context, bucket *enums.OrderBucket, params pagination.Params) (*GroupPage, error) {
	return s.listGroups(ctx, ListFilter{Bucket: bucket}, params)
}

func (s *service) listGroups(ctx context.Context, filter ListFilter, params pagination.Params) (*GroupPage, error) {
	if filter.Bucket != nil && !filter.Bucket.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown bucket %q", *filter.Bucket))
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "malformed page cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	ids, err := s.repo.ListGroupIDs(ctx, filter, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order groups")
	}
	hasMore := len(ids) > limit
	if hasMore {
		ids = ids[:limit]
	}

	page := &GroupPage{Groups: []GroupView{}}
	if len(ids) == 0 {
		return page, nil
	}

	membersByGroup, err := s.repo.FindMembersByGroups(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group members")
	}
	if filter.SellerID != nil {
		for groupID, members := range membersByGroup {
			membersByGroup[groupID] = filterBySeller(members, *filter.SellerID)
		}
	}

	memberSets := make([][]models.Order, 0, len(ids))
	for _, id := range ids {
		memberSets = append(memberSets, membersByGroup[id])
	}
	users, sellers, err := s.resolveProfiles(ctx, memberSets...)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		page.Groups = append(page.Groups, buildGroupView(id, membersByGroup[id], users, sellers))
	}
	if hasMore {
		lastID := ids[len(ids)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: placementOf(membersByGroup[lastID]),
			ID:        lastID,
		})
	}
	return page, nil
}

// placementOf is the listing timestamp of a member set: the earliest
// creation time. It must agree with the aggregate the id listing orders by.
func placementOf(members []models.Order) time.Time {
	var placed time.Time
	for i, member := range members {
		if i == 0 || member.CreatedAt.Before(placed) {
			placed = member.CreatedAt
		}
	}
	return placed
}

// resolveProfiles batches the buyer and seller lookups referenced by the
// member sets. Missing profiles are tolerated; views degrade to bare ids.
func (s *service) resolveProfiles(ctx context.Context, memberSets ...[]models.Order) (map[uuid.UUID]models.User, map[uuid.UUID]models.Seller, error) {
	var userIDs, sellerIDs []uuid.UUID
	seenUsers := make(map[uuid.UUID]struct{})
	seenSellers := make(map[uuid.UUID]struct{})
	for _, set := range memberSets {
		for _, member := range set {
			if _, ok := seenUsers[member.UserID]; !ok {
				seenUsers[member.UserID] = struct{}{}
				userIDs = append(userIDs, member.UserID)
			}
			if _, ok := seenSellers[member.SellerID]; !ok {
				seenSellers[member.SellerID] = struct{}{}
				sellerIDs = append(sellerIDs, member.SellerID)
			}
		}
	}

	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer profiles")
	}
	sellers, err := s.sellers.FindByIDs(ctx, sellerIDs)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller profiles")
	}
	return users, sellers, nil
}

// scopeMembers narrows a group's members to what the viewer may see. An
// empty result means the group reads as absent for this viewer.
func scopeMembers(members []models.Order, viewer orders.Actor) []models.Order {
	if viewer.Role.IsOperator() {
		return members
	}
	if viewer.Role == enums.RoleSeller {
		if viewer.SellerID == nil {
			return nil
		}
		return filterBySeller(members, *viewer.SellerID)
	}
	if len(members) > 0 && members[0].UserID == viewer.UserID {
		return members
	}
	return nil
}

func filterBySeller(members []models.Order, sellerID uuid.UUID) []models.Order {
	scoped := make([]models.Order, 0, len(members))
	for _, member := range members {
		if member.SellerID == sellerID {
			scoped = append(scoped, member)
		}
	}
	return scoped
}
