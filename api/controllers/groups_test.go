package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/campuskart/campuskart-backend/api/middleware"
	"github.com/campuskart/campuskart-backend/internal/groups"
	internalorders "github.com/campuskart/campuskart-backend/internal/orders"
	"github.com/campuskart/campuskart-backend/pkg/enums"
	"github.com/campuskart/campuskart-backend/pkg/pagination"
)

type stubGroupsService struct {
	detail     func(ctx context.Context, groupID uuid.UUID, viewer internalorders.Actor) (*groups.GroupView, error)
	listUser   func(ctx context.Context, userID uuid.UUID, bucket *enums.OrderBucket, params pagination.Params) (*groups.GroupPage, error)
	listSeller func(ctx context.Context, sellerID uuid.UUID, bucket *enums.OrderBucket, params pagination.Params) (*groups.GroupPage, error)
	listAll    func(ctx context.Context, bucket *enums.OrderBucket, params pagination.Params) (*groups.GroupPage, error)
}

func (s *stubGroupsService) GroupDetail(ctx context.Context, groupID uuid.UUID, viewer internalorders.Actor) (*groups.GroupView, error) {
	if s.detail != nil {
		return s.detail(ctx, groupID, viewer)
	}
	return &groups.GroupView{}, nil
}

func (s *stubGroupsService) ListUserGroups(ctx context.Context, userID uuid.UUID, bucket *enums.OrderBucket, params pagination.Params) (*groups.GroupPage, error) {
	if s.listUser != nil {
		return s.listUser(ctx, userID, bucket, params)
	}
	return &groups.GroupPage{}, nil
}

func (s *stubGroupsService) ListSellerGroups(ctx context.Context, sellerID uuid.UUID, bucket *enums.OrderBucket, params pagination.Params) (*groups.GroupPage, error) {
	if s.listSeller != nil {
		return s.listSeller(ctx, sellerID, bucket, params)
	}
	return &groups.GroupPage{}, nil
}

func (s *stubGroupsService) ListAllGroups(ctx context.Context, bucket *enums.OrderBucket, params pagination.Params) (*groups.GroupPage, error) {
	if s.listAll != nil {
		return s.listAll(ctx, bucket, params)
	}
	return &groups.GroupPage{}, nil
}

func TestListMyGroupsForwardsBucketAndPaging(t *testing.T) {
	userID := uuid.New()
	svc := &stubGroupsService{
		listUser: func(ctx context.Context, uid uuid.UUID, bucket *enums.OrderBucket, params pagination.Params) (*groups.GroupPage, error) {
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			if bucket == nil || *bucket != enums.OrderBucketInProgress {
				t.Fatalf("bucket not parsed")
			}
			if params.Limit != 5 {
				t.Fatalf("unexpected limit %d", params.Limit)
			}
			if params.Cursor != "abc" {
				t.Fatalf("unexpected cursor %q", params.Cursor)
			}
			return &groups.GroupPage{NextCursor: "next"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/order-groups?bucket=in_progress&limit=5&cursor=abc", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()
	ListMyGroups(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data groups.GroupPage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.NextCursor != "next" {
		t.Fatalf("next cursor missing")
	}
}

func TestListMyGroupsRejectsUnknownBucket(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/order-groups?bucket=archived", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	ListMyGroups(&stubGroupsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListSellerGroupsRequiresSellerContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/seller/order-groups", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	ListSellerGroups(&stubGroupsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestListSellerGroupsUsesSellerID(t *testing.T) {
	sellerID := uuid.New()
	called := false
	svc := &stubGroupsService{
		listSeller: func(ctx context.Context, sid uuid.UUID, bucket *enums.OrderBucket, params pagination.Params) (*groups.GroupPage, error) {
			called = true
			if sid != sellerID {
				t.Fatalf("unexpected seller %s", sid)
			}
			if bucket != nil {
				t.Fatal("expected no bucket filter")
			}
			return &groups.GroupPage{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/seller/order-groups", nil)
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithSellerID(ctx, sellerID.String())
	req = req.WithContext(ctx)
	resp := httptest.NewRecorder()
	ListSellerGroups(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestGroupDetailPassesViewer(t *testing.T) {
	groupID := uuid.New()
	userID := uuid.New()
	sellerID := uuid.New()
	svc := &stubGroupsService{
		detail: func(ctx context.Context, gid uuid.UUID, viewer internalorders.Actor) (*groups.GroupView, error) {
			if gid != groupID {
				t.Fatalf("unexpected group %s", gid)
			}
			if viewer.UserID != userID {
				t.Fatalf("unexpected viewer %s", viewer.UserID)
			}
			if viewer.Role != enums.RoleSeller {
				t.Fatalf("unexpected role %s", viewer.Role)
			}
			if viewer.SellerID == nil || *viewer.SellerID != sellerID {
				t.Fatalf("seller id not propagated")
			}
			return &groups.GroupView{GroupID: groupID}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/order-groups/"+groupID.String(), nil)
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(enums.RoleSeller))
	ctx = middleware.WithSellerID(ctx, sellerID.String())
	req = req.WithContext(ctx)
	req = addRouteParam(req, "groupId", groupID.String())

	resp := httptest.NewRecorder()
	GroupDetail(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data groups.GroupView `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.GroupID != groupID {
		t.Fatalf("group view missing")
	}
}

func TestGroupDetailRejectsMalformedID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/order-groups/oops", nil)
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithRole(ctx, string(enums.RoleCustomer))
	req = req.WithContext(ctx)
	req = addRouteParam(req, "groupId", "oops")

	resp := httptest.NewRecorder()
	GroupDetail(&stubGroupsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
