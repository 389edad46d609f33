package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/campuskart/campuskart-backend/api/middleware"
	"github.com/campuskart/campuskart-backend/api/responses"
	"github.com/campuskart/campuskart-backend/api/validators"
	"github.com/campuskart/campuskart-backend/internal/groups"
	internalorders "github.com/campuskart/campuskart-backend/internal/orders"
	"github.com/campuskart/campuskart-backend/pkg/enums"
	pkgerrors "github.com/campuskart/campuskart-backend/pkg/errors"
	"github.com/campuskart/campuskart-backend/pkg/logger"
	"github.com/campuskart/campuskart-backend/pkg/pagination"
)

// ListMyGroups pages over the authenticated buyer's order groups.
func ListMyGroups(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "groups service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bucket, params, err := groupListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListUserGroups(r.Context(), userID, bucket, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// ListSellerGroups pages over groups containing the seller's orders. Each
// group is trimmed to the seller's own slice.
func ListSellerGroups(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "groups service unavailable"))
			return
		}

		sellerID := middleware.SellerIDFromContext(r.Context())
		if sellerID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "seller context missing"))
			return
		}
		sid, err := uuid.Parse(sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid seller id"))
			return
		}

		bucket, params, err := groupListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListSellerGroups(r.Context(), sid, bucket, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// ListAllGroups pages over every order group for the operator dashboard.
func ListAllGroups(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "groups service unavailable"))
			return
		}

		bucket, params, err := groupListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListAllGroups(r.Context(), bucket, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// GroupDetail returns one order group scoped to the viewer. Buyers see their
// own groups, sellers their slice, operators everything.
func GroupDetail(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "groups service unavailable"))
			return
		}

		viewer, err := viewerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rawGroupID := strings.TrimSpace(chi.URLParam(r, "groupId"))
		if rawGroupID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "group id is required"))
			return
		}
		groupID, err := uuid.Parse(rawGroupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid group id"))
			return
		}

		view, err := svc.GroupDetail(r.Context(), groupID, viewer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func groupListQuery(r *http.Request) (*enums.OrderBucket, pagination.Params, error) {
	var params pagination.Params

	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return nil, params, err
	}
	params.Limit = limit
	params.Cursor = strings.TrimSpace(r.URL.Query().Get("cursor"))

	var bucket *enums.OrderBucket
	if raw := strings.TrimSpace(r.URL.Query().Get("bucket")); raw != "" {
		parsed, err := enums.ParseOrderBucket(raw)
		if err != nil {
			return nil, params, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid bucket")
		}
		bucket = &parsed
	}
	return bucket, params, nil
}

func viewerFromRequest(r *http.Request) (internalorders.Actor, error) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		return internalorders.Actor{}, err
	}

	role, err := enums.ParseRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return internalorders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "role context missing")
	}

	viewer := internalorders.Actor{UserID: userID, Role: role}
	if sellerID := middleware.SellerIDFromContext(r.Context()); sellerID != "" {
		sid, err := uuid.Parse(sellerID)
		if err != nil {
			return internalorders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid seller id")
		}
		viewer.SellerID = &sid
	}
	return viewer, nil
}
