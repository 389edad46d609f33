package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/campuskart/campuskart-backend/api/responses"
	"github.com/campuskart/campuskart-backend/api/validators"
	"github.com/campuskart/campuskart-backend/internal/deliveryrules"
	"github.com/campuskart/campuskart-backend/pkg/enums"
	pkgerrors "github.com/campuskart/campuskart-backend/pkg/errors"
	"github.com/campuskart/campuskart-backend/pkg/logger"
)

type quoteRequest struct {
	Kind     string          `json:"kind" validate:"required"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type replaceRulesRequest struct {
	Rules []deliveryrules.RuleSpec `json:"rules" validate:"required,min=1"`
}

type rulesResponse struct {
	Kind  enums.DeliveryChargeKind `json:"kind"`
	Rules []deliveryrules.RuleView `json:"rules"`
}

// QuoteDeliveryCharge prices a subtotal against the current tier set for a
// charge kind. The storefront calls it while the cart is still open, so the
// response also carries the cheaper next tier when one exists.
func QuoteDeliveryCharge(svc deliveryrules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery rules service unavailable"))
			return
		}

		var req quoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		kind, err := enums.ParseDeliveryChargeKind(strings.TrimSpace(req.Kind))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid charge kind"))
			return
		}

		quote, err := svc.Quote(ctx, kind, req.Subtotal)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}

// AdminDeliveryRulesList returns the stored tier set for one charge kind in
// evaluation order.
func AdminDeliveryRulesList(svc deliveryrules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery rules service unavailable"))
			return
		}

		kind, err := chargeKindParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rules, err := svc.List(ctx, kind)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, rulesResponse{Kind: kind, Rules: rules})
	}
}

// AdminDeliveryRulesReplace swaps the whole tier set for one charge kind.
// Partial edits are not supported; admins always submit the full list.
func AdminDeliveryRulesReplace(svc deliveryrules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery rules service unavailable"))
			return
		}

		kind, err := chargeKindParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req replaceRulesRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rules, err := svc.Replace(ctx, kind, req.Rules)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, rulesResponse{Kind: kind, Rules: rules})
	}
}

func chargeKindParam(r *http.Request) (enums.DeliveryChargeKind, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "kind"))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "charge kind required")
	}
	kind, err := enums.ParseDeliveryChargeKind(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid charge kind")
	}
	return kind, nil
}
