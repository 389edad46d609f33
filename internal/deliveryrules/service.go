package deliveryrules

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/campuskart/campuskart-backend/pkg/db/models"
	"github.com/campuskart/campuskart-backend/pkg/deliveryfee"
	"github.com/campuskart/campuskart-backend/pkg/enums"
	pkgerrors "github.com/campuskart/campuskart-backend/pkg/errors"
)

type rulesRepository interface {
	ListByKind(ctx context.Context, kind enums.DeliveryChargeKind) ([]models.DeliveryChargeRule, error)
	ReplaceForKind(ctx context.Context, tx *gorm.DB, kind enums.DeliveryChargeKind, rules []models.DeliveryChargeRule) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RuleView is the API projection of one stored tier.
type RuleView struct {
	ID       uuid.UUID                `json:"id"`
	Kind     enums.DeliveryChargeKind `json:"kind"`
	From     decimal.Decimal          `json:"from"`
	To       *decimal.Decimal         `json:"to,omitempty"`
	Charge   decimal.Decimal          `json:"charge"`
	Position int                      `json:"position"`
}

// RuleSpec is one tier in an admin replace request.
type RuleSpec struct {
	From   decimal.Decimal  `json:"from"`
	To     *decimal.Decimal `json:"to,omitempty"`
	Charge decimal.Decimal  `json:"charge"`
}

// Service reads and manages the fee tier sets and answers quotes against them.
type Service interface {
	Quote(ctx context.Context, kind enums.DeliveryChargeKind, subtotal decimal.Decimal) (deliveryfee.Quote, error)
	List(ctx context.Context, kind enums.DeliveryChargeKind) ([]RuleView, error)
	Replace(ctx context.Context, kind enums.DeliveryChargeKind, specs []RuleSpec) ([]RuleView, error)
}

type service struct {
	repo rulesRepository
	tx   txRunner
}

// NewService builds a delivery rule service.
func NewService(repo rulesRepository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery rules repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Quote(ctx context.Context, kind enums.DeliveryChargeKind, subtotal decimal.Decimal) (deliveryfee.Quote, error) {
	if !kind.IsValid() {
		return deliveryfee.Quote{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown charge kind %q", kind))
	}
	rules, err := s.loadRules(ctx, kind)
	if err != nil {
		return deliveryfee.Quote{}, err
	}
	return deliveryfee.Compute(rules, subtotal)
}

func (s *service) List(ctx context.Context, kind enums.DeliveryChargeKind) ([]RuleView, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown charge kind %q", kind))
	}
	rows, err := s.repo.ListByKind(ctx, kind)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery rules")
	}
	views := make([]RuleView, 0, len(rows))
	for _, row := range rows {
		views = append(views, newRuleView(row))
	}
	return views, nil
}

func (s *service) Replace(ctx context.Context, kind enums.DeliveryChargeKind, specs []RuleSpec) ([]RuleView, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown charge kind %q", kind))
	}
	if len(specs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one rule required")
	}

	candidate := make([]deliveryfee.Rule, 0, len(specs))
	for _, spec := range specs {
		candidate = append(candidate, deliveryfee.Rule{From: spec.From, To: spec.To, Charge: spec.Charge})
	}
	if err := deliveryfee.ValidateRules(candidate); err != nil {
		return nil, err
	}

	rows := make([]models.DeliveryChargeRule, 0, len(specs))
	for i, spec := range specs {
		rows = append(rows, models.DeliveryChargeRule{
			ID:         uuid.New(),
			Kind:       kind,
			FromAmount: spec.From,
			ToAmount:   spec.To,
			Charge:     spec.Charge,
			Position:   i,
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.ReplaceForKind(ctx, tx, kind, rows)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace delivery rules")
	}

	views := make([]RuleView, 0, len(rows))
	for _, row := range rows {
		views = append(views, newRuleView(row))
	}
	return views, nil
}

// loadRules maps stored rows into calculator rules for a kind.
func (s *service) loadRules(ctx context.Context, kind enums.DeliveryChargeKind) ([]deliveryfee.Rule, error) {
	rows, err := s.repo.ListByKind(ctx, kind)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery rules")
	}
	rules := make([]deliveryfee.Rule, 0, len(rows))
	for _, row := range rows {
		rules = append(rules, deliveryfee.Rule{From: row.FromAmount, To: row.ToAmount, Charge: row.Charge})
	}
	return rules, nil
}

func newRuleView(row models.DeliveryChargeRule) RuleView {
	return RuleView{
		ID:       row.ID,
		Kind:     row.Kind,
		From:     row.FromAmount,
		To:       row.ToAmount,
		Charge:   row.Charge,
		Position: row.Position,
	}
}
