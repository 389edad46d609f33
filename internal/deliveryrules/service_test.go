package deliveryrules

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/campuskart/campuskart-backend/pkg/db/models"
	"github.com/campuskart/campuskart-backend/pkg/enums"
	pkgerrors "github.com/campuskart/campuskart-backend/pkg/errors"
)

type stubRulesRepo struct {
	rules    map[enums.DeliveryChargeKind][]models.DeliveryChargeRule
	replaced []models.DeliveryChargeRule
}

func (s *stubRulesRepo) ListByKind(ctx context.Context, kind enums.DeliveryChargeKind) ([]models.DeliveryChargeRule, error) {
	return s.rules[kind], nil
}

func (s *stubRulesRepo) ReplaceForKind(ctx context.Context, tx *gorm.DB, kind enums.DeliveryChargeKind, rules []models.DeliveryChargeRule) error {
	s.replaced = rules
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func standardProductRules() []models.DeliveryChargeRule {
	return []models.DeliveryChargeRule{
		{Kind: enums.DeliveryChargeKindProduct, FromAmount: decimal.Zero, ToAmount: decPtr(500), Charge: decimal.NewFromInt(50), Position: 0},
		{Kind: enums.DeliveryChargeKindProduct, FromAmount: decimal.NewFromInt(500), ToAmount: decPtr(1000), Charge: decimal.NewFromInt(20), Position: 1},
		{Kind: enums.DeliveryChargeKindProduct, FromAmount: decimal.NewFromInt(1000), Charge: decimal.Zero, Position: 2},
	}
}

func TestQuoteUsesStoredTiers(t *testing.T) {
	repo := &stubRulesRepo{rules: map[enums.DeliveryChargeKind][]models.DeliveryChargeRule{
		enums.DeliveryChargeKindProduct: standardProductRules(),
	}}
	svc, err := NewService(repo, stubTxRunner{})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	quote, err := svc.Quote(context.Background(), enums.DeliveryChargeKindProduct, decimal.NewFromInt(750))
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !quote.Charge.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected charge 20 got %s", quote.Charge)
	}
	if quote.NextTier == nil || !quote.NextTier.SpendMore.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected next tier at 250 more got %+v", quote.NextTier)
	}
}

func TestQuoteEmptyRuleSetDefaultsToZero(t *testing.T) {
	repo := &stubRulesRepo{}
	svc, _ := NewService(repo, stubTxRunner{})

	quote, err := svc.Quote(context.Background(), enums.DeliveryChargeKindXerox, decimal.NewFromInt(40))
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !quote.Charge.IsZero() {
		t.Fatalf("expected zero charge got %s", quote.Charge)
	}
	if quote.NextTier != nil {
		t.Fatalf("expected no upsell got %+v", quote.NextTier)
	}
}

func TestQuoteUnknownKind(t *testing.T) {
	svc, _ := NewService(&stubRulesRepo{}, stubTxRunner{})

	_, err := svc.Quote(context.Background(), enums.DeliveryChargeKind("groceries"), decimal.NewFromInt(10))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestReplaceAssignsPositions(t *testing.T) {
	repo := &stubRulesRepo{}
	svc, _ := NewService(repo, stubTxRunner{})

	views, err := svc.Replace(context.Background(), enums.DeliveryChargeKindXerox, []RuleSpec{
		{From: decimal.Zero, To: decPtr(100), Charge: decimal.NewFromInt(10)},
		{From: decimal.NewFromInt(100), Charge: decimal.Zero},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 rules got %d", len(views))
	}
	if views[0].Position != 0 || views[1].Position != 1 {
		t.Fatalf("expected sequential positions got %+v", views)
	}
	if len(repo.replaced) != 2 {
		t.Fatalf("expected rule set written got %d rows", len(repo.replaced))
	}
	if repo.replaced[1].Kind != enums.DeliveryChargeKindXerox {
		t.Fatalf("expected kind stamped on rows got %s", repo.replaced[1].Kind)
	}
}

func TestReplaceRejectsMalformedSet(t *testing.T) {
	repo := &stubRulesRepo{}
	svc, _ := NewService(repo, stubTxRunner{})

	_, err := svc.Replace(context.Background(), enums.DeliveryChargeKindProduct, []RuleSpec{
		{From: decimal.NewFromInt(500), To: decPtr(100), Charge: decimal.NewFromInt(10)},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
	if repo.replaced != nil {
		t.Fatal("malformed set must not be written")
	}
}

func TestReplaceRequiresAtLeastOneRule(t *testing.T) {
	svc, _ := NewService(&stubRulesRepo{}, stubTxRunner{})

	_, err := svc.Replace(context.Background(), enums.DeliveryChargeKindProduct, nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}
