package deliveryfee

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/campuskart/campuskart-backend/pkg/errors"
)

// Rule is one fee tier: subtotals in [From, To] pay Charge. A nil To leaves
// the tier open-ended.
type Rule struct {
	From   decimal.Decimal  `json:"from"`
	To     *decimal.Decimal `json:"to,omitempty"`
	Charge decimal.Decimal  `json:"charge"`
}

// NextTier describes the cheapest tier the buyer can still reach by adding
// items to the cart.
type NextTier struct {
	Threshold decimal.Decimal `json:"threshold"`
	SpendMore decimal.Decimal `json:"spend_more"`
	Charge    decimal.Decimal `json:"charge"`
	Message   string          `json:"message"`
}

// Quote is the calculator result for one subtotal against one rule set.
type Quote struct {
	Charge   decimal.Decimal `json:"charge"`
	NextTier *NextTier       `json:"next_tier,omitempty"`
}

// ValidateRules rejects malformed tier sets before they are evaluated or
// persisted. Gaps and overlaps are allowed; the tie-break in Compute handles
// them.
func ValidateRules(rules []Rule) error {
	for i, rule := range rules {
		if rule.From.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("rule %d: from must not be negative", i))
		}
		if rule.Charge.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("rule %d: charge must not be negative", i))
		}
		if rule.To != nil && rule.To.LessThan(rule.From) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("rule %d: to must not be below from", i))
		}
	}
	return nil
}

// Compute evaluates the tier set against a subtotal. Rules are sorted
// ascending by From and the first covering tier wins; equal From values keep
// their input order. A subtotal no tier covers is free, which is the
// configured fallback rather than an error.
func Compute(rules []Rule, subtotal decimal.Decimal) (Quote, error) {
	if subtotal.IsNegative() {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "subtotal must not be negative")
	}
	if err := ValidateRules(rules); err != nil {
		return Quote{}, err
	}

	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].From.LessThan(sorted[j].From)
	})

	quote := Quote{Charge: decimal.Zero}
	matched := false
	for _, rule := range sorted {
		if rule.From.GreaterThan(subtotal) {
			break
		}
		if rule.To != nil && subtotal.GreaterThan(*rule.To) {
			continue
		}
		quote.Charge = rule.Charge
		matched = true
		break
	}

	if !matched || quote.Charge.IsZero() {
		// Nothing cheaper than free, so there is no upsell to render.
		return quote, nil
	}

	for _, rule := range sorted {
		if !rule.From.GreaterThan(subtotal) {
			continue
		}
		if !rule.Charge.LessThan(quote.Charge) {
			continue
		}
		spendMore := rule.From.Sub(subtotal)
		quote.NextTier = &NextTier{
			Threshold: rule.From,
			SpendMore: spendMore,
			Charge:    rule.Charge,
			Message:   upsellMessage(spendMore, rule),
		}
		break
	}

	return quote, nil
}

func upsellMessage(spendMore decimal.Decimal, rule Rule) string {
	if rule.Charge.IsZero() {
		return fmt.Sprintf("Add items worth %s more to reach %s and get free delivery", spendMore.String(), rule.From.String())
	}
	return fmt.Sprintf("Add items worth %s more to reach %s and pay a reduced delivery charge of %s", spendMore.String(), rule.From.String(), rule.Charge.String())
}
