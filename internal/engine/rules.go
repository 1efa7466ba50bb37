// Package engine prices subscription charges and materializes them
// into fulfillment spreadsheet rows, applying the configured coupon
// and offer rules.
package engine

import (
	"sort"
	"strings"

	"github.com/jfiorezelogos/lg-logistica-backend/internal/domain/rules"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/domain/transaction"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/types"
)

// RuleOutcome is what matching coupon rules produce for one charge:
// an optional principal product override and extra gift lines.
type RuleOutcome struct {
	OverrideBox string
	Gifts       []rules.GiftSpec
}

// genericTokens are the loose plan descriptors a rule label may carry
// instead of a full subscription label.
var genericTokens = map[string]struct{}{
	"anual":     {},
	"2 anos":    {},
	"3 anos":    {},
	"mensal":    {},
	"bimestral": {},
}

// contextLabels builds the normalized subscription labels a rule's
// label list is matched against, e.g. "assinatura 2 anos (bimestral)".
func contextLabels(tier types.SubscriptionTier, p types.Periodicity) map[string]struct{} {
	var base string
	switch tier {
	case types.TierBiennial:
		base = "Assinatura 2 anos"
	case types.TierTriennial:
		base = "Assinatura 3 anos"
	case types.TierAnnual:
		base = "Assinatura Anual"
	case types.TierBimonthly:
		base = "Assinatura Bimestral"
	case types.TierMonthly:
		base = "Assinatura Mensal"
	default:
		base = "Assinatura"
	}
	label := base
	if p != "" {
		label = base + " (" + string(p) + ")"
	}
	return map[string]struct{}{types.NormalizeLabel(label): {}}
}

// matchLabels scores a rule's label list against the charge context.
// An empty list matches everything at score 0; an exact subscription
// label scores 3, the current principal's name 2 and a generic plan
// token contained in the context 1. Higher scores win override
// conflicts.
func matchLabels(list []string, targets map[string]struct{}, principalNorm string) (bool, int) {
	if len(list) == 0 {
		return true, 0
	}

	keys := make([]string, 0, len(targets))
	for k := range targets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	targetConcat := strings.Join(keys, " ")

	matched := false
	best := -1
	for _, item := range list {
		n := types.NormalizeLabel(item)
		if n == "" {
			matched = true
			if best < 0 {
				best = 0
			}
			continue
		}
		if _, ok := targets[n]; ok {
			matched = true
			if best < 3 {
				best = 3
			}
			continue
		}
		if n == principalNorm {
			matched = true
			if best < 2 {
				best = 2
			}
			continue
		}
		if _, ok := genericTokens[n]; ok && strings.Contains(targetConcat, n) {
			matched = true
			if best < 1 {
				best = 1
			}
		}
	}
	return matched, best
}

// ApplyRules evaluates the coupon rules against one charge and
// returns the resulting override and gifts. Gifts equal to the
// current (or overridden) principal are dropped, and duplicates
// collapse to one.
func ApplyRules(tx *transaction.Transaction, rs []rules.Rule, p types.Periodicity, principal string) RuleOutcome {
	code := tx.CouponCode()
	if code == "" {
		return RuleOutcome{}
	}

	targets := contextLabels(tx.Tier, p)
	principalNorm := types.NormalizeLabel(principal)

	var (
		outcome   RuleOutcome
		bestScore = -1
		rawGifts  []rules.GiftSpec
	)
	for _, r := range rs {
		if !r.IsEnabled() || !r.MatchesCoupon(code) {
			continue
		}
		ok, score := matchLabels(r.Labels, targets, principalNorm)
		if !ok {
			continue
		}
		switch r.Action.Type {
		case rules.ActionAddGifts:
			rawGifts = append(rawGifts, r.Action.Gifts...)
		case rules.ActionOverrideBox:
			if box := strings.TrimSpace(r.Action.Box); box != "" && score > bestScore {
				outcome.OverrideBox = box
				bestScore = score
			}
		}
	}

	overrideNorm := principalNorm
	if outcome.OverrideBox != "" {
		overrideNorm = types.NormalizeLabel(outcome.OverrideBox)
	}
	seen := make(map[string]struct{})
	for _, g := range rawGifts {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			continue
		}
		n := types.NormalizeLabel(name)
		if n == principalNorm || n == overrideNorm {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		outcome.Gifts = append(outcome.Gifts, rules.GiftSpec{Name: name})
	}
	return outcome
}
