package types

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	ierr "github.com/jfiorezelogos/lg-logistica-backend/internal/errors"
)

// SubscriptionTier is the duration class of a subscription plan.
// The canonical values match the plural labels used by the catalog
// and by the rules configuration.
type SubscriptionTier string

const (
	TierAnnual    SubscriptionTier = "anuais"
	TierBiennial  SubscriptionTier = "bianuais"
	TierTriennial SubscriptionTier = "trianuais"
	TierBimonthly SubscriptionTier = "bimestrais"
	TierMonthly   SubscriptionTier = "mensais"
)

// tierAliases maps the singular recurrence labels found in catalog
// entries to their canonical tier value.
var tierAliases = map[string]SubscriptionTier{
	"anual":     TierAnnual,
	"bianual":   TierBiennial,
	"trianual":  TierTriennial,
	"bimestral": TierBimonthly,
	"mensal":    TierMonthly,
}

// AllTiers lists every tier in the order collection tasks are generated.
func AllTiers() []SubscriptionTier {
	return []SubscriptionTier{TierAnnual, TierBiennial, TierTriennial, TierBimonthly, TierMonthly}
}

func (t SubscriptionTier) String() string {
	return string(t)
}

func (t SubscriptionTier) Validate() error {
	if !lo.Contains(AllTiers(), t) {
		return ierr.NewError("invalid subscription tier").
			WithHint("Invalid subscription tier").
			WithReportableDetails(map[string]any{
				"allowed_values": AllTiers(),
				"provided_value": t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsMultiYear reports whether the tier is billed from the fixed table
// rather than from the amount actually paid.
func (t SubscriptionTier) IsMultiYear() bool {
	return t == TierAnnual || t == TierBiennial || t == TierTriennial
}

// Years returns the lookback span used when collecting historical
// charges for a multi-year tier. Zero for sub-annual tiers.
func (t SubscriptionTier) Years() int {
	switch t {
	case TierAnnual:
		return 1
	case TierBiennial:
		return 2
	case TierTriennial:
		return 3
	}
	return 0
}

// ParseTier normalizes a free-form tier label (canonical or singular
// alias, any casing) into a SubscriptionTier. Unknown labels fall back
// to the bimonthly tier, matching how the counters were bucketed
// historically.
func ParseTier(s string) SubscriptionTier {
	n := NormalizeLabel(s)
	if lo.Contains(AllTiers(), SubscriptionTier(n)) {
		return SubscriptionTier(n)
	}
	if t, ok := tierAliases[n]; ok {
		return t
	}
	return TierBimonthly
}

// Periodicity is the delivery cadence of a subscription.
type Periodicity string

const (
	PeriodicityMonthly   Periodicity = "mensal"
	PeriodicityBimonthly Periodicity = "bimestral"
)

func (p Periodicity) String() string {
	return string(p)
}

func (p Periodicity) Validate() error {
	allowed := []Periodicity{PeriodicityMonthly, PeriodicityBimonthly}
	if !lo.Contains(allowed, p) {
		return ierr.NewError("invalid periodicity").
			WithHint("Periodicity must be mensal or bimestral").
			WithReportableDetails(map[string]any{
				"allowed_values": allowed,
				"provided_value": p,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ParsePeriodicity normalizes a periodicity label, defaulting to
// bimonthly when the label is empty or unknown.
func ParsePeriodicity(s string) Periodicity {
	if NormalizeLabel(s) == string(PeriodicityMonthly) {
		return PeriodicityMonthly
	}
	return PeriodicityBimonthly
}

// PeriodMode selects which time windows a subscription collection
// spans: only the selected calendar period, or every period a still
// active multi-year subscription could have been charged in.
type PeriodMode string

const (
	PeriodModeSelected PeriodMode = "PERIODO"
	PeriodModeAll      PeriodMode = "TODAS"
)

// ParsePeriodMode normalizes the mode label (accent-insensitive),
// defaulting to the selected period.
func ParsePeriodMode(s string) PeriodMode {
	if NormalizeLabel(s) == "todas" {
		return PeriodModeAll
	}
	return PeriodModeSelected
}

// CollectionMode distinguishes subscription runs from plain product runs.
type CollectionMode string

const (
	ModeSubscriptions CollectionMode = "assinaturas"
	ModeProducts      CollectionMode = "produtos"
)

func (m CollectionMode) Validate() error {
	allowed := []CollectionMode{ModeSubscriptions, ModeProducts}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid collection mode").
			WithHint("Collection mode must be assinaturas or produtos").
			WithReportableDetails(map[string]any{
				"allowed_values": allowed,
				"provided_value": m,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ProductKind is the catalog classification of a SKU.
type ProductKind string

const (
	KindProduct      ProductKind = "produto"
	KindCombo        ProductKind = "combo"
	KindSubscription ProductKind = "assinatura"
)

// PeriodDivisor returns how many delivery periods one charge of the
// given tier covers at the given periodicity. Total over every
// tier/periodicity pair and always >= 1.
func PeriodDivisor(tier SubscriptionTier, p Periodicity) int {
	switch tier {
	case TierTriennial:
		if p == PeriodicityMonthly {
			return 36
		}
		return 18
	case TierBiennial:
		if p == PeriodicityMonthly {
			return 24
		}
		return 12
	case TierAnnual:
		if p == PeriodicityMonthly {
			return 12
		}
		return 6
	case TierBimonthly:
		if p == PeriodicityMonthly {
			return 2
		}
		return 1
	case TierMonthly:
		return 1
	}
	return 1
}

// tierTable holds the fixed charge for multi-year subscriptions,
// keyed by tier and periodicity.
var tierTable = map[SubscriptionTier]map[Periodicity]decimal.Decimal{
	TierAnnual: {
		PeriodicityMonthly:   decimal.NewFromInt(960),
		PeriodicityBimonthly: decimal.NewFromInt(480),
	},
	TierBiennial: {
		PeriodicityMonthly:   decimal.NewFromInt(1920),
		PeriodicityBimonthly: decimal.NewFromInt(960),
	},
	TierTriennial: {
		PeriodicityMonthly:   decimal.NewFromInt(2880),
		PeriodicityBimonthly: decimal.NewFromInt(1440),
	},
}

// TierTableValue returns the fixed table charge for a multi-year tier.
// The boolean is false when the pair is not priced by table, in which
// case callers fall back to the amount actually paid.
func TierTableValue(tier SubscriptionTier, p Periodicity) (decimal.Decimal, bool) {
	byPer, ok := tierTable[tier]
	if !ok {
		return decimal.Zero, false
	}
	v, ok := byPer[p]
	return v, ok
}
