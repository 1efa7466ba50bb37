package engine

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jfiorezelogos/lg-logistica-backend/internal/domain/catalog"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/domain/rules"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/domain/transaction"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/logger"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/period"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/types"
)

// RunContext carries the selection one collection run was started
// with, shared by every charge priced in that run.
type RunContext struct {
	Mode        types.CollectionMode
	Periodicity types.Periodicity
	PeriodMode  types.PeriodMode
	Window      period.Window
	Period      int
	BoxName     string
	Rules       []rules.Rule
	// EmbeddedOffers maps offer id -> embedded product name.
	EmbeddedOffers map[string]string
	// ValidPlanIDs are the platform product ids of every plan in the
	// run's periodicity, used to tell principal charges from add-ons.
	ValidPlanIDs []string
}

// WithinWindow reports whether rules and embedded products apply to a
// charge ordered at t. Product runs never apply rules.
func (rc *RunContext) WithinWindow(t time.Time) bool {
	if rc.Mode == types.ModeProducts {
		return false
	}
	if t.IsZero() || rc.Window.IsZero() {
		return false
	}
	return rc.Window.Contains(t)
}

// PricedOrder is the priced view of one charge, ready to be turned
// into spreadsheet lines.
type PricedOrder struct {
	TransactionID   string
	OfferID         string
	Principal       string
	SKU             string
	Weight          float64
	UnitValue       decimal.Decimal
	TotalValue      decimal.Decimal
	OrderTotal      decimal.Decimal
	EmbeddedValue   decimal.Decimal
	IncludeEmbedded bool
	EmbeddedName    string
	Gifts           []rules.GiftSpec
	OrderedAt       time.Time
	PaymentMethod   string
	UsedCoupon      bool
	Tier            types.SubscriptionTier
	Periodicity     types.Periodicity
	Divisor         int
}

// Calculator prices charges against the catalog and the run's rules.
type Calculator struct {
	catalog *catalog.Catalog
	log     *logger.Logger
}

func NewCalculator(cat *catalog.Catalog, log *logger.Logger) *Calculator {
	return &Calculator{catalog: cat, log: log}
}

// resolvePrincipal walks the fallback chain for the product a charge
// pays for: catalog lookup by platform id, then by the API product
// name, then the run's selected box, then the first catalog entry.
func (c *Calculator) resolvePrincipal(tx *transaction.Transaction, boxName string) (string, bool) {
	if name, _, ok := c.catalog.ByGuruID(tx.Product.InternalID); ok {
		return name, true
	}
	if apiName := strings.TrimSpace(tx.Product.Name); apiName != "" {
		if _, ok := c.catalog.Get(apiName); ok {
			return apiName, true
		}
	}
	if box := strings.TrimSpace(boxName); box != "" {
		return box, true
	}
	if names := c.catalog.Names(); len(names) > 0 {
		c.log.Warnw("product id has no catalog match, using first entry",
			"transaction_id", tx.ID, "internal_id", tx.Product.InternalID, "fallback", names[0])
		return names[0], true
	}
	return "", false
}

// Compute prices one charge. forceFixed pins multi-period plans to the
// table price regardless of what was paid, used when the subscription
// mixed plans or upgraded mid-life.
func (c *Calculator) Compute(tx *transaction.Transaction, rc *RunContext, forceFixed bool) PricedOrder {
	paid := decimal.NewFromFloat(tx.Payment.Total).Round(2)
	orderedAt := tx.OrderedTime()

	order := PricedOrder{
		TransactionID: tx.ID,
		OfferID:       tx.Product.Offer.ID,
		OrderedAt:     orderedAt,
		PaymentMethod: tx.Payment.Method,
		UsedCoupon:    tx.CouponCode() != "",
		Divisor:       1,
	}

	principal, ok := c.resolvePrincipal(tx, rc.BoxName)
	if !ok {
		// Empty catalog: pass the paid amount through untouched.
		order.UnitValue = paid
		order.TotalValue = paid
		order.OrderTotal = paid
		return order
	}
	order.Principal = principal
	if info, found := c.catalog.Get(principal); found {
		order.SKU = info.SKU
		order.Weight = info.Weight
	}

	// Plain products and orphan charges are priced at face value.
	if rc.Mode == types.ModeProducts || tx.Subscription == nil {
		order.UnitValue = paid
		order.TotalValue = paid
		order.OrderTotal = paid
		return order
	}

	withinWindow := rc.WithinWindow(orderedAt)
	if withinWindow {
		outcome := ApplyRules(tx, rc.Rules, rc.Periodicity, principal)
		order.Gifts = outcome.Gifts
		if outcome.OverrideBox != "" {
			order.Principal = outcome.OverrideBox
			if info, found := c.catalog.Get(outcome.OverrideBox); found {
				order.SKU = info.SKU
				order.Weight = info.Weight
			} else {
				order.SKU = ""
				order.Weight = 0
			}
		}
	}

	tier := tx.Tier
	if tier == "" {
		tier = types.TierBimonthly
	}
	order.Tier = tier

	per := rc.Periodicity
	if per == "" {
		if info, found := c.catalog.Get(order.Principal); found && info.Periodicity != "" {
			per = types.ParsePeriodicity(info.Periodicity)
		} else if tier == types.TierMonthly {
			per = types.PeriodicityMonthly
		} else {
			per = types.PeriodicityBimonthly
		}
	}
	order.Periodicity = per

	// Embedded product sold through the offer, only inside the window.
	embeddedName := rc.EmbeddedOffers[strings.TrimSpace(order.OfferID)]
	includeEmbedded := embeddedName != "" && withinWindow

	tableValue, hasTable := types.TierTableValue(tier, per)
	charge := paid
	embedded := decimal.Zero

	switch {
	case tx.IsUpgrade() || forceFixed:
		if hasTable {
			charge = tableValue
		}
		charge = applyPercentCoupon(charge, tx)
		includeEmbedded = false

	case tier.IsMultiYear():
		if hasTable {
			charge = tableValue
		}
		charge = applyPercentCoupon(charge, tx)
		// Whatever was paid beyond the plan itself bought the embedded
		// product; never negative.
		embedded = paid.Sub(charge).Round(2)
		if embedded.IsNegative() {
			embedded = decimal.Zero
		}

	default:
		includeEmbedded = false
	}

	divisor := types.PeriodDivisor(tier, per)
	order.Divisor = divisor
	order.UnitValue = charge.DivRound(decimal.NewFromInt(int64(divisor)), 2)
	order.TotalValue = order.UnitValue
	order.EmbeddedValue = embedded
	order.IncludeEmbedded = includeEmbedded
	order.EmbeddedName = embeddedName
	order.OrderTotal = order.UnitValue
	if includeEmbedded {
		order.OrderTotal = order.OrderTotal.Add(embedded).Round(2)
	}
	return order
}

// applyPercentCoupon discounts a table-priced charge by a percent
// coupon; absolute coupons are already reflected in the paid amount.
func applyPercentCoupon(charge decimal.Decimal, tx *transaction.Transaction) decimal.Decimal {
	coupon := tx.Payment.Coupon
	if coupon == nil || types.NormalizeLabel(coupon.IncidenceType) != "percent" {
		return charge
	}
	pct := decimal.NewFromFloat(coupon.IncidenceValue)
	factor := decimal.NewFromInt(1).Sub(pct.Div(decimal.NewFromInt(100)))
	return charge.Mul(factor).Round(2)
}
