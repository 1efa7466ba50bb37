package engine

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/jfiorezelogos/lg-logistica-backend/internal/domain/catalog"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/domain/transaction"
	ierr "github.com/jfiorezelogos/lg-logistica-backend/internal/errors"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/logger"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/period"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/types"
)

// TierCount tallies what one tier produced in a run.
type TierCount struct {
	Subscriptions int `json:"assinaturas"`
	Embedded      int `json:"embutidos"`
	Coupons       int `json:"cupons"`
}

// Counters buckets run tallies by subscription tier.
type Counters map[types.SubscriptionTier]*TierCount

func NewCounters() Counters {
	c := make(Counters, len(types.AllTiers()))
	for _, t := range types.AllTiers() {
		c[t] = &TierCount{}
	}
	return c
}

func (c Counters) bucket(tier types.SubscriptionTier) *TierCount {
	if tc, ok := c[tier]; ok {
		return tc
	}
	return c[types.TierBimonthly]
}

// Materializer turns fetched transactions into spreadsheet lines.
type Materializer struct {
	calc    *Calculator
	catalog *catalog.Catalog
	log     *logger.Logger
	now     func() time.Time
}

func NewMaterializer(calc *Calculator, cat *catalog.Catalog, log *logger.Logger) *Materializer {
	return &Materializer{calc: calc, catalog: cat, log: log, now: time.Now}
}

func (m *Materializer) unavailableFlag(name, sku string) string {
	if m.catalog.IsUnavailable(name, sku) {
		return "S"
	}
	return ""
}

// periodColumn is the 1-based period a charge belongs to within its
// year: the month for monthly plans, the bimester for bimonthly ones.
func periodColumn(p types.Periodicity, ref time.Time) string {
	if ref.IsZero() {
		return ""
	}
	switch p {
	case types.PeriodicityMonthly:
		return strconv.Itoa(int(ref.Month()))
	case types.PeriodicityBimonthly:
		return strconv.Itoa(period.BimesterOf(ref.Month()))
	}
	return ""
}

// BuildSubscriptionLines groups the run's transactions by
// subscription, prices one representative charge per subscription and
// expands it into principal, gift and embedded rows.
func (m *Materializer) BuildSubscriptionLines(txs []transaction.Transaction, rc *RunContext) ([]Line, Counters) {
	counters := NewCounters()
	now := m.now()

	groups := make(map[string][]transaction.Transaction)
	var order []string
	for _, tx := range txs {
		if tx.Subscription == nil || tx.Subscription.ID == "" {
			continue
		}
		sid := tx.Subscription.ID
		if _, seen := groups[sid]; !seen {
			order = append(order, sid)
		}
		groups[sid] = append(groups[sid], tx)
	}

	var lines []Line
	for _, sid := range order {
		group := groups[sid]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].OrderedTime().Before(group[j].OrderedTime())
		})
		rep := group[len(group)-1]

		tier := rep.Tier
		if tier == "" {
			tier = types.TierBimonthly
		}

		principals := lo.Filter(group, func(t transaction.Transaction, _ int) bool {
			return t.IsOrderBump == 0 && lo.Contains(rc.ValidPlanIDs, t.Product.InternalID)
		})
		distinct := lo.Uniq(lo.Map(principals, func(t transaction.Transaction, _ int) string {
			return t.Product.InternalID
		}))
		forceFixed := len(distinct) > 1 || rep.IsUpgrade()

		var paidTotal float64
		switch {
		case forceFixed:
			paidTotal = 0
		case len(principals) > 0:
			for _, t := range principals {
				paidTotal += t.Payment.Total
			}
		default:
			paidTotal = rep.Payment.Total
		}

		synth := rep
		synth.Payment.Total = paidTotal
		synth.Subscription = &transaction.Subscription{ID: sid}
		synth.Tier = tier

		if synth.ID == "" {
			m.log.Errorw("subscription charge without transaction id, skipping", "subscription_id", sid)
			continue
		}

		priced := m.calc.Compute(&synth, rc, forceFixed)

		coupon := ""
		if rep.Payment.Coupon != nil {
			coupon = strings.TrimSpace(rep.Payment.Coupon.Code)
		}
		if priced.UsedCoupon {
			counters.bucket(tier).Coupons++
		}

		// The run's selected box wins the product column when set.
		productName := strings.TrimSpace(rc.BoxName)
		if productName == "" {
			productName = priced.Principal
		}
		sku := ""
		if info, ok := m.catalog.Get(productName); ok {
			sku = info.SKU
		}

		line := baseLine(&synth, priced, now, tier, sid, coupon)
		line.Product = productName
		line.SKU = sku
		line.UnitValue = types.FormatBRL(priced.UnitValue)
		line.TotalValue = types.FormatBRL(priced.TotalValue)
		line.Unavailable = m.unavailableFlag(productName, sku)
		line.DedupID = synth.ID

		switch {
		case rc.PeriodMode == types.PeriodModeAll:
			line.Period = periodColumn(priced.Periodicity, priced.OrderedAt)
		case rc.Period != 0:
			line.Period = strconv.Itoa(rc.Period)
		case !rc.Window.End.IsZero():
			line.Period = periodColumn(priced.Periodicity, rc.Window.End)
		default:
			line.Period = periodColumn(priced.Periodicity, priced.OrderedAt)
		}

		lines = append(lines, line)

		withinWindow := rc.WithinWindow(priced.OrderedAt)

		if withinWindow {
			for _, gift := range priced.Gifts {
				giftLine := line
				giftLine.Product = gift.Name
				giftLine.SKU = ""
				if info, ok := m.catalog.Get(gift.Name); ok {
					giftLine.SKU = info.SKU
				}
				giftLine.UnitValue = "0,00"
				giftLine.TotalValue = "0,00"
				giftLine.Unavailable = m.unavailableFlag(gift.Name, giftLine.SKU)
				giftLine.DedupID = dedupID(synth.ID, giftLine.SKU)
				lines = append(lines, giftLine)
			}
		}

		embeddedName := rc.EmbeddedOffers[strings.TrimSpace(priced.OfferID)]
		if embeddedName != "" && withinWindow {
			embLine := line
			embLine.Product = embeddedName
			embLine.SKU = ""
			if info, ok := m.catalog.Get(embeddedName); ok {
				embLine.SKU = info.SKU
			}
			embLine.UnitValue = "0,00"
			embLine.TotalValue = "0,00"
			embLine.Unavailable = m.unavailableFlag(embeddedName, embLine.SKU)
			embLine.DedupID = dedupID(synth.ID, embLine.SKU)
			lines = append(lines, embLine)
			counters.bucket(tier).Embedded++
		}

		counters.bucket(tier).Subscriptions++
	}

	return lines, counters
}

// BuildProductLines prices plain product sales, decomposing combos
// into their component rows.
func (m *Materializer) BuildProductLines(txs []transaction.Transaction, rc *RunContext) ([]Line, Counters) {
	counters := NewCounters()
	now := m.now()

	var lines []Line
	for i := range txs {
		tx := txs[i]
		if tx.ID == "" {
			m.log.Errorw("transaction without id, skipping", "product_id", tx.Product.InternalID)
			continue
		}

		priced := m.calc.Compute(&tx, rc, false)
		name := priced.Principal
		info, _ := m.catalog.Get(name)

		line := baseLine(&tx, priced, now, "", "", "")
		line.Product = name
		line.SKU = info.SKU
		line.UnitValue = types.FormatBRL(priced.UnitValue)
		line.TotalValue = types.FormatBRL(priced.TotalValue)
		line.Unavailable = m.unavailableFlag(name, info.SKU)
		line.DedupID = tx.ID

		if len(info.ComposedOf) == 0 {
			lines = append(lines, line)
			continue
		}

		mapped := len(info.GuruIDs) > 0 && len(info.ShopifyIDs) > 0
		if m.catalog.IsUnavailable(name, info.SKU) && mapped {
			line.Unavailable = "S"
			lines = append(lines, line)
			continue
		}

		comboLines, err := m.decomposeCombo(line, name, info, priced.TotalValue)
		if err != nil {
			m.log.Errorw("combo decomposition failed, keeping combo row",
				"transaction_id", tx.ID, "combo", name, "error", err)
			lines = append(lines, line)
			continue
		}
		lines = append(lines, comboLines...)
	}

	return lines, counters
}

// decomposeCombo splits a combo row into one row per component,
// spreading the combo total uniformly with the last component
// absorbing the leftover cents so the rows always sum to the total.
func (m *Materializer) decomposeCombo(base Line, comboName string, info catalog.SKUInfo, total decimal.Decimal) ([]Line, error) {
	type component struct {
		name string
		sku  string
	}
	var components []component
	for _, comp := range info.ComposedOf {
		comp = strings.TrimSpace(comp)
		if comp == "" {
			continue
		}
		if name, compInfo, ok := m.catalog.BySKU(comp); ok {
			components = append(components, component{name: name, sku: compInfo.SKU})
		} else if compInfo, ok := m.catalog.Get(comp); ok {
			components = append(components, component{name: comp, sku: compInfo.SKU})
		} else {
			components = append(components, component{name: comp, sku: comp})
		}
	}
	if len(components) == 0 {
		return []Line{base}, nil
	}

	for _, c := range components {
		if strings.TrimSpace(c.sku) == "" {
			return nil, ierr.NewError("combo component without sku").
				WithHintf("Component %q of combo %q resolves to no SKU", c.name, comboName).
				Mark(ierr.ErrValidation)
		}
	}

	n := int64(len(components))
	var quota, last decimal.Decimal
	if total.IsPositive() {
		quota = total.DivRound(decimal.NewFromInt(n), 2)
		last = total.Sub(quota.Mul(decimal.NewFromInt(n - 1))).Round(2)
	}

	lines := make([]Line, 0, len(components))
	for i, c := range components {
		value := decimal.Zero
		if total.IsPositive() {
			if int64(i) < n-1 {
				value = quota
			} else {
				value = last
			}
		}
		row := base
		row.Product = c.name
		row.SKU = c.sku
		row.UnitValue = types.FormatBRL(value)
		row.TotalValue = types.FormatBRL(value)
		row.Combo = comboName
		row.Unavailable = m.unavailableFlag(c.name, c.sku)
		row.DedupID = dedupID(base.TransactionID, c.sku)
		lines = append(lines, row)
	}
	return lines, nil
}

// dedupID composes the row identity used by the store to merge
// re-collections: the transaction id alone for principal rows, or
// suffixed with the upper-cased SKU for derived rows.
func dedupID(tid, sku string) string {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		return tid
	}
	return tid + ":" + sku
}

