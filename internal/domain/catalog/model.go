package catalog

import (
	"github.com/samber/lo"

	"github.com/jfiorezelogos/lg-logistica-backend/internal/types"
)

// SKUInfo is one catalog entry, keyed by product name in the Catalog.
// Read-only to the pipeline.
type SKUInfo struct {
	SKU         string            `json:"sku"`
	Kind        types.ProductKind `json:"tipo"`
	Weight      float64           `json:"peso"`
	Periodicity string            `json:"periodicidade,omitempty"`
	Recurrence  string            `json:"recorrencia,omitempty"`
	GuruIDs     []string          `json:"guru_ids,omitempty"`
	ShopifyIDs  []string          `json:"shopify_ids,omitempty"`
	ComposedOf  []string          `json:"composto_de,omitempty"`
	Unavailable bool              `json:"indisponivel,omitempty"`
}

// Catalog maps product name -> SKUInfo. Iteration order matters only
// for the last-resort principal fallback, which uses Names() order.
type Catalog struct {
	byName map[string]SKUInfo
	names  []string
}

// New builds a Catalog preserving the given name order.
func New(names []string, entries map[string]SKUInfo) *Catalog {
	byName := make(map[string]SKUInfo, len(entries))
	ordered := make([]string, 0, len(names))
	for _, name := range names {
		info, ok := entries[name]
		if !ok {
			continue
		}
		byName[name] = info
		ordered = append(ordered, name)
	}
	return &Catalog{byName: byName, names: ordered}
}

// Names returns the catalog's product names in load order.
func (c *Catalog) Names() []string {
	return c.names
}

func (c *Catalog) Len() int {
	return len(c.names)
}

// Get returns the entry for an exact product name.
func (c *Catalog) Get(name string) (SKUInfo, bool) {
	info, ok := c.byName[name]
	return info, ok
}

// ByName looks a product up by name, falling back to a
// diacritics-insensitive comparison when the exact key is absent.
func (c *Catalog) ByName(name string) (string, SKUInfo, bool) {
	if info, ok := c.byName[name]; ok {
		return name, info, true
	}
	want := types.NormalizeLabel(name)
	if want == "" {
		return "", SKUInfo{}, false
	}
	for _, n := range c.names {
		if types.NormalizeLabel(n) == want {
			return n, c.byName[n], true
		}
	}
	return "", SKUInfo{}, false
}

// ByGuruID finds the product whose guru_ids contain the given
// platform-internal product id.
func (c *Catalog) ByGuruID(internalID string) (string, SKUInfo, bool) {
	if internalID == "" {
		return "", SKUInfo{}, false
	}
	for _, n := range c.names {
		if lo.Contains(c.byName[n].GuruIDs, internalID) {
			return n, c.byName[n], true
		}
	}
	return "", SKUInfo{}, false
}

// BySKU finds the product carrying the given SKU (case-insensitive).
func (c *Catalog) BySKU(sku string) (string, SKUInfo, bool) {
	want := types.NormalizeLabel(sku)
	if want == "" {
		return "", SKUInfo{}, false
	}
	for _, n := range c.names {
		if types.NormalizeLabel(c.byName[n].SKU) == want {
			return n, c.byName[n], true
		}
	}
	return "", SKUInfo{}, false
}

// IsUnavailable reports whether a product is flagged unavailable,
// resolving by exact name, then normalized name, then SKU.
func (c *Catalog) IsUnavailable(name, sku string) bool {
	if _, info, ok := c.ByName(name); ok {
		return info.Unavailable
	}
	if sku != "" {
		if _, info, ok := c.BySKU(sku); ok {
			return info.Unavailable
		}
	}
	return false
}

// TierProductIDs returns the platform product ids of every
// subscription plan with the given periodicity, bucketed by tier,
// plus the deduplicated union under the "all" slice.
func (c *Catalog) TierProductIDs(p types.Periodicity) (map[types.SubscriptionTier][]string, []string) {
	byTier := make(map[types.SubscriptionTier][]string, len(types.AllTiers()))
	var all []string
	for _, name := range c.names {
		info := c.byName[name]
		if info.Kind != types.KindSubscription {
			continue
		}
		if types.ParsePeriodicity(info.Periodicity) != p {
			continue
		}
		tier := types.ParseTier(info.Recurrence)
		for _, id := range info.GuruIDs {
			if id == "" {
				continue
			}
			byTier[tier] = append(byTier[tier], id)
			all = append(all, id)
		}
	}
	for tier := range byTier {
		byTier[tier] = lo.Uniq(byTier[tier])
	}
	return byTier, lo.Uniq(all)
}

// ProductIDs returns the platform ids of every non-subscription
// product, optionally restricted to one product name.
func (c *Catalog) ProductIDs(onlyName string) []string {
	var ids []string
	for _, name := range c.names {
		info := c.byName[name]
		if info.Kind == types.KindSubscription {
			continue
		}
		if onlyName != "" && name != onlyName {
			continue
		}
		for _, id := range info.GuruIDs {
			if id != "" {
				ids = append(ids, id)
			}
		}
	}
	return lo.Uniq(ids)
}
