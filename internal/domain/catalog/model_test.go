package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfiorezelogos/lg-logistica-backend/internal/types"
)

func sampleCatalog() *Catalog {
	names := []string{"Box Bimestral", "Box Mensal", "Edição Especial", "Caneca", "Box Antigo"}
	entries := map[string]SKUInfo{
		"Box Bimestral": {
			SKU: "BOX-BI", Kind: types.KindSubscription,
			Periodicity: "bimestral", Recurrence: "bianual",
			GuruIDs: []string{"plan-a", "plan-b", "plan-a"},
		},
		"Box Mensal": {
			SKU: "BOX-MEN", Kind: types.KindSubscription,
			Periodicity: "mensal", Recurrence: "anual",
			GuruIDs: []string{"plan-m"},
		},
		"Edição Especial": {SKU: "ED-ESP", Kind: types.KindProduct, GuruIDs: []string{"prod-esp"}},
		"Caneca":          {SKU: "CAN-1", Kind: types.KindProduct, GuruIDs: []string{"prod-can"}},
		"Box Antigo":      {SKU: "BOX-OLD", Kind: types.KindProduct, Unavailable: true},
	}
	return New(names, entries)
}

func TestNew_PreservesOrderAndDropsUnknown(t *testing.T) {
	c := New([]string{"A", "B", "C"}, map[string]SKUInfo{
		"A": {SKU: "A1"},
		"C": {SKU: "C1"},
	})
	assert.Equal(t, []string{"A", "C"}, c.Names())
	assert.Equal(t, 2, c.Len())
}

func TestByName_NormalizedFallback(t *testing.T) {
	c := sampleCatalog()

	name, info, ok := c.ByName("Edição Especial")
	require.True(t, ok)
	assert.Equal(t, "Edição Especial", name)
	assert.Equal(t, "ED-ESP", info.SKU)

	// Accent- and case-insensitive match resolves to the canonical name.
	name, _, ok = c.ByName("EDICAO ESPECIAL")
	require.True(t, ok)
	assert.Equal(t, "Edição Especial", name)

	_, _, ok = c.ByName("Inexistente")
	assert.False(t, ok)
}

func TestByGuruID(t *testing.T) {
	c := sampleCatalog()

	name, info, ok := c.ByGuruID("plan-b")
	require.True(t, ok)
	assert.Equal(t, "Box Bimestral", name)
	assert.Equal(t, "BOX-BI", info.SKU)

	_, _, ok = c.ByGuruID("")
	assert.False(t, ok)
	_, _, ok = c.ByGuruID("nope")
	assert.False(t, ok)
}

func TestBySKU_CaseInsensitive(t *testing.T) {
	c := sampleCatalog()

	name, _, ok := c.BySKU("can-1")
	require.True(t, ok)
	assert.Equal(t, "Caneca", name)

	_, _, ok = c.BySKU("")
	assert.False(t, ok)
}

func TestIsUnavailable(t *testing.T) {
	c := sampleCatalog()

	assert.True(t, c.IsUnavailable("Box Antigo", ""))
	assert.True(t, c.IsUnavailable("box antigo", ""))
	assert.True(t, c.IsUnavailable("Nome Errado", "BOX-OLD"), "falls back to SKU resolution")
	assert.False(t, c.IsUnavailable("Caneca", ""))
	assert.False(t, c.IsUnavailable("Desconhecido", "SKU-X"))
}

func TestTierProductIDs(t *testing.T) {
	c := sampleCatalog()

	byTier, all := c.TierProductIDs(types.PeriodicityBimonthly)
	assert.Equal(t, []string{"plan-a", "plan-b"}, byTier[types.TierBiennial], "guru ids deduplicated")
	assert.NotContains(t, all, "plan-m", "monthly plans excluded from a bimonthly run")
	assert.ElementsMatch(t, []string{"plan-a", "plan-b"}, all)

	byTier, all = c.TierProductIDs(types.PeriodicityMonthly)
	assert.Equal(t, []string{"plan-m"}, byTier[types.TierAnnual])
	assert.Equal(t, []string{"plan-m"}, all)
}

func TestProductIDs(t *testing.T) {
	c := sampleCatalog()

	ids := c.ProductIDs("")
	assert.ElementsMatch(t, []string{"prod-esp", "prod-can"}, ids)
	assert.NotContains(t, ids, "plan-a", "subscription plans are not products")

	assert.Equal(t, []string{"prod-can"}, c.ProductIDs("Caneca"))
	assert.Empty(t, c.ProductIDs("Box Antigo"), "entry without guru ids yields nothing")
}
