package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfiorezelogos/lg-logistica-backend/internal/logger"
)

func boolPtr(b bool) *bool { return &b }

func TestParse_BareArray(t *testing.T) {
	raw := []byte(`[{"applies_to":"cupom","cupom":{"nome":"promo"},"action":{"type":"alterar_box","box":"Box Especial"}}]`)
	rs, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, AppliesToCoupon, rs[0].AppliesTo)
	assert.Equal(t, "promo", rs[0].Coupon.Name)
	assert.Equal(t, ActionOverrideBox, rs[0].Action.Type)
	assert.Equal(t, "Box Especial", rs[0].Action.Box)
}

func TestParse_RulesEnvelope(t *testing.T) {
	raw := []byte(`{"rules":[{"applies_to":"oferta","oferta":{"id":"of-1"},"action":{"type":"adicionar_brindes","brindes":[{"nome":"Caneca"}]}}]}`)
	rs, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, "of-1", rs[0].Offer.TargetID())
	require.Len(t, rs[0].Action.Gifts, 1)
	assert.Equal(t, "Caneca", rs[0].Action.Gifts[0].Name)
}

func TestParse_LegacyEnvelope(t *testing.T) {
	raw := []byte(`{"regras":[{"applies_to":"cupom","cupom":{"nome":"x"},"action":{"type":"alterar_box","box":"B"}}]}`)
	rs, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, rs, 1)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`not json`))
	assert.Error(t, err)
}

func TestFileRepository_MissingFileMeansNoRules(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"), logger.L)
	rs, err := repo.Load()
	require.NoError(t, err)
	assert.Nil(t, rs)
}

func TestFileRepository_LoadsAndCaches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"applies_to":"cupom","cupom":{"nome":"promo"},"action":{"type":"alterar_box","box":"B"}}]`), 0o644))

	repo := NewFileRepository(path, logger.L)
	rs, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, rs, 1)

	// Cached: a rewrite is invisible until the cache is invalidated.
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))
	rs, err = repo.Load()
	require.NoError(t, err)
	assert.Len(t, rs, 1)

	repo.Invalidate()
	rs, err = repo.Load()
	require.NoError(t, err)
	assert.Empty(t, rs)
}

func TestIsEnabled(t *testing.T) {
	assert.True(t, Rule{}.IsEnabled())
	assert.True(t, Rule{Enabled: boolPtr(true)}.IsEnabled())
	assert.False(t, Rule{Enabled: boolPtr(false)}.IsEnabled())
}

func TestMatchesCoupon(t *testing.T) {
	r := Rule{AppliesTo: AppliesToCoupon, Coupon: &CouponTarget{Name: "PROMOÇÃO"}}
	assert.True(t, r.MatchesCoupon("promocao"))
	assert.False(t, r.MatchesCoupon("outro"))
	assert.False(t, Rule{AppliesTo: AppliesToOffer}.MatchesCoupon("promocao"))
	assert.False(t, Rule{AppliesTo: AppliesToCoupon}.MatchesCoupon("promocao"), "rule without coupon target never matches")
}

func TestEmbeddedOffers(t *testing.T) {
	rs := []Rule{
		{
			AppliesTo: AppliesToOffer,
			Offer:     &OfferTarget{OfferID: "of-1"},
			Action:    Action{Type: ActionAddGifts, Gifts: []GiftSpec{{Name: "Livro Extra"}, {Name: "Caneca"}}},
		},
		{
			AppliesTo: AppliesToOffer,
			Offer:     &OfferTarget{ID: "of-2"},
			Action:    Action{Type: ActionAddGifts, Gifts: []GiftSpec{{Name: "Caneca"}}},
		},
		{
			AppliesTo: AppliesToOffer,
			Enabled:   boolPtr(false),
			Offer:     &OfferTarget{ID: "of-3"},
			Action:    Action{Type: ActionAddGifts, Gifts: []GiftSpec{{Name: "Ignorado"}}},
		},
		{
			AppliesTo: AppliesToCoupon,
			Coupon:    &CouponTarget{Name: "promo"},
			Action:    Action{Type: ActionAddGifts, Gifts: []GiftSpec{{Name: "Ignorado"}}},
		},
		{
			AppliesTo: AppliesToOffer,
			Offer:     &OfferTarget{ID: "of-4"},
			Action:    Action{Type: ActionOverrideBox, Box: "B"},
		},
	}

	m := EmbeddedOffers(rs)
	assert.Equal(t, map[string]string{
		"of-1": "Livro Extra", // first gift names the embedded product
		"of-2": "Caneca",
	}, m)
}
