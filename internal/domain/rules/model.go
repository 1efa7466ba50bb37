package rules

import (
	"github.com/jfiorezelogos/lg-logistica-backend/internal/types"
)

// AppliesTo selects what a rule is matched against.
type AppliesTo string

const (
	AppliesToCoupon AppliesTo = "cupom"
	AppliesToOffer  AppliesTo = "oferta"
)

// ActionType is the effect a matched rule produces.
type ActionType string

const (
	ActionOverrideBox ActionType = "alterar_box"
	ActionAddGifts    ActionType = "adicionar_brindes"
)

// GiftSpec names one bundled gift added by a rule.
type GiftSpec struct {
	Name string `json:"nome"`
}

// CouponTarget scopes a rule to one coupon code.
type CouponTarget struct {
	Name string `json:"nome"`
}

// OfferTarget scopes a rule to one offer id.
type OfferTarget struct {
	OfferID   string `json:"oferta_id,omitempty"`
	ID        string `json:"id,omitempty"`
	ProductID string `json:"produto_id,omitempty"`
	Name      string `json:"nome,omitempty"`
}

// TargetID returns the effective offer id, accepting both field spellings.
func (o OfferTarget) TargetID() string {
	if o.OfferID != "" {
		return o.OfferID
	}
	return o.ID
}

// Action is the tagged effect of a rule.
type Action struct {
	Type  ActionType `json:"type"`
	Box   string     `json:"box,omitempty"`
	Gifts []GiftSpec `json:"brindes,omitempty"`
}

// Rule is one coupon- or offer-scoped business rule loaded from the
// offers configuration. Labels carries the free-text subscription
// descriptors restricting which tier/periodicity contexts it covers.
type Rule struct {
	ID        string        `json:"id,omitempty"`
	AppliesTo AppliesTo     `json:"applies_to"`
	Enabled   *bool         `json:"enabled,omitempty"`
	Labels    []string      `json:"assinaturas,omitempty"`
	Coupon    *CouponTarget `json:"cupom,omitempty"`
	Offer     *OfferTarget  `json:"oferta,omitempty"`
	Action    Action        `json:"action"`
}

// IsEnabled treats a missing flag as enabled.
func (r Rule) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// MatchesCoupon reports whether this coupon rule targets the given
// normalized coupon code.
func (r Rule) MatchesCoupon(normalizedCode string) bool {
	if r.AppliesTo != AppliesToCoupon || r.Coupon == nil {
		return false
	}
	target := types.NormalizeLabel(r.Coupon.Name)
	return target != "" && target == normalizedCode
}

// EmbeddedOffers builds the offer_id -> embedded product name map from
// offer-scoped add-gift rules; the first gift of each rule names the
// embedded product.
func EmbeddedOffers(rs []Rule) map[string]string {
	out := make(map[string]string)
	for _, r := range rs {
		if r.AppliesTo != AppliesToOffer || !r.IsEnabled() {
			continue
		}
		if r.Action.Type != ActionAddGifts || r.Offer == nil {
			continue
		}
		id := r.Offer.TargetID()
		if id == "" || len(r.Action.Gifts) == 0 {
			continue
		}
		if name := r.Action.Gifts[0].Name; name != "" {
			out[id] = name
		}
	}
	return out
}
