package transaction

import (
	"time"

	"github.com/jfiorezelogos/lg-logistica-backend/internal/types"
)

// Transaction is one approved sale/charge event as returned by the
// Guru transactions endpoint. Fetched read-only; the only field
// stamped locally is Tier, set by the fetcher from the task that
// collected it.
type Transaction struct {
	ID           string        `json:"id"`
	Product      Product       `json:"product"`
	Payment      Payment       `json:"payment"`
	Subscription *Subscription `json:"subscription,omitempty"`
	Invoice      Invoice       `json:"invoice"`
	Contact      Contact       `json:"contact"`
	Dates        Dates         `json:"dates"`
	OrderedAt    string        `json:"ordered_at,omitempty"`
	CreatedAt    string        `json:"created_at,omitempty"`
	IsOrderBump  int           `json:"is_order_bump,omitempty"`

	// Tier is the subscription tier of the collection task that
	// fetched this transaction, not part of the API payload.
	Tier types.SubscriptionTier `json:"tipo_assinatura,omitempty"`
}

type Product struct {
	InternalID string `json:"internal_id"`
	Name       string `json:"name"`
	Offer      Offer  `json:"offer"`
}

type Offer struct {
	ID string `json:"id"`
}

type Payment struct {
	Total  float64 `json:"total"`
	Method string  `json:"method"`
	Coupon *Coupon `json:"coupon,omitempty"`
}

type Coupon struct {
	Code           string  `json:"coupon_code"`
	IncidenceType  string  `json:"incidence_type"`
	IncidenceValue float64 `json:"incidence_value"`
}

type Subscription struct {
	ID string `json:"id"`
}

type Invoice struct {
	Type string `json:"type"`
}

// Contact carries the buyer identity and address used to fill the
// planilha buyer/delivery columns.
type Contact struct {
	Name            string `json:"name"`
	Doc             string `json:"doc"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phone_number"`
	Address         string `json:"address"`
	AddressNumber   string `json:"address_number"`
	AddressComp     string `json:"address_comp"`
	AddressDistrict string `json:"address_district"`
	AddressZipCode  string `json:"address_zip_code"`
	AddressCity     string `json:"address_city"`
	AddressState    string `json:"address_state"`
}

type Dates struct {
	OrderedAt float64 `json:"ordered_at,omitempty"`
}

// CouponCode returns the normalized coupon code, empty when the
// payment carried no coupon.
func (t *Transaction) CouponCode() string {
	if t.Payment.Coupon == nil {
		return ""
	}
	return types.NormalizeLabel(t.Payment.Coupon.Code)
}

// IsUpgrade reports whether the invoice for this charge is an upgrade
// of an existing subscription.
func (t *Transaction) IsUpgrade() bool {
	return t.Invoice.Type == "upgrade"
}

// OrderedTime resolves the order timestamp: the numeric dates.ordered_at
// field (seconds or milliseconds since epoch) wins, then the RFC3339
// ordered_at/created_at strings. The zero time means unresolvable.
func (t *Transaction) OrderedTime() time.Time {
	if ts := t.Dates.OrderedAt; ts > 0 {
		if ts > 1e12 { // milliseconds
			ts /= 1000
		}
		return time.Unix(int64(ts), 0).UTC()
	}
	for _, s := range []string{t.OrderedAt, t.CreatedAt} {
		if s == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC()
			}
		}
	}
	return time.Time{}
}

// Page is the cursor-paginated envelope of the transactions endpoint.
type Page struct {
	Data       []Transaction `json:"data"`
	NextCursor string        `json:"next_cursor"`
}
