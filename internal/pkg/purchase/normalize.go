package purchase

import (
	"strings"
	"time"
)

// The purchase backend has shipped several response schemas over time. All
// shape probing lives here so callers only ever see the typed structs from
// types.go.

// rawEntitlement tolerates both expiry field names the backend has used.
type rawEntitlement struct {
	ProductIdentifier string  `json:"product_identifier"`
	ExpiresDate       *string `json:"expires_date"`
	ExpirationDate    *string `json:"expirationDate"`
}

func (e rawEntitlement) expiresAt() *time.Time {
	for _, raw := range []*string{e.ExpiresDate, e.ExpirationDate} {
		if raw == nil || strings.TrimSpace(*raw) == "" {
			continue
		}
		if t := parseBackendTime(*raw); t != nil {
			return t
		}
	}
	return nil
}

func (e rawEntitlement) normalize() Entitlement {
	return Entitlement{
		ProductID: strings.TrimSpace(e.ProductIdentifier),
		ExpiresAt: e.expiresAt(),
	}
}

// rawProduct tolerates the three numeric price fields seen across backend
// versions: a plain decimal, a renamed decimal, and micro-units.
type rawProduct struct {
	Identifier        string   `json:"identifier"`
	PriceString       string   `json:"price_string"`
	CurrencyCode      string   `json:"currency_code"`
	Price             *float64 `json:"price"`
	PriceAmount       *float64 `json:"price_amount"`
	PriceAmountMicros *int64   `json:"price_amount_micros"`
}

func (p rawProduct) amount() float64 {
	switch {
	case p.Price != nil:
		return *p.Price
	case p.PriceAmount != nil:
		return *p.PriceAmount
	case p.PriceAmountMicros != nil:
		return float64(*p.PriceAmountMicros) / 1e6
	default:
		return 0
	}
}

type rawPackage struct {
	Identifier                string     `json:"identifier"`
	PlatformProductIdentifier string     `json:"platform_product_identifier"`
	Product                   rawProduct `json:"product"`
}

func (p rawPackage) normalize() Package {
	productID := strings.TrimSpace(p.PlatformProductIdentifier)
	if productID == "" {
		productID = strings.TrimSpace(p.Product.Identifier)
	}
	return Package{
		Identifier:  strings.TrimSpace(p.Identifier),
		ProductID:   productID,
		PriceString: p.Product.PriceString,
		Currency:    p.Product.CurrencyCode,
		Amount:      p.Product.amount(),
	}
}

type rawOffering struct {
	Identifier string       `json:"identifier"`
	Packages   []rawPackage `json:"packages"`
}

func (o rawOffering) normalize() *Offering {
	out := &Offering{Identifier: strings.TrimSpace(o.Identifier)}
	for _, p := range o.Packages {
		out.Packages = append(out.Packages, p.normalize())
	}
	return out
}

type rawSubscriber struct {
	AppUserID    string                    `json:"app_user_id"`
	Entitlements map[string]rawEntitlement `json:"entitlements"`
}

func (s rawSubscriber) normalize() *CustomerInfo {
	info := &CustomerInfo{
		AppUserID:    strings.TrimSpace(s.AppUserID),
		Entitlements: make(map[string]Entitlement, len(s.Entitlements)),
	}
	for name, e := range s.Entitlements {
		info.Entitlements[name] = e.normalize()
	}
	return info
}

const cancelledErrorCode = "PURCHASE_CANCELLED"

// isCancellation detects a user-cancelled purchase either via the backend's
// error code or, as a fallback, a case-insensitive "cancel" substring in the
// message. The substring heuristic can misclassify messages that merely
// mention cancellation; it is kept because older backend versions report no
// code at all.
func isCancellation(code, message string) bool {
	if strings.EqualFold(strings.TrimSpace(code), cancelledErrorCode) {
		return true
	}
	return strings.Contains(strings.ToLower(message), "cancel")
}

func parseBackendTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
