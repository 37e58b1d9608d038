package purchase

import (
	"encoding/json"
	"strings"
	"time"
)

// Platform identifies the runtime the purchasing client reported.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

// ParsePlatform maps a client-reported platform string onto one of the three
// supported tags. Anything unrecognized falls back to web.
func ParsePlatform(s string) Platform {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ios", "iphone", "ipad":
		return PlatformIOS
	case "android":
		return PlatformAndroid
	default:
		return PlatformWeb
	}
}

// CancelledMessage is the normalized error text for user-cancelled purchases.
// It deliberately replaces whatever text the backend produced so the UI can
// show a calm, consistent notice.
const CancelledMessage = "Purchase cancelled"

// UnavailableMessage is returned when no purchase backend is configured for
// the current runtime. Operations short-circuit before any network call.
const UnavailableMessage = "In-app purchases are not available on this platform"

// Outcome is the normalized result of a purchase or restore attempt.
type Outcome struct {
	Success       bool            `json:"success"`
	ProductID     string          `json:"product_id,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Platform      Platform        `json:"platform"`
	Error         string          `json:"error,omitempty"`
	Raw           json.RawMessage `json:"raw,omitempty"`
}

// Package is one purchasable product inside an offering.
type Package struct {
	Identifier  string  `json:"identifier"`
	ProductID   string  `json:"product_id"`
	PriceString string  `json:"price_string"`
	Currency    string  `json:"currency"`
	Amount      float64 `json:"amount"`
}

// Offering groups the packages currently presented to the user.
type Offering struct {
	Identifier string    `json:"identifier"`
	Packages   []Package `json:"packages"`
}

// Entitlement is an active named capability reported by the backend.
type Entitlement struct {
	ProductID string     `json:"product_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// CustomerInfo is the backend's view of one subscriber.
type CustomerInfo struct {
	AppUserID    string                 `json:"app_user_id"`
	Entitlements map[string]Entitlement `json:"entitlements"`
	Raw          json.RawMessage        `json:"-"`
}
