package purchase

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in   string
		want Platform
	}{
		{in: "ios", want: PlatformIOS},
		{in: "iPhone", want: PlatformIOS},
		{in: "ANDROID", want: PlatformAndroid},
		{in: "web", want: PlatformWeb},
		{in: "", want: PlatformWeb},
		{in: "windows", want: PlatformWeb},
	}

	for _, tt := range tests {
		if got := ParsePlatform(tt.in); got != tt.want {
			t.Fatalf("ParsePlatform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRawEntitlementExpiryFieldDrift(t *testing.T) {
	var legacy rawEntitlement
	if err := json.Unmarshal([]byte(`{"product_identifier":"premium_yearly","expirationDate":"2099-01-01"}`), &legacy); err != nil {
		t.Fatalf("unmarshal legacy shape: %v", err)
	}
	ent := legacy.normalize()
	if ent.ExpiresAt == nil || !ent.ExpiresAt.Equal(time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("legacy expirationDate not normalized, got %v", ent.ExpiresAt)
	}

	var current rawEntitlement
	if err := json.Unmarshal([]byte(`{"product_identifier":"premium_yearly","expires_date":"2099-01-01T00:00:00Z"}`), &current); err != nil {
		t.Fatalf("unmarshal current shape: %v", err)
	}
	ent = current.normalize()
	if ent.ExpiresAt == nil || !ent.ExpiresAt.Equal(time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expires_date not normalized, got %v", ent.ExpiresAt)
	}

	none := rawEntitlement{ProductIdentifier: "premium_lifetime"}
	if got := none.normalize(); got.ExpiresAt != nil {
		t.Fatalf("missing expiry must normalize to nil, got %v", got.ExpiresAt)
	}
}

func TestRawProductAmountFieldDrift(t *testing.T) {
	price := 4.99
	micros := int64(4990000)

	tests := []struct {
		name string
		in   rawProduct
		want float64
	}{
		{name: "price", in: rawProduct{Price: &price}, want: 4.99},
		{name: "price_amount", in: rawProduct{PriceAmount: &price}, want: 4.99},
		{name: "micros", in: rawProduct{PriceAmountMicros: &micros}, want: 4.99},
		{name: "absent", in: rawProduct{}, want: 0},
	}

	for _, tt := range tests {
		if got := tt.in.amount(); got != tt.want {
			t.Fatalf("%s: amount = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRawPackageProductIDFallback(t *testing.T) {
	p := rawPackage{Identifier: "$rc_annual", Product: rawProduct{Identifier: "premium_yearly"}}
	if got := p.normalize().ProductID; got != "premium_yearly" {
		t.Fatalf("expected fallback to product identifier, got %q", got)
	}

	p.PlatformProductIdentifier = "premium_yearly:ios"
	if got := p.normalize().ProductID; got != "premium_yearly:ios" {
		t.Fatalf("expected platform product identifier to win, got %q", got)
	}
}

func TestIsCancellation(t *testing.T) {
	tests := []struct {
		code    string
		message string
		want    bool
	}{
		{code: "PURCHASE_CANCELLED", message: "", want: true},
		{code: "purchase_cancelled", message: "", want: true},
		{code: "", message: "User Cancelled the purchase", want: true},
		{code: "", message: "operation CANCELED by user", want: true},
		{code: "STORE_PROBLEM", message: "receipt invalid", want: false},
	}

	for _, tt := range tests {
		if got := isCancellation(tt.code, tt.message); got != tt.want {
			t.Fatalf("isCancellation(%q, %q) = %v, want %v", tt.code, tt.message, got, tt.want)
		}
	}
}
