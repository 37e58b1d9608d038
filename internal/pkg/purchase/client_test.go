package purchase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := &Client{
		APIKey:     "test-key",
		APIBaseURL: srv.URL,
		HTTPClient: srv.Client(),
	}
	c.Configure("user:42")
	return c, srv
}

func offeringsHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/subscribers/user:42/offerings":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"current_offering_id": "default",
				"offerings": []map[string]interface{}{
					{
						"identifier": "default",
						"packages": []map[string]interface{}{
							{
								"identifier":                  "$rc_monthly",
								"platform_product_identifier": "premium_monthly",
								"product": map[string]interface{}{
									"price_string":  "4,99 €",
									"currency_code": "EUR",
									"price":         4.99,
								},
							},
						},
					},
				},
			})
		case "/subscribers/user:42/purchases":
			_ = json.NewEncoder(w).Encode(map[string]string{"transaction_id": "txn_123"})
		default:
			t.Fatalf("unexpected request path %s", r.URL.Path)
		}
	}
}

func TestPurchaseSuccess(t *testing.T) {
	c, _ := newTestClient(t, offeringsHandler(t))

	out, err := c.Purchase(context.Background(), "premium_monthly", PlatformIOS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Success {
		t.Fatalf("expected success, got error %q", out.Error)
	}
	if out.TransactionID != "txn_123" {
		t.Fatalf("unexpected transaction id %q", out.TransactionID)
	}
	if out.ProductID != "premium_monthly" || out.Platform != PlatformIOS {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestPurchaseUnknownProduct(t *testing.T) {
	c, _ := newTestClient(t, offeringsHandler(t))

	out, err := c.Purchase(context.Background(), "premium_lifetime", PlatformAndroid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Success {
		t.Fatalf("expected failure outcome")
	}
	if out.Error == "" {
		t.Fatalf("expected descriptive error message")
	}
}

func TestPurchaseCancellationNormalized(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/subscribers/user:42/purchases" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"code":    "STORE_PROBLEM",
				"message": "The user cancelled the transaction before completion",
			})
			return
		}
		offeringsHandler(t)(w, r)
	})

	out, err := c.Purchase(context.Background(), "premium_monthly", PlatformIOS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Success {
		t.Fatalf("expected failure outcome")
	}
	if out.Error != CancelledMessage {
		t.Fatalf("expected normalized cancellation message, got %q", out.Error)
	}
}

func TestPurchaseUnavailableWithoutAPIKey(t *testing.T) {
	// nil HTTPClient + empty key: any attempted network call would panic,
	// proving the short-circuit never reaches the transport.
	c := &Client{}
	c.Configure("user:42")

	out, err := c.Purchase(context.Background(), "premium_monthly", PlatformWeb)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Success || out.Error != UnavailableMessage {
		t.Fatalf("expected unavailable outcome, got %+v", out)
	}

	restore, err := c.Restore(context.Background(), PlatformWeb)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restore.Success || restore.Error != UnavailableMessage {
		t.Fatalf("expected unavailable restore outcome, got %+v", restore)
	}
}

func TestPurchaseRequiresConfiguration(t *testing.T) {
	c := &Client{APIKey: "test-key"}
	if _, err := c.Purchase(context.Background(), "premium_monthly", PlatformIOS); err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestConfigureIdentityChange(t *testing.T) {
	c := &Client{APIKey: "test-key"}
	c.Configure("user:1")
	c.Configure("user:1")
	if got, _ := c.configuredUser(); got != "user:1" {
		t.Fatalf("unexpected app user id %q", got)
	}

	c.Configure("user:2")
	if got, _ := c.configuredUser(); got != "user:2" {
		t.Fatalf("expected identity switch, got %q", got)
	}
}

func TestActiveEntitlement(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/subscribers/user:42" {
			t.Fatalf("unexpected request path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"subscriber": map[string]interface{}{
				"app_user_id": "user:42",
				"entitlements": map[string]interface{}{
					"premium": map[string]interface{}{
						"product_identifier": "premium_yearly",
						"expires_date":       "2099-01-01T00:00:00Z",
					},
				},
			},
		})
	})

	active, expiresAt, err := c.ActiveEntitlement(context.Background(), "premium")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !active {
		t.Fatalf("expected active entitlement")
	}
	if expiresAt == nil || expiresAt.Year() != 2099 {
		t.Fatalf("unexpected expiry %v", expiresAt)
	}

	active, expiresAt, err = c.ActiveEntitlement(context.Background(), "pro")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if active || expiresAt != nil {
		t.Fatalf("absent entitlement must be inactive without error")
	}
}
