package purchase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ManuelReschke/HabitFox/internal/pkg/env"
)

const defaultAPIBaseURL = "https://api.purchasekit.io/v1"

// ErrNotConfigured is returned when a subscriber operation runs before
// Configure associated an app user id with the client.
var ErrNotConfigured = errors.New("purchase client is not configured with an app user id")

// Client talks to the hosted purchase backend. A zero API key means the
// backend is unavailable on this runtime; all operations then short-circuit
// without touching the network.
type Client struct {
	APIKey     string
	APIBaseURL string
	HTTPClient *http.Client

	mu        sync.Mutex
	appUserID string
}

func NewClientFromEnv() *Client {
	return &Client{
		APIKey:     strings.TrimSpace(env.GetEnv("PURCHASES_API_KEY", "")),
		APIBaseURL: strings.TrimRight(env.GetEnv("PURCHASES_API_URL", defaultAPIBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Available reports whether a purchase backend is configured at all.
func (c *Client) Available() bool {
	return c != nil && strings.TrimSpace(c.APIKey) != ""
}

// Configure associates the client with an app user id. Calling it again with
// a different id drops the previous association; calling it with the same id
// is a no-op, so callers may invoke it on every request.
func (c *Client) Configure(appUserID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	appUserID = strings.TrimSpace(appUserID)
	if c.appUserID == appUserID {
		return
	}
	c.appUserID = appUserID
}

func (c *Client) configuredUser() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.appUserID == "" {
		return "", ErrNotConfigured
	}
	return c.appUserID, nil
}

// GetOfferings fetches the current default offering for the configured user.
func (c *Client) GetOfferings(ctx context.Context) (*Offering, error) {
	if !c.Available() {
		return nil, errors.New(UnavailableMessage)
	}
	user, err := c.configuredUser()
	if err != nil {
		return nil, err
	}

	var resp struct {
		CurrentOfferingID string        `json:"current_offering_id"`
		Offerings         []rawOffering `json:"offerings"`
	}
	if _, err := c.doJSON(ctx, http.MethodGet, "/subscribers/"+user+"/offerings", nil, &resp); err != nil {
		return nil, err
	}

	for _, o := range resp.Offerings {
		if o.Identifier == resp.CurrentOfferingID {
			return o.normalize(), nil
		}
	}
	if len(resp.Offerings) > 0 {
		return resp.Offerings[0].normalize(), nil
	}
	return nil, errors.New("purchase backend returned no offerings")
}

// GetCustomerInfo fetches the subscriber including its entitlement mapping.
func (c *Client) GetCustomerInfo(ctx context.Context) (*CustomerInfo, error) {
	if !c.Available() {
		return nil, errors.New(UnavailableMessage)
	}
	user, err := c.configuredUser()
	if err != nil {
		return nil, err
	}

	var resp struct {
		Subscriber rawSubscriber `json:"subscriber"`
	}
	raw, err := c.doJSON(ctx, http.MethodGet, "/subscribers/"+user, nil, &resp)
	if err != nil {
		return nil, err
	}
	info := resp.Subscriber.normalize()
	info.Raw = raw
	return info, nil
}

// ActiveEntitlement reports whether the named entitlement is active for the
// configured user, with its normalized expiry. Absence is not an error.
func (c *Client) ActiveEntitlement(ctx context.Context, name string) (bool, *time.Time, error) {
	info, err := c.GetCustomerInfo(ctx)
	if err != nil {
		return false, nil, err
	}
	ent, ok := info.Entitlements[name]
	if !ok {
		return false, nil, nil
	}
	return true, ent.ExpiresAt, nil
}

// Purchase looks the product up in the current offering and executes the
// purchase, returning a normalized Outcome. Backend failures are folded into
// the Outcome; the error return is reserved for a missing configuration.
func (c *Client) Purchase(ctx context.Context, productID string, platform Platform) (Outcome, error) {
	if !c.Available() {
		return unavailableOutcome(productID, platform), nil
	}
	user, err := c.configuredUser()
	if err != nil {
		return Outcome{}, err
	}

	offering, err := c.GetOfferings(ctx)
	if err != nil {
		return Outcome{ProductID: productID, Platform: platform, Error: err.Error()}, nil
	}

	var pkg *Package
	for i := range offering.Packages {
		if offering.Packages[i].ProductID == productID {
			pkg = &offering.Packages[i]
			break
		}
	}
	if pkg == nil {
		return Outcome{
			ProductID: productID,
			Platform:  platform,
			Error:     fmt.Sprintf("product %q not found in offering %q", productID, offering.Identifier),
		}, nil
	}

	body := map[string]string{
		"package":    pkg.Identifier,
		"product_id": pkg.ProductID,
		"platform":   string(platform),
	}
	var resp struct {
		TransactionID string `json:"transaction_id"`
	}
	raw, err := c.doJSON(ctx, http.MethodPost, "/subscribers/"+user+"/purchases", body, &resp)
	if err != nil {
		return failureOutcome(productID, platform, err, raw), nil
	}

	return Outcome{
		Success:       true,
		ProductID:     pkg.ProductID,
		TransactionID: resp.TransactionID,
		Platform:      platform,
		Raw:           raw,
	}, nil
}

// Restore re-syncs the subscriber's historical transactions and returns the
// refreshed customer info folded into an Outcome.
func (c *Client) Restore(ctx context.Context, platform Platform) (Outcome, error) {
	if !c.Available() {
		return unavailableOutcome("", platform), nil
	}
	user, err := c.configuredUser()
	if err != nil {
		return Outcome{}, err
	}

	raw, err := c.doJSON(ctx, http.MethodPost, "/subscribers/"+user+"/restore", map[string]string{}, nil)
	if err != nil {
		return failureOutcome("", platform, err, raw), nil
	}
	return Outcome{Success: true, Platform: platform, Raw: raw}, nil
}

func unavailableOutcome(productID string, platform Platform) Outcome {
	return Outcome{
		ProductID: productID,
		Platform:  platform,
		Error:     UnavailableMessage,
	}
}

func failureOutcome(productID string, platform Platform, err error, raw json.RawMessage) Outcome {
	out := Outcome{ProductID: productID, Platform: platform, Raw: raw}
	var be *backendError
	if errors.As(err, &be) && isCancellation(be.Code, be.Message) {
		out.Error = CancelledMessage
		return out
	}
	out.Error = err.Error()
	return out
}

// backendError carries the backend's structured error body.
type backendError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *backendError) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return fmt.Sprintf("purchase backend request failed: status=%d", e.StatusCode)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) (json.RawMessage, error) {
	if !c.Available() {
		return nil, errors.New("purchase backend is not configured")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = strings.NewReader(string(payload))
	}

	base := strings.TrimRight(c.APIBaseURL, "/")
	if base == "" {
		base = defaultAPIBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, method, base+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Idempotency-Key", uuid.NewString())
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		be := &backendError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(raw, be)
		return raw, be
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return raw, err
		}
	}
	return raw, nil
}
