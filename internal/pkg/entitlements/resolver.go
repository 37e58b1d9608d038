package entitlements

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ManuelReschke/HabitFox/app/models"
)

// Status is the resolved premium state for one user.
type Status struct {
	IsPremium bool       `json:"is_premium"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Source answers whether a named entitlement is currently active for an app
// user id, from the authoritative purchase backend.
type Source interface {
	Available() bool
	ActiveEntitlement(ctx context.Context, name string) (bool, *time.Time, error)
}

// ConfigurableSource additionally binds the backend to an app user id before
// queries; the binding is re-established whenever the identity changes.
type ConfigurableSource interface {
	Source
	Configure(appUserID string)
}

// CacheStore reads and writes the convenience entitlement mirror. Get returns
// (nil, nil) when no row exists for the user.
type CacheStore interface {
	Get(ctx context.Context, userID uint) (*models.EntitlementRecord, error)
	Put(ctx context.Context, userID uint, isPremium bool, expiresAt *time.Time) error
}

// Resolver computes the premium status for a user. When the purchase backend
// is reachable it is authoritative and the cache row is refreshed as an
// advisory write whose failure is discarded; otherwise the cache row decides.
type Resolver struct {
	source Source
	cache  CacheStore
	now    func() time.Time
}

func NewResolver(source Source, cache CacheStore) *Resolver {
	return &Resolver{source: source, cache: cache, now: time.Now}
}

// AppUserID derives the purchase-backend subscriber id for a local user.
func AppUserID(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// Resolve never fails the caller: any error during resolution is logged and
// collapsed to "not premium".
func (r *Resolver) Resolve(ctx context.Context, userID uint) Status {
	status, err := r.resolve(ctx, userID)
	if err != nil {
		log.Printf("entitlements: resolution failed for user %d, treating as not premium: %v", userID, err)
		return Status{}
	}
	return status
}

func (r *Resolver) resolve(ctx context.Context, userID uint) (Status, error) {
	if r.source != nil && r.source.Available() {
		if cs, ok := r.source.(ConfigurableSource); ok {
			cs.Configure(AppUserID(userID))
		}
		active, expiresAt, err := r.source.ActiveEntitlement(ctx, EntitlementPremium)
		if err != nil {
			return Status{}, err
		}
		// Advisory write: the cache row only mirrors what the backend just
		// reported. Failures are discarded, never surfaced or retried.
		if r.cache != nil {
			if werr := r.cache.Put(ctx, userID, active, expiresAt); werr != nil {
				log.Printf("entitlements: advisory cache write for user %d discarded: %v", userID, werr)
			}
		}
		return Status{IsPremium: active, ExpiresAt: expiresAt}, nil
	}

	if r.cache == nil {
		return Status{}, nil
	}
	rec, err := r.cache.Get(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	if rec == nil || !rec.IsActiveAt(r.now()) {
		return Status{}, nil
	}
	return Status{IsPremium: true, ExpiresAt: rec.PremiumExpiresAt}, nil
}
