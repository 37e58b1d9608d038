package entitlements

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/HabitFox/app/models"
)

type fakeSource struct {
	available  bool
	active     bool
	expiresAt  *time.Time
	err        error
	configured string
}

func (f *fakeSource) Available() bool { return f.available }

func (f *fakeSource) Configure(appUserID string) { f.configured = appUserID }

func (f *fakeSource) ActiveEntitlement(_ context.Context, name string) (bool, *time.Time, error) {
	if name != EntitlementPremium {
		return false, nil, nil
	}
	return f.active, f.expiresAt, f.err
}

type fakeCache struct {
	rec    *models.EntitlementRecord
	getErr error
	putErr error

	putCalled    bool
	putIsPremium bool
	putExpiresAt *time.Time
}

func (f *fakeCache) Get(_ context.Context, _ uint) (*models.EntitlementRecord, error) {
	return f.rec, f.getErr
}

func (f *fakeCache) Put(_ context.Context, _ uint, isPremium bool, expiresAt *time.Time) error {
	f.putCalled = true
	f.putIsPremium = isPremium
	f.putExpiresAt = expiresAt
	return f.putErr
}

func TestResolveNoRecordNoSource(t *testing.T) {
	r := NewResolver(&fakeSource{available: false}, &fakeCache{})

	status := r.Resolve(context.Background(), 7)
	assert.False(t, status.IsPremium)
	assert.Nil(t, status.ExpiresAt)
}

func TestResolveCachedRecordExpired(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	cache := &fakeCache{rec: &models.EntitlementRecord{UserID: 7, IsPremium: true, PremiumExpiresAt: &past}}
	r := NewResolver(&fakeSource{available: false}, cache)

	status := r.Resolve(context.Background(), 7)
	assert.False(t, status.IsPremium, "expired cache row must resolve to not premium even with flag set")
}

func TestResolveCachedRecordNoExpiry(t *testing.T) {
	cache := &fakeCache{rec: &models.EntitlementRecord{UserID: 7, IsPremium: true}}
	r := NewResolver(&fakeSource{available: false}, cache)

	status := r.Resolve(context.Background(), 7)
	assert.True(t, status.IsPremium)
	assert.Nil(t, status.ExpiresAt)
}

func TestResolveSourceAuthoritativeWithAdvisoryWrite(t *testing.T) {
	expires := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{available: true, active: true, expiresAt: &expires}
	cache := &fakeCache{}
	r := NewResolver(source, cache)

	status := r.Resolve(context.Background(), 7)
	require.True(t, status.IsPremium)
	require.NotNil(t, status.ExpiresAt)
	assert.True(t, status.ExpiresAt.Equal(expires))

	assert.Equal(t, "user:7", source.configured)
	require.True(t, cache.putCalled, "advisory cache write must be attempted")
	assert.True(t, cache.putIsPremium)
	require.NotNil(t, cache.putExpiresAt)
	assert.True(t, cache.putExpiresAt.Equal(expires))
}

func TestResolveAdvisoryWriteFailureDiscarded(t *testing.T) {
	source := &fakeSource{available: true, active: true}
	cache := &fakeCache{putErr: errors.New("db down")}
	r := NewResolver(source, cache)

	status := r.Resolve(context.Background(), 7)
	assert.True(t, status.IsPremium, "advisory write failure must not affect the resolved status")
}

func TestResolveSourceMirrorsInactiveState(t *testing.T) {
	// An available backend that reports no entitlement still refreshes the
	// cache row so the mirror tracks downgrades too.
	source := &fakeSource{available: true, active: false}
	cache := &fakeCache{rec: &models.EntitlementRecord{UserID: 7, IsPremium: true}}
	r := NewResolver(source, cache)

	status := r.Resolve(context.Background(), 7)
	assert.False(t, status.IsPremium)
	require.True(t, cache.putCalled)
	assert.False(t, cache.putIsPremium)
}

func TestResolveFailsClosed(t *testing.T) {
	source := &fakeSource{available: true, err: errors.New("backend timeout")}
	cache := &fakeCache{}
	r := NewResolver(source, cache)

	status := r.Resolve(context.Background(), 7)
	assert.False(t, status.IsPremium)
	assert.False(t, cache.putCalled, "no advisory write without an observed state")

	r = NewResolver(&fakeSource{available: false}, &fakeCache{getErr: errors.New("db down")})
	status = r.Resolve(context.Background(), 7)
	assert.False(t, status.IsPremium)
}

func TestPlanGates(t *testing.T) {
	assert.Equal(t, PlanPremium, PlanFor(true))
	assert.Equal(t, PlanFree, PlanFor(false))
	assert.Equal(t, PlanPremium, NormalizePlan("PREMIUM"))
	assert.Equal(t, PlanFree, NormalizePlan("enterprise"))

	assert.Equal(t, 3, MaxHabits(PlanFree))
	assert.Negative(t, MaxHabits(PlanPremium))
	assert.False(t, CanWeeklyCadence(PlanFree))
	assert.True(t, CanWeeklyCadence(PlanPremium))
}
