package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	EntitlementSourceStore = "store"
	EntitlementSourceCache = "cache"
)

// EntitlementRecord is the convenience mirror of the purchase backend's
// "premium" entitlement, keyed by user. The purchase backend stays the
// authoritative source; this row is a best-effort cache that may go stale.
type EntitlementRecord struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	IsPremium        bool       `gorm:"default:false" json:"is_premium"`
	PremiumExpiresAt *time.Time `gorm:"type:timestamp;default:null" json:"premium_expires_at,omitempty"`
	SyncedAt         *time.Time `gorm:"type:timestamp;default:null" json:"synced_at,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsActiveAt reports whether the cached entitlement counts as active at the
// given instant: the stored flag must be set and any stored expiry must lie
// in the future.
func (r *EntitlementRecord) IsActiveAt(now time.Time) bool {
	if r == nil || !r.IsPremium {
		return false
	}
	return r.PremiumExpiresAt == nil || r.PremiumExpiresAt.After(now)
}

// GetEntitlementRecord loads the cache row for a user. A missing row is not
// an error; callers receive (nil, nil) and treat it as "not premium".
func GetEntitlementRecord(db *gorm.DB, userID uint) (*EntitlementRecord, error) {
	var rec EntitlementRecord
	if err := db.Where("user_id = ?", userID).First(&rec).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}
