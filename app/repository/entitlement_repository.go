package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/HabitFox/app/models"
)

type gormEntitlementRepository struct {
	db *gorm.DB
}

// NewEntitlementRepository creates an entitlement repository backed by GORM.
func NewEntitlementRepository(db *gorm.DB) EntitlementRepository {
	return &gormEntitlementRepository{db: db}
}

func (r *gormEntitlementRepository) Get(ctx context.Context, userID uint) (*models.EntitlementRecord, error) {
	return models.GetEntitlementRecord(r.db.WithContext(ctx), userID)
}

// Put upserts the mirror row for a user; last write wins, concurrent
// resolutions are deliberately not serialized.
func (r *gormEntitlementRepository) Put(ctx context.Context, userID uint, isPremium bool, expiresAt *time.Time) error {
	now := time.Now()
	rec := models.EntitlementRecord{
		UserID:           userID,
		IsPremium:        isPremium,
		PremiumExpiresAt: expiresAt,
		SyncedAt:         &now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_premium",
			"premium_expires_at",
			"synced_at",
			"updated_at",
		}),
	}).Create(&rec).Error
}

func (r *gormEntitlementRepository) RecordReceipt(receipt *models.PurchaseReceipt) error {
	return r.db.Create(receipt).Error
}

func (r *gormEntitlementRepository) ListReceiptsByUser(userID uint, limit int) ([]models.PurchaseReceipt, error) {
	if limit <= 0 {
		limit = 20
	}
	var receipts []models.PurchaseReceipt
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&receipts).Error
	return receipts, err
}
