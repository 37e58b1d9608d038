package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/HabitFox/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, *models.UserSettings, error)
	Update(user *models.User) error
	Delete(id uint) error
	Count() (int64, error)
}

// HabitRepository defines the interface for habit-related database operations
type HabitRepository interface {
	Create(habit *models.Habit) error
	GetByID(id uint) (*models.Habit, error)
	GetByUserID(userID uint) ([]models.Habit, error)
	CountActiveByUserID(userID uint) (int64, error)
	Update(habit *models.Habit) error
	Delete(id uint) error
	CheckIn(habitID uint, day time.Time) error
	EntryDays(habitID uint, since time.Time) ([]time.Time, error)
}

// EntitlementRepository persists the premium entitlement mirror and the
// purchase receipts. It satisfies entitlements.CacheStore.
type EntitlementRepository interface {
	Get(ctx context.Context, userID uint) (*models.EntitlementRecord, error)
	Put(ctx context.Context, userID uint, isPremium bool, expiresAt *time.Time) error
	RecordReceipt(receipt *models.PurchaseReceipt) error
	ListReceiptsByUser(userID uint, limit int) ([]models.PurchaseReceipt, error)
}

// Repositories bundles all repository implementations
type Repositories struct {
	User        UserRepository
	Habit       HabitRepository
	Entitlement EntitlementRepository
}
