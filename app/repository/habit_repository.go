package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/HabitFox/app/models"
)

type gormHabitRepository struct {
	db *gorm.DB
}

// NewHabitRepository creates a habit repository backed by GORM.
func NewHabitRepository(db *gorm.DB) HabitRepository {
	return &gormHabitRepository{db: db}
}

func (r *gormHabitRepository) Create(habit *models.Habit) error {
	return r.db.Create(habit).Error
}

func (r *gormHabitRepository) GetByID(id uint) (*models.Habit, error) {
	var habit models.Habit
	if err := r.db.First(&habit, id).Error; err != nil {
		return nil, err
	}
	return &habit, nil
}

func (r *gormHabitRepository) GetByUserID(userID uint) ([]models.Habit, error) {
	var habits []models.Habit
	err := r.db.Where("user_id = ? AND archived = ?", userID, false).
		Order("created_at ASC").
		Find(&habits).Error
	return habits, err
}

func (r *gormHabitRepository) CountActiveByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Habit{}).
		Where("user_id = ? AND archived = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *gormHabitRepository) Update(habit *models.Habit) error {
	return r.db.Save(habit).Error
}

func (r *gormHabitRepository) Delete(id uint) error {
	return r.db.Delete(&models.Habit{}, id).Error
}

// CheckIn records a habit as done for a day; repeated check-ins on the same
// day are absorbed by the unique index.
func (r *gormHabitRepository) CheckIn(habitID uint, day time.Time) error {
	entry := models.HabitEntry{HabitID: habitID, Day: models.DayOf(day)}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "habit_id"}, {Name: "day"}},
		DoNothing: true,
	}).Create(&entry).Error
}

func (r *gormHabitRepository) EntryDays(habitID uint, since time.Time) ([]time.Time, error) {
	var entries []models.HabitEntry
	if err := r.db.Where("habit_id = ? AND day >= ?", habitID, models.DayOf(since)).
		Order("day ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	days := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		days = append(days, e.Day)
	}
	return days, nil
}
