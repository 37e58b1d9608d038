package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	HabitCadenceDaily  = "daily"
	HabitCadenceWeekly = "weekly"
)

// Habit is a recurring activity the user wants to keep a streak on.
type Habit struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Name      string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=1,max=150"`
	Emoji     string         `gorm:"type:varchar(16)" json:"emoji"`
	Cadence   string         `gorm:"type:varchar(16);not null;default:'daily'" json:"cadence" validate:"oneof=daily weekly"`
	Archived  bool           `gorm:"default:false" json:"archived"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Entries []HabitEntry `gorm:"foreignKey:HabitID" json:"-"`
}

// HabitEntry marks a habit as done for one calendar day. Day is stored
// truncated to midnight UTC so the unique index deduplicates check-ins.
type HabitEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	HabitID   uint      `gorm:"not null;index:ux_habit_entries_habit_day,unique,priority:1" json:"habit_id"`
	Day       time.Time `gorm:"type:date;not null;index:ux_habit_entries_habit_day,unique,priority:2" json:"day"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (h *Habit) Validate() error {
	v := validator.New()

	return v.Struct(h)
}

// DayOf truncates a timestamp to its calendar day in UTC.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StreakDays computes the current run of consecutive checked-in days ending
// today or yesterday. Days must not contain duplicates; order is irrelevant.
// A streak that ended before yesterday counts as zero.
func StreakDays(days []time.Time, now time.Time) int {
	if len(days) == 0 {
		return 0
	}

	done := make(map[time.Time]bool, len(days))
	for _, d := range days {
		done[DayOf(d)] = true
	}

	cursor := DayOf(now)
	if !done[cursor] {
		// Grace: a streak is still alive if the last check-in was yesterday.
		cursor = cursor.AddDate(0, 0, -1)
		if !done[cursor] {
			return 0
		}
	}

	streak := 0
	for done[cursor] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}
