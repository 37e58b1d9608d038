package controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ManuelReschke/HabitFox/app/models"
	"github.com/ManuelReschke/HabitFox/app/repository"
	"github.com/ManuelReschke/HabitFox/internal/pkg/entitlements"
	"github.com/ManuelReschke/HabitFox/internal/pkg/usercontext"
)

// HandleAPIListHabits returns the user's active habits with streak info.
func HandleAPIListHabits(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	repo := repository.GetGlobalFactory().GetHabitRepository()
	habits, err := repo.GetByUserID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load habits"})
	}

	now := time.Now()
	overviews := buildHabitOverviews(repo, habits, now)

	items := make([]fiber.Map, 0, len(overviews))
	for _, o := range overviews {
		items = append(items, fiber.Map{
			"id":           o.Habit.ID,
			"name":         o.Habit.Name,
			"emoji":        o.Habit.Emoji,
			"cadence":      o.Habit.Cadence,
			"streak_days":  o.Streak,
			"done_today":   o.DoneToday,
			"total_checks": o.TotalChecks,
			"created_at":   o.Habit.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(fiber.Map{"habits": items})
}

// HandleAPICreateHabit creates a habit, enforcing the same plan gates as the
// web form.
func HandleAPICreateHabit(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	var req struct {
		Name    string `json:"name"`
		Emoji   string `json:"emoji"`
		Cadence string `json:"cadence"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid JSON body"})
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": "Habit name is required"})
	}
	if req.Cadence == "" {
		req.Cadence = models.HabitCadenceDaily
	}

	plan := entitlements.NormalizePlan(userCtx.Plan)
	if req.Cadence == models.HabitCadenceWeekly && !entitlements.CanWeeklyCadence(plan) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "plan_limit", "message": weeklyCadenceMessage})
	}

	repo := repository.GetGlobalFactory().GetHabitRepository()
	if max := entitlements.MaxHabits(plan); max >= 0 {
		count, err := repo.CountActiveByUserID(userCtx.UserID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to check habit count"})
		}
		if count >= int64(max) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "plan_limit", "message": habitLimitMessage})
		}
	}

	habit := &models.Habit{
		UserID:  userCtx.UserID,
		Name:    req.Name,
		Emoji:   strings.TrimSpace(req.Emoji),
		Cadence: req.Cadence,
	}
	if err := habit.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}
	if err := repo.Create(habit); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create habit"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         habit.ID,
		"name":       habit.Name,
		"emoji":      habit.Emoji,
		"cadence":    habit.Cadence,
		"created_at": habit.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// HandleAPICheckInHabit records today's check-in for a habit.
func HandleAPICheckInHabit(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid habit id"})
	}

	repo := repository.GetGlobalFactory().GetHabitRepository()
	habit, err := repo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Habit not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load habit"})
	}
	if habit.UserID != userCtx.UserID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Habit not found"})
	}

	now := time.Now()
	if err := repo.CheckIn(habit.ID, now); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to record check-in"})
	}

	days, err := repo.EntryDays(habit.ID, models.DayOf(now).AddDate(-1, 0, 0))
	if err != nil {
		days = nil
	}

	return c.JSON(fiber.Map{
		"habit_id":    habit.ID,
		"day":         models.DayOf(now).Format("2006-01-02"),
		"streak_days": models.StreakDays(days, now),
	})
}
