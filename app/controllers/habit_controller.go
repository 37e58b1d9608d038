package controllers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/HabitFox/app/models"
	"github.com/ManuelReschke/HabitFox/app/repository"
	"github.com/ManuelReschke/HabitFox/internal/pkg/entitlements"
	"github.com/ManuelReschke/HabitFox/internal/pkg/usercontext"
)

const habitLimitMessage = "The free plan is limited to 3 active habits. Upgrade to Premium for unlimited habits."
const weeklyCadenceMessage = "Weekly habits are a Premium feature."

// HandleHabitCreate adds a new habit, enforcing the plan's habit limit.
func HandleHabitCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	name := strings.TrimSpace(c.FormValue("name"))
	emoji := strings.TrimSpace(c.FormValue("emoji"))
	cadence := strings.TrimSpace(c.FormValue("cadence"))
	if cadence == "" {
		cadence = models.HabitCadenceDaily
	}

	if name == "" {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Please give your habit a name"}).Redirect("/")
	}

	plan := entitlements.NormalizePlan(userCtx.Plan)
	if cadence == models.HabitCadenceWeekly && !entitlements.CanWeeklyCadence(plan) {
		return flash.WithError(c, fiber.Map{"type": "error", "message": weeklyCadenceMessage}).Redirect("/")
	}

	repo := repository.GetGlobalFactory().GetHabitRepository()
	if max := entitlements.MaxHabits(plan); max >= 0 {
		count, err := repo.CountActiveByUserID(userCtx.UserID)
		if err != nil {
			return flash.WithError(c, fiber.Map{"type": "error", "message": "Could not check your habit count"}).Redirect("/")
		}
		if count >= int64(max) {
			return flash.WithError(c, fiber.Map{"type": "error", "message": habitLimitMessage}).Redirect("/")
		}
	}

	habit := &models.Habit{
		UserID:  userCtx.UserID,
		Name:    name,
		Emoji:   emoji,
		Cadence: cadence,
	}
	if err := habit.Validate(); err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}).Redirect("/")
	}
	if err := repo.Create(habit); err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Could not create the habit"}).Redirect("/")
	}

	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Habit created. Day one starts now!"}).Redirect("/")
}

// HandleHabitCheckIn marks a habit done for today. Checking in twice on the
// same day is a no-op.
func HandleHabitCheckIn(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	habit, err := loadOwnedHabit(c, userCtx.UserID)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Habit not found"}).Redirect("/")
	}

	repo := repository.GetGlobalFactory().GetHabitRepository()
	if err := repo.CheckIn(habit.ID, time.Now()); err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Could not record the check-in"}).Redirect("/")
	}

	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Checked in. Keep it going!"}).Redirect("/")
}

// HandleHabitArchive hides a habit from the dashboard and frees its slot.
func HandleHabitArchive(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	habit, err := loadOwnedHabit(c, userCtx.UserID)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Habit not found"}).Redirect("/")
	}

	habit.Archived = true
	repo := repository.GetGlobalFactory().GetHabitRepository()
	if err := repo.Update(habit); err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Could not archive the habit"}).Redirect("/")
	}

	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Habit archived"}).Redirect("/")
}

// HandleHabitDelete removes a habit and its history.
func HandleHabitDelete(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	habit, err := loadOwnedHabit(c, userCtx.UserID)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Habit not found"}).Redirect("/")
	}

	repo := repository.GetGlobalFactory().GetHabitRepository()
	if err := repo.Delete(habit.ID); err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Could not delete the habit"}).Redirect("/")
	}

	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Habit deleted"}).Redirect("/")
}

// HandleHabitExport streams the check-in history as CSV. Premium only.
func HandleHabitExport(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	plan := entitlements.NormalizePlan(userCtx.Plan)
	if !entitlements.CanExportHistory(plan) {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Exporting your history is a Premium feature."}).Redirect("/premium")
	}

	repo := repository.GetGlobalFactory().GetHabitRepository()
	habits, err := repo.GetByUserID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("failed to load habits")
	}

	var sb strings.Builder
	sb.WriteString("habit,day\n")
	since := models.DayOf(time.Now()).AddDate(-5, 0, 0)
	for _, h := range habits {
		days, err := repo.EntryDays(h.ID, since)
		if err != nil {
			continue
		}
		for _, d := range days {
			sb.WriteString(csvField(h.Name))
			sb.WriteString(",")
			sb.WriteString(d.Format("2006-01-02"))
			sb.WriteString("\n")
		}
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="habitfox-history.csv"`)
	return c.SendString(sb.String())
}

func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

func loadOwnedHabit(c *fiber.Ctx, userID uint) (*models.Habit, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return nil, err
	}
	repo := repository.GetGlobalFactory().GetHabitRepository()
	habit, err := repo.GetByID(uint(id))
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, fmt.Errorf("habit %d does not belong to user %d", habit.ID, userID)
	}
	return habit, nil
}
