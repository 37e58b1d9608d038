package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/HabitFox/app/models"
	"github.com/ManuelReschke/HabitFox/app/repository"
	"github.com/ManuelReschke/HabitFox/internal/pkg/entitlements"
	"github.com/ManuelReschke/HabitFox/internal/pkg/usercontext"
)

// HabitOverview is the per-habit view state shown on the dashboard.
type HabitOverview struct {
	Habit       models.Habit
	Streak      int
	DoneToday   bool
	TotalChecks int
}

// HandleStart renders the landing page for guests and the habit dashboard for
// logged-in users.
func HandleStart(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return renderPage(c, "pages/home", fiber.Map{
			"Title": "Build habits that stick",
		})
	}

	repo := repository.GetGlobalFactory().GetHabitRepository()
	habits, err := repo.GetByUserID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("failed to load habits")
	}

	now := time.Now()
	overviews := buildHabitOverviews(repo, habits, now)

	plan := entitlements.NormalizePlan(userCtx.Plan)
	return renderPage(c, "pages/dashboard", fiber.Map{
		"Title":     "Your habits",
		"Habits":    overviews,
		"MaxHabits": entitlements.MaxHabits(plan),
		"CanAddHabit": entitlements.MaxHabits(plan) < 0 ||
			len(habits) < entitlements.MaxHabits(plan),
	})
}

// HandleAbout renders the static about page.
func HandleAbout(c *fiber.Ctx) error {
	return renderPage(c, "pages/about", fiber.Map{
		"Title": "About",
	})
}

func buildHabitOverviews(repo repository.HabitRepository, habits []models.Habit, now time.Time) []HabitOverview {
	overviews := make([]HabitOverview, 0, len(habits))
	today := models.DayOf(now)
	// A year of history is plenty for streak math on the dashboard.
	since := today.AddDate(-1, 0, 0)

	for _, h := range habits {
		days, err := repo.EntryDays(h.ID, since)
		if err != nil {
			days = nil
		}
		doneToday := false
		for _, d := range days {
			if d.Equal(today) {
				doneToday = true
				break
			}
		}
		overviews = append(overviews, HabitOverview{
			Habit:       h,
			Streak:      models.StreakDays(days, now),
			DoneToday:   doneToday,
			TotalChecks: len(days),
		})
	}
	return overviews
}
