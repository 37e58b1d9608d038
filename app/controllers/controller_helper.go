package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/HabitFox/internal/pkg/usercontext"
)

// Session keys are shared with the middlewares through usercontext so both
// sides always read and write the same strings.
const (
	AUTH_KEY       = usercontext.AuthKey
	USER_ID        = usercontext.KeyUserID
	USER_NAME      = usercontext.KeyUsername
	USER_IS_ADMIN  = usercontext.KeyIsAdmin
	USER_PLAN      = usercontext.KeyUserPlan
	FROM_PROTECTED = usercontext.KeyFromProtected
)

// renderPage renders a template with the shared view state (user context,
// CSRF token, flash toast) merged into the bind map.
func renderPage(c *fiber.Ctx, template string, data fiber.Map) error {
	userCtx := usercontext.GetUserContext(c)

	bind := fiber.Map{
		"IsLoggedIn": userCtx.IsLoggedIn,
		"Username":   userCtx.Username,
		"IsAdmin":    userCtx.IsAdmin,
		"Plan":       userCtx.Plan,
		"IsPremium":  userCtx.IsPremium(),
	}
	if token, ok := c.Locals("csrf").(string); ok {
		bind["CSRFToken"] = token
	}
	if fm := flash.Get(c); len(fm) > 0 {
		bind["FlashType"] = fm["type"]
		bind["FlashMessage"] = fm["message"]
	}
	for k, v := range data {
		bind[k] = v
	}

	return c.Render(template, bind)
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
