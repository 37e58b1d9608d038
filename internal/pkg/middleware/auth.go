package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/HabitFox/internal/pkg/usercontext"
)

// RequireAuth ensures a logged-in web session; redirects to /login if missing.
func RequireAuth(c *fiber.Ctx) error {
	loggedIn, _ := c.Locals(usercontext.KeyFromProtected).(bool)
	if !loggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	return c.Next()
}
