package router

import (
	"strings"
	"time"

	"github.com/ManuelReschke/HabitFox/app/controllers"
	"github.com/ManuelReschke/HabitFox/internal/pkg/env"
	"github.com/ManuelReschke/HabitFox/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Get("/", loggedInMiddleware, controllers.HandleStart)
	group.Get("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Post("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Get("/register", loggedInMiddleware, controllers.HandleAuthRegister)
	group.Post("/register", loggedInMiddleware, controllers.HandleAuthRegister)
	group.Get("/activate", loggedInMiddleware, controllers.HandleAuthActivate)

	// Habits
	group.Post("/habits", middleware.RequireAuth, controllers.HandleHabitCreate)
	group.Post("/habits/:id/checkin", middleware.RequireAuth, controllers.HandleHabitCheckIn)
	group.Post("/habits/:id/archive", middleware.RequireAuth, controllers.HandleHabitArchive)
	group.Post("/habits/:id/delete", middleware.RequireAuth, controllers.HandleHabitDelete)

	// Premium / purchases
	group.Get("/premium", middleware.RequireAuth, controllers.HandlePremium)
	group.Post("/premium/purchase", middleware.RequireAuth, controllers.HandlePurchase)
	group.Post("/premium/restore", middleware.RequireAuth, controllers.HandleRestore)

	// API key self-service; the raw key is returned once on issue
	group.Post("/user/settings/api-key", middleware.RequireAuth, controllers.HandleIssueAPIKey)
	group.Post("/user/settings/api-key/revoke", middleware.RequireAuth, controllers.HandleRevokeAPIKey)
}
