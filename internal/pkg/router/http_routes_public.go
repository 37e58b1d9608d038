package router

import (
	"github.com/ManuelReschke/HabitFox/app/controllers"
	"github.com/ManuelReschke/HabitFox/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Static pages
	app.Get("/about", loggedInMiddleware, controllers.HandleAbout)

	// Check-in history export (premium)
	app.Get("/habits/export", middleware.RequireAuth, controllers.HandleHabitExport)

	// Auth
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)

	// Social OAuth
	app.Get("/auth/:provider", gothfiber.BeginAuthHandler)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)
}
