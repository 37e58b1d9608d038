package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/ManuelReschke/HabitFox/app/controllers"
	"github.com/ManuelReschke/HabitFox/internal/pkg/middleware"
)

// Pong is the ping endpoint response body.
type Pong struct {
	Ping string `json:"ping"`
}

// APIServer implements the public v1 API documented in public/docs/v1/openapi.yml
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetUserProfile returns account information for the authenticated user (API key).
// Security is enforced via API key middleware attached in the router.
func (s *APIServer) GetUserProfile(c *fiber.Ctx) error {
	return controllers.HandleGetUserAccount(c)
}

// GetUserEntitlement resolves the premium status for the authenticated user.
func (s *APIServer) GetUserEntitlement(c *fiber.Ctx) error {
	return controllers.HandleGetUserEntitlement(c)
}

// GetHabits lists the authenticated user's active habits with streaks.
func (s *APIServer) GetHabits(c *fiber.Ctx) error {
	return controllers.HandleAPIListHabits(c)
}

// PostHabit creates a habit, subject to the plan's habit limit.
func (s *APIServer) PostHabit(c *fiber.Ctx) error {
	return controllers.HandleAPICreateHabit(c)
}

// PostHabitCheckIn records today's check-in for a habit.
func (s *APIServer) PostHabitCheckIn(c *fiber.Ctx) error {
	return controllers.HandleAPICheckInHabit(c)
}

// RegisterHandlers wires the v1 routes onto the given router group. Everything
// except ping requires an API key.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)

	protected := router.Group("", middleware.APIKeyAuthMiddleware())
	protected.Get("/user/profile", s.GetUserProfile)
	protected.Get("/user/entitlement", s.GetUserEntitlement)
	protected.Get("/habits", s.GetHabits)
	protected.Post("/habits", s.PostHabit)
	protected.Post("/habits/:id/checkin", s.PostHabitCheckIn)
}
