package router

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func hasRoute(app *fiber.App, method, path string) bool {
	for _, r := range app.GetRoutes() {
		if r.Method == method && r.Path == path {
			return true
		}
	}
	return false
}

func TestAPIKeySelfServiceRoutesRegistered(t *testing.T) {
	app := fiber.New()
	HttpRouter{}.registerCSRFProtectedRoutes(app)

	assert.True(t, hasRoute(app, fiber.MethodPost, "/user/settings/api-key"))
	assert.True(t, hasRoute(app, fiber.MethodPost, "/user/settings/api-key/revoke"))
}

func TestCredentialRoutesRegistered(t *testing.T) {
	app := fiber.New()
	HttpRouter{}.registerCSRFProtectedRoutes(app)

	assert.True(t, hasRoute(app, fiber.MethodPost, "/login"))
	assert.True(t, hasRoute(app, fiber.MethodPost, "/register"))
	assert.True(t, hasRoute(app, fiber.MethodGet, "/activate"))
}
