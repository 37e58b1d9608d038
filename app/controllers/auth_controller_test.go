package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sujit-baniya/flash"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/ManuelReschke/HabitFox/internal/pkg/database"
)

// newAuthTestApp wires the credential handlers plus a helper route that
// echoes the flash toast carried by the cookies of a previous response.
func newAuthTestApp() *fiber.App {
	app := fiber.New()
	app.Post("/login", HandleAuthLogin)
	app.Post("/register", HandleAuthRegister)
	app.Get("/flash", func(c *fiber.Ctx) error {
		return c.JSON(flash.Get(c))
	})
	return app
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func readFlash(t *testing.T, app *fiber.App, from *http.Response) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/flash", nil)
	for _, ck := range from.Cookies() {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestHandleAuthLoginEmptyPasswordRejectedLocally(t *testing.T) {
	// No database handle at all: if the guard did not fire before any
	// lookup, the handler would panic instead of flashing the message.
	orig := database.DB
	database.DB = nil
	defer func() { database.DB = orig }()

	app := newAuthTestApp()
	resp := postForm(t, app, "/login", url.Values{
		"email":    {"sam@example.com"},
		"password": {""},
	})

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))

	fm := readFlash(t, app, resp)
	assert.Equal(t, MissingFieldsMessage, fm["message"])
	assert.Equal(t, "error", fm["type"])
}

func TestHandleAuthRegisterEmptyFieldsRejectedLocally(t *testing.T) {
	orig := database.DB
	database.DB = nil
	defer func() { database.DB = orig }()

	app := newAuthTestApp()
	resp := postForm(t, app, "/register", url.Values{
		"username": {"samw"},
		"email":    {"sam@example.com"},
		"password": {""},
	})

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/register", resp.Header.Get(fiber.HeaderLocation))

	fm := readFlash(t, app, resp)
	assert.Equal(t, MissingFieldsMessage, fm["message"])
}

func TestHandleAuthRegisterShowsConfirmAndSwitchesToSignIn(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO `users`").WillReturnResult(sqlmock.NewResult(1, 1))

	orig := database.DB
	database.DB = gdb
	defer func() { database.DB = orig }()

	app := newAuthTestApp()
	resp := postForm(t, app, "/register", url.Values{
		"username": {"samw"},
		"email":    {"sam@example.com"},
		"password": {"super-secret"},
	})

	// Always the confirmation notice, and back to the sign-in form.
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))

	fm := readFlash(t, app, resp)
	assert.Equal(t, RegisterConfirmMessage, fm["message"])
	assert.Equal(t, "success", fm["type"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
