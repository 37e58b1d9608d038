package controllers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/HabitFox/app/models"
	"github.com/ManuelReschke/HabitFox/internal/pkg/database"
	"github.com/ManuelReschke/HabitFox/internal/pkg/env"
	"github.com/ManuelReschke/HabitFox/internal/pkg/mail"
	"github.com/ManuelReschke/HabitFox/internal/pkg/session"
)

// RegisterConfirmMessage is always shown after a registration attempt that
// created an account; the user has to confirm via the emailed link before
// signing in.
const RegisterConfirmMessage = "Registration successful! Please confirm your account via the link we sent to your email address."

// MissingFieldsMessage is the local validation result for empty credentials.
// No database or remote call happens in that case.
const MissingFieldsMessage = "Please fill in all fields"

func HandleAuthLogin(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		var user models.User
		fm := fiber.Map{
			"type": "error",
		}

		email := strings.TrimSpace(c.FormValue("email"))
		password := c.FormValue("password")

		// Empty credentials are rejected locally, before touching the
		// database or any backend.
		if email == "" || strings.TrimSpace(password) == "" {
			fm["message"] = MissingFieldsMessage

			return flash.WithError(c, fm).Redirect("/login")
		}

		// notice: in production you should not inform the user
		// with detailed messages about login failures
		result := database.GetDB().Where("email = ?", email).First(&user)
		if result.Error != nil {
			fm["message"] = "There is a problem with the login process"

			return flash.WithError(c, fm).Redirect("/login")
		}

		if models.CheckPasswordHash(password, user.Password) == false {
			fm["message"] = "There is a problem with the login process"

			return flash.WithError(c, fm).Redirect("/login")
		}

		if user.Status == models.STATUS_INACTIVE {
			fm["message"] = "Please confirm your email address before signing in"

			return flash.WithError(c, fm).Redirect("/login")
		}

		sess, err := session.GetSessionStore().Get(c)
		if err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect("/login")
		}

		sess.Set(AUTH_KEY, true)
		sess.Set(USER_ID, user.ID)
		sess.Set(USER_NAME, user.Name)
		sess.Set(USER_IS_ADMIN, user.Role == models.ROLE_ADMIN)

		err = sess.Save()
		if err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect("/login")
		}

		database.GetDB().Model(&user).Update("last_login_at", time.Now())

		// Cache user plan in session for navbar/entitlements
		if us, err := models.GetOrCreateUserSettings(database.GetDB(), user.ID); err == nil && us != nil && us.Plan != "" {
			_ = session.SetSessionValue(c, USER_PLAN, us.Plan)
		} else {
			_ = session.SetSessionValue(c, USER_PLAN, "free")
		}

		fm = fiber.Map{
			"type":    "success",
			"message": "Welcome back! Keep those streaks alive!",
		}

		// Ensure HTMX boosted flows perform a full redirect and refresh head/meta
		c.Set("HX-Redirect", "/")
		return flash.WithSuccess(c, fm).Redirect("/")
	}

	return renderPage(c, "auth/login", fiber.Map{
		"Title": "Sign in",
	})
}

func HandleAuthLogout(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type": "error",
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		fm["message"] = "logged out (no sess)"

		return flash.WithError(c, fm).Redirect("/login")
	}

	err = sess.Destroy()
	if err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	fm = fiber.Map{
		"type":    "success",
		"message": "Bye bye! See you tomorrow.",
	}

	c.Locals(FROM_PROTECTED, false)

	return flash.WithSuccess(c, fm).Redirect("/login")
}

func HandleAuthRegister(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		username := strings.TrimSpace(c.FormValue("username"))
		email := strings.TrimSpace(c.FormValue("email"))
		password := c.FormValue("password")

		// Local validation first, no backend involved for empty input.
		if username == "" || email == "" || strings.TrimSpace(password) == "" {
			fm := fiber.Map{
				"type":    "error",
				"message": MissingFieldsMessage,
			}

			return flash.WithError(c, fm).Redirect("/register")
		}

		user, err := models.CreateUser(username, email, password)
		if err != nil {
			fm := fiber.Map{
				"type":    "error",
				"message": fmt.Sprintf("something went wrong: %s", err),
			}

			return flash.WithError(c, fm).Redirect("/register")
		}

		if err := user.GenerateActivationToken(); err != nil {
			fm := fiber.Map{
				"type":    "error",
				"message": fmt.Sprintf("something went wrong: %s", err),
			}

			return flash.WithError(c, fm).Redirect("/register")
		}

		err = database.GetDB().Create(&user).Error
		if err != nil {
			fm := fiber.Map{
				"type":    "error",
				"message": fmt.Sprintf("something went wrong: %s", err),
			}

			return flash.WithError(c, fm).Redirect("/register")
		}

		// Delivery is best-effort; the confirm message below does not depend
		// on it.
		go mail.SendActivationMail(user.Email, user.Name, activationLink(user.ActivationToken))

		fm := fiber.Map{
			"type":    "success",
			"message": RegisterConfirmMessage,
		}

		// Back to the sign-in form: the account needs confirmation first.
		return flash.WithSuccess(c, fm).Redirect("/login")
	}

	return renderPage(c, "auth/register", fiber.Map{
		"Title": "Create account",
	})
}

// HandleAuthActivate flips an inactive account to active via the emailed token.
func HandleAuthActivate(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		fm := fiber.Map{
			"type":    "error",
			"message": "Activation token is missing",
		}
		return flash.WithError(c, fm).Redirect("/login")
	}

	var user models.User
	if err := database.GetDB().Where("activation_token = ?", token).First(&user).Error; err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Invalid or expired activation token",
		}
		return flash.WithError(c, fm).Redirect("/login")
	}

	user.Status = models.STATUS_ACTIVE
	user.ActivationToken = ""
	if err := database.GetDB().Save(&user).Error; err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}
		return flash.WithError(c, fm).Redirect("/login")
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Your account is confirmed. You can sign in now.",
	}
	return flash.WithSuccess(c, fm).Redirect("/login")
}

func activationLink(token string) string {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}
	return base + "/activate?token=" + token
}
