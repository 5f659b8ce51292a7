package controllers

import (
	"html"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/FinWiseHQ/FinWise/app/models"
	"github.com/FinWiseHQ/FinWise/app/repository"
	"github.com/FinWiseHQ/FinWise/internal/pkg/constants"
	"github.com/FinWiseHQ/FinWise/internal/pkg/session"
	"github.com/FinWiseHQ/FinWise/internal/pkg/usercontext"
)

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

// HandleLoginPage serves the login form. Rendering is deliberately
// minimal; the dashboard UI is outside this system.
func HandleLoginPage(c *fiber.Ctx) error {
	if usercontext.IsLoggedIn(c) {
		return c.Redirect(constants.PublicRoute, fiber.StatusSeeOther)
	}

	redirectURL := c.Query("redirect_url", constants.PublicRoute)
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(`<form method="post" action="/login">` +
		`<input type="hidden" name="redirect_url" value="` + html.EscapeString(sanitizeReturnTarget(redirectURL)) + `">` +
		`<input name="email" type="email" placeholder="E-Mail">` +
		`<input name="password" type="password" placeholder="Password">` +
		`<button type="submit">Sign in</button></form>`)
}

// HandleLogin verifies credentials and establishes the session,
// returning the user to the page that sent them here.
func HandleLogin(c *fiber.Ctx) error {
	form := loginForm{
		Email:    strings.TrimSpace(c.FormValue("email")),
		Password: c.FormValue("password"),
	}
	if err := validator.New().Struct(form); err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Please enter a valid e-mail and password"}).Redirect(constants.LoginRoute)
	}

	factory := repository.GetGlobalFactory()
	if factory == nil {
		log.Print("login: repository factory not initialized")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	user, err := factory.GetUserRepository().GetByEmail(form.Email)
	if err != nil || !models.CheckPasswordHash(form.Password, user.Password) {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Invalid credentials"}).Redirect(constants.LoginRoute)
	}
	if user.Status != models.STATUS_ACTIVE {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Account is not active"}).Redirect(constants.LoginRoute)
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		log.Printf("login: failed to get session: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set(usercontext.KeyIdentityID, user.IdentityID)
	if err := sess.Save(); err != nil {
		log.Printf("login: failed to save session: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	if err := factory.GetUserRepository().TouchLastLogin(user.ID); err != nil {
		log.Printf("login: failed to update last login for user %d: %v", user.ID, err)
	}

	return c.Redirect(sanitizeReturnTarget(c.FormValue("redirect_url")), fiber.StatusSeeOther)
}

// HandleLogout destroys the session.
func HandleLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		_ = sess.Destroy()
	}
	return c.Redirect(constants.LoginRoute, fiber.StatusSeeOther)
}

// sanitizeReturnTarget only allows same-site relative paths as a
// post-login redirect target, so the login flow cannot be used as an
// open redirect.
func sanitizeReturnTarget(target string) string {
	target = strings.TrimSpace(target)
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return constants.PublicRoute
	}
	return target
}
