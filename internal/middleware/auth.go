package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"smartroute/internal/models"
)

// Session keys shared with the auth handler.
const (
	SessionUserSub    = "user_sub"
	SessionUserEmail  = "user_email"
	SessionUserName   = "user_name"
	SessionRedirectTo = "redirect_after_login"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/auth/login"

// AuthMiddleware handles user authentication via sessions.
type AuthMiddleware struct {
	enabled bool
}

// NewAuthMiddleware creates a new auth middleware instance. When disabled,
// every request passes through.
func NewAuthMiddleware(enabled bool) *AuthMiddleware {
	return &AuthMiddleware{enabled: enabled}
}

// RequireAuth ensures the user is authenticated, redirecting to the login
// flow if not.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	if !m.enabled {
		return c.Next()
	}

	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}

	user := UserFromSession(sess)
	if user == nil {
		if c.Method() == fiber.MethodGet && c.Get("HX-Request") == "" {
			sess.Set(SessionRedirectTo, c.OriginalURL())
		}
		if c.Get("HX-Request") != "" {
			c.Set("HX-Redirect", LoginPath)
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.Redirect().To(LoginPath)
	}

	c.Locals("user", user)
	return c.Next()
}

// UserFromSession returns the signed-in user, or nil.
func UserFromSession(sess *session.Middleware) *models.User {
	sub, _ := sess.Get(SessionUserSub).(string)
	if sub == "" {
		return nil
	}
	email, _ := sess.Get(SessionUserEmail).(string)
	name, _ := sess.Get(SessionUserName).(string)
	return &models.User{Sub: sub, Email: email, Name: name}
}

// CurrentUser returns the user stored by RequireAuth, or nil.
func CurrentUser(c fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
