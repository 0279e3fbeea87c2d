package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(enabled bool) *fiber.App {
	app := fiber.New()
	sessionMiddleware, _ := session.NewWithStore()
	app.Use(sessionMiddleware)

	m := NewAuthMiddleware(enabled)
	app.Post("/signin", func(c fiber.Ctx) error {
		sess := session.FromContext(c)
		sess.Set(SessionUserSub, "sub-1")
		sess.Set(SessionUserEmail, "ana@example.com")
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/private", m.RequireAuth, func(c fiber.Ctx) error {
		return c.SendString("hello " + CurrentUser(c).DisplayName())
	})
	app.Get("/open", m.RequireAuth, func(c fiber.Ctx) error {
		return c.SendString("open")
	})
	return app
}

func TestRequireAuth_Disabled(t *testing.T) {
	app := newTestApp(false)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/open", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireAuth_RedirectsToLogin(t *testing.T) {
	app := newTestApp(true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/private", nil))
	require.NoError(t, err)
	assert.Equal(t, LoginPath, resp.Header.Get("Location"))
}

func TestRequireAuth_HTMXGetsRedirectHeader(t *testing.T) {
	app := newTestApp(true)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("HX-Request", "true")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, LoginPath, resp.Header.Get("HX-Redirect"))
}

func TestRequireAuth_SignedIn(t *testing.T) {
	app := newTestApp(true)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/signin", nil))
	require.NoError(t, err)
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello ana@example.com", string(body))
}
