package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartroute/internal/config"
	"smartroute/web"
)

func newErrorApp() *fiber.App {
	cfg := &config.Config{SiteTitle: "SmartRoute"}
	app := fiber.New(fiber.Config{
		Views:        web.NewEngine(false),
		ViewsLayout:  web.Layout,
		ErrorHandler: ErrorHandler(cfg),
	})
	app.Get("/boom", func(c fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "<b>short and stout</b>")
	})
	return app
}

func TestErrorHandler_Page(t *testing.T) {
	resp, err := newErrorApp().Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "418")
	assert.Contains(t, string(body), "&lt;b&gt;short and stout&lt;/b&gt;")
	assert.Contains(t, string(body), "<title>Error - SmartRoute</title>")
}

func TestErrorHandler_HTMX(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("HX-Request", "true")
	resp, err := newErrorApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "#flash", resp.Header.Get("HX-Retarget"))
	assert.Equal(t, "innerHTML", resp.Header.Get("HX-Reswap"))

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `role="alert"`)
	assert.Contains(t, string(body), "&lt;b&gt;short and stout&lt;/b&gt;")
	assert.NotContains(t, string(body), "<html")
}

func TestIsLocalPath(t *testing.T) {
	tests := map[string]bool{
		"/":                   true,
		"/status":             true,
		"//evil.example.com":  false,
		"/\\evil.example.com": false,
		"https://example.com": false,
		"":                    false,
	}
	for in, want := range tests {
		assert.Equal(t, want, isLocalPath(in), in)
	}
}

func TestMergeBranding(t *testing.T) {
	cfg := &config.Config{SiteTitle: "T", SiteTagline: "G", SiteFooter: "F", OIDCIssuer: "https://id.example.com"}
	data := MergeBranding(fiber.Map{"Title": "x"}, cfg)
	assert.Equal(t, "T", data["SiteTitle"])
	assert.Equal(t, "G", data["SiteTagline"])
	assert.Equal(t, "F", data["SiteFooter"])
	assert.Equal(t, true, data["AuthEnabled"])
	assert.Equal(t, "x", data["Title"])
}
