// Package handlers implements the HTTP endpoints of the web front end.
package handlers

import (
	"errors"
	"html"

	"github.com/gofiber/fiber/v3"

	"smartroute/internal/config"
)

// isHTMX reports whether the request was issued by HTMX.
func isHTMX(c fiber.Ctx) bool {
	return c.Get("HX-Request") == "true"
}

// flashTarget is the message slot rendered at the top of every screen.
const flashTarget = "#flash"

// htmxError returns an error message as HTML that HTMX will display in the
// flash slot, leaving the rest of the screen in place.
// Uses 200 status so HTMX processes the swap (HTMX ignores non-2xx by default).
func htmxError(c fiber.Ctx, message string) error {
	c.Set("HX-Retarget", flashTarget)
	c.Set("HX-Reswap", "innerHTML")
	return c.SendString(
		`<div role="alert" class="p-3 rounded-lg bg-red-50 dark:bg-red-900/30 text-red-700 dark:text-red-300 text-sm">` + html.EscapeString(message) + `</div>`,
	)
}

// ErrorHandler renders errors as a full page, or as an inline message for
// HTMX requests.
func ErrorHandler(cfg *config.Config) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		}

		if isHTMX(c) {
			c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
			return htmxError(c, message)
		}

		return c.Status(code).Render("error", MergeBranding(fiber.Map{
			"Title":   "Error",
			"Code":    code,
			"Message": message,
		}, cfg))
	}
}
