package middleware

import (
	"time"

	"shrnq/dtos/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	CSRFContextKey = "csrf"
	CSRFFormField  = "csrf"
	CSRFHeader     = "X-Csrf-Token"
)

// CSRF issues a token on safe requests, readable via c.Locals(CSRFContextKey),
// and requires it back in the form or header on unsafe ones.
func CSRF(store *session.Store, secure bool) fiber.Handler {
	fromForm := csrf.CsrfFromForm(CSRFFormField)
	fromHeader := csrf.CsrfFromHeader(CSRFHeader)

	return csrf.New(csrf.Config{
		Session:        store,
		ContextKey:     CSRFContextKey,
		CookieName:     "csrf_",
		CookieSameSite: fiber.CookieSameSiteLaxMode,
		CookieSecure:   secure,
		CookieHTTPOnly: true,
		Expiration:     time.Hour,
		Extractor: func(c *fiber.Ctx) (string, error) {
			if token, err := fromForm(c); err == nil {
				return token, nil
			}
			return fromHeader(c)
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusForbidden).JSON(response.ErrorResponse{
				Status: response.StatusError,
				Error:  "Invalid CSRF token",
			})
		},
	})
}
