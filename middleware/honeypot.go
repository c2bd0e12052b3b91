package middleware

import (
	"net/url"

	"shrnq/dtos/response"
	"shrnq/services"

	"github.com/gofiber/fiber/v2"
)

// Honeypot rejects form posts that trip the honeypot fields.
func Honeypot(honeypot services.IHoneypotService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := honeypot.Check(formValues(c)); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(response.ErrorResponse{
				Status: response.StatusError,
				Error:  "Form not submitted properly",
			})
		}
		return c.Next()
	}
}

func formValues(c *fiber.Ctx) url.Values {
	values := url.Values{}
	if form, err := c.MultipartForm(); err == nil {
		for k, v := range form.Value {
			values[k] = v
		}
		return values
	}
	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		values.Add(string(key), string(value))
	})
	return values
}
