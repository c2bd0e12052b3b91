package middleware

import (
	"net/url"
	"testing"

	"shrnq/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoneypot(t *testing.T) {
	honeypot := services.NewHoneypotService("secret")
	props, err := honeypot.InputProps()
	require.NoError(t, err)

	app := fiber.New()
	app.Post("/", Honeypot(honeypot), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	status, _ := postForm(t, app, "/", url.Values{
		props.NameFieldName:      {""},
		props.ValidFromFieldName: {props.EncryptedValidFrom},
		"url":                    {"https://example.com"},
	})
	assert.Equal(t, fiber.StatusOK, status)

	status, body := postForm(t, app, "/", url.Values{
		props.NameFieldName:      {"I am a bot"},
		props.ValidFromFieldName: {props.EncryptedValidFrom},
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Form not submitted properly", body.Error)

	status, _ = postForm(t, app, "/", url.Values{"url": {"https://example.com"}})
	assert.Equal(t, fiber.StatusBadRequest, status)
}
