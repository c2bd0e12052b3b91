package controller

import (
	"time"

	"shrnq/dtos/request"
	"shrnq/middleware"

	"github.com/gofiber/fiber/v2"
)

type IThemeController interface {
	SetTheme(c *fiber.Ctx) error
}

type ThemeController struct {
	secure bool
}

func NewThemeController(secure bool) IThemeController {
	return &ThemeController{secure: secure}
}

// SetTheme remembers the colour scheme for a year; "system" forgets it.
func (tc *ThemeController) SetTheme(c *fiber.Ctx) error {
	body, ok := middleware.Body[request.ThemeRequest](c)
	if !ok {
		return fiber.ErrBadRequest
	}

	if body.Theme == "system" {
		c.ClearCookie(ThemeCookie)
	} else {
		c.Cookie(&fiber.Cookie{
			Name:     ThemeCookie,
			Value:    body.Theme,
			Path:     "/",
			Expires:  time.Now().AddDate(1, 0, 0),
			Secure:   tc.secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return c.JSON(fiber.Map{"success": true, "theme": body.Theme})
}
