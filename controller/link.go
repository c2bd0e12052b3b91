package controller

import (
	"errors"

	"shrnq/domain"
	"shrnq/dtos/request"
	"shrnq/dtos/response"
	"shrnq/middleware"
	"shrnq/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const ThemeCookie = "theme"

type ILinkController interface {
	Index(c *fiber.Ctx) error
	Shorten(c *fiber.Ctx) error
	Redirect(c *fiber.Ctx) error
	QRCode(c *fiber.Ctx) error
}

type LinkController struct {
	links    services.ILinkService
	honeypot services.IHoneypotService
	qr       services.IQRService
	baseURL  string
	logger   *zap.Logger
}

func NewLinkController(links services.ILinkService, honeypot services.IHoneypotService, qr services.IQRService, baseURL string, logger *zap.Logger) ILinkController {
	return &LinkController{links: links, honeypot: honeypot, qr: qr, baseURL: baseURL, logger: logger}
}

func (lc *LinkController) Index(c *fiber.Ctx) error {
	props, err := lc.honeypot.InputProps()
	if err != nil {
		lc.logger.Error("honeypot props", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(response.ErrorResponse{
			Status: response.StatusError,
			Error:  genericErrorMessage,
		})
	}

	csrfToken, _ := c.Locals(middleware.CSRFContextKey).(string)
	index := response.IndexResponse{
		CSRF:     csrfToken,
		Honeypot: *props,
		Theme:    themeOf(c),
		BaseURL:  baseURL(c, lc.baseURL),
	}
	if user, ok := c.Locals(middleware.LocalsUser).(*domain.User); ok {
		index.User = &response.UserResponse{ID: user.ID, Username: user.Username}
	}
	return c.JSON(index)
}

func (lc *LinkController) Shorten(c *fiber.Ctx) error {
	body, ok := middleware.Body[request.ShortenRequest](c)
	if !ok {
		return fiber.ErrBadRequest
	}

	slug, err := lc.links.Shorten(c.UserContext(), body.URL)
	if err != nil {
		lc.logger.Error("shorten failed", zap.Error(err))
		return c.Status(errorStatus(err)).JSON(response.ErrorResponse{
			Status: response.StatusError,
			Error:  genericErrorMessage,
		})
	}

	return c.JSON(response.ShortenResponse{
		Status: response.StatusSuccess,
		URL:    lc.links.ShortURL(baseURL(c, lc.baseURL), slug),
	})
}

func (lc *LinkController) Redirect(c *fiber.Ctx) error {
	target, err := lc.links.Resolve(c.UserContext(), c.Path())
	if errors.Is(err, services.ErrLinkNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(response.ErrorResponse{
			Status: response.StatusError,
			Error:  errorMessage(err),
		})
	}
	if err != nil {
		lc.logger.Error("resolve failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(response.ErrorResponse{
			Status: response.StatusError,
			Error:  genericErrorMessage,
		})
	}
	return c.Redirect(target, fiber.StatusMovedPermanently)
}

func (lc *LinkController) QRCode(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if _, err := lc.links.Resolve(c.UserContext(), slug); err != nil {
		if !errors.Is(err, services.ErrLinkNotFound) {
			lc.logger.Error("resolve failed", zap.String("slug", slug), zap.Error(err))
		}
		return c.Status(errorStatus(err)).JSON(response.ErrorResponse{
			Status: response.StatusError,
			Error:  errorMessage(err),
		})
	}

	png, err := lc.qr.Encode(baseURL(c, lc.baseURL) + "/" + slug)
	if err != nil {
		lc.logger.Error("qr encode failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(response.ErrorResponse{
			Status: response.StatusError,
			Error:  genericErrorMessage,
		})
	}
	c.Set(fiber.HeaderCacheControl, "public, max-age=300")
	c.Type("png")
	return c.Send(png)
}

func themeOf(c *fiber.Ctx) string {
	switch theme := c.Cookies(ThemeCookie); theme {
	case "light", "dark":
		return theme
	default:
		return "system"
	}
}
