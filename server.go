package main

import (
	"errors"
	"time"

	"shrnq/config"
	"shrnq/controller"
	"shrnq/dtos/request"
	"shrnq/dtos/response"
	"shrnq/middleware"
	"shrnq/repository"
	"shrnq/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

type Server struct {
	Conf     *config.Config
	Logger   *zap.Logger
	Sessions *session.Store
	Users    repository.ICredentialStore
	Honeypot services.IHoneypotService

	LinkController    controller.ILinkController
	PasskeyController controller.IPasskeyController
	SeoController     controller.ISeoController
	ThemeController   controller.IThemeController
}

// NOTE: Server Constructor
func NewServer(
	conf *config.Config,
	logger *zap.Logger,
	sessions *session.Store,
	users repository.ICredentialStore,
	honeypot services.IHoneypotService,
	linkController controller.ILinkController,
	passkeyController controller.IPasskeyController,
	seoController controller.ISeoController,
	themeController controller.IThemeController,
) *Server {
	return &Server{
		Conf:              conf,
		Logger:            logger,
		Sessions:          sessions,
		Users:             users,
		Honeypot:          honeypot,
		LinkController:    linkController,
		PasskeyController: passkeyController,
		SeoController:     seoController,
		ThemeController:   themeController,
	}
}

// NOTE: Start Fiber Server
func (s *Server) Start() (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		AppName:      s.Conf.Application.DisplayName,
		ErrorHandler: errorHandler,
	})

	cookieKey, err := config.CookieEncryptionKey(s.Conf.Application.Security.SessionSecret)
	if err != nil {
		return nil, err
	}

	app.Use(middleware.RecoveryMiddleware(s.Logger))
	app.Use(middleware.LoggingMiddleware(s.Logger))
	app.Use(middleware.GlobalRateLimiter())
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: cookieKey,
		// The theme is read by client side scripts.
		Except: []string{controller.ThemeCookie},
	}))

	server := s.Conf.Application.Server
	formLimiter := middleware.RouteRateLimiter(server.RateLimit, time.Duration(server.RateLimitWindow)*time.Second)
	csrf := middleware.CSRF(s.Sessions, s.Conf.Application.Security.CookieSecure)
	currentUser := middleware.CurrentUser(s.Sessions, s.Users, s.Logger)

	app.Get("/", csrf, currentUser, s.LinkController.Index)
	app.Post("/", formLimiter, csrf, middleware.Honeypot(s.Honeypot), middleware.ValidateBody[request.ShortenRequest](), s.LinkController.Shorten)

	app.Get("/login", csrf, currentUser, middleware.ValidateQuery[request.LoginOptionsRequest](), s.PasskeyController.LoginOptions)
	app.Post("/login", formLimiter, csrf, middleware.ValidateBody[request.LoginRequest](), s.PasskeyController.Login)
	app.Post("/logout", csrf, s.PasskeyController.Logout)

	app.Post("/theme", csrf, middleware.ValidateBody[request.ThemeRequest](), s.ThemeController.SetTheme)

	app.Get("/robots.txt", s.SeoController.Robots)
	app.Get("/sitemap.xml", s.SeoController.Sitemap)

	app.Get("/:slug/qr.png", s.LinkController.QRCode)
	// NOTE: Must stay last, every other path is a slug.
	app.Get("/*", s.LinkController.Redirect)
	return app, nil
}

// errorHandler renders anything a handler did not turn into a response itself.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Unknown Error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		if code < fiber.StatusInternalServerError {
			message = fiberErr.Message
		}
	}
	return c.Status(code).JSON(response.ErrorResponse{
		Status: response.StatusError,
		Error:  message,
	})
}
