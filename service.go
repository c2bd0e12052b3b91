package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shrnq/config"
	"shrnq/controller"
	"shrnq/middleware"
	"shrnq/repository"
	"shrnq/repository/command_repository"
	"shrnq/repository/query_repository"
	"shrnq/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	conf   *config.Config
	logger *zap.Logger

	//DB
	dbConnection *gorm.DB

	//Redis Client
	redisClient *redis.Client

	//Sessions
	sessionStore *session.Store

	// Repository
	userQueryRepository   query_repository.IUserQueryRepository
	userCommandRepository command_repository.IUserCommandRepository
	kvRepository          repository.IKVRepository
	credentialStore       repository.ICredentialStore

	// Service
	linkService     services.ILinkService
	redisService    services.IRedisService
	passkeyService  services.IPasskeyService
	honeypotService services.IHoneypotService
	qrService       services.IQRService

	// Controller
	linkController    controller.ILinkController
	passkeyController controller.IPasskeyController
	seoController     controller.ISeoController
	themeController   controller.IThemeController
}

// NOTE: Service Start
func (s *service) Start() {
	app := s.conf.Application
	var err error

	s.logger = config.InitLogger(app.DisplayName, app.LogLevel)
	defer s.logger.Sync()

	log.Info("Opening database connection...")
	s.dbConnection, err = config.OpenDatabaseConnection(app.Datasource)
	if err != nil {
		log.Panic("Failed to open database connection: ", err)
	}
	if err := config.Migrate(s.dbConnection, app.Migration, app.Datasource); err != nil {
		log.Panic("Failed to migrate database: ", err)
	}

	log.Info("Opening redis connection...")
	s.redisClient = config.ConnectToRedis(app.Redis)
	if err := config.PingRedis(s.redisClient); err != nil {
		log.Panic("Failed to reach redis: ", err)
	}

	log.Info("Session store config")
	s.sessionStore = config.NewSessionStore(app.Security, repository.NewSessionStorage(s.redisClient, "session:"))

	// NOTE: Dependency Injections
	middleware.InitValidator()
	s.DependencyInjection()

	// NOTE: Start Fiber server...
	fiberApp, err := NewServer(
		s.conf,
		s.logger,
		s.sessionStore,
		s.credentialStore,
		s.honeypotService,
		s.linkController,
		s.passkeyController,
		s.seoController,
		s.themeController,
	).Start()
	if err != nil {
		log.Panic("Failed to configure server: ", err)
	}

	log.Info("Server starting..")
	// NOTE: Server start with goroutine
	go func() {
		if err := fiberApp.Listen(app.Server.Port); err != nil {
			log.Fatal("Server failed to start")
		}
	}()
	// NOTE: Keep OS signals for graceful shutdown
	s.gracefulShutdown(fiberApp)
}

// NOTE: Depency Injection Operation
func (s *service) DependencyInjection() {
	app := s.conf.Application

	// NOTE: Repositories Injections
	s.userQueryRepository = query_repository.NewUserQueryRepository()
	s.userCommandRepository = command_repository.NewUserCommandRepository()
	s.kvRepository = repository.NewKVRepository(s.redisClient, app.Redis.Namespace)
	s.credentialStore = repository.NewPasskeyStore(s.dbConnection, s.userQueryRepository, s.userCommandRepository)

	// NOTE: Services Injections
	s.linkService = services.NewLinkService(s.kvRepository, app.Links.MaxAllocationAttempts, s.logger)
	s.redisService = services.NewRedisService(s.redisClient)
	s.passkeyService = services.NewPasskeyService(s.credentialStore, s.redisService, app.WebAuthn.RpDisplayName, s.logger)
	s.honeypotService = services.NewHoneypotService(app.Security.HoneypotSecret)
	s.qrService = services.NewQRService()

	// NOTE: Controllers Injections
	s.linkController = controller.NewLinkController(s.linkService, s.honeypotService, s.qrService, app.BaseURL, s.logger)
	s.passkeyController = controller.NewPasskeyController(s.passkeyService, s.sessionStore, app.WebAuthn, s.logger)
	s.seoController = controller.NewSeoController(app.BaseURL)
	s.themeController = controller.NewThemeController(app.Security.CookieSecure)
}

// NOTE: Graceful shutdown operation
func (s *service) gracefulShutdown(app *fiber.App) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// NOTE:Server Shutdown when keep signal
	<-sigChan
	log.Info("Shutting down server...")
	// NOTE: Creating context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// NOTE: Shutdown Fiber server
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error("error while shutting down app", err)
	}

	// NOTE: Shutdown Redis and Database connections
	done := make(chan bool)
	go func() {
		if err := s.redisClient.Close(); err != nil {
			log.Error("error while closing redis", err)
		}
		config.CloseDatabaseConnection(s.dbConnection)
		done <- true
	}()

	select {
	case <-ctx.Done():
		log.Error("timeout while shutting down", ctx.Err())
	case <-done:
		log.Info("connections are gracefully closed")
	}
}
