package config

import (
	"errors"
	def_log "log"
	"os"
	"strings"
	"time"

	"shrnq/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2/log"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlserver"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

const (
	DriverSQLite    = "sqlite"
	DriverSQLServer = "sqlserver"
)

func OpenDatabaseConnection(ds Datasource) (*gorm.DB, error) {
	log.Info("Opening database connection")

	gormLogger := gorm_logger.New(
		def_log.New(os.Stdout, "\r\n", def_log.LstdFlags),
		gorm_logger.Config{
			LogLevel:                  gorm_logger.Warn,
			Colorful:                  true,
			SlowThreshold:             time.Second,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(Dialector(ds), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	log.Info("Successfully opened database connection")

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	log.Info("configuring database connection pool settings...")
	if ds.MaxIdleConnections > 0 {
		sqlDB.SetMaxIdleConns(ds.MaxIdleConnections)
	}
	if ds.MaxOpenConnections > 0 {
		sqlDB.SetMaxOpenConns(ds.MaxOpenConnections)
	}
	if ds.ConnectionMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Minute * time.Duration(ds.ConnectionMaxLifetime))
	}
	log.Info("database connection pool successfully configured")
	return db, nil
}

// Dialector picks the GORM driver for the configured datasource.
func Dialector(ds Datasource) gorm.Dialector {
	if ds.Driver == DriverSQLServer {
		return sqlserver.Open(ds.PrimaryURL)
	}
	return sqlite.Open(strings.TrimPrefix(ds.PrimaryURL, "sqlite://"))
}

// Migrate brings the schema up to date. SQL Server runs the versioned scripts
// with golang-migrate; SQLite is created from the GORM models.
func Migrate(db *gorm.DB, source string, ds Datasource) error {
	if ds.Driver == DriverSQLite {
		log.Info("creating sqlite schema from models...")
		return db.AutoMigrate(&domain.User{}, &domain.Authenticator{})
	}

	log.Info("configuring migration instance settings...")
	m, err := migrate.New(source, ds.PrimaryURL)
	if err != nil {
		return err
	}
	defer m.Close()

	log.Info("migration applying...")
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	log.Info("database migrated successfully")
	return nil
}

func CloseDatabaseConnection(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("Failed to close the database connection")
	} else {
		log.Info("Database connection closed successfully")
	}
}
