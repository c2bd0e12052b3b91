package config

import (
	"errors"

	"github.com/alasgarovnamig/confhandler"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Application Application `yaml:"application" json:"application"`
}

type Application struct {
	DisplayName string     `yaml:"display-name" json:"display_name"`
	LogLevel    string     `yaml:"log-level" json:"log_level" env:"LOG_LEVEL"`
	BaseURL     string     `yaml:"base-url" json:"base_url" env:"BASE_URL"`
	Server      Server     `yaml:"server" json:"server"`
	Datasource  Datasource `yaml:"datasource" json:"datasource"`
	Migration   string     `yaml:"migration" env:"MIGRATION_SOURCE"`
	Security    Security   `yaml:"security" json:"security"`
	Redis       Redis      `yaml:"redis" json:"redis"`
	WebAuthn    WebAuthn   `yaml:"webauthn" json:"webauthn"`
	Links       Links      `yaml:"links" json:"links"`
}

type Server struct {
	Port string `yaml:"port" env:"PORT"`
	// Requests per window for the form endpoints.
	RateLimit       int `yaml:"rate-limit" json:"rate_limit"`
	RateLimitWindow int `yaml:"rate-limit-window-in-seconds" json:"rate_limit_window_in_seconds"`
}

type Datasource struct {
	Driver                string `yaml:"driver" json:"driver" env:"DATABASE_DRIVER"`
	PrimaryURL            string `yaml:"primary-url" json:"primary_url" env:"DATABASE_URL"`
	MaxIdleConnections    int    `yaml:"max-idle-connections" json:"max_idle_connections"`
	MaxOpenConnections    int    `yaml:"max-open-connections" json:"max_open_connections"`
	ConnectionMaxLifetime int    `yaml:"connection-max-lifetime" json:"connection_max_lifetime"`
}

type Security struct {
	SessionSecret  string `yaml:"session-secret" json:"-" env:"SESSION_SECRET"`
	HoneypotSecret string `yaml:"honeypot-secret" json:"-" env:"HONEYPOT_SECRET"`
	CookieSecure   bool   `yaml:"cookie-secure" json:"cookie_secure" env:"COOKIE_SECURE"`
	// Session lifetime for an authenticated user.
	SessionValidityInSeconds int `yaml:"session-validity-in-seconds" json:"session_validity_in_seconds"`
}

type Redis struct {
	Host      string `yaml:"address" json:"address" env:"REDIS_ADDRESS"`
	Password  string `yaml:"password" json:"-" env:"REDIS_PASSWORD"`
	DB        int    `yaml:"db" json:"db"`
	Namespace string `yaml:"namespace" json:"namespace" env:"KV_NAMESPACE"`
}

type WebAuthn struct {
	RpDisplayName string `yaml:"rp-display-name" json:"rp_display_name"`
	// Optional. When empty both are derived from the incoming request.
	RpOrigin string `yaml:"rp-origin" json:"rp_origin" env:"WEBAUTHN_RP_ORIGIN"`
	RpID     string `yaml:"rp-id" json:"rp_id" env:"WEBAUTHN_RP_ID"`
}

type Links struct {
	MaxAllocationAttempts int `yaml:"max-allocation-attempts" json:"max_allocation_attempts"`
}

// Load reads the yaml file at path and applies environment overrides on top of it.
func Load(path string) (*Config, error) {
	conf := &Config{}
	if err := confhandler.LoadConfigToStruct(path, conf); err != nil {
		return nil, err
	}
	if err := env.Parse(conf); err != nil {
		return nil, err
	}
	conf.setDefaults()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) setDefaults() {
	app := &c.Application
	if app.DisplayName == "" {
		app.DisplayName = "shrnq"
	}
	if app.Server.Port == "" {
		app.Server.Port = ":8080"
	}
	if app.Server.RateLimit == 0 {
		app.Server.RateLimit = 10
	}
	if app.Server.RateLimitWindow == 0 {
		app.Server.RateLimitWindow = 30
	}
	if app.Datasource.Driver == "" {
		app.Datasource.Driver = DriverSQLite
	}
	if app.Redis.Namespace == "" {
		app.Redis.Namespace = "shrnq"
	}
	if app.WebAuthn.RpDisplayName == "" {
		app.WebAuthn.RpDisplayName = app.DisplayName
	}
	if app.Links.MaxAllocationAttempts == 0 {
		app.Links.MaxAllocationAttempts = 10
	}
	if app.Security.SessionValidityInSeconds == 0 {
		app.Security.SessionValidityInSeconds = 60 * 60 * 24 * 30
	}
}

func (c *Config) Validate() error {
	if c.Application.Security.SessionSecret == "" {
		return errors.New("missing SESSION_SECRET")
	}
	if c.Application.Security.HoneypotSecret == "" {
		return errors.New("missing HONEYPOT_SECRET")
	}
	switch c.Application.Datasource.Driver {
	case DriverSQLite, DriverSQLServer:
	default:
		return errors.New("unsupported datasource driver " + c.Application.Datasource.Driver)
	}
	return nil
}
