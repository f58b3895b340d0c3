package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort  string `mapstructure:"app_port"`
	LogLevel string `mapstructure:"log_level"`

	DatabaseDriver string `mapstructure:"database_driver"`
	DatabaseDSN    string `mapstructure:"database_dsn"`

	SessionDriver string        `mapstructure:"session_driver"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`

	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`
	GoogleRedirectURL  string `mapstructure:"google_redirect_url"`

	KeycloakIssuer        string `mapstructure:"keycloak_issuer"`
	KeycloakClientID      string `mapstructure:"keycloak_client_id"`
	KeycloakRedirectURL   string `mapstructure:"keycloak_redirect_url"`
	KeycloakPublicBaseURL string `mapstructure:"keycloak_public_base_url"`

	UsersPerPage int `mapstructure:"users_per_page"`

	// AdminEmails is a comma separated list of accounts promoted to the
	// admin role at startup.
	AdminEmails string `mapstructure:"admin_emails"`
}

// Default returns the configuration used when no environment overrides it.
func Default() Config {
	return Config{
		AppPort:        "8080",
		LogLevel:       "INFO",
		DatabaseDriver: "postgres",
		SessionDriver:  "redis",
		SessionTTL:     24 * time.Hour,
		CookieSecure:   true,
		RedisAddr:      "localhost:6379",
		UsersPerPage:   15,
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("app_port", d.AppPort)
	v.SetDefault("log_level", d.LogLevel)

	v.SetDefault("database_driver", d.DatabaseDriver)
	v.SetDefault("database_dsn", d.DatabaseDSN)

	v.SetDefault("session_driver", d.SessionDriver)
	v.SetDefault("session_ttl", d.SessionTTL)
	v.SetDefault("cookie_secure", d.CookieSecure)

	v.SetDefault("redis_addr", d.RedisAddr)
	v.SetDefault("redis_password", d.RedisPassword)

	v.SetDefault("google_client_id", "")
	v.SetDefault("google_client_secret", "")
	v.SetDefault("google_redirect_url", "")

	v.SetDefault("keycloak_issuer", "")
	v.SetDefault("keycloak_client_id", "")
	v.SetDefault("keycloak_redirect_url", "")
	v.SetDefault("keycloak_public_base_url", "")

	v.SetDefault("users_per_page", d.UsersPerPage)
	v.SetDefault("admin_emails", d.AdminEmails)
}

// Load reads the configuration from the environment. Variable names are the
// upper-cased keys, e.g. APP_PORT or SESSION_TTL.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.DatabaseDriver)
	}

	switch c.SessionDriver {
	case "redis", "memory":
	default:
		return fmt.Errorf("config: unsupported session driver %q", c.SessionDriver)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: session ttl must be positive")
	}

	if c.UsersPerPage <= 0 {
		return fmt.Errorf("config: users per page must be positive")
	}

	return nil
}

// GoogleEnabled reports whether the Google OIDC provider is configured.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != ""
}

// KeycloakEnabled reports whether the Keycloak OIDC provider is configured.
func (c Config) KeycloakEnabled() bool {
	return c.KeycloakIssuer != "" && c.KeycloakClientID != ""
}

// Admins returns the trimmed, non-empty entries of AdminEmails.
func (c Config) Admins() []string {
	var admins []string
	for _, email := range strings.Split(c.AdminEmails, ",") {
		if email = strings.TrimSpace(email); email != "" {
			admins = append(admins, email)
		}
	}
	return admins
}
