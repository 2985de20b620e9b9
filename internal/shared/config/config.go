package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Authz      AuthzConfig      `mapstructure:"authz"`
	Invitation InvitationConfig `mapstructure:"invitation"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Log        LogConfig        `mapstructure:"log"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMemory   = "memory"
)

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	switch c.Driver {
	case DriverMySQL:
		// parseTime and UTC keep sent_at comparisons exact.
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.Database,
		)
	default:
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
		)
	}
}

// RedisConfig holds Redis configuration. An empty address disables the
// role cache and rate limits.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether redis is configured.
func (c *RedisConfig) Enabled() bool {
	return c.Address != ""
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret         string               `mapstructure:"jwt_secret"`
	Issuer            string               `mapstructure:"issuer"`
	AccessTokenExpiry time.Duration        `mapstructure:"access_token_expiry"`
	ServiceTokens     []ServiceTokenConfig `mapstructure:"service_tokens"`
	DevLogin          bool                 `mapstructure:"dev_login"`
}

// ServiceTokenConfig maps a static bearer token to an identity.
type ServiceTokenConfig struct {
	Token  string `mapstructure:"token"`
	UserID string `mapstructure:"user_id"`
	Email  string `mapstructure:"email"`
	Name   string `mapstructure:"name"`
}

// AuthzConfig holds authorization configuration.
type AuthzConfig struct {
	NotFoundPolicy string        `mapstructure:"not_found_policy"`
	RoleCacheTTL   time.Duration `mapstructure:"role_cache_ttl"`
}

// InvitationConfig holds invitation configuration.
type InvitationConfig struct {
	TTL               time.Duration `mapstructure:"ttl"`
	TokenLength       int           `mapstructure:"token_length"`
	TokenSecret       string        `mapstructure:"token_secret"`
	MaxBatch          int           `mapstructure:"max_batch"`
	DefaultPageSize   int           `mapstructure:"default_page_size"`
	MaxPageSize       int           `mapstructure:"max_page_size"`
	BaseURL           string        `mapstructure:"base_url"`
	RequireEmailMatch bool          `mapstructure:"require_email_match"`
	NotifyConcurrency int           `mapstructure:"notify_concurrency"`
	IssueRateLimit    int           `mapstructure:"issue_rate_limit"`
	IssueRateWindow   time.Duration `mapstructure:"issue_rate_window"`
	AcceptRateLimit   int           `mapstructure:"accept_rate_limit"`
	AcceptRateWindow  time.Duration `mapstructure:"accept_rate_window"`
}

// SMTPConfig holds SMTP configuration. An empty host logs invitations
// instead of sending them.
type SMTPConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	FromAddress     string        `mapstructure:"from_address"`
	FromName        string        `mapstructure:"from_name"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TracingConfig holds tracing configuration.
type TracingConfig struct {
	ServiceName string `mapstructure:"service_name"`
}

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/orgauth")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// ORGAUTH_INVITATION_TTL overrides invitation.ttl and so on.
	v.SetEnvPrefix("ORGAUTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Override with environment variables for sensitive values
	if secret := os.Getenv("ORGAUTH_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if password := os.Getenv("ORGAUTH_DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
	if password := os.Getenv("ORGAUTH_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if password := os.Getenv("ORGAUTH_SMTP_PASSWORD"); password != "" {
		cfg.SMTP.Password = password
	}
	if secret := os.Getenv("ORGAUTH_INVITE_TOKEN_SECRET"); secret != "" {
		cfg.Invitation.TokenSecret = secret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMySQL, DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Authz.NotFoundPolicy {
	case "hide", "expose":
	default:
		return fmt.Errorf("unsupported authz.not_found_policy %q", c.Authz.NotFoundPolicy)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required (set ORGAUTH_JWT_SECRET)")
	}
	return nil
}

// InvitationSecret returns the secret invitation tokens are derived from.
func (c *Config) InvitationSecret() string {
	if c.Invitation.TokenSecret != "" {
		return c.Invitation.TokenSecret
	}
	return c.Auth.JWTSecret
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})

	// Database defaults
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "orgauth")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 30*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	// Redis defaults
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Auth defaults
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "orgauth")
	v.SetDefault("auth.access_token_expiry", 15*time.Minute)
	v.SetDefault("auth.service_tokens", []ServiceTokenConfig{})
	v.SetDefault("auth.dev_login", false)

	// Authz defaults
	v.SetDefault("authz.not_found_policy", "hide")
	v.SetDefault("authz.role_cache_ttl", 30*time.Second)

	// Invitation defaults
	v.SetDefault("invitation.ttl", 7*24*time.Hour)
	v.SetDefault("invitation.token_length", 32)
	v.SetDefault("invitation.token_secret", "")
	v.SetDefault("invitation.max_batch", 50)
	v.SetDefault("invitation.default_page_size", 20)
	v.SetDefault("invitation.max_page_size", 100)
	v.SetDefault("invitation.base_url", "")
	v.SetDefault("invitation.require_email_match", false)
	v.SetDefault("invitation.notify_concurrency", 4)
	v.SetDefault("invitation.issue_rate_limit", 200)
	v.SetDefault("invitation.issue_rate_window", time.Hour)
	v.SetDefault("invitation.accept_rate_limit", 20)
	v.SetDefault("invitation.accept_rate_window", time.Minute)

	// SMTP defaults
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from_address", "noreply@localhost")
	v.SetDefault("smtp.from_name", "")
	v.SetDefault("smtp.breaker_failures", 5)
	v.SetDefault("smtp.breaker_timeout", 30*time.Second)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.service_name", "orgauth")
}
