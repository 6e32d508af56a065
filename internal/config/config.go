package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const EnvProduction = "production"

// Config is the full process configuration, read from the environment
type Config struct {
	Env  string `env:"APP_ENV" env-default:"development"`
	Port string `env:"SERVER_PORT" env-default:"8080"`

	DB    DBConfig
	JWT   JWTConfig
	Email EmailConfig
	Redis RedisConfig

	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT" env-default:"10"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" env-default:"1m"`

	AuditFailedSends bool `env:"AUDIT_FAILED_SENDS" env-default:"false"`

	DashboardDir string `env:"DASHBOARD_DIR" env-default:"web/dashboard"`
	LoginPath    string `env:"LOGIN_PATH" env-default:"/"`
	CORSOrigin   string `env:"CORS_ORIGIN" env-default:""`

	// TrustedProxies may set X-Forwarded-For; empty means the socket peer is the client
	TrustedProxies []string `env:"TRUSTED_PROXIES" env-separator:","`

	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"console"`
}

// JWTConfig holds session token settings
type JWTConfig struct {
	Secret          string `env:"JWT_SECRET" env-required:"true"`
	ExpirationHours int64  `env:"JWT_EXPIRATION_HOURS" env-default:"24"`
}

// EmailConfig holds SMTP transport settings
type EmailConfig struct {
	Host     string        `env:"EMAIL_HOST" env-required:"true"`
	Port     int           `env:"EMAIL_PORT" env-default:"465"`
	User     string        `env:"EMAIL_USER" env-required:"true"`
	Password string        `env:"EMAIL_PASS"`
	Secure   bool          `env:"EMAIL_SECURE" env-default:"true"`
	Timeout  time.Duration `env:"EMAIL_TIMEOUT" env-default:"30s"`
}

// RedisConfig holds the optional Redis connection used for login rate limiting
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}
	if err := cfg.DB.resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether cookies must carry the Secure flag
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}
