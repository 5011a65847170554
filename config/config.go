package config

import (
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type DatabaseOptions struct {
	Driver   string `env:"DB_DRIVER" envDefault:"postgres"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	Name     string `env:"DB_NAME" envDefault:"menu_management"`
	// Ensure creates the database on startup when it does not exist yet.
	Ensure bool `env:"DB_ENSURE" envDefault:"true"`
}

type Config struct {
	MainRoutes     string        `env:"MAIN_ROUTES" envDefault:"/api/v1"`
	AppPort        string        `env:"APP_PORT" envDefault:"9000"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://127.0.0.1:3000"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	RedisURL       string        `env:"REDIS_URL"`
	CacheTTL       time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	MetricsEnabled bool          `env:"METRICS_ENABLED" envDefault:"true"`
	SnowflakeNode  int64         `env:"SNOWFLAKE_NODE" envDefault:"1"`
	SeedDefault    bool          `env:"SEED_DEFAULT_MENU" envDefault:"true"`

	DB DatabaseOptions
}

// LoadConfig reads the given env files (".env" when none are given) and then
// the process environment. Missing files are skipped.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	existing := make([]string, 0, len(envFiles))
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return nil, errors.Wrap(err, "load env files")
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	cfg.AllowedOrigins = trimOrigins(cfg.AllowedOrigins)
	if cfg.SnowflakeNode < 0 || cfg.SnowflakeNode > 1023 {
		return nil, errors.Errorf("SNOWFLAKE_NODE must be between 0 and 1023, got %d", cfg.SnowflakeNode)
	}
	return cfg, nil
}

func trimOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			out = append(out, origin)
		}
	}
	return out
}

// NewLogger builds the JSON logger used by the server and the CLI. Unknown
// levels fall back to info.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

func SetupCORS(app *fiber.App, origins []string) {
	allowedOrigins := make(map[string]bool, len(origins))
	for _, origin := range origins {
		allowedOrigins[origin] = true
	}

	app.Use(func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		if allowedOrigins[origin] || allowedOrigins["*"] {
			c.Set("Access-Control-Allow-Origin", origin)
			c.Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
			c.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Request-ID")
			c.Set("Access-Control-Allow-Credentials", "true")
		}

		// Handle preflight request
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	})
}
