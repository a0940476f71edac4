package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name        string   `envconfig:"APP_NAME" default:"Spenderella"`
		Port        int      `envconfig:"PORT" default:"8080"`
		LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
		CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
		BaseURL     string   `envconfig:"APP_BASE_URL" default:"http://localhost:8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"spenderella"`
		Migrate  bool   `envconfig:"DB_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout         time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
	}

	Auth struct {
		JWTSecret      string        `envconfig:"JWT_SECRET" default:"change-me"`
		AccessTokenTTL time.Duration `envconfig:"JWT_ACCESS_TTL" default:"24h"`
		BcryptCost     int           `envconfig:"BCRYPT_COST" default:"10"`
	}

	Import struct {
		MaxFileSize int64         `envconfig:"IMPORT_MAX_FILE_SIZE" default:"5242880"`
		MaxRows     int           `envconfig:"IMPORT_MAX_ROWS" default:"5000"`
		SessionTTL  time.Duration `envconfig:"IMPORT_SESSION_TTL" default:"30m"`
	}

	Storage struct {
		Bucket        string `envconfig:"GCS_BUCKET"`
		PublicBaseURL string `envconfig:"GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
		MaxImageSize  int64  `envconfig:"UPLOAD_MAX_IMAGE_SIZE" default:"2097152"`
	}

	AI struct {
		APIKey string `envconfig:"GEMINI_API_KEY"`
		Model  string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	}

	Mail struct {
		Provider string `envconfig:"MAIL_PROVIDER" default:"mock"`
		Domain   string `envconfig:"MAILGUN_DOMAIN"`
		APIKey   string `envconfig:"MAILGUN_API_KEY"`
		From     string `envconfig:"MAIL_FROM" default:"Spenderella <no-reply@spenderella.app>"`
	}

	Jobs struct {
		Enabled           bool          `envconfig:"JOBS_ENABLED" default:"true"`
		RecurringInterval time.Duration `envconfig:"JOBS_RECURRING_INTERVAL" default:"1h"`
		ReportInterval    time.Duration `envconfig:"JOBS_REPORT_INTERVAL" default:"6h"`
	}

	RateLimit struct {
		RPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"5"`
		Burst int     `envconfig:"RATE_LIMIT_BURST" default:"10"`
	}

	Analytics struct {
		CacheTTL time.Duration `envconfig:"ANALYTICS_CACHE_TTL" default:"5m"`
	}

	TUI struct {
		LogFile string `envconfig:"TUI_LOG_FILE" default:"spenderella-tui.log"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
