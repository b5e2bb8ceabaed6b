package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds every tunable the process reads from the environment.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	GinMode  string `envconfig:"GIN_MODE" default:"debug"`
	DBDriver string `envconfig:"DB_DRIVER" default:"mysql"`
	DBDSN    string `envconfig:"DB_DSN" default:"root:@tcp(127.0.0.1:3306)/restolive?charset=utf8mb4&parseTime=True&loc=Local"`

	JWTSecret string `envconfig:"JWT_SECRET" default:"dev-secret"`

	// Change monitor poll interval for the db_changes feed table.
	FeedPollInterval time.Duration `envconfig:"FEED_POLL_INTERVAL" default:"500ms"`

	// Sync client reconnect backoff and resync window.
	SyncBackoff      time.Duration `envconfig:"SYNC_BACKOFF" default:"3s"`
	SyncSnapshotSize int           `envconfig:"SYNC_SNAPSHOT_SIZE" default:"50"`

	// Notification expiry windows.
	BannerTTL    time.Duration `envconfig:"NOTIFY_BANNER_TTL" default:"6s"`
	HighlightTTL time.Duration `envconfig:"NOTIFY_HIGHLIGHT_TTL" default:"30s"`

	// Staff terminal client.
	ServerURL  string `envconfig:"SERVER_URL" default:"http://localhost:8080"`
	StaffToken string `envconfig:"STAFF_TOKEN" default:""`

	// Distance quoting collaborator.
	QuoteServiceURL string        `envconfig:"QUOTE_SERVICE_URL" default:""`
	QuoteTimeout    time.Duration `envconfig:"QUOTE_TIMEOUT" default:"2s"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// InitDB opens the configured database.
func InitDB(cfg *Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	switch cfg.DBDriver {
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.DBDSN), gormCfg)
	default:
		return gorm.Open(mysql.Open(cfg.DBDSN), gormCfg)
	}
}
