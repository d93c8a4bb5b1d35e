package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings required by the bot.
type Config struct {
	AppName     string
	Environment string
	Discord     DiscordConfig
	Store       StoreConfig
	Backup      BackupConfig
	Audit       AuditConfig
	UI          UIConfig
	Health      HealthConfig
	Context     ContextConfig
	Logger      LoggerConfig
}

type DiscordConfig struct {
	Token   string
	GuildID string
	// ReadyTimeout bounds the wait for the first gateway READY event.
	ReadyTimeout time.Duration
}

type StoreConfig struct {
	DataDir string
}

type BackupConfig struct {
	Dir      string
	Interval time.Duration
	Keep     int
}

type AuditConfig struct {
	BufferPath   string
	SyncInterval time.Duration
	MaxRetry     int
	Retention    time.Duration
}

type UIConfig struct {
	ComponentTimeout time.Duration
	ModalTimeout     time.Duration
	PageSize         int
}

type HealthConfig struct {
	Enabled bool
	Host    string
	Port    string
	Token   string
}

type ContextConfig struct {
	// InteractionTimeout bounds one interaction task, modal waits included.
	InteractionTimeout time.Duration
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

var ErrMissingToken = errors.New("config: DISCORD_TOKEN is required")

// Load reads configuration from environment variables (optionally .env)
// and applies defaults for everything but the bot token.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	dataDir := getString("DATA_DIR", "./data")
	cfg := &Config{
		AppName:     getString("APP_NAME", "shopbot"),
		Environment: getString("APP_ENV", "development"),
		Discord: DiscordConfig{
			Token:        os.Getenv("DISCORD_TOKEN"),
			GuildID:      os.Getenv("DISCORD_GUILD_ID"),
			ReadyTimeout: getDuration("DISCORD_READY_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			DataDir: dataDir,
		},
		Backup: BackupConfig{
			Dir:      getString("BACKUP_DIR", dataDir+"/backups"),
			Interval: getDuration("BACKUP_INTERVAL", 6*time.Hour),
			Keep:     getInt("BACKUP_KEEP", 10),
		},
		Audit: AuditConfig{
			BufferPath:   getString("AUDIT_BUFFER_PATH", dataDir+"/audit.db"),
			SyncInterval: getDuration("AUDIT_SYNC_INTERVAL", 30*time.Second),
			MaxRetry:     getInt("AUDIT_MAX_RETRY", 5),
			Retention:    getDuration("AUDIT_RETENTION", 24*time.Hour),
		},
		UI: UIConfig{
			ComponentTimeout: getDuration("COMPONENT_TIMEOUT", 120*time.Second),
			ModalTimeout:     getDuration("MODAL_TIMEOUT", 120*time.Second),
			PageSize:         getInt("PAGE_SIZE", 5),
		},
		Health: HealthConfig{
			Enabled: getBool("HEALTH_ENABLED", true),
			Host:    getString("HEALTH_HOST", "0.0.0.0"),
			Port:    getString("HEALTH_PORT", "8080"),
			Token:   os.Getenv("HEALTH_TOKEN"),
		},
		Context: ContextConfig{
			InteractionTimeout: getDuration("INTERACTION_TIMEOUT", 5*time.Minute),
			RequestTimeout:     getDuration("REQUEST_TIMEOUT", 5*time.Second),
			ShutdownTimeout:    getDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
	}

	if cfg.Discord.Token == "" {
		return nil, ErrMissingToken
	}
	if cfg.UI.PageSize <= 0 || cfg.UI.PageSize > 25 {
		return nil, fmt.Errorf("config: PAGE_SIZE must be between 1 and 25, got %d", cfg.UI.PageSize)
	}
	// an interaction task must outlive the collectors it waits on
	if floor := max(cfg.UI.ComponentTimeout, cfg.UI.ModalTimeout); cfg.Context.InteractionTimeout < floor {
		cfg.Context.InteractionTimeout = floor
	}

	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// HealthAddress returns the listen address of the ops endpoint.
func (c *Config) HealthAddress() string {
	return fmt.Sprintf("%s:%s", c.Health.Host, c.Health.Port)
}
