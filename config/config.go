package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"maintenance-records-backend/internal/logging"
)

// Config represents the overall application configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Storage      StorageConfig      `yaml:"storage"`
	Notification NotificationConfig `yaml:"notification"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	// CacheTTLSeconds enables the per-process GET response cache. A negative value disables it,
	// which is required when more than one instance serves the same database.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
	// UserHeader carries the caller id set by the authenticating proxy in front of this service.
	UserHeader     string `yaml:"user_header"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// CacheEnabled reports whether the GET response cache is on.
func (s ServerConfig) CacheEnabled() bool {
	return s.CacheTTLSeconds > 0
}

// CacheTTL returns the GET response cache lifetime.
func (s ServerConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn" masq:"secret"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"`
}

// StorageConfig selects and configures the photo attachment store.
type StorageConfig struct {
	Backend         string `yaml:"backend"`
	Bucket          string `yaml:"bucket"`
	PublicBaseURL   string `yaml:"public_base_url"`
	ObjectPrefix    string `yaml:"object_prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// NotificationConfig holds assignment notification settings.
type NotificationConfig struct {
	AppURL     string           `yaml:"app_url"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Slack      SlackConfig      `yaml:"slack"`
	Push       PushConfig       `yaml:"push"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size"`
	QueueSize int `yaml:"queue_size"`
}

// SlackConfig enables direct messages to responsibles when a bot token is set.
type SlackConfig struct {
	BotToken string `yaml:"bot_token" masq:"secret"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key" masq:"secret"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are present.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the configuration from the given path. A .env file in the working directory, if any,
// is loaded first so that secrets can be supplied through the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, goerr.Wrap(err, "failed to load .env")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open config file", goerr.V("path", path))
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to decode config file", goerr.V("path", path))
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	overrides := []struct {
		key string
		dst *string
	}{
		{"DATABASE_DSN", &cfg.Database.DSN},
		{"STORAGE_BUCKET", &cfg.Storage.Bucket},
		{"MAIL_APP_URL", &cfg.Notification.AppURL},
		{"SLACK_BOT_TOKEN", &cfg.Notification.Slack.BotToken},
		{"VAPID_PUBLIC_KEY", &cfg.Notification.Push.PublicKey},
		{"VAPID_PRIVATE_KEY", &cfg.Notification.Push.PrivateKey},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.key); ok && v != "" {
			*o.dst = v
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds == 0 {
		cfg.Server.CacheTTLSeconds = 30
	}
	if cfg.Server.UserHeader == "" {
		cfg.Server.UserHeader = "X-User-ID"
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		cfg.Server.MaxUploadBytes = 5 << 20
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "gcs"
	}
	if cfg.Storage.PublicBaseURL == "" {
		cfg.Storage.PublicBaseURL = "https://storage.googleapis.com"
	}
	cfg.Storage.PublicBaseURL = strings.TrimSuffix(cfg.Storage.PublicBaseURL, "/")
	if cfg.Storage.ObjectPrefix == "" {
		cfg.Storage.ObjectPrefix = "maintenance-records"
	}

	if cfg.Notification.AppURL == "" {
		cfg.Notification.AppURL = "http://localhost:5173"
	}
	cfg.Notification.AppURL = strings.TrimSuffix(cfg.Notification.AppURL, "/")
	if cfg.Notification.WorkerPool.Size <= 0 {
		logging.Default().Info("notification.worker_pool.size is not set or invalid; defaulting to 1")
		cfg.Notification.WorkerPool.Size = 1
	}
	if cfg.Notification.WorkerPool.QueueSize <= 0 {
		cfg.Notification.WorkerPool.QueueSize = 64
	}
	if cfg.Notification.Push.TTL <= 0 {
		cfg.Notification.Push.TTL = 3600
	}

	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return goerr.New("unsupported database driver", goerr.V("driver", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		return goerr.New("database.dsn is required")
	}

	switch c.Storage.Backend {
	case "gcs":
		if c.Storage.Bucket == "" {
			return goerr.New("storage.bucket is required for the gcs backend")
		}
	case "memory":
	default:
		return goerr.New("unsupported storage backend", goerr.V("backend", c.Storage.Backend))
	}

	push := c.Notification.Push
	if (push.PublicKey == "") != (push.PrivateKey == "") {
		return goerr.New("both VAPID keys must be configured to enable web push")
	}
	return nil
}
