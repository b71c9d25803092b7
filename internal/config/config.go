package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Google    GoogleConfig    `yaml:"google" mapstructure:"google"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Redis     RedisConfig     `yaml:"redis" mapstructure:"redis"`
	Ingest    IngestConfig    `yaml:"ingest" mapstructure:"ingest"`
	Resolve   ResolveConfig   `yaml:"resolve" mapstructure:"resolve"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Emails    EmailsConfig    `yaml:"emails" mapstructure:"emails"`
	Notify    NotifyConfig    `yaml:"notify" mapstructure:"notify"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// GoogleConfig holds Google Places API settings.
type GoogleConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings for the intake chat.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// RedisConfig enables the place lookup cache when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// IngestConfig configures seed and directory ingestion.
type IngestConfig struct {
	DirectoryURL string        `yaml:"directory_url" mapstructure:"directory_url"`
	Delay        time.Duration `yaml:"delay" mapstructure:"delay"`
	BatchSize    int           `yaml:"batch_size" mapstructure:"batch_size"`
}

// ResolveConfig configures the place resolution stage.
type ResolveConfig struct {
	Delay         time.Duration `yaml:"delay" mapstructure:"delay"`
	MinConfidence float64       `yaml:"min_confidence" mapstructure:"min_confidence"`
}

// ExtractConfig configures the content extraction stage.
type ExtractConfig struct {
	Delay       time.Duration `yaml:"delay" mapstructure:"delay"`
	TimeoutSecs int           `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxBodyKB   int           `yaml:"max_body_kb" mapstructure:"max_body_kb"`
	UserAgent   string        `yaml:"user_agent" mapstructure:"user_agent"`
}

// EmailsConfig configures the contact email discovery stage.
type EmailsConfig struct {
	Delay     time.Duration `yaml:"delay" mapstructure:"delay"`
	PageDelay time.Duration `yaml:"page_delay" mapstructure:"page_delay"`
	MaxPages  int           `yaml:"max_pages" mapstructure:"max_pages"`
}

// NotifyConfig holds outbound notification channels. Empty channels are skipped.
type NotifyConfig struct {
	TelegramToken  string  `yaml:"telegram_token" mapstructure:"telegram_token"`
	TelegramChatID string  `yaml:"telegram_chat_id" mapstructure:"telegram_chat_id"`
	TelegramURL    string  `yaml:"telegram_url" mapstructure:"telegram_url"`
	ResendKey      string  `yaml:"resend_key" mapstructure:"resend_key"`
	ResendURL      string  `yaml:"resend_url" mapstructure:"resend_url"`
	EmailFrom      string  `yaml:"email_from" mapstructure:"email_from"`
	EmailTo        string  `yaml:"email_to" mapstructure:"email_to"`
	WebhookURL     string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	FailureRate    float64 `yaml:"failure_rate" mapstructure:"failure_rate"`
}

// ServerConfig configures the intake HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// secretKeys are never defaulted.
var secretKeys = []string{
	"store.database_url",
	"google.key",
	"anthropic.key",
	"redis.addr",
	"redis.password",
	"notify.telegram_token",
	"notify.telegram_chat_id",
	"notify.resend_key",
	"notify.email_from",
	"notify.email_to",
	"notify.webhook_url",
}

// dotenvFiles are loaded, when present, before viper reads the environment.
var dotenvFiles = []string{".env.local", ".env"}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	for _, f := range dotenvFiles {
		// Missing files are fine; existing variables win.
		_ = godotenv.Load(f)
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("OASARA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Credentials have no defaults; bind them so Unmarshal still sees the env.
	for _, key := range secretKeys {
		_ = v.BindEnv(key)
	}

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("google.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("redis.ttl_hours", 24*30)
	v.SetDefault("ingest.directory_url", "https://www.jointcommissioninternational.org/who-is-jci-accredited/")
	v.SetDefault("ingest.delay", time.Second)
	v.SetDefault("ingest.batch_size", 100)
	v.SetDefault("resolve.delay", 500*time.Millisecond)
	v.SetDefault("resolve.min_confidence", 0.4)
	v.SetDefault("extract.delay", 2*time.Second)
	v.SetDefault("extract.timeout_secs", 15)
	v.SetDefault("extract.max_body_kb", 1024)
	v.SetDefault("extract.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("emails.delay", time.Second)
	v.SetDefault("emails.page_delay", 500*time.Millisecond)
	v.SetDefault("emails.max_pages", 5)
	v.SetDefault("notify.telegram_url", "https://api.telegram.org")
	v.SetDefault("notify.resend_url", "https://api.resend.com")
	v.SetDefault("notify.failure_rate", 0.5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the keys required by mode are present and reports all
// missing keys in a single error.
func (c *Config) Validate(mode string) error {
	var errs []string
	requireStore := func() {
		if c.Store.Driver != "postgres" && c.Store.Driver != "sqlite" {
			errs = append(errs, "store.driver must be postgres or sqlite")
		}
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	}

	switch mode {
	case "ingest", "report", "status", "migrate", "emails", "specialties":
		requireStore()
	case "resolve":
		requireStore()
		if c.Google.Key == "" {
			errs = append(errs, "google.key is required")
		}
		if c.Resolve.MinConfidence < 0 || c.Resolve.MinConfidence > 1 {
			errs = append(errs, "resolve.min_confidence must be between 0 and 1")
		}
	case "extract":
		requireStore()
		if c.Extract.TimeoutSecs <= 0 {
			errs = append(errs, "extract.timeout_secs must be > 0")
		}
	case "serve":
		if c.Anthropic.Key == "" {
			errs = append(errs, "anthropic.key is required")
		}
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Notify.TelegramToken != "" && c.Notify.TelegramChatID == "" {
		errs = append(errs, "notify.telegram_chat_id is required with notify.telegram_token")
	}
	if c.Notify.ResendKey != "" && (c.Notify.EmailFrom == "" || c.Notify.EmailTo == "") {
		errs = append(errs, "notify.email_from and notify.email_to are required with notify.resend_key")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
