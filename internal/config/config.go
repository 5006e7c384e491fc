package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/types"
)

type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment"`
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Stripe     StripeConfig     `mapstructure:"stripe"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Email      EmailConfig      `mapstructure:"email"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Reconciler ReconcilerConfig `mapstructure:"reconciler"`
}

type DeploymentConfig struct {
	Mode types.DeploymentMode `mapstructure:"mode" default:"api"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" default:":8080"`
}

type AuthConfig struct {
	Secret        string        `mapstructure:"secret"`
	TokenExpiry   time.Duration `mapstructure:"token_expiry" default:"720h"`
	SessionExpiry time.Duration `mapstructure:"session_expiry" default:"168h"`
	SecureCookies bool          `mapstructure:"secure_cookies"`
}

type StripeConfig struct {
	SecretKey     string        `mapstructure:"secret_key"`
	WebhookSecret string        `mapstructure:"webhook_secret"`
	CallTimeout   time.Duration `mapstructure:"call_timeout" default:"30s"`
	PriceBasic    string        `mapstructure:"price_basic"`
	PricePremium  string        `mapstructure:"price_premium"`
	PriceLifetime string        `mapstructure:"price_lifetime"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri" default:"mongodb://localhost:27017"`
	Database string `mapstructure:"database" default:"ratelink"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address" default:"localhost:6379"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Type string `mapstructure:"type" default:"inmemory"`
}

type LoggingConfig struct {
	Level          types.LogLevel `mapstructure:"level" default:"info"`
	FluentdEnabled bool           `mapstructure:"fluentd_enabled"`
	FluentdHost    string         `mapstructure:"fluentd_host"`
	FluentdPort    int            `mapstructure:"fluentd_port"`
}

type EmailConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	APIKey    string `mapstructure:"api_key"`
	FromEmail string `mapstructure:"from_email" default:"billing@ratelink.app"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment" default:"development"`
	SampleRate  float64 `mapstructure:"sample_rate" default:"1.0"`
}

type ReconcilerConfig struct {
	Enabled      bool          `mapstructure:"enabled" default:"true"`
	PollInterval time.Duration `mapstructure:"poll_interval" default:"1m"`
	MaxAttempts  int           `mapstructure:"max_attempts" default:"5"`
	Workers      int           `mapstructure:"workers" default:"4"`
}

// NewConfig loads configuration from config files and environment variables.
// A local .env file is loaded first when present so development secrets do
// not need to be exported manually.
func NewConfig() (*Configuration, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("RATELINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, ierr.WithError(err).
				WithHint("Failed to read config file").
				Mark(ierr.ErrSystem)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to unmarshal configuration").
			Mark(ierr.ErrSystem)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", "api")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("auth.token_expiry", "720h")
	v.SetDefault("auth.session_expiry", "168h")
	v.SetDefault("stripe.call_timeout", "30s")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "ratelink")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("cache.type", "inmemory")
	v.SetDefault("logging.level", "info")
	v.SetDefault("email.from_email", "billing@ratelink.app")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)
	v.SetDefault("reconciler.enabled", true)
	v.SetDefault("reconciler.poll_interval", "1m")
	v.SetDefault("reconciler.max_attempts", 5)
	v.SetDefault("reconciler.workers", 4)
}

func (c *Configuration) Validate() error {
	if c.Auth.Secret == "" && c.Deployment.Mode != types.ModeLocal {
		return ierr.NewError("auth secret is required").
			WithHint("Set RATELINK_AUTH_SECRET").
			Mark(ierr.ErrValidation)
	}
	if c.Reconciler.MaxAttempts <= 0 {
		return ierr.NewError("reconciler max_attempts must be positive").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// GetDefaultConfig returns a minimal configuration for tests and scripts
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Auth: AuthConfig{
			Secret:        "test-secret",
			TokenExpiry:   30 * 24 * time.Hour,
			SessionExpiry: 7 * 24 * time.Hour,
		},
		Stripe: StripeConfig{
			CallTimeout:   30 * time.Second,
			PriceBasic:    "price_basic_test",
			PricePremium:  "price_premium_test",
			PriceLifetime: "price_lifetime_test",
		},
		Mongo: MongoConfig{URI: "mongodb://localhost:27017", Database: "ratelink_test"},
		Cache: CacheConfig{Type: "inmemory"},
		Logging: LoggingConfig{
			Level: types.LogLevelDebug,
		},
		Reconciler: ReconcilerConfig{
			Enabled:      false,
			PollInterval: time.Minute,
			MaxAttempts:  5,
			Workers:      2,
		},
	}
}
