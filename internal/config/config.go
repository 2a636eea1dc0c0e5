package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Cron      CronConfig      `mapstructure:"cron"`
	Providers ProvidersConfig `mapstructure:"providers"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Sync is a six-field spec (seconds included).
	Sync         string        `mapstructure:"sync"`
	StartupDelay time.Duration `mapstructure:"startup_delay"`
}

type ProvidersConfig struct {
	FRED        ProviderConfig `mapstructure:"fred"`
	Tiingo      ProviderConfig `mapstructure:"tiingo"`
	Binance     ProviderConfig `mapstructure:"binance"`
	Alternative ProviderConfig `mapstructure:"alternative"`
	Timeout     time.Duration  `mapstructure:"timeout"`
}

type ProviderConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// APIKey from config or env is a fallback; a key stored in settings
	// takes precedence.
	APIKey string `mapstructure:"api_key"`
}

type RateLimitConfig struct {
	FRED    DelayBand `mapstructure:"fred"`
	Tiingo  DelayBand `mapstructure:"tiingo"`
	Binance DelayBand `mapstructure:"binance"`
}

type DelayBand struct {
	Min time.Duration `mapstructure:"min"`
	Max time.Duration `mapstructure:"max"`
}

type SyncConfig struct {
	BatchSize  int           `mapstructure:"batch_size"`
	BatchPause time.Duration `mapstructure:"batch_pause"`
}

type AlertsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ML")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.sync", "0 0 0,6,12,18 * * *")
	v.SetDefault("cron.startup_delay", "5s")
	v.SetDefault("providers.fred.base_url", "https://api.stlouisfed.org")
	v.SetDefault("providers.tiingo.base_url", "https://api.tiingo.com")
	v.SetDefault("providers.binance.base_url", "https://api.binance.com")
	v.SetDefault("providers.alternative.base_url", "https://api.alternative.me")
	v.SetDefault("providers.timeout", "30s")
	v.SetDefault("rate_limit.fred.min", "1500ms")
	v.SetDefault("rate_limit.fred.max", "3000ms")
	v.SetDefault("rate_limit.tiingo.min", "1000ms")
	v.SetDefault("rate_limit.tiingo.max", "2000ms")
	v.SetDefault("rate_limit.binance.min", "100ms")
	v.SetDefault("rate_limit.binance.max", "100ms")
	v.SetDefault("sync.batch_size", 10)
	v.SetDefault("sync.batch_pause", "1s")
	v.SetDefault("alerts.enabled", true)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
