package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

const (
	EnvPrefix = "SITEPNL"

	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	AppName     string `mapstructure:"app_name"`
	AppVersion  string `mapstructure:"app_version"`
	Environment string `mapstructure:"environment"`

	HTTP          HTTPConfig          `mapstructure:"http"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	RateLimit     RateLimitConfig     `mapstructure:"ratelimit"`
	PnL           PnLConfig           `mapstructure:"pnl"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// Driver is one of postgres, mysql or sqlite.
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogQueries      bool          `mapstructure:"log_queries"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

type PnLConfig struct {
	// Workers bounds the number of sites computed concurrently.
	Workers int `mapstructure:"workers"`
}

type ObservabilityConfig struct {
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	// OTLPProtocol is grpc or http.
	OTLPProtocol string  `mapstructure:"otlp_protocol"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

var Module = fx.Module("config",
	fx.Provide(NewLoader),
	fx.Provide(func(l *Loader) (Config, error) {
		return l.Load()
	}),
)

// Loader reads configuration from defaults, an optional config file, .env
// and SITEPNL_ prefixed environment variables, in increasing precedence.
type Loader struct {
	v *viper.Viper

	mu        sync.Mutex
	fileFound bool
	watchers  []func(Config)
}

func NewLoader() *Loader {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if file := os.Getenv(EnvPrefix + "_CONFIG"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/sitepnl")
	}
	return &Loader{v: v}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "sitepnl")
	v.SetDefault("app_version", "dev")
	v.SetDefault("environment", EnvDevelopment)

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "host=localhost user=postgres password=postgres dbname=sitepnl port=5432 sslmode=disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.log_queries", false)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.limit", 60)
	v.SetDefault("ratelimit.window", time.Minute)

	v.SetDefault("pnl.workers", 4)

	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.log_format", "json")
	v.SetDefault("observability.otlp_endpoint", "")
	v.SetDefault("observability.otlp_protocol", "http")
	v.SetDefault("observability.otlp_insecure", true)
	v.SetDefault("observability.sample_ratio", 1.0)
}

// Load reads the config file when present and decodes the merged settings.
func (l *Loader) Load() (Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		l.mu.Lock()
		l.fileFound = true
		l.mu.Unlock()
	}
	return l.decode()
}

func (l *Loader) decode() (Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// OnChange registers fn for config file changes. Changes that fail to decode
// are dropped. Without a config file there is nothing to watch.
func (l *Loader) OnChange(fn func(Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.watchers = append(l.watchers, fn)
	if len(l.watchers) > 1 || !l.fileFound {
		return
	}

	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := l.decode()
		if err != nil {
			return
		}
		l.mu.Lock()
		watchers := append([]func(Config){}, l.watchers...)
		l.mu.Unlock()
		for _, w := range watchers {
			w(cfg)
		}
	})
	l.v.WatchConfig()
}

var (
	ErrInvalidDatabaseDriver = errors.New("invalid_database_driver")
	ErrInvalidWorkers        = errors.New("invalid_pnl_workers")
	ErrInvalidRateLimit      = errors.New("invalid_ratelimit")
)

func (c Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDatabaseDriver, c.Database.Driver)
	}
	if c.PnL.Workers < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.PnL.Workers)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Limit < 1 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("%w: limit %d window %s", ErrInvalidRateLimit, c.RateLimit.Limit, c.RateLimit.Window)
	}
	return nil
}
