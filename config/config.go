package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the application configuration. Values come from config.yaml when
// present and are overridden by environment variables (LLM_MODEL, DB_DSN, ...).
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Storage  StorageConfig  `mapstructure:"storage"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Raster   RasterConfig   `mapstructure:"raster"`
	Log      LogConfig      `mapstructure:"log"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Unidoc   UnidocConfig   `mapstructure:"unidoc"`
}

type ServerConfig struct {
	Addr          string `mapstructure:"addr"`
	MaxUploadSize int64  `mapstructure:"max_upload_size"`
	PublicURL     string `mapstructure:"public_url"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// RabbitMQConfig leaves URL empty to disable event publishing.
type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type StorageConfig struct {
	Driver   string `mapstructure:"driver"` // "fs" or "s3"
	Dir      string `mapstructure:"dir"`
	Bucket   string `mapstructure:"bucket"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Endpoint    string        `mapstructure:"endpoint"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float64       `mapstructure:"temperature"`
}

type RasterConfig struct {
	DPI           float64 `mapstructure:"dpi"`
	MaxPages      int     `mapstructure:"max_pages"`
	MaxPixelWidth int     `mapstructure:"max_pixel_width"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AdminConfig seeds the first user when the users table is empty.
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type UnidocConfig struct {
	LicenseAPIKey string `mapstructure:"license_api_key"`
}

const (
	// MinDPI is the lowest resolution a page is rendered or downscaled to.
	// raster.max_pixel_width yields to it for pages wider than about
	// 13.3 inches at the default 2000 px.
	MinDPI          = 150.0
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_size", 10<<20)
	v.SetDefault("server.public_url", "")
	v.SetDefault("db.dsn", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.token_ttl", 7*24*time.Hour)
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "resumes")
	v.SetDefault("storage.driver", "fs")
	v.SetDefault("storage.dir", "media")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.endpoint", DefaultEndpoint)
	v.SetDefault("llm.model", "gemini-1.5-flash")
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("raster.dpi", MinDPI)
	v.SetDefault("raster.max_pages", 5)
	v.SetDefault("raster.max_pixel_width", 2000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("admin.username", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("unidoc.license_api_key", "")
}

// Load reads .env, then config.yaml from the working directory or ./configs,
// then the environment. A missing Gemini key is not an error here; the
// transport reports it per request.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	// The key has kept its historical name.
	_ = v.BindEnv("llm.api_key", "GEMINI_API_KEY", "LLM_API_KEY")
	_ = v.BindEnv("unidoc.license_api_key", "UNIDOC_LICENSE_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate rejects values the service cannot run with.
func (c *Config) Validate() error {
	if c.Raster.DPI < MinDPI {
		return fmt.Errorf("raster.dpi must be at least %.0f, got %.0f", MinDPI, c.Raster.DPI)
	}
	if c.Raster.MaxPages < 1 {
		return fmt.Errorf("raster.max_pages must be positive")
	}
	if c.Raster.MaxPixelWidth < 0 {
		return fmt.Errorf("raster.max_pixel_width must not be negative")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be within [0, 2]")
	}
	switch c.Storage.Driver {
	case "fs":
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir is required for the fs driver")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Server.MaxUploadSize <= 0 {
		return fmt.Errorf("server.max_upload_size must be positive")
	}
	return nil
}
