// backend-go/internal/config/config.go
package config

import (
	"os"
	"sync"

	"github.com/andresuchdata/return-router/backend-go/internal/domain"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Routing RoutingConfig
	App     AppConfig
	Cache   CacheConfig
	Storage StorageConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// RoutingConfig holds the default scoring weights and engine options.
type RoutingConfig struct {
	StockWeight    float64
	SalesWeight    float64
	DistanceWeight float64
	Workers        int
	MaxUploadMB    int64
}

type AppConfig struct {
	DataDir   string
	OutputDir string
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	TTLSeconds    int
}

// StorageConfig points at an S3-compatible bucket.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type LogConfig struct {
	Level string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		setDefaults()

		// Read from environment variables
		viper.AutomaticEnv()

		instance = read()

		ensureDir(instance.App.DataDir)
		ensureDir(instance.App.OutputDir)
	})

	return instance
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_MODE", "debug")
	viper.SetDefault("SERVER_READ_TIMEOUT", 30)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("ROUTING_STOCK_WEIGHT", 0.5)
	viper.SetDefault("ROUTING_SALES_WEIGHT", 0.3)
	viper.SetDefault("ROUTING_DISTANCE_WEIGHT", 0.2)
	viper.SetDefault("ROUTING_WORKERS", 1)
	viper.SetDefault("ROUTING_MAX_UPLOAD_MB", 32)
	viper.SetDefault("APP_DATA_DIR", "./data")
	viper.SetDefault("APP_OUTPUT_DIR", "./data/output")
	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_HOST", "127.0.0.1")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_TTL_SECONDS", 300)
	viper.SetDefault("STORAGE_ENDPOINT", "")
	viper.SetDefault("STORAGE_ACCESS_KEY", "")
	viper.SetDefault("STORAGE_SECRET_KEY", "")
	viper.SetDefault("STORAGE_BUCKET", "")
	viper.SetDefault("STORAGE_REGION", "")
	viper.SetDefault("STORAGE_USE_SSL", true)
	viper.SetDefault("LOG_LEVEL", "info")
}

func read() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Mode:           viper.GetString("SERVER_MODE"),
			ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Routing: RoutingConfig{
			StockWeight:    viper.GetFloat64("ROUTING_STOCK_WEIGHT"),
			SalesWeight:    viper.GetFloat64("ROUTING_SALES_WEIGHT"),
			DistanceWeight: viper.GetFloat64("ROUTING_DISTANCE_WEIGHT"),
			Workers:        viper.GetInt("ROUTING_WORKERS"),
			MaxUploadMB:    viper.GetInt64("ROUTING_MAX_UPLOAD_MB"),
		},
		App: AppConfig{
			DataDir:   viper.GetString("APP_DATA_DIR"),
			OutputDir: viper.GetString("APP_OUTPUT_DIR"),
		},
		Cache: CacheConfig{
			Enabled:       viper.GetBool("CACHE_ENABLED"),
			RedisURL:      viper.GetString("REDIS_URL"),
			RedisHost:     viper.GetString("REDIS_HOST"),
			RedisPort:     viper.GetString("REDIS_PORT"),
			RedisPassword: viper.GetString("REDIS_PASSWORD"),
			RedisDB:       viper.GetInt("REDIS_DB"),
			TTLSeconds:    viper.GetInt("CACHE_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
			AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
			Bucket:    viper.GetString("STORAGE_BUCKET"),
			Region:    viper.GetString("STORAGE_REGION"),
			UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}
}

// Weights returns the configured default scoring weights.
func (c *Config) Weights() domain.Weights {
	return domain.Weights{
		Stock:    c.Routing.StockWeight,
		Sales:    c.Routing.SalesWeight,
		Distance: c.Routing.DistanceWeight,
	}
}

// Configured reports whether object storage settings are complete.
func (s StorageConfig) Configured() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

func ensureDir(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("Failed to create directory")
		}
	}
}
