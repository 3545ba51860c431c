package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port        string `mapstructure:"port"`
		QueuePort   string `mapstructure:"queue_port"`
		MetricsPort string `mapstructure:"metrics_port"`
		LogLevel    string `mapstructure:"log_level"`
	} `mapstructure:"server"`
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Redis struct {
		Host              string `mapstructure:"host"`
		Port              string `mapstructure:"port"`
		Password          string `mapstructure:"password"`
		DB                int    `mapstructure:"db"`
		DefaultTTLSeconds int    `mapstructure:"default_ttl_seconds"`
	} `mapstructure:"redis"`
	Storage struct {
		Provider      string `mapstructure:"provider"`
		KeyID         string `mapstructure:"key_id"`
		AppKey        string `mapstructure:"app_key"`
		Endpoint      string `mapstructure:"endpoint"`
		Region        string `mapstructure:"region"`
		BucketAudio   string `mapstructure:"bucket_audio"`
		PublicBaseURL string `mapstructure:"public_base_url"`
		LocalPath     string `mapstructure:"local_path"`
	} `mapstructure:"storage"`
}

// DefaultCacheTTL returns the configured cache expiry as a duration.
func (c *Config) DefaultCacheTTL() time.Duration {
	return time.Duration(c.Redis.DefaultTTLSeconds) * time.Second
}

func Load() *Config {
	viper.SetEnvPrefix("STORECAST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Register keys
	viper.BindEnv("server.port")
	viper.BindEnv("server.queue_port")
	viper.BindEnv("server.metrics_port")
	viper.BindEnv("server.log_level")

	viper.BindEnv("database.host")
	viper.BindEnv("database.port")
	viper.BindEnv("database.user")
	viper.BindEnv("database.password")
	viper.BindEnv("database.name")

	viper.BindEnv("redis.host")
	viper.BindEnv("redis.port")
	viper.BindEnv("redis.password")
	viper.BindEnv("redis.db")
	viper.BindEnv("redis.default_ttl_seconds")

	viper.BindEnv("storage.provider")
	viper.BindEnv("storage.key_id")
	viper.BindEnv("storage.app_key")
	viper.BindEnv("storage.endpoint")
	viper.BindEnv("storage.region")
	viper.BindEnv("storage.bucket_audio")
	viper.BindEnv("storage.public_base_url")
	viper.BindEnv("storage.local_path")

	// Defaults
	viper.SetDefault("server.port", ":8081")
	viper.SetDefault("server.queue_port", ":8082")
	viper.SetDefault("server.metrics_port", ":9091")
	viper.SetDefault("server.log_level", "error")

	viper.SetDefault("database.port", "5432")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.db", 0)
	// 5 minutes: the dashboard tolerates slightly stale listings
	viper.SetDefault("redis.default_ttl_seconds", 300)

	viper.SetDefault("storage.provider", "local")
	viper.SetDefault("storage.local_path", "./data")
	viper.SetDefault("storage.bucket_audio", "audio")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Config error: %s", err)
		} else {
			log.Println("Info: config.yaml not found, using Environment Variables only.")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}

	if cfg.Database.Host == "" {
		log.Fatal("Critical: Database host is missing (STORECAST_DATABASE_HOST)")
	}
	if cfg.Database.Name == "" {
		log.Fatal("Critical: Database name is missing (STORECAST_DATABASE_NAME)")
	}

	return &cfg
}
