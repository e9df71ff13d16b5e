package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Skotchmaster/storefront/internal/cache"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/pkg/config"
)

type ServiceConfig struct {
	config.Config

	DBAutoMigrate   bool
	MaxUploadMB     int
	AdminOnlyWrites bool
	SecureCookie    bool
	CSRFProtect     bool

	StorageBackend string
	StorageDir     string
	S3             storage.S3Config

	EventsBackend string
	AMQPURL       string
	AMQPExchange  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CartCacheTTL  time.Duration

	Search search.Config
}

func Load() ServiceConfig {
	cfg := fromEnv()

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	config.Must(cfg.Validate())

	return cfg
}

func fromEnv() ServiceConfig {
	timeout := config.EnvDurationDefault("STORAGE_TIMEOUT", 30*time.Second)
	return ServiceConfig{
		Config: config.Load(),

		DBAutoMigrate:   config.EnvBoolDefault("DB_AUTOMIGRATE", true),
		MaxUploadMB:     config.EnvIntDefault("MAX_UPLOAD_MB", 10),
		AdminOnlyWrites: config.EnvBoolDefault("ADMIN_ONLY_WRITES", false),
		SecureCookie:    config.EnvBoolDefault("COOKIE_SECURE", false),
		CSRFProtect:     config.EnvBoolDefault("CSRF_PROTECT", false),

		StorageBackend: config.EnvDefault("STORAGE_BACKEND", "s3"),
		StorageDir:     config.EnvDefault("STORAGE_DIR", "./media"),
		S3: storage.S3Config{
			Endpoint:  os.Getenv("STORAGE_ENDPOINT"),
			KeyID:     os.Getenv("STORAGE_KEY_ID"),
			AppKey:    os.Getenv("STORAGE_APP_KEY"),
			Bucket:    os.Getenv("STORAGE_BUCKET"),
			UseSSL:    config.EnvBoolDefault("STORAGE_USE_SSL", true),
			PublicURL: os.Getenv("STORAGE_PUBLIC_URL"),
			Timeout:   timeout,
		},

		EventsBackend: config.EnvDefault("EVENTS_BACKEND", "none"),
		AMQPURL:       os.Getenv("AMQP_URL"),
		AMQPExchange:  config.EnvDefault("AMQP_EXCHANGE", "storefront"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       config.EnvIntDefault("REDIS_DB", 0),
		CartCacheTTL:  config.EnvDurationDefault("CART_CACHE_TTL", cache.DefaultTTL),

		Search: search.Config{
			URL:      os.Getenv("ES_URL"),
			User:     os.Getenv("ES_USER"),
			Password: os.Getenv("ES_PASSWORD"),
			Index:    config.EnvDefault("ES_INDEX", search.DefaultIndex),
		},
	}
}

// Validate checks that the selected backends carry what they need to start.
func (c ServiceConfig) Validate() error {
	switch c.StorageBackend {
	case "s3":
		if c.S3.Endpoint == "" || c.S3.Bucket == "" {
			return fmt.Errorf("STORAGE_ENDPOINT and STORAGE_BUCKET are required for STORAGE_BACKEND=s3")
		}
	case "local":
		if c.StorageDir == "" {
			return fmt.Errorf("STORAGE_DIR is required for STORAGE_BACKEND=local")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}

	switch c.EventsBackend {
	case "none":
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required for EVENTS_BACKEND=kafka")
		}
	case "amqp":
		if c.AMQPURL == "" {
			return fmt.Errorf("AMQP_URL is required for EVENTS_BACKEND=amqp")
		}
	default:
		return fmt.Errorf("unsupported EVENTS_BACKEND %q", c.EventsBackend)
	}

	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// BodyLimit renders MaxUploadMB in the form echo's BodyLimit middleware expects.
func (c ServiceConfig) BodyLimit() string {
	return fmt.Sprintf("%dM", c.MaxUploadMB)
}
