package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	pkgconfig "github.com/Skotchmaster/pharmacy_shop/pkg/config"
	"github.com/Skotchmaster/pharmacy_shop/pkg/tokens"
)

// Config is the API server configuration.
type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseDriver string
	DatabaseURL    string

	JWTSecret []byte
	TokenTTL  time.Duration

	KafkaBrokers []string
	RedisURL     string
	CORSOrigins  []string

	AllowRoleSignup bool
}

// StorefrontConfig configures the command-line storefront client.
type StorefrontConfig struct {
	APIURL        string
	StorageDir    string
	RedisURL      string
	CheckoutDelay time.Duration
	LogLevel      string
}

// LoadEnvFiles loads the given .env files; missing files are only reported.
func LoadEnvFiles(files ...string) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			log.Printf("Notice: %s not loaded: %v. Using system environment variables", f, err)
		}
	}
}

func Load() Config {
	return Config{
		ServiceName: pkgconfig.EnvDefault("SERVICE_NAME", "pharmacy-api"),
		ServerPort:  pkgconfig.EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    os.Getenv("LOG_LEVEL"),

		DatabaseDriver: pkgconfig.EnvDefault("DB_DRIVER", "postgres"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		TokenTTL:  pkgconfig.EnvDurationDefault("TOKEN_TTL", tokens.DefaultTTL),

		KafkaBrokers: pkgconfig.CSV(os.Getenv("KAFKA_BROKERS")),
		RedisURL:     os.Getenv("REDIS_URL"),
		CORSOrigins:  pkgconfig.CSV(os.Getenv("CORS_ORIGINS")),

		AllowRoleSignup: pkgconfig.EnvBoolDefault("ALLOW_ROLE_SIGNUP", true),
	}
}

// MustLoad is Load plus the checks for variables the server cannot run without.
func MustLoad() Config {
	cfg := Load()
	pkgconfig.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	pkgconfig.MustNonEmpty(string(cfg.JWTSecret), "JWT_SECRET")
	return cfg
}

func LoadStorefront() StorefrontConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return StorefrontConfig{
		APIURL:        pkgconfig.EnvDefault("API_URL", "http://localhost:8080"),
		StorageDir:    pkgconfig.EnvDefault("STOREFRONT_DIR", filepath.Join(home, ".pharmacy_shop")),
		RedisURL:      os.Getenv("STOREFRONT_REDIS_URL"),
		CheckoutDelay: pkgconfig.EnvDurationDefault("CHECKOUT_DELAY", 1500*time.Millisecond),
		LogLevel:      os.Getenv("LOG_LEVEL"),
	}
}
