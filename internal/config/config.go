package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Storage backends for durable client storage.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
	DriverRedis  = "redis"
)

type Config struct {
	Port           string
	StorageDriver  string
	DBPath         string
	RedisAddr      string
	CSRFKey        []byte
	SessionKey     []byte
	CookieDomain   string
	CookieSecure   bool
	FrontendOrigin string
	SeedFile       string
	Latency        time.Duration
	BcryptCost     int
	LogLevel       slog.Level
}

// LoadConfig reads the environment, after loading .env from the working
// directory when one exists.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8585"),
		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", DriverSQLite)),
		DBPath:         getEnv("DB_PATH", "./humbleautos.db"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		CookieDomain:   getEnv("COOKIE_DOMAIN", ""),
		CookieSecure:   getEnv("COOKIE_SECURE", "false") == "true",
		FrontendOrigin: getEnv("FRONTEND_ORIGIN", ""),
		SeedFile:       getEnv("SEED_FILE", ""),
		BcryptCost:     bcrypt.DefaultCost,
	}

	cfg.CSRFKey = loadKey("CSRF_KEY")
	cfg.SessionKey = loadKey("SESSION_KEY")

	// Make sure port is valid
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", os.Getenv("PORT"))
		cfg.Port = "8585"
	}

	switch cfg.StorageDriver {
	case DriverMemory, DriverSQLite, DriverBolt, DriverRedis:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if v := getEnv("SIMULATED_LATENCY", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid SIMULATED_LATENCY %q", v)
		}
		cfg.Latency = d
	}

	if v := getEnv("BCRYPT_COST", ""); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return nil, fmt.Errorf("invalid BCRYPT_COST %q", v)
		}
		cfg.BcryptCost = cost
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "INFO"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

// loadKey decodes a base64 key of at least 32 bytes, or generates a random
// one for development.
func loadKey(name string) []byte {
	raw := os.Getenv(name)
	if raw == "" {
		slog.Warn(name + " environment variable not set. Generating a random key for development. This key will change on each restart. PLEASE SET " + name + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(decoded) < 32 {
		slog.Warn(name + " is invalid or too short (min 32 bytes recommended). Generating a random key for development. PLEASE SET A SECURE " + name + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	return decoded
}

// getEnv treats an empty variable as unset.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// generateRandomBytes generates a random byte slice of specified length
// Uses crypto/rand for secure random numbers.
func generateRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	return b
}
