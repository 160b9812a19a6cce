package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Port                 string
	AppEnv               string
	LogLevel             string
	JWTSecret            string
	JWTAccessExpiration  time.Duration
	JWTRefreshExpiration time.Duration
	FrontendURL          string
	MongoDBURI           string
	MongoDBDatabase      string
	RedisURL             string
	RateLimitMax         int
	RateLimitWindow      time.Duration
	RequestTimeout       time.Duration
	LockTTL              time.Duration
	RankRepairInterval   time.Duration
	ReservedInviteEmail  string
}

func Load() *Config {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		AppEnv:               getEnv("APP_ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		JWTSecret:            getEnv("JWT_SECRET", defaultJWTSecret),
		JWTAccessExpiration:  getDuration("JWT_ACCESS_EXPIRATION", 15*time.Minute),
		JWTRefreshExpiration: getDuration("JWT_REFRESH_EXPIRATION", 168*time.Hour),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:5173"),
		MongoDBURI:           getEnv("MONGODB_URI", ""),
		MongoDBDatabase:      getEnv("MONGODB_DATABASE", "planets"),
		RedisURL:             getEnv("REDIS_URL", ""),
		RateLimitMax:         getInt("RATE_LIMIT_MAX", 1),
		RateLimitWindow:      getDuration("RATE_LIMIT_WINDOW", 300*time.Millisecond),
		RequestTimeout:       getDuration("REQUEST_TIMEOUT", 5*time.Second),
		LockTTL:              getDuration("LOCK_TTL", 10*time.Second),
		RankRepairInterval:   getDuration("RANK_REPAIR_INTERVAL", 10*time.Minute),
		ReservedInviteEmail:  getEnv("RESERVED_INVITE_EMAIL", "admin@admin.com"),
	}
}

// Validate rejects settings that must never reach production.
func (c *Config) Validate() error {
	if c.MongoDBURI == "" {
		return errors.New("MONGODB_URI is required")
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	// A column lock must outlive any request that holds it.
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if c.LockTTL <= c.RequestTimeout {
		return fmt.Errorf("LOCK_TTL (%s) must exceed REQUEST_TIMEOUT (%s)", c.LockTTL, c.RequestTimeout)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) IsTest() bool {
	return c.AppEnv == "test"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}
