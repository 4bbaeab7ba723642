package main

import (
	"fmt"
	"os"
)

// Config holds all environment configuration for the storefront.
type Config struct {
	Port        string
	Environment string // "development" or "production"
	ClientURL   string

	MongoURL  string
	MongoDB   string
	RedisURL  string
	JWTSecret string

	StripeSecretKey  string
	StripeWebhookKey string

	AWSRegion    string
	AWSEndpoint  string
	AWSAccessKey string
	AWSSecretKey string
	ImageBucket  string
}

// LoadConfig reads configuration from environment variables and validates
// the fields the service cannot run without.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "5000"),
		Environment: getEnv("NODE_ENV", "development"),
		ClientURL:   getEnv("CLIENT_URL", "http://localhost:5173"),

		MongoURL:  getEnv("MONGO_URL", "mongodb://localhost:27017"),
		MongoDB:   getEnv("MONGO_DB", "acconnect"),
		RedisURL:  getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		StripeSecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookKey: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		AWSEndpoint:  os.Getenv("AWS_ENDPOINT"),
		AWSAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		ImageBucket:  getEnv("IMAGE_BUCKET", "acconnect-product-images"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is required")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production mode, which
// turns on secure cookies and JSON logging.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
