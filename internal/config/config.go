package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// Server settings
	Port string
	Host string
	Env  string

	// MongoDB settings
	MongoURI     string
	DatabaseName string
	MongoTimeout int

	// JWT settings
	JWTSecret     string
	JWTExpiration int

	// Push gateway settings
	PushGatewayURL   string
	PushGatewayToken string

	// Client-side token acquisition timeout, milliseconds
	TokenAcquireTimeoutMS int

	// CORS
	AllowedOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   int // seconds
}

func Load() *Config {
	config := &Config{
		Port:                  getEnv("PORT", "8080"),
		Host:                  getEnv("HOST", "0.0.0.0"),
		Env:                   getEnv("ENV", "development"),
		MongoURI:              getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName:          getEnv("DATABASE_NAME", "shoplink_push"),
		MongoTimeout:          getEnvAsInt("MONGO_TIMEOUT", 10),
		JWTSecret:             getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiration:         getEnvAsInt("JWT_EXPIRATION", 24), // hours
		PushGatewayURL:        getEnv("PUSH_GATEWAY_URL", "https://exp.host/--/api/v2/push/send"),
		PushGatewayToken:      getEnv("PUSH_GATEWAY_TOKEN", ""),
		TokenAcquireTimeoutMS: getEnvAsInt("TOKEN_ACQUIRE_TIMEOUT_MS", 5000),
		AllowedOrigins:        getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		RateLimitEnabled:      getEnvAsBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests:     getEnvAsInt("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:       getEnvAsInt("RATE_LIMIT_WINDOW", 60),
	}

	if config.JWTSecret == "your-secret-key" && config.Env == "production" {
		log.Println("WARNING: JWT_SECRET is not set in production")
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
