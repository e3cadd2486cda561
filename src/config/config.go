package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port               string
	LogLevel           string
	DatabasePath       string
	MaxUploadSizeBytes int64

	JWTSecret         string
	AccessTokenExpiry time.Duration

	// Single-operator credentials. The password is bcrypt-hashed at startup
	// and only the hash is kept in memory.
	APIUsername string
	APIPassword string

	// ExportTimezone is the IANA zone used when rendering order dates.
	// Empty means the host's local zone.
	ExportTimezone string
}

var Cfg *AppConfig

func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", err)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	jwtSecret := getEnv("JWT_SECRET", "insecure-development-jwt-secret-change-me-32b!")
	if jwtSecret == "insecure-development-jwt-secret-change-me-32b!" {
		log.Println("WARNING: Using default insecure JWT_SECRET. Set JWT_SECRET environment variable for production.")
	}

	accessTokenExpiryStr := getEnv("ACCESS_TOKEN_EXPIRY", "60m")
	accessTokenExpiry, err := time.ParseDuration(accessTokenExpiryStr)
	if err != nil {
		log.Printf("WARNING: Invalid ACCESS_TOKEN_EXPIRY format '%s'. Using default 60m. Error: %v", accessTokenExpiryStr, err)
		accessTokenExpiry = 60 * time.Minute
	}

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	Cfg = &AppConfig{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabasePath:       getEnv("DATABASE_PATH", "./etsyexporter.db"),
		MaxUploadSizeBytes: maxUploadSizeBytes,

		JWTSecret:         jwtSecret,
		AccessTokenExpiry: accessTokenExpiry,

		APIUsername: getEnv("API_USERNAME", "admin"),
		APIPassword: getEnv("API_PASSWORD", ""),

		ExportTimezone: getEnv("EXPORT_TIMEZONE", ""),
	}

	if Cfg.APIPassword == "" {
		log.Fatalf("FATAL: API_PASSWORD is required but not set in environment or .env file.")
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s", Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}
