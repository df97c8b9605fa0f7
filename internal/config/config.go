package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend names for blob storage.
const (
	StorageFilesystem = "filesystem"
	StorageS3         = "s3"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Database configuration
	DatabaseURL string

	// Upload and storage configuration
	StorageBackend     string
	UploadDir          string
	AcceptedImageTypes []string
	MaxFileSize        int64
	MaxUploadWorkers   int
	MaxImageDimension  int

	// Format conversion configuration
	ConvertTool    string
	ConvertTimeout time.Duration

	// S3 configuration (when StorageBackend == "s3")
	S3Endpoint        string
	S3AccessKeyID     string
	S3AccessKeySecret string
	S3Bucket          string
	S3Region          string

	// Auth configuration
	JWTSecret     string
	JWTExpiration time.Duration

	// Mail configuration
	MailEnabled  bool
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPSender   string
}

// LoadConfig loads the application configuration from environment variables.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env file. Using environment variables.")
	}

	config := &Config{
		Port:         getEnvInt("PORT", 5001),
		ReadTimeout:  time.Duration(getEnvInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvInt("WRITE_TIMEOUT", 60)) * time.Second,

		DatabaseURL: os.Getenv("DATABASE_URL"),

		StorageBackend:     getEnvString("STORAGE_BACKEND", StorageFilesystem),
		UploadDir:          getEnvString("UPLOAD_DIR", "uploads"),
		AcceptedImageTypes: getEnvStringSlice("ACCEPTED_IMAGE_TYPES", []string{"image/jpeg", "image/png", "image/heic", "image/heif"}),
		MaxFileSize:        int64(getEnvInt("MAX_FILE_SIZE", 10*1024*1024)),
		MaxUploadWorkers:   getEnvInt("MAX_UPLOAD_WORKERS", 4),
		MaxImageDimension:  getEnvInt("MAX_IMAGE_DIMENSION", 2048),

		ConvertTool:    getEnvString("CONVERT_TOOL", "heif-convert"),
		ConvertTimeout: time.Duration(getEnvInt("CONVERT_TIMEOUT", 30)) * time.Second,

		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3AccessKeySecret: os.Getenv("S3_ACCESS_KEY_SECRET"),
		S3Bucket:          getEnvString("S3_BUCKET", "invoices"),
		S3Region:          getEnvString("S3_REGION", "us-east-1"),

		JWTSecret:     getEnvString("JWT_SECRET", ""),
		JWTExpiration: time.Duration(getEnvInt("JWT_EXPIRATION", 3600)) * time.Second,

		MailEnabled:  getEnvBool("MAIL_ENABLED", true),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("EMAIL_USER"),
		SMTPPassword: os.Getenv("EMAIL_PASS"),
		SMTPSender:   getEnvString("EMAIL_SENDER", os.Getenv("EMAIL_USER")),
	}

	validateConfig(config)

	return config, nil
}

// validateConfig checks critical configuration values and logs warnings if
// they are missing.
func validateConfig(config *Config) {
	if config.DatabaseURL == "" {
		log.Println("Warning: No DATABASE_URL provided. Database connections will fail.")
	}
	if config.JWTSecret == "" {
		log.Println("Warning: No JWT_SECRET provided. Logins will fail.")
	}
	if config.MailEnabled && config.SMTPHost == "" {
		log.Println("Warning: Mail is enabled but no SMTP_HOST provided. Sending mail will fail.")
	}
	if config.StorageBackend == StorageS3 && (config.S3Endpoint == "" || config.S3AccessKeyID == "") {
		log.Println("Warning: S3 storage selected but S3 credentials are incomplete. Uploads will fail.")
	}
}

// getEnvInt gets an integer from an environment variable with a default value.
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// getEnvBool gets a boolean from an environment variable with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	valueStr = strings.ToLower(valueStr)
	return valueStr == "true" || valueStr == "1" || valueStr == "yes"
}

// getEnvString gets a string from an environment variable with a default value.
func getEnvString(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvStringSlice gets a string slice from a comma-separated environment variable.
func getEnvStringSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
