package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port    string
	BaseURL string

	// Directories
	DataDir   string // templates.json, scripts.json, data/video
	UploadDir string // photos, narration audio, finished videos
	TempDir   string // per-job intermediate namespaces

	// Text-to-speech
	TTSAPIKeys []string
	VoiceID    string

	// Pipeline
	StageTimeoutSeconds int
	MaxConcurrentJobs   int

	// Cloud storage
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	S3Bucket           string

	// Mail
	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	FromEmail string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),

		DataDir:   getEnv("DATA_DIR", "./data"),
		UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
		TempDir:   getEnv("TEMP_DIR", "./temp"),

		TTSAPIKeys: parseAPIKeys(getEnv("ELEVENLABS_API_KEYS", "")),
		VoiceID:    getEnv("SANTA_VOICE_ID", "default-santa-voice"),

		StageTimeoutSeconds: getEnvAsInt("STAGE_TIMEOUT_SECONDS", 300),
		MaxConcurrentJobs:   getEnvAsInt("MAX_CONCURRENT_JOBS", 2),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		S3Bucket:           getEnv("AWS_S3_BUCKET_NAME", ""),

		SMTPHost:  getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:  getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:  getEnv("SMTP_USER", ""),
		SMTPPass:  getEnv("SMTP_PASS", ""),
		FromEmail: getEnv("FROM_EMAIL", "noreply@santavideos.com"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.DataDir == "" || c.UploadDir == "" || c.TempDir == "" {
		return errors.New("DATA_DIR, UPLOAD_DIR and TEMP_DIR must be set")
	}
	if c.MaxConcurrentJobs <= 0 {
		return errors.New("MAX_CONCURRENT_JOBS must be positive")
	}
	if c.StageTimeoutSeconds < 0 {
		return errors.New("STAGE_TIMEOUT_SECONDS must not be negative")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseAPIKeys(keysStr string) []string {
	if keysStr == "" {
		return []string{}
	}
	keys := strings.Split(keysStr, ",")
	result := make([]string, 0, len(keys))
	for _, key := range keys {
		trimmed := strings.TrimSpace(key)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %s, TTS Keys: %d, Jobs: %d, Bucket: %q}",
		c.Port, len(c.TTSAPIKeys), c.MaxConcurrentJobs, c.S3Bucket)
}
