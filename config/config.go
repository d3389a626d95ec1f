package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	APIBaseURL   string
	APITimeout   time.Duration
	APIRateLimit float64
	APIBurst     int
	TokenFile    string

	DraftDriver      string
	DraftDSN         string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	AutosaveInterval time.Duration

	UploadDriver              string
	CloudinaryCloudName       string
	CloudinaryAvatarPreset    string
	CloudinaryThumbnailPreset string
	CloudinaryFilePreset      string

	S3Bucket        string
	S3Region        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string
	S3PublicBaseURL string

	AttachmentExtensions []string
}

// Load reads the environment. Call godotenv.Load first to pick up a .env file.
func Load() Config {
	return Config{
		Port: getEnv("PORT", "8080"),

		APIBaseURL:   getEnv("API_BASE_URL", "http://localhost:5000/api"),
		APITimeout:   getDuration("API_TIMEOUT", 30*time.Second),
		APIRateLimit: getFloat("API_RATE_LIMIT", 20),
		APIBurst:     getInt("API_BURST", 10),
		TokenFile:    getEnv("TOKEN_FILE", ""),

		DraftDriver:      getEnv("DRAFT_DRIVER", "sqlite"),
		DraftDSN:         getEnv("DRAFT_DSN", "drafts.db"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getInt("REDIS_DB", 0),
		AutosaveInterval: getDuration("AUTOSAVE_INTERVAL", 30*time.Second),

		UploadDriver:              getEnv("UPLOAD_DRIVER", "cloudinary"),
		CloudinaryCloudName:       getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAvatarPreset:    getEnv("CLOUDINARY_AVATAR_PRESET", "avatar"),
		CloudinaryThumbnailPreset: getEnv("CLOUDINARY_THUMBNAIL_PRESET", "article-thumbnail"),
		CloudinaryFilePreset:      getEnv("CLOUDINARY_FILE_PRESET", "article-file"),

		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Region:        getEnv("S3_REGION", "ap-southeast-1"),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnv("S3_SECRET_KEY", ""),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),

		AttachmentExtensions: getList("ATTACHMENT_EXTENSIONS", []string{".pdf", ".doc", ".docx", ".zip", ".png", ".jpg"}),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
