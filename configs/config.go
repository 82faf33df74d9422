package config

import (
	"os"
	"strconv"
	"time"
)

type R2 struct {
	AccountID     string
	AccessKey     string
	SecretKey     string
	BucketName    string
	PublicBaseURL string
}

type LLM struct {
	APIURL string
	APIKey string
	Model  string
}

type ImageGen struct {
	APIURL string
	APIKey string
	Model  string
}

type Generation struct {
	DefaultBatchSize int
	ImageCallDelay   time.Duration
	CallTimeout      time.Duration
}

type Config struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	PostgresURI        string
	RedisURI           string
	FrontendURL        string
	R2                 R2
	LLM                LLM
	ImageGen           ImageGen
	Generation         Generation
	SecretKey          string
	CookieName         string
}

func LoadConfig() *Config {
	return &Config{
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:3000/login/callback"),
		PostgresURI:        getEnv("POSTGRES_URI", ""),
		RedisURI:           getEnv("REDIS_URI", ""),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173"),
		R2: R2{
			AccountID:     getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:     getEnv("R2_ACCESS_KEY", ""),
			SecretKey:     getEnv("R2_SECRET_KEY", ""),
			BucketName:    getEnv("R2_BUCKET_NAME", ""),
			PublicBaseURL: getEnv("R2_PUBLIC_BASE_URL", ""),
		},
		LLM: LLM{
			APIURL: getEnv("LLM_API_URL", "https://generativelanguage.googleapis.com/v1beta"),
			APIKey: getEnv("LLM_API_KEY", ""),
			Model:  getEnv("LLM_MODEL", "gemini-1.5-flash"),
		},
		ImageGen: ImageGen{
			APIURL: getEnv("IMAGE_API_URL", ""),
			APIKey: getEnv("IMAGE_API_KEY", ""),
			Model:  getEnv("IMAGE_MODEL", ""),
		},
		Generation: Generation{
			DefaultBatchSize: getEnvInt("GENERATION_BATCH_SIZE", 10),
			ImageCallDelay:   getEnvDuration("IMAGE_CALL_DELAY", 12*time.Second),
			CallTimeout:      getEnvDuration("PROVIDER_CALL_TIMEOUT", 90*time.Second),
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		CookieName: getEnv("COOKIE_NAME", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
