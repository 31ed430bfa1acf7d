package config

import (
	"log/slog"
	"os"
	"strconv"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type Youtube struct {
	APIKey         string
	Region         string
	RatePerMinute  int
	MaxResults     int
	RefreshSpec    string
	ClientID       string
	ClientSecret   string
	RefreshToken   string
	PrivacyStatus  string
	UploadCategory string
}

type Tiktok struct {
	ClientKey    string
	ClientSecret string
	AccessToken  string
	RefreshToken string
	BaseURL      string
}

type Config struct {
	Port             string
	FrontendURL      string
	DatabaseDriver   string
	PostgresURI      string
	SQLitePath       string
	RedisURI         string
	MediaDir         string
	LogDir           string
	SecretKey        string
	CookieName       string
	TitlePrefix      string
	DescriptionLimit int
	Youtube          Youtube
	Tiktok           Tiktok
	R2               R2
}

func LoadConfig() *Config {
	return &Config{
		Port:             getEnv("PORT", "5000"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),
		DatabaseDriver:   getEnv("DATABASE_DRIVER", "memory"),
		PostgresURI:      getEnv("POSTGRES_URI", ""),
		SQLitePath:       getEnv("SQLITE_PATH", "trendqueue.db"),
		RedisURI:         getEnv("REDIS_URI", ""),
		MediaDir:         getEnv("MEDIA_DIR", "./media"),
		LogDir:           getEnv("LOG_DIR", "./logs"),
		SecretKey:        getEnv("SECRET_KEY", ""),
		CookieName:       getEnv("COOKIE_NAME", "trendqueue_token"),
		TitlePrefix:      getEnv("TITLE_PREFIX", "Quantum Quest: "),
		DescriptionLimit: getEnvInt("DESCRIPTION_LIMIT", 150),
		Youtube: Youtube{
			APIKey:         getEnv("YOUTUBE_API_KEY", ""),
			Region:         getEnv("YOUTUBE_REGION", "US"),
			RatePerMinute:  getEnvInt("YOUTUBE_RATE_PER_MINUTE", 60),
			MaxResults:     getEnvInt("TRENDING_MAX_RESULTS", 50),
			RefreshSpec:    getEnv("TRENDING_REFRESH_SPEC", "@every 30m"),
			ClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
			RefreshToken:   getEnv("YOUTUBE_REFRESH_TOKEN", ""),
			PrivacyStatus:  getEnv("YOUTUBE_PRIVACY_STATUS", "public"),
			UploadCategory: getEnv("YOUTUBE_CATEGORY_ID", "22"),
		},
		Tiktok: Tiktok{
			ClientKey:    getEnv("TIKTOK_CLIENT_KEY", ""),
			ClientSecret: getEnv("TIKTOK_CLIENT_SECRET", ""),
			AccessToken:  getEnv("TIKTOK_ACCESS_TOKEN", ""),
			RefreshToken: getEnv("TIKTOK_REFRESH_TOKEN", ""),
			BaseURL:      getEnv("TIKTOK_API_URL", "https://open.tiktokapis.com"),
		},
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		slog.Warn("ignoring invalid integer setting", "key", key, "value", value)
		return defaultValue
	}
	return n
}
