// Package config は環境変数からのアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// defaultAppwriteEndpoint はAppwrite CloudのAPIエンドポイント。
const defaultAppwriteEndpoint = "https://cloud.appwrite.io/v1"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Appwrite (外部IdP)
	AppwriteEndpoint  string
	AppwriteProjectID string
	AppwriteAPIKey    string

	// JWT
	JWTSecret    string
	JWTExpiresIn time.Duration

	// Gemini (生成AI栄養ルックアップ)
	GeminiAPIKey   string
	GeminiEndpoint string

	// Rate Limit (req/min)
	RateLimitGeneral int
	RateLimitLookup  int

	// Server
	ServerPort string
	DevMode    bool

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.AppwriteProjectID = os.Getenv("APPWRITE_PROJECT_ID")
	if cfg.AppwriteProjectID == "" {
		missing = append(missing, "APPWRITE_PROJECT_ID")
	}

	cfg.AppwriteAPIKey = os.Getenv("APPWRITE_API_KEY")
	if cfg.AppwriteAPIKey == "" {
		missing = append(missing, "APPWRITE_API_KEY")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if cfg.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.AppwriteEndpoint = getEnvString("APPWRITE_ENDPOINT", defaultAppwriteEndpoint)
	cfg.JWTExpiresIn = getEnvDuration("JWT_EXPIRES_IN", 168*time.Hour) // 7日
	cfg.GeminiEndpoint = getEnvString("GEMINI_ENDPOINT", "https://generativelanguage.googleapis.com")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitLookup = getEnvInt("RATE_LIMIT_LOOKUP", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.DevMode = os.Getenv("APP_ENV") == "development"
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "*")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
