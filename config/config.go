package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	Push         PushConfig
	Notification NotificationConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type PushConfig struct {
	// ExpoURL is the Expo push relay endpoint. Leave as default unless
	// pointed at a proxy.
	ExpoURL string
	// FirebaseCredentialsPath selects the FCM provider when set.
	FirebaseCredentialsPath string
	Timeout                 time.Duration
}

type NotificationConfig struct {
	// InviteTTL is how long an issued invite code stays redeemable.
	InviteTTL time.Duration
	// PollInterval drives the offline fallback poller.
	PollInterval time.Duration
	// MissedThreshold is how stale the last check may be before the
	// poller proactively re-checks for unseen messages.
	MissedThreshold time.Duration
}

func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		Server: ServerConfig{
			Port:         envOr("PORT", "8090"),
			Env:          envOr("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             envOr("DATABASE_DSN", "aacbridge:aacbridge@tcp(localhost:3306)/aacbridge?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  envOr("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: envOr("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "aacbridge",
		},
		Push: PushConfig{
			ExpoURL:                 envOr("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send"),
			FirebaseCredentialsPath: os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"),
			Timeout:                 30 * time.Second,
		},
		Notification: NotificationConfig{
			InviteTTL:       24 * time.Hour,
			PollInterval:    10 * time.Second,
			MissedThreshold: 30 * time.Second,
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
