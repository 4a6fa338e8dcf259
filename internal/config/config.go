// Package config loads application settings from the environment.
package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the server reads at start-up.
type Config struct {
	AppPort string

	DatabaseDriver string // postgres, sqlite or memory
	DatabaseDSN    string

	JWTSecret string
	JWTTTL    time.Duration

	RabbitMQURL string // empty disables order events

	UploadDriver string // local or s3
	UploadDir    string
	S3Bucket     string
	S3Region     string

	SMTPHost  string
	SMTPPort  string
	EmailUser string
	EmailPass string
	EmailFrom string

	CORSOrigins        string
	RateLimitPerMinute int
	StaticDir          string

	SeedOnStart   bool
	AdminEmail    string
	AdminPassword string
}

// Load reads an optional .env file and then the environment.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded settings from .env")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return Config{
		AppPort:            v.GetString("APP_PORT"),
		DatabaseDriver:     v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:        v.GetString("DATABASE_DSN"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTTTL:             v.GetDuration("JWT_TTL"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		UploadDriver:       v.GetString("UPLOAD_DRIVER"),
		UploadDir:          v.GetString("UPLOAD_DIR"),
		S3Bucket:           v.GetString("S3_BUCKET"),
		S3Region:           v.GetString("S3_REGION"),
		SMTPHost:           v.GetString("SMTP_HOST"),
		SMTPPort:           v.GetString("SMTP_PORT"),
		EmailUser:          v.GetString("EMAIL_USER"),
		EmailPass:          v.GetString("EMAIL_PASS"),
		EmailFrom:          v.GetString("EMAIL_FROM"),
		CORSOrigins:        v.GetString("CORS_ORIGINS"),
		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		StaticDir:          v.GetString("STATIC_DIR"),
		SeedOnStart:        v.GetBool("SEED_ON_START"),
		AdminEmail:         v.GetString("ADMIN_EMAIL"),
		AdminPassword:      v.GetString("ADMIN_PASSWORD"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "watchstore.db")
	v.SetDefault("JWT_SECRET", "change_me_in_production")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("UPLOAD_DRIVER", "local")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("EMAIL_USER", "")
	v.SetDefault("EMAIL_PASS", "")
	v.SetDefault("EMAIL_FROM", "")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 100)
	v.SetDefault("STATIC_DIR", "")
	v.SetDefault("SEED_ON_START", false)
	v.SetDefault("ADMIN_EMAIL", "admin@watchstore.local")
	v.SetDefault("ADMIN_PASSWORD", "admin123")
}
