package config_test

import (
	"os"
	"testing"
	"time"

	"watchstore/internal/config"

	"github.com/stretchr/testify/assert"
)

// chdir changes the working directory for the duration of the test
// (equivalent to testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir()) // no .env here

	cfg := config.Load()
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "", cfg.RabbitMQURL)
	assert.Equal(t, "local", cfg.UploadDriver)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, "*", cfg.CORSOrigins)
	assert.Equal(t, 100, cfg.RateLimitPerMinute)
	assert.False(t, cfg.SeedOnStart)
}

func TestLoad_Environment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("RABBITMQ_URL", "amqp://guest:guest@mq:5672/")
	t.Setenv("SEED_ON_START", "true")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")
	t.Setenv("SMTP_HOST", "smtp.example.com")

	cfg := config.Load()
	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "memory", cfg.DatabaseDriver)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.RabbitMQURL)
	assert.True(t, cfg.SeedOnStart)
	assert.Equal(t, 0, cfg.RateLimitPerMinute)
	assert.Equal(t, "smtp.example.com", cfg.SMTPHost)
}
