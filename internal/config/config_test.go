package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "15432")
	t.Setenv("MQ_URL", "amqp://mq.internal:5672/")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("GROQ_MODEL", "llama-3.3-70b-versatile")
	t.Setenv("SMTP_HOST", "smtp.internal")
	t.Setenv("SMTP_PORT", "587")

	cfg := &Config{}
	OverrideFromEnv(cfg)

	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 15432, cfg.DB.Port)
	assert.Equal(t, "amqp://mq.internal:5672/", cfg.MQ.URL)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, ":9000", cfg.Server.Port)
	assert.Equal(t, "gsk_test", cfg.AI.APIKey)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.AI.Model)
	assert.Equal(t, "smtp.internal", cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestOverrideFromEnvIgnoresInvalidPort(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")

	cfg := &Config{DB: DBConfig{Port: 5432}}
	OverrideFromEnv(cfg)

	assert.Equal(t, 5432, cfg.DB.Port)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.AI.BaseURL)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.AI.Model)
	assert.Equal(t, 60, cfg.AI.TimeoutSeconds)
	assert.Equal(t, 4, cfg.Worker.PoolSize)
	assert.Equal(t, 300, cfg.Worker.LockTTLSeconds)
	assert.Equal(t, ":9091", cfg.Worker.MetricsPort)
	assert.Equal(t, "rfpflow.local", cfg.SMTP.Domain)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.AI.Model = "llama-3.3-70b-versatile"
	cfg.Worker.PoolSize = 8
	applyDefaults(cfg)

	assert.Equal(t, "llama-3.3-70b-versatile", cfg.AI.Model)
	assert.Equal(t, 8, cfg.Worker.PoolSize)
}
