package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setProviderEnv(t *testing.T) {
	t.Helper()
	t.Setenv("IMAGE_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "test-key")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setProviderEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("RATE_LIMIT_RPM", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gpt-image-1", cfg.OpenAIImageModel)
	assert.Equal(t, "localhost", cfg.RedisHost)
	assert.Equal(t, "6379", cfg.RedisPort)
	assert.Equal(t, 30, cfg.RateLimitRPM)
	assert.False(t, cfg.RedisUseTLS)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setProviderEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("RATE_LIMIT_RPM", "120")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_USE_TLS", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 120, cfg.RateLimitRPM)
	assert.True(t, cfg.RedisUseTLS)
	assert.Equal(t, "redis.internal:6380", cfg.GetRedisAddr())
}

func TestLoadConfig_InvalidRateLimitFallsBack(t *testing.T) {
	setProviderEnv(t)
	t.Setenv("RATE_LIMIT_RPM", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.RateLimitRPM)
}

func TestLoadConfig_MissingProviderKey(t *testing.T) {
	t.Setenv("IMAGE_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_GeminiRequiresKey(t *testing.T) {
	t.Setenv("IMAGE_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "unused")

	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("GEMINI_API_KEY", "gem-key")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash-image", cfg.GeminiModel)
}

func TestLoadConfig_UnknownProvider(t *testing.T) {
	t.Setenv("IMAGE_PROVIDER", "stable-diffusion")

	_, err := LoadConfig()
	assert.Error(t, err)
}
