package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.ListenAddr)
	assert.Equal(t, uint64(0), cfg.AssetID)
	assert.Equal(t, 300*time.Second, cfg.ChallengeTTL)
	assert.Equal(t, 3600*time.Second, cfg.TokenTTL)
	assert.False(t, cfg.RecheckOwnership)
	assert.True(t, cfg.SecretGenerated)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("NFT_ASSET_ID", "123456")
	t.Setenv("JWT_SECRET", "topsecret")
	t.Setenv("CHALLENGE_TTL_SECONDS", "60")
	t.Setenv("RECHECK_OWNERSHIP", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, uint64(123456), cfg.AssetID)
	assert.Equal(t, "topsecret", cfg.JWTSecret)
	assert.False(t, cfg.SecretGenerated)
	assert.Equal(t, time.Minute, cfg.ChallengeTTL)
	assert.True(t, cfg.RecheckOwnership)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("NFT_ASSET_ID", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}
