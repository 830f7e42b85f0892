package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process-wide configuration. It is loaded once at startup
// and never mutated afterwards.
type Config struct {
	ListenAddr   string
	IndexerURL   string
	IndexerToken string

	// AssetID is the asset whose ownership gates access. Zero means
	// unconfigured: challenge issuance still works, verification fails closed.
	AssetID uint64

	JWTSecret string
	RedisURL  string
	Domain    string

	ChallengeTTL   time.Duration
	TokenTTL       time.Duration
	IndexerTimeout time.Duration

	// RecheckOwnership re-queries the ledger on every gated request instead of
	// only at token issuance. Costs an indexer round-trip per request but
	// catches asset transfers mid-session.
	RecheckOwnership bool

	// SecretGenerated is set when no JWT_SECRET was provided and a random one
	// was generated. Tokens will not survive a restart in that mode.
	SecretGenerated bool
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:   envString("LISTEN_ADDR", ":8000"),
		IndexerURL:   envString("ALGORAND_INDEXER_URL", "https://testnet-idx.algonode.cloud"),
		IndexerToken: envString("ALGORAND_INDEXER_TOKEN", ""),
		JWTSecret:    envString("JWT_SECRET", ""),
		RedisURL:     envString("REDIS_URL", "redis://localhost:6379/0"),
		Domain:       envString("AUTH_DOMAIN", "api.example.com"),
	}

	var err error
	if cfg.AssetID, err = envUint64("NFT_ASSET_ID", 0); err != nil {
		return nil, err
	}
	if cfg.ChallengeTTL, err = envSeconds("CHALLENGE_TTL_SECONDS", 300*time.Second); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = envSeconds("TOKEN_TTL_SECONDS", 3600*time.Second); err != nil {
		return nil, err
	}
	if cfg.IndexerTimeout, err = envSeconds("INDEXER_TIMEOUT_SECONDS", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.RecheckOwnership, err = envBool("RECHECK_OWNERSHIP", false); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		cfg.JWTSecret = hex.EncodeToString(secret)
		cfg.SecretGenerated = true
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envUint64(key string, fallback uint64) (uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func envSeconds(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return time.Duration(parsed) * time.Second, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
