package http

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclave/sigil/adapters/store"
	"github.com/openclave/sigil/adapters/tokenizer"
	"github.com/openclave/sigil/core"
	"github.com/openclave/sigil/service"
)

type stubLedger struct {
	assetBalance   uint64
	accountBalance uint64
}

func (s *stubLedger) AssetBalance(ctx context.Context, address string, assetID uint64) (uint64, error) {
	return s.assetBalance, nil
}

func (s *stubLedger) AccountBalance(ctx context.Context, address string) (uint64, error) {
	return s.accountBalance, nil
}

func newTestRouter(t *testing.T, assetID uint64, ledger *stubLedger) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)

	jwtTokenizer := tokenizer.NewJWTTokenizer([]byte("test-secret"))
	authService := service.NewAuthService(store.NewMemoryStore(), ledger, jwtTokenizer, nil, log, service.Config{
		AssetID: assetID,
		Domain:  "api.example.com",
	})

	return SetupRouter(authService, ServiceInfo{
		Name:         "NFT API Access Control",
		Version:      "test",
		StoreBackend: "memory",
		IndexerURL:   "http://localhost:8980",
	})
}

func newWallet(t *testing.T) (string, ed25519.PrivateKey) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	var addr types.Address
	copy(addr[:], pub)
	return addr.String(), priv
}

func doJSON(router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func requestChallenge(t *testing.T, router *gin.Engine, addr string) core.Challenge {
	t.Helper()

	w := doJSON(router, http.MethodPost, "/auth/challenge", gin.H{"address": addr}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var challenge core.Challenge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &challenge))
	return challenge
}

func submitProof(t *testing.T, router *gin.Engine, addr string, priv ed25519.PrivateKey, challenge core.Challenge) *httptest.ResponseRecorder {
	t.Helper()

	message, err := challenge.CanonicalBytes()
	require.NoError(t, err)
	signature := ed25519.Sign(priv, message)

	return doJSON(router, http.MethodPost, "/auth/verify", gin.H{
		"address":   addr,
		"signature": base64.StdEncoding.EncodeToString(signature),
		"challenge": challenge,
	}, nil)
}

func TestAuthenticationFlow(t *testing.T) {
	router := newTestRouter(t, 42, &stubLedger{assetBalance: 1, accountBalance: 1_500_000})
	addr, priv := newWallet(t)

	challenge := requestChallenge(t, router, addr)
	assert.Equal(t, addr, challenge.Address)
	assert.Equal(t, "api.example.com", challenge.Domain)
	assert.NotEmpty(t, challenge.Nonce)

	w := submitProof(t, router, addr, priv, challenge)
	require.Equal(t, http.StatusOK, w.Code)

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokenResp))
	assert.Equal(t, "bearer", tokenResp.TokenType)
	assert.Equal(t, 3600, tokenResp.ExpiresIn)
	require.NotEmpty(t, tokenResp.AccessToken)

	headers := map[string]string{"Authorization": "Bearer " + tokenResp.AccessToken}

	w = doJSON(router, http.MethodGet, "/api/protected", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)

	var protected struct {
		Wallet  string `json:"wallet"`
		AssetID uint64 `json:"nft_asset_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &protected))
	assert.Equal(t, addr, protected.Wallet)
	assert.Equal(t, uint64(42), protected.AssetID)

	w = doJSON(router, http.MethodGet, "/api/user/info", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)

	var info map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, addr, info["wallet_address"])
	assert.Equal(t, "1.5", info["algo_balance"])
}

func TestChallengeInvalidAddress(t *testing.T) {
	router := newTestRouter(t, 42, &stubLedger{assetBalance: 1})

	w := doJSON(router, http.MethodPost, "/auth/challenge", gin.H{"address": "not-an-address"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChallengeMissingBody(t *testing.T) {
	router := newTestRouter(t, 42, &stubLedger{assetBalance: 1})

	w := doJSON(router, http.MethodPost, "/auth/challenge", gin.H{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyWithoutChallenge(t *testing.T) {
	router := newTestRouter(t, 42, &stubLedger{assetBalance: 1})
	addr, priv := newWallet(t)

	challenge := core.Challenge{
		Message:   "Authenticate to API service",
		Nonce:     "forged",
		Timestamp: time.Now().Unix(),
		Address:   addr,
		Domain:    "api.example.com",
	}

	w := submitProof(t, router, addr, priv, challenge)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyReplayRejected(t *testing.T) {
	router := newTestRouter(t, 42, &stubLedger{assetBalance: 1})
	addr, priv := newWallet(t)

	challenge := requestChallenge(t, router, addr)

	w := submitProof(t, router, addr, priv, challenge)
	require.Equal(t, http.StatusOK, w.Code)

	w = submitProof(t, router, addr, priv, challenge)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyBadSignature(t *testing.T) {
	router := newTestRouter(t, 42, &stubLedger{assetBalance: 1})
	addr, _ := newWallet(t)
	_, otherPriv := newWallet(t)

	challenge := requestChallenge(t, router, addr)

	w := submitProof(t, router, addr, otherPriv, challenge)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyAssetNotOwned(t *testing.T) {
	router := newTestRouter(t, 42, &stubLedger{assetBalance: 0})
	addr, priv := newWallet(t)

	challenge := requestChallenge(t, router, addr)

	w := submitProof(t, router, addr, priv, challenge)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestVerifyNotConfigured(t *testing.T) {
	router := newTestRouter(t, 0, &stubLedger{assetBalance: 1})
	addr, priv := newWallet(t)

	challenge := requestChallenge(t, router, addr)

	w := submitProof(t, router, addr, priv, challenge)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestProtectedRequiresToken(t *testing.T) {
	router := newTestRouter(t, 42, &stubLedger{assetBalance: 1})

	w := doJSON(router, http.MethodGet, "/api/protected", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodGet, "/api/protected", nil, map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodGet, "/api/protected", nil, map[string]string{"Authorization": "Basic abc"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStatusIsUngated(t *testing.T) {
	router := newTestRouter(t, 42, &stubLedger{assetBalance: 1})

	w := doJSON(router, http.MethodGet, "/api/status", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthAndRoot(t *testing.T) {
	router := newTestRouter(t, 42, &stubLedger{assetBalance: 1})

	w := doJSON(router, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var health map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "memory", health["challenge_store"])
	assert.Equal(t, true, health["nft_configured"])

	w = doJSON(router, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
