package http

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openclave/sigil/core"
	"github.com/openclave/sigil/service"
)

// ServiceInfo describes the running instance for the info endpoints.
type ServiceInfo struct {
	Name         string
	Version      string
	StoreBackend string
	IndexerURL   string
}

// AuthHandlers contains HTTP handlers for auth and gated endpoints
type AuthHandlers struct {
	authService *service.AuthService
	info        ServiceInfo
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService, info ServiceInfo) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		info:        info,
	}
}

// Challenge handles the challenge request
func (h *AuthHandlers) Challenge(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	challenge, err := h.authService.RequestChallenge(c.Request.Context(), req.Address)
	if err != nil {
		if errors.Is(err, core.ErrInvalidAddress) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid algorand address"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create challenge"})
		return
	}

	// The response is the exact structure the wallet must sign.
	c.JSON(http.StatusOK, challenge)
}

// Verify handles the signed-challenge submission
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req struct {
		Address   string         `json:"address" binding:"required"`
		Signature string         `json:"signature" binding:"required"`
		Challenge core.Challenge `json:"challenge" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	signature, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	token, _, err := h.authService.SubmitProof(c.Request.Context(), req.Address, signature, req.Challenge)
	if err != nil {
		status, msg := verifyErrorResponse(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int(h.authService.TokenTTL().Seconds()),
	})
}

// verifyErrorResponse maps proof-submission failures to a status code and a
// stable machine-readable message. Proven non-ownership and an unreachable
// oracle share one denial on the wire; telemetry keeps them apart.
func verifyErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrNotConfigured):
		return http.StatusServiceUnavailable, "asset identifier not configured"
	case errors.Is(err, core.ErrChallengeNotFound):
		return http.StatusUnauthorized, "challenge not found or expired, request a new challenge"
	case errors.Is(err, core.ErrChallengeExpired):
		return http.StatusUnauthorized, "challenge expired"
	case errors.Is(err, core.ErrInvalidSignature):
		return http.StatusUnauthorized, "invalid signature"
	case errors.Is(err, core.ErrAssetNotOwned), errors.Is(err, core.ErrOracleUnavailable):
		return http.StatusForbidden, "asset ownership requirement not met"
	default:
		return http.StatusInternalServerError, "authentication failed"
	}
}

// Protected serves content only to authenticated asset holders
func (h *AuthHandlers) Protected(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not found in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "access granted",
		"wallet":       session.Address,
		"nft_asset_id": session.AssetID,
	})
}

// UserInfo returns the authenticated wallet's account summary
func (h *AuthHandlers) UserInfo(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not found in context"})
		return
	}

	summary, err := h.authService.AccountSummary(c.Request.Context(), session)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch account info"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wallet_address":   summary.Address,
		"nft_asset_id":     summary.AssetID,
		"algo_balance":     summary.AlgoBalance,
		"token_issued_at":  summary.TokenIssuedAt,
		"token_expires_at": summary.TokenExpiresAt,
	})
}

// Status is the ungated liveness endpoint
func (h *AuthHandlers) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "online",
		"authentication": "not required",
	})
}

// Health reports the instance's dependencies
func (h *AuthHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"challenge_store": h.info.StoreBackend,
		"indexer":         h.info.IndexerURL,
		"nft_configured":  h.authService.AssetID() > 0,
	})
}

// Root describes the API
func (h *AuthHandlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":         h.info.Name,
		"version":      h.info.Version,
		"status":       "active",
		"nft_asset_id": h.authService.AssetID(),
		"endpoints": gin.H{
			"challenge": "POST /auth/challenge",
			"verify":    "POST /auth/verify",
			"protected": "GET /api/protected",
			"status":    "GET /api/status",
		},
	})
}

func sessionFromContext(c *gin.Context) *core.Session {
	value, exists := c.Get("session")
	if !exists {
		return nil
	}
	session, ok := value.(*core.Session)
	if !ok {
		return nil
	}
	return session
}
