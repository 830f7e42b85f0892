package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openclave/sigil/core"
	"github.com/openclave/sigil/service"
)

// AuthMiddleware creates middleware that validates bearer tokens
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")

		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization header"})
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")

		session, err := authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, core.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
			case errors.Is(err, core.ErrAssetNotOwned), errors.Is(err, core.ErrOracleUnavailable):
				// Only reachable with ownership recheck enabled.
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "asset ownership requirement not met"})
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			}
			return
		}

		c.Set("session", session)

		c.Next()
	}
}
