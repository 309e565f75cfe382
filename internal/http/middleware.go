package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"elite-app/internal/auth"
)

const (
	userIDKey = "userID"
	claimsKey = "claims"
)

// requireAuth rejects requests without a valid, unrevoked bearer token and
// stores the caller's identity on the context for downstream handlers.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "No token, authorization denied"})
			return
		}

		claims, err := h.tokens.Verify(token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Token has expired"})
			case errors.Is(err, auth.ErrTokenInvalid):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Token is not valid"})
			default:
				h.logger.WithError(err).Error("verify token")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
			}
			return
		}

		revoked, err := h.revoker.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			h.logger.WithError(err).Error("check token revocation")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Token has been revoked"})
			return
		}

		c.Set(userIDKey, claims.User.ID)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}
	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}
	return token, true
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func currentClaims(c *gin.Context) *auth.Claims {
	claims, _ := c.Get(claimsKey)
	typed, _ := claims.(*auth.Claims)
	return typed
}
