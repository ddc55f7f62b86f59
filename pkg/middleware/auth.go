package middleware

import (
	"strings"

	apperrors "waifuhub/backend/pkg/errors"
	"waifuhub/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// RequireAuth validates the bearer session token and stores the caller's
// identity under the "userId" and "wallet" context keys.
func RequireAuth(tokens *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromHeader(c, tokens)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set("userId", claims.UserID)
		c.Set("wallet", claims.Wallet)
		c.Next()
	}
}

// OptionalAuth populates the caller's identity when a valid token is present
// and leaves the request anonymous otherwise. A malformed token is still an
// error; silence only covers the no-token case.
func OptionalAuth(tokens *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}

		claims, err := claimsFromHeader(c, tokens)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set("userId", claims.UserID)
		c.Set("wallet", claims.Wallet)
		c.Next()
	}
}

func claimsFromHeader(c *gin.Context, tokens *jwt.Service) (*jwt.SessionClaims, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, apperrors.NewUnauthenticated("authorization header required")
	}

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil, apperrors.NewUnauthenticated("authorization header must be 'Bearer {token}'")
	}

	claims, err := tokens.ValidateToken(token)
	if err != nil {
		if err == jwt.ErrExpiredToken {
			return nil, apperrors.NewUnauthenticated("session has expired")
		}
		return nil, apperrors.NewUnauthenticated("invalid session token")
	}
	return claims, nil
}
