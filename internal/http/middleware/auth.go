// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides bearer-token authentication. RequireAuth verifies the
// Authorization header and stores the verified user id in the Gin context
// under "userID"; handlers and downstream middleware read the id from there
// and never from the request body.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kpolkampally/go-challenge-backend/internal/auth"
)

// RequireAuth returns a Gin middleware that rejects requests without a valid
// bearer token. On success the token's subject is stored under "userID".
func RequireAuth(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, "missing bearer token")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(c, "malformed authorization header")
			return
		}
		userID, err := tokens.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the verified user id stored by RequireAuth, or "" when the
// request is unauthenticated.
func UserID(c *gin.Context) string {
	if v, ok := c.Get(userIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}
