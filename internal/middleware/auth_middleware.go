// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"leadpulse-service/internal/pkg/auth"
	"leadpulse-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	verifier *auth.Verifier
}

func NewAuthMiddleware(verifier *auth.Verifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Auth validates the bearer token and stores the acting rep's identity on
// the request context.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("org_id", claims.OrgID)
		c.Set("roles", claims.Roles)

		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" && strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// WebSocket clients cannot set headers from the browser.
	return c.Query("token")
}
