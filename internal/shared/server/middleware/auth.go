package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"iotplatform-backend/internal/shared/server/respond"
)

const (
	orgIDKey  = "orgId"
	userIDKey = "userId"
)

// Auth resolves the tenant context for every request. Authentication itself is
// terminated upstream; the gateway forwards the resolved identity in headers.
// Routes that external collaborators call (the processing callback) and
// operational endpoints are exempt from tenant resolution.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		path := c.Request.URL.Path
		if isExempt(path) {
			c.Next()
			return
		}

		orgID := strings.TrimSpace(c.GetHeader("X-Org-Id"))
		if orgID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing organization context", nil)
			return
		}
		c.Set(orgIDKey, orgID)

		if userID := strings.TrimSpace(c.GetHeader("X-User-Id")); userID != "" {
			c.Set(userIDKey, userID)
		}

		c.Next()
	}
}

func isExempt(path string) bool {
	switch path {
	case "/api/v1/health", "/api/v1/metrics":
		return true
	}
	return strings.HasPrefix(path, "/api/v1/pdf/callback")
}

// OrgIDFromContext returns the organization ID stored by Auth.
func OrgIDFromContext(c *gin.Context) string {
	return c.GetString(orgIDKey)
}

// UserIDFromContext returns the user ID stored by Auth, if any.
func UserIDFromContext(c *gin.Context) string {
	return c.GetString(userIDKey)
}
