package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Ahmadreza-Avandi/mami-land/internal/config"
	"github.com/Ahmadreza-Avandi/mami-land/internal/security"
)

// AdminCookieName is the http-only cookie set alongside the admin login
// response body.
const AdminCookieName = "admin_token"

// AdminAuth accepts the admin token from the Authorization header or from
// the admin_token cookie and requires the isAdmin claim.
func AdminAuth(cfg *config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
		} else if cookie, err := c.Cookie(AdminCookieName); err == nil {
			tokenStr = cookie
		}

		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		claims, err := security.ParseAdminToken(tokenStr, cfg.Security.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		c.Set("admin_username", claims.Username)
		c.Next()
	}
}
