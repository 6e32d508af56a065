package middleware

import (
	"net/http"

	"mail_admin/internal/utils"

	"github.com/gin-gonic/gin"
)

// ExpiredSessionRedirect is where a browser with a rejected session cookie is sent
const ExpiredSessionRedirect = "/login"

// DashboardGuard protects the dashboard pages. A missing cookie redirects to loginPath;
// an invalid one is deleted and redirects to ExpiredSessionRedirect.
func DashboardGuard(jwtUtil *utils.JWTUtil, loginPath string, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := SessionToken(c)
		if !ok {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}

		if _, err := jwtUtil.ValidateToken(tokenString); err != nil {
			ClearSessionCookie(c, secureCookie)
			c.Redirect(http.StatusFound, ExpiredSessionRedirect)
			c.Abort()
			return
		}

		c.Header("Cache-Control", "no-store, max-age=0")
		c.Next()
	}
}
