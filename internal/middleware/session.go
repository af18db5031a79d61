package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/valuator/api/internal/logger"
	"github.com/stwalsh4118/valuator/api/internal/services"
)

const (
	// SessionCookie is the name of the cookie carrying the signed session token.
	SessionCookie = "valuator_session"
	// SessionKey is the gin context key holding the verified claims.
	SessionKey = "session"
	// LoginPath is where unauthenticated form requests are sent.
	LoginPath = "/"
)

// SessionParser verifies a session token.
type SessionParser interface {
	Parse(token string) (*services.SessionClaims, error)
}

// RequireSession rejects requests without a valid session cookie. Requests
// under /api/ get a 401 JSON envelope; form routes are redirected to the login
// page.
func RequireSession(sessions SessionParser, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err == nil && token != "" {
			claims, perr := sessions.Parse(token)
			if perr == nil {
				c.Set(SessionKey, claims)
				c.Next()
				return
			}
			err = perr
		}

		l := GetLogger(c)
		if l == nil {
			l = log
		}
		fields := logger.Fields{"path": c.Request.URL.Path}
		if err != nil {
			fields["reason"] = err.Error()
		}
		l.Debug("Session required", fields)

		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":       "UNAUTHORIZED",
					"message":    "Login required",
					"request_id": GetRequestID(c),
				},
			})
			return
		}
		c.Redirect(http.StatusSeeOther, LoginPath)
		c.Abort()
	}
}

// GetSession returns the verified session claims, or nil on public routes.
func GetSession(c *gin.Context) *services.SessionClaims {
	if v, ok := c.Get(SessionKey); ok {
		if claims, ok := v.(*services.SessionClaims); ok {
			return claims
		}
	}
	return nil
}
