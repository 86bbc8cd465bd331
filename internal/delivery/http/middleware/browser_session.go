package middleware

import (
	"net/http"
	"time"

	"frecks-web/internal/delivery/http/response"
	"frecks-web/internal/domain"
	"frecks-web/internal/session"
	"frecks-web/internal/theme"
	"frecks-web/pkg/logger"

	"github.com/gin-gonic/gin"
)

// tokenRefreshWindow is how close to expiry an access token gets refreshed.
const tokenRefreshWindow = time.Minute

// BrowserSession attaches the caller's session.Browser to the context,
// issuing a session cookie on first contact.
func BrowserSession(m *session.Manager, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		// ask browsers to report their color scheme on subsequent requests
		c.Header("Accept-CH", "Sec-CH-Prefers-Color-Scheme")
		c.Header("Vary", "Sec-CH-Prefers-Color-Scheme")

		id, _ := c.Cookie(session.CookieName)
		system, _ := theme.Parse(c.GetHeader("Sec-CH-Prefers-Color-Scheme"))

		b, isNew, err := m.Open(c.Request.Context(), id, system)
		if err != nil {
			logger.Log.Error("browser session unavailable", "error", err)
			response.Error(c, http.StatusServiceUnavailable, "Session service unavailable", nil)
			c.Abort()
			return
		}
		if isNew {
			session.SetCookie(c.Writer, b.ID, session.CookieOptions{
				Secure: secureCookie,
				MaxAge: m.RecordTTL(),
			})
		}

		if err := b.Auth.RefreshIfExpiring(c.Request.Context(), tokenRefreshWindow); err != nil {
			logger.Log.Warn("token refresh check failed", "browser_id", b.ID, "error", err)
		}

		c.Set(string(domain.KeyBrowser), b)
		c.Next()
	}
}

// BrowserFrom returns the Browser attached by BrowserSession.
func BrowserFrom(c *gin.Context) *session.Browser {
	b, _ := c.Get(string(domain.KeyBrowser))
	browser, _ := b.(*session.Browser)
	return browser
}
