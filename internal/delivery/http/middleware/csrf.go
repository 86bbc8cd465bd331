package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"frecks-web/internal/delivery/http/response"
	"frecks-web/internal/domain"
	"frecks-web/pkg/security"

	"github.com/gin-gonic/gin"
)

const (
	CSRFCookieName = "frecks_csrf"
	CSRFFormField  = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"
	// 32 bytes = 64 hex chars
	csrfTokenLength = 32
	csrfTokenExpiry = 24 * time.Hour
)

func generateCSRFToken() (string, error) {
	bytes := make([]byte, csrfTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// CSRF implements the double-submit cookie pattern for the page forms.
//
// Every request gets a token cookie (issued on first contact) and the token is
// exposed to templates through CSRFToken. State-changing requests must echo it
// in the csrf_token form field or the X-CSRF-Token header.
func CSRF(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CSRFCookieName)
		if err != nil || len(token) != 2*csrfTokenLength {
			token, err = generateCSRFToken()
			if err != nil {
				response.Error(c, http.StatusInternalServerError, "Failed to generate security token", nil)
				c.Abort()
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CSRFCookieName, token, int(csrfTokenExpiry.Seconds()), "/", "", secureCookie, true)
		}
		c.Set(string(domain.KeyCSRFToken), token)

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		sent := c.GetHeader(CSRFHeaderName)
		if sent == "" {
			sent = c.PostForm(CSRFFormField)
		}
		if subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
			security.DefaultLogger().LogCSRFViolation(
				c.Request.Context(),
				c.ClientIP(),
				c.GetHeader("User-Agent"),
				c.GetString("RequestID"),
				c.FullPath(),
			)
			response.Error(c, http.StatusForbidden, "Invalid CSRF token", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// CSRFToken returns the token forms must submit back.
func CSRFToken(c *gin.Context) string {
	return c.GetString(string(domain.KeyCSRFToken))
}
