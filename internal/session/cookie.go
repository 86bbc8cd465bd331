package session

import (
	"net/http"
	"time"
)

const CookieName = "frecks_session"

// CookieOptions defines how browser session cookies are issued.
type CookieOptions struct {
	Secure bool
	MaxAge time.Duration
}

// SetCookie issues the browser session cookie.
func SetCookie(w http.ResponseWriter, id string, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
