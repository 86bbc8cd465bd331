package api

import (
	"net/http"

	"frecks-web/internal/delivery/http/middleware"
	"frecks-web/internal/domain"
	"frecks-web/internal/session"
	"frecks-web/internal/theme"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct{}

// SessionResponse is the browser's session, profile and theme state.
type SessionResponse struct {
	User    *domain.Identity `json:"user"`
	Profile *domain.Profile  `json:"profile"`
	Loading bool             `json:"loading"`
	Theme   theme.Theme      `json:"theme"`
}

type ThemeResponse struct {
	Theme theme.Theme `json:"theme"`
}

// NewSessionHandler registers the browser-session routes. browser must be the
// BrowserSession middleware.
func NewSessionHandler(api *gin.RouterGroup, browser gin.HandlerFunc) {
	handler := &SessionHandler{}

	g := api.Group("", browser)
	g.GET("/session", handler.GetSession)
	g.POST("/session/refresh", handler.RefreshSession)
	g.POST("/theme/toggle", handler.ToggleTheme)
}

func sessionResponse(st session.State, t theme.Theme) SessionResponse {
	return SessionResponse{User: st.Identity, Profile: st.Profile, Loading: st.Loading, Theme: t}
}

// GetSession godoc
// @Summary      Current browser session
// @Tags         session
// @Produce      json
// @Success      200  {object}  SessionResponse
// @Router       /session [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	b := middleware.BrowserFrom(c)
	c.JSON(http.StatusOK, sessionResponse(b.Session.State(), b.Theme.Theme()))
}

// RefreshSession godoc
// @Summary      Re-read the signed-in user's profile
// @Tags         session
// @Produce      json
// @Success      200  {object}  SessionResponse
// @Router       /session/refresh [post]
func (h *SessionHandler) RefreshSession(c *gin.Context) {
	b := middleware.BrowserFrom(c)
	st := b.Session.RefreshProfile(c.Request.Context())
	c.JSON(http.StatusOK, sessionResponse(st, b.Theme.Theme()))
}

// ToggleTheme godoc
// @Summary      Flip the light/dark preference
// @Tags         session
// @Produce      json
// @Success      200  {object}  ThemeResponse
// @Router       /theme/toggle [post]
func (h *SessionHandler) ToggleTheme(c *gin.Context) {
	b := middleware.BrowserFrom(c)
	c.JSON(http.StatusOK, ThemeResponse{Theme: b.Theme.Toggle()})
}
