// Package web serves the server-rendered pages of the site.
package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"frecks-web/internal/delivery/http/middleware"
	"frecks-web/internal/domain"
	"frecks-web/internal/session"
	"frecks-web/pkg/email"
	"frecks-web/pkg/logger"
	"frecks-web/pkg/security"
	"frecks-web/pkg/supabase"
	"frecks-web/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Authenticator is the credential half of the Supabase auth API.
type Authenticator interface {
	SignInWithPassword(ctx context.Context, email, password string) (*domain.AuthTokens, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]interface{}, redirectTo string) (*domain.AuthTokens, error)
}

type Deps struct {
	Auth           Authenticator
	NotificationUC domain.NotificationUsecase
	Catalog        *Catalog
	// LoginTracker blocks an email after repeated failed sign-ins.
	LoginTracker *security.LoginTracker
	// SiteURL is where email confirmation links send the user back to.
	SiteURL       string
	SecureCookies bool
}

type Handler struct {
	auth           Authenticator
	notificationUC domain.NotificationUsecase
	catalog        *Catalog
	logins         *security.LoginTracker
	siteURL        string
}

type signInForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

type signUpForm struct {
	FullName string `form:"full_name" binding:"required,valid_name,no_emoji"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=6"`
}

type categoryPage struct {
	Category Category
	Events   []Event
}

type homePage struct {
	Featured   []Event
	Categories []Category
}

type ticketPage struct {
	TicketID string
	Holder   string
	Event    *Event
}

// Register mounts the pages on r. browser is the BrowserSession middleware;
// signInLimit guards credential submissions.
func Register(r gin.IRouter, browser, signInLimit gin.HandlerFunc, deps Deps) {
	if deps.Catalog == nil {
		deps.Catalog = DefaultCatalog()
	}
	if deps.LoginTracker == nil {
		deps.LoginTracker = security.NewLoginTracker(security.DefaultLoginTrackerConfig())
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}
	h := &Handler{
		auth:           deps.Auth,
		notificationUC: deps.NotificationUC,
		catalog:        deps.Catalog,
		logins:         deps.LoginTracker,
		siteURL:        deps.SiteURL,
	}

	pages := r.Group("", middleware.SecurityHeadersMiddleware(), browser, middleware.CSRF(deps.SecureCookies))
	pages.GET("/", h.Home)
	pages.GET("/categories", h.Categories)
	pages.GET("/categories/:slug", h.Category)
	pages.GET("/tickets/:id", h.Ticket)
	pages.GET("/scanner", h.Scanner)
	pages.GET("/dashboard", h.Dashboard)
	pages.GET(userDashboardPath, h.UserDashboard)
	pages.GET(creatorDashboardPath, h.CreatorDashboard)
	pages.GET(signInPath, h.SignInForm)
	pages.POST(signInPath, signInLimit, h.SignIn)
	pages.GET("/auth/signup", h.SignUpForm)
	pages.POST("/auth/signup", signInLimit, h.SignUp)
	pages.POST("/auth/signout", h.SignOut)
	pages.POST("/theme/toggle", h.ToggleTheme)
}

func (h *Handler) Home(c *gin.Context) {
	newPage(c, "", homePage{
		Featured:   h.catalog.Featured(),
		Categories: h.catalog.Categories(),
	}).render(c, http.StatusOK, "home")
}

func (h *Handler) Categories(c *gin.Context) {
	newPage(c, "Categories", h.catalog.Categories()).render(c, http.StatusOK, "categories")
}

func (h *Handler) Category(c *gin.Context) {
	cat, ok := h.catalog.Category(c.Param("slug"))
	if !ok {
		newPage(c, "Not found", nil).render(c, http.StatusNotFound, "not_found")
		return
	}
	newPage(c, cat.Name, categoryPage{
		Category: cat,
		Events:   h.catalog.EventsIn(cat.Slug),
	}).render(c, http.StatusOK, "category")
}

func (h *Handler) Ticket(c *gin.Context) {
	st, ok := requireIdentity(c)
	if !ok {
		return
	}

	data := ticketPage{TicketID: c.Param("id"), Holder: st.Identity.Email}
	if st.Profile != nil && st.Profile.FullName != "" {
		data.Holder = st.Profile.FullName
	}
	if e, found := h.catalog.Event(c.Query("event")); found {
		data.Event = &e
	}
	newPage(c, "Ticket", data).render(c, http.StatusOK, "ticket")
}

func (h *Handler) Scanner(c *gin.Context) {
	newPage(c, "Scanner", nil).render(c, http.StatusOK, "scanner")
}

// Dashboard routes the browser to the dashboard matching its role.
func (h *Handler) Dashboard(c *gin.Context) {
	h.dashboard(c, "", "")
}

func (h *Handler) UserDashboard(c *gin.Context) {
	h.dashboard(c, "dashboard_user", "Dashboard")
}

func (h *Handler) CreatorDashboard(c *gin.Context) {
	h.dashboard(c, "dashboard_creator", "Creator dashboard")
}

func (h *Handler) dashboard(c *gin.Context, name, title string) {
	b := middleware.BrowserFrom(c)
	target, wait := dashboardRedirect(b.Session.State(), c.Request.URL.Path)
	switch {
	case wait:
		renderLoading(c)
	case target != "":
		c.Redirect(http.StatusFound, target)
	case name != "":
		newPage(c, title, nil).render(c, http.StatusOK, name)
	default:
		c.Redirect(http.StatusFound, "/")
	}
}

func (h *Handler) SignInForm(c *gin.Context) {
	if b := middleware.BrowserFrom(c); b.Session.Identity() != nil {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	newPage(c, "Sign in", signInForm{}).render(c, http.StatusOK, "signin")
}

func (h *Handler) SignIn(c *gin.Context) {
	b := middleware.BrowserFrom(c)
	ctx := c.Request.Context()
	audit := security.DefaultLogger()
	ip, ua, reqID := c.ClientIP(), c.GetHeader("User-Agent"), c.GetString("RequestID")

	var form signInForm
	if err := c.ShouldBind(&form); err != nil {
		formError(c, http.StatusBadRequest, "signin", "Sign in", signInForm{Email: form.Email}, "Enter a valid email and password.")
		return
	}

	blocked, err := h.logins.IsBlocked(ctx, form.Email)
	if err != nil {
		logger.Log.Warn("sign-in block check failed", "error", err)
	}
	if blocked {
		audit.LogSignIn(ctx, form.Email, ip, ua, reqID, "blocked")
		formError(c, http.StatusTooManyRequests, "signin", "Sign in", signInForm{Email: form.Email}, "Too many failed sign-in attempts. Please try again later.")
		return
	}

	tokens, err := h.auth.SignInWithPassword(ctx, form.Email, form.Password)
	if err != nil {
		code, msg, reason := classifyAuthError(err, http.StatusUnauthorized, "Invalid email or password.")
		audit.LogSignIn(ctx, form.Email, ip, ua, reqID, reason)
		if code == http.StatusUnauthorized {
			if _, _, err := h.logins.RecordFailedAttempt(ctx, form.Email, ip, reqID); err != nil {
				logger.Log.Warn("recording failed sign-in", "error", err)
			}
		}
		formError(c, code, "signin", "Sign in", signInForm{Email: form.Email}, msg)
		return
	}
	if err := h.logins.ClearAttempts(ctx, form.Email); err != nil {
		logger.Log.Warn("clearing failed sign-ins", "error", err)
	}

	if _, err := b.Auth.SetSession(ctx, tokens); err != nil {
		logger.Log.Error("storing session failed", "browser_id", b.ID, "error", err)
		audit.LogSignIn(ctx, form.Email, ip, ua, reqID, "session_store_failed")
		formError(c, http.StatusInternalServerError, "signin", "Sign in", signInForm{Email: form.Email}, "Sign-in failed. Please try again.")
		return
	}
	// load the profile now so the dashboard redirect sees the role
	b.Session.RefreshProfile(ctx)

	audit.LogSignIn(ctx, form.Email, ip, ua, reqID, "")
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *Handler) SignUpForm(c *gin.Context) {
	if b := middleware.BrowserFrom(c); b.Session.Identity() != nil {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	newPage(c, "Sign up", signUpForm{}).render(c, http.StatusOK, "signup")
}

func (h *Handler) SignUp(c *gin.Context) {
	b := middleware.BrowserFrom(c)
	ctx := c.Request.Context()

	var form signUpForm
	if err := c.ShouldBind(&form); err != nil {
		formError(c, http.StatusBadRequest, "signup", "Sign up", signUpForm{FullName: form.FullName, Email: form.Email},
			validation.Message(err))
		return
	}
	retry := signUpForm{FullName: form.FullName, Email: form.Email}

	metadata := map[string]interface{}{
		"full_name": form.FullName,
		"role":      string(domain.RoleUser),
	}
	tokens, err := h.auth.SignUp(ctx, form.Email, form.Password, metadata, h.siteURL+signInPath)
	if err != nil {
		code, msg, _ := classifyAuthError(err, http.StatusBadRequest, "")
		formError(c, code, "signup", "Sign up", retry, msg)
		return
	}

	security.DefaultLogger().LogSignUp(ctx, form.Email, c.ClientIP(), c.GetHeader("User-Agent"), c.GetString("RequestID"))
	if err := h.notificationUC.Send(ctx, email.Welcome{UserName: form.FullName, Email: form.Email}); err != nil {
		logger.Log.Warn("welcome email not sent", "to", security.MaskEmail(form.Email), "error", err)
	}

	if tokens == nil {
		p := newPage(c, "Check your email", retry)
		p.Notice = "Check your email to confirm your account, then sign in."
		p.render(c, http.StatusOK, "signup")
		return
	}

	if _, err := b.Auth.SetSession(ctx, tokens); err != nil {
		logger.Log.Error("storing session failed", "browser_id", b.ID, "error", err)
		c.Redirect(http.StatusSeeOther, signInPath)
		return
	}
	b.Session.RefreshProfile(ctx)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *Handler) SignOut(c *gin.Context) {
	b := middleware.BrowserFrom(c)
	ctx := c.Request.Context()

	userID := ""
	if ident := b.Session.Identity(); ident != nil {
		userID = ident.ID
	}
	if err := b.Session.SignOut(ctx); err != nil {
		logger.Log.Warn("sign out incomplete", "browser_id", b.ID, "error", err)
	}
	if userID != "" {
		security.DefaultLogger().LogSignOut(ctx, userID, c.ClientIP(), c.GetString("RequestID"))
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) ToggleTheme(c *gin.Context) {
	middleware.BrowserFrom(c).Theme.Toggle()
	c.Redirect(http.StatusSeeOther, backTo(c.GetHeader("Referer"), c.Request.Host))
}

// requireIdentity renders the loading page or redirects to sign-in unless the
// browser is signed in.
func requireIdentity(c *gin.Context) (session.State, bool) {
	st := middleware.BrowserFrom(c).Session.State()
	switch {
	case st.Loading:
		renderLoading(c)
		return st, false
	case st.Identity == nil:
		c.Redirect(http.StatusFound, signInPath)
		return st, false
	}
	return st, true
}

func formError(c *gin.Context, code int, name, title string, data any, msg string) {
	p := newPage(c, title, data)
	p.Error = msg
	p.render(c, code, name)
}

// classifyAuthError maps a Supabase failure to a status, a user-facing
// message and an audit reason. Provider rejections get the rejected status and
// fallback, or the provider's own message when fallback is empty.
func classifyAuthError(err error, rejected int, fallback string) (int, string, string) {
	var apiErr *supabase.APIError
	switch {
	case errors.Is(err, supabase.ErrNotConfigured):
		return http.StatusServiceUnavailable, "Accounts are unavailable right now. Please try again later.", "auth_unavailable"
	case errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError:
		msg := fallback
		if msg == "" {
			msg = apiErr.Message
		}
		return rejected, msg, "invalid_credentials"
	default:
		logger.Log.Error("auth provider call failed", "error", err)
		return http.StatusBadGateway, "Something went wrong. Please try again.", "upstream_error"
	}
}

// backTo returns the same-host path of referer, or "/".
func backTo(referer, host string) string {
	u, err := url.Parse(referer)
	if err != nil || referer == "" || (u.Host != "" && u.Host != host) {
		return "/"
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
