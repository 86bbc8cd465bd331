package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"frecks-web/internal/delivery/http/middleware"
	"frecks-web/internal/domain"
	"frecks-web/internal/session"
	"frecks-web/pkg/auth"
	"frecks-web/pkg/email"
	"frecks-web/pkg/security"
	"frecks-web/pkg/supabase"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "web-test-secret"

type fakeAuthenticator struct {
	tokens *domain.AuthTokens
	err    error
}

func (f *fakeAuthenticator) SignInWithPassword(_ context.Context, email, password string) (*domain.AuthTokens, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tokens, nil
}

func (f *fakeAuthenticator) SignUp(_ context.Context, email, password string, metadata map[string]interface{}, redirectTo string) (*domain.AuthTokens, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tokens, nil
}

type fakeGoTrue struct{}

func (fakeGoTrue) RefreshSession(context.Context, string) (*domain.AuthTokens, error) {
	return nil, supabase.ErrNotConfigured
}

func (fakeGoTrue) SignOut(context.Context, string) error { return nil }

type roleProfiles struct{ role domain.Role }

func (p roleProfiles) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	return &domain.Profile{ID: id, FullName: "Ada Obi", Role: p.role}, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []email.Request
}

func (r *recordingNotifier) Dispatch(context.Context, []byte) error { return nil }

func (r *recordingNotifier) Send(_ context.Context, req email.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, req)
	return nil
}

func signedTokens(t *testing.T, userID, mail string) *domain.AuthTokens {
	t.Helper()
	exp := time.Now().Add(time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": mail,
		"exp":   exp.Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return &domain.AuthTokens{AccessToken: signed, RefreshToken: "refresh-1", ExpiresAt: exp, UserID: userID, Email: mail}
}

type pageClient struct {
	t       *testing.T
	engine  *gin.Engine
	cookies map[string]*http.Cookie
}

func newPageClient(t *testing.T, authn Authenticator, role domain.Role, notifier domain.NotificationUsecase) *pageClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions := session.NewManager(session.ManagerConfig{
		Records:  session.NewMemoryPersistence(),
		Verifier: auth.NewVerifier(testSecret, nil),
		GoTrue:   fakeGoTrue{},
		Profiles: roleProfiles{role: role},
	})
	t.Cleanup(sessions.CloseAll)

	r := gin.New()
	r.SetHTMLTemplate(Templates())
	noLimit := func(c *gin.Context) { c.Next() }
	Register(r, middleware.BrowserSession(sessions, false), noLimit, Deps{
		Auth:           authn,
		NotificationUC: notifier,
		SiteURL:        "http://example.com",
	})
	return &pageClient{t: t, engine: r, cookies: make(map[string]*http.Cookie)}
}

// do sends a request carrying the client's cookies. Forms get the CSRF token
// added unless they already set the field.
func (p *pageClient) do(method, path string, form url.Values, header http.Header) *httptest.ResponseRecorder {
	if form != nil {
		if _, ok := p.cookies[middleware.CSRFCookieName]; !ok {
			p.get("/")
		}
		if _, set := form[middleware.CSRFFormField]; !set {
			form.Set(middleware.CSRFFormField, p.cookies[middleware.CSRFCookieName].Value)
		}
	}

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	for _, c := range p.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	p.engine.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		p.cookies[c.Name] = c
	}
	return w
}

func (p *pageClient) get(path string) *httptest.ResponseRecorder {
	return p.do(http.MethodGet, path, nil, nil)
}

// settled waits until the browser's initial session load finished.
func (p *pageClient) settled() {
	p.t.Helper()
	require.Eventually(p.t, func() bool {
		return p.get("/dashboard").Code == http.StatusFound
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHomeRendersFeaturedEvents(t *testing.T) {
	p := newPageClient(t, &fakeAuthenticator{}, domain.RoleUser, &recordingNotifier{})

	w := p.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<html lang="en" class="light">`)
	assert.Contains(t, body, "Afrobeats Night Live")
	assert.Contains(t, body, "DevFest Campus Edition")
	assert.NotContains(t, body, "Acoustic Sundays")
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Contains(t, p.cookies, session.CookieName)
	assert.Contains(t, body, `name="csrf_token" value="`+p.cookies[middleware.CSRFCookieName].Value+`"`)
}

func TestCategoryPages(t *testing.T) {
	p := newPageClient(t, &fakeAuthenticator{}, domain.RoleUser, &recordingNotifier{})

	w := p.get("/categories")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Arts &amp; Culture")

	w = p.get("/categories/tech")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hack the City")
	assert.NotContains(t, w.Body.String(), "Faculty Cup Final")

	w = p.get("/categories/opera")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScannerIsPublic(t *testing.T) {
	p := newPageClient(t, &fakeAuthenticator{}, domain.RoleUser, &recordingNotifier{})
	assert.Equal(t, http.StatusOK, p.get("/scanner").Code)
}

func TestDashboardSignedOutRedirectsToSignIn(t *testing.T) {
	p := newPageClient(t, &fakeAuthenticator{}, domain.RoleUser, &recordingNotifier{})
	p.settled()

	w := p.get("/dashboard")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, signInPath, w.Header().Get("Location"))

	w = p.get("/tickets/t-1")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, signInPath, w.Header().Get("Location"))
}

func TestSignInRoutesCreatorToCreatorDashboard(t *testing.T) {
	tokens := signedTokens(t, "u-1", "ada@example.com")
	p := newPageClient(t, &fakeAuthenticator{tokens: tokens}, domain.RoleCreator, &recordingNotifier{})
	p.settled()

	w := p.do(http.MethodPost, signInPath, url.Values{"email": {"ada@example.com"}, "password": {"secret1"}}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	require.Eventually(t, func() bool {
		w := p.get("/dashboard")
		return w.Code == http.StatusFound && w.Header().Get("Location") == creatorDashboardPath
	}, 2*time.Second, 10*time.Millisecond)

	w = p.get(creatorDashboardPath)
	assert.Equal(t, http.StatusOK, w.Code)

	w = p.get("/tickets/t-9?event=afrobeats-night")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ada Obi")
	assert.Contains(t, w.Body.String(), "Afrobeats Night Live")

	w = p.get(signInPath)
	assert.Equal(t, http.StatusFound, w.Code, "signed-in browsers skip the form")

	w = p.do(http.MethodPost, "/auth/signout", url.Values{}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Eventually(t, func() bool {
		w := p.get("/dashboard")
		return w.Header().Get("Location") == signInPath
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSignInRejected(t *testing.T) {
	rejected := &supabase.APIError{StatusCode: http.StatusBadRequest, Message: "Invalid login credentials"}
	p := newPageClient(t, &fakeAuthenticator{err: rejected}, domain.RoleUser, &recordingNotifier{})

	w := p.do(http.MethodPost, signInPath, url.Values{"email": {"ada@example.com"}, "password": {"wrong"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password.")
	assert.Contains(t, w.Body.String(), "ada@example.com")
}

func TestSignInBlockedAfterRepeatedFailures(t *testing.T) {
	rejected := &supabase.APIError{StatusCode: http.StatusBadRequest, Message: "Invalid login credentials"}
	p := newPageClient(t, &fakeAuthenticator{err: rejected}, domain.RoleUser, &recordingNotifier{})
	creds := func() url.Values { return url.Values{"email": {"ada@example.com"}, "password": {"wrong"}} }

	for i := 0; i < security.DefaultLoginTrackerConfig().MaxAttempts; i++ {
		w := p.do(http.MethodPost, signInPath, creds(), nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := p.do(http.MethodPost, signInPath, creds(), nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many failed sign-in attempts.")
}

func TestFormPostWithoutCSRFTokenRejected(t *testing.T) {
	p := newPageClient(t, &fakeAuthenticator{}, domain.RoleUser, &recordingNotifier{})

	w := p.do(http.MethodPost, "/theme/toggle", url.Values{middleware.CSRFFormField: {"forged"}}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, p.get("/").Body.String(), `class="light"`, "rejected toggle must not apply")

	w = p.do(http.MethodPost, "/theme/toggle", url.Values{}, http.Header{
		middleware.CSRFHeaderName: {p.cookies[middleware.CSRFCookieName].Value},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestSignInInvalidForm(t *testing.T) {
	p := newPageClient(t, &fakeAuthenticator{}, domain.RoleUser, &recordingNotifier{})

	w := p.do(http.MethodPost, signInPath, url.Values{"email": {"not-an-email"}}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignInAuthUnavailable(t *testing.T) {
	p := newPageClient(t, &fakeAuthenticator{err: supabase.ErrNotConfigured}, domain.RoleUser, &recordingNotifier{})

	w := p.do(http.MethodPost, signInPath, url.Values{"email": {"ada@example.com"}, "password": {"secret1"}}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSignUpPendingConfirmationSendsWelcome(t *testing.T) {
	notifier := &recordingNotifier{}
	p := newPageClient(t, &fakeAuthenticator{}, domain.RoleUser, notifier)

	w := p.do(http.MethodPost, "/auth/signup", url.Values{
		"full_name": {"Ada Obi"},
		"email":     {"ada@example.com"},
		"password":  {"secret1"},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Check your email")

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, email.Welcome{UserName: "Ada Obi", Email: "ada@example.com"}, notifier.sent[0])
}

func TestSignUpShortPassword(t *testing.T) {
	notifier := &recordingNotifier{}
	p := newPageClient(t, &fakeAuthenticator{}, domain.RoleUser, notifier)

	w := p.do(http.MethodPost, "/auth/signup", url.Values{
		"full_name": {"Ada Obi"},
		"email":     {"ada@example.com"},
		"password":  {"123"},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Password must be at least 6 characters.")
	assert.Empty(t, notifier.sent)
}

func TestThemeTogglePersistsAndReturnsToReferer(t *testing.T) {
	p := newPageClient(t, &fakeAuthenticator{}, domain.RoleUser, &recordingNotifier{})
	require.Equal(t, http.StatusOK, p.get("/").Code)

	w := p.do(http.MethodPost, "/theme/toggle", url.Values{}, http.Header{"Referer": {"http://example.com/categories"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/categories", w.Header().Get("Location"))

	assert.Contains(t, p.get("/").Body.String(), `class="dark"`)

	w = p.do(http.MethodPost, "/theme/toggle", url.Values{}, http.Header{"Referer": {"https://elsewhere.test/"}})
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Contains(t, p.get("/").Body.String(), `class="light"`)
}

func TestSystemPreferenceSeedsTheme(t *testing.T) {
	p := newPageClient(t, &fakeAuthenticator{}, domain.RoleUser, &recordingNotifier{})

	w := p.do(http.MethodGet, "/", nil, http.Header{"Sec-Ch-Prefers-Color-Scheme": {"dark"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `class="dark"`)
	assert.Equal(t, "Sec-CH-Prefers-Color-Scheme", w.Header().Get("Accept-CH"))
}
