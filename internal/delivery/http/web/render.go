package web

import (
	"embed"
	"html/template"
	"net/http"

	"frecks-web/internal/delivery/http/middleware"
	"frecks-web/internal/domain"
	"frecks-web/pkg/email"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the page templates for gin's HTML renderer.
func Templates() *template.Template {
	return template.Must(
		template.New("pages").
			Funcs(template.FuncMap{"naira": email.FormatNaira}).
			ParseFS(templateFS, "templates/*.html"),
	)
}

// page is the data every template receives.
type page struct {
	Title   string
	Theme   string
	CSRF    string
	Refresh int // seconds; 0 disables the meta refresh
	User    *domain.Identity
	Profile *domain.Profile
	Error   string
	Notice  string
	Data    any
}

func newPage(c *gin.Context, title string, data any) *page {
	p := &page{Title: title, Theme: "light", CSRF: middleware.CSRFToken(c), Data: data}
	if b := middleware.BrowserFrom(c); b != nil {
		st := b.Session.State()
		p.Theme = b.Theme.RootClass()
		p.User = st.Identity
		p.Profile = st.Profile
	}
	return p
}

func (p *page) render(c *gin.Context, code int, name string) {
	c.Header("Cache-Control", "no-store")
	c.HTML(code, name, p)
}

// renderLoading shows the spinner and re-requests the page shortly.
func renderLoading(c *gin.Context) {
	p := newPage(c, "Loading", nil)
	p.Refresh = 1
	p.render(c, http.StatusOK, "loading")
}
