package api

import (
	"net/http"
	"time"

	"frecks-web/config"
	"frecks-web/internal/delivery/http/middleware"
	"frecks-web/internal/delivery/http/response"
	"frecks-web/internal/delivery/http/web"
	"frecks-web/internal/domain"
	"frecks-web/internal/session"
	"frecks-web/internal/usecase"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	BankUC         domain.BankUsecase
	NotificationUC domain.NotificationUsecase
	HealthUC       usecase.HealthUsecase
	Sessions       *session.Manager
	Auth           web.Authenticator
	Catalog        *web.Catalog
	Config         *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	r := gin.New()

	// Global Middlewares
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalLimit, window)))

	r.SetHTMLTemplate(web.Templates())

	browser := middleware.BrowserSession(deps.Sessions, cfg.CookieSecure)
	gatewayLimit := middleware.RateLimitMiddleware(middleware.GatewayRateLimitConfig(cfg.RateLimitGatewayLimit, window))
	signInLimit := middleware.RateLimitMiddleware(middleware.SignInRateLimitConfig(cfg.RateLimitSignInLimit, window))

	api := r.Group("/api")

	// Health Check
	api.GET("/health", func(c *gin.Context) {
		status, healthy := deps.HealthUC.Check(c.Request.Context())
		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})

	NewBankHandler(api, deps.BankUC, gatewayLimit)
	NewEmailHandler(api, deps.NotificationUC, gatewayLimit)
	NewSessionHandler(api, browser)

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	web.Register(r, browser, signInLimit, web.Deps{
		Auth:           deps.Auth,
		NotificationUC: deps.NotificationUC,
		Catalog:        deps.Catalog,
		SiteURL:        cfg.FrontendURL,
		SecureCookies:  cfg.CookieSecure,
	})

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "Not found", nil)
	})

	return r
}
