package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"frecks-web/config"
	_ "frecks-web/docs" // Important for Swagger
	"frecks-web/internal/delivery/http/api"
	"frecks-web/internal/domain"
	"frecks-web/internal/repository/postgres"
	supabaserepo "frecks-web/internal/repository/supabase"
	"frecks-web/internal/session"
	"frecks-web/internal/usecase"
	"frecks-web/pkg/auth"
	"frecks-web/pkg/database"
	"frecks-web/pkg/email"
	"frecks-web/pkg/logger"
	"frecks-web/pkg/paystack"
	"frecks-web/pkg/redis"
	"frecks-web/pkg/security"
	"frecks-web/pkg/supabase"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

// @title           Frecks Web API
// @version         1.0
// @description     Payment utilities, transactional email and browser session routes of the Frecks web frontend.
// @host            localhost:3000
// @BasePath        /api
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// run returns instead of exiting so its deferred closes and log flush happen
	if err := run(cfg); err != nil {
		logger.Log.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Log.Info("Server exiting")
}

func run(cfg *config.Config) error {

	// 2. Setup Loggers
	logger.Init(os.Getenv("LOG_LEVEL") == "debug")
	environment := "development"
	if os.Getenv("GIN_MODE") == "release" {
		environment = "production"
	}
	audit := security.InitSecurityLogger("frecks-web", environment)
	defer audit.Sync()
	logger.Log.Info("Starting frecks web", "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Redis (optional)
	var records session.Persistence = session.NewMemoryPersistence()
	healthChecks := map[string]usecase.HealthCheck{}
	if cfg.UpstashRedisURL != "" {
		if err := redis.Initialize(ctx, redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory sessions and rate limits", "error", err)
		} else {
			defer redis.Close()
			records = session.NewRedisPersistence(redis.Client())
			healthChecks["redis"] = redis.HealthCheck
		}
	}

	// 4. Setup Profile Source
	supabaseClient := supabase.NewClient(cfg.SupabaseUrl, cfg.SupabaseKey)
	var profiles domain.ProfileRepository = supabaserepo.NewProfileRepository(supabaseClient)
	if cfg.DBUrl != "" {
		dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			logger.Log.Warn("Database unavailable, reading profiles through Supabase", "error", err)
		} else {
			defer dbPool.Close()
			profiles = postgres.NewProfileRepository(dbPool)
			healthChecks["database"] = dbPool.Ping
		}
	}

	// 5. Setup Auth (JWKS + project secret)
	jwksURL := cfg.SupabaseUrl + "/auth/v1/.well-known/jwks.json"
	verifier := auth.NewVerifier(cfg.SupabaseJWTSecret, auth.NewProvider(jwksURL))

	// 6. Setup Email Service
	sender := email.NewSMTPSender(cfg)
	if !sender.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - send-email will be unavailable")
	}

	// 7. Setup UseCases
	validate := validator.New()
	bankUC := usecase.NewBankUsecase(paystack.NewClient(cfg.PaystackBaseURL, config.PaystackSecretKey))
	notificationUC := usecase.NewNotificationUsecase(sender, validate, config.EmailFrom)
	healthUC := usecase.NewHealthUsecase(healthChecks)

	// 8. Setup Browser Sessions
	sessions := session.NewManager(session.ManagerConfig{
		Records:   records,
		Verifier:  verifier,
		GoTrue:    supabaseClient,
		Profiles:  profiles,
		IdleAfter: time.Duration(cfg.SessionIdleMinutes) * time.Minute,
		Log:       logger.Log,
	})

	// 9. Setup Router
	router := api.NewRouter(api.RouterDeps{
		BankUC:         bankUC,
		NotificationUC: notificationUC,
		HealthUC:       healthUC,
		Sessions:       sessions,
		Auth:           supabaseClient,
		Config:         cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return serve(ctx, srv, func(ctx context.Context) error {
		return sessions.Run(ctx, time.Minute)
	})
}

// serve runs srv and the session janitor until ctx ends or either fails, then
// shuts the server down gracefully.
func serve(ctx context.Context, srv *http.Server, janitor func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return janitor(gctx)
	})
	g.Go(func() error {
		// Graceful Shutdown
		<-gctx.Done()
		logger.Log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
