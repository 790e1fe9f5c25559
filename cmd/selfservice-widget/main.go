package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaravmahajanofficial/selfservice-widget/internal/api/handlers"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/api/middleware"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/cache"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/config"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/health"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/metrics"
	repository "github.com/aaravmahajanofficial/selfservice-widget/internal/repositories"
	service "github.com/aaravmahajanofficial/selfservice-widget/internal/services"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/telemetry"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/wizard"
	"github.com/aaravmahajanofficial/selfservice-widget/pkg/addressapi"
	"github.com/aaravmahajanofficial/selfservice-widget/pkg/ordersearch"
	"github.com/aaravmahajanofficial/selfservice-widget/pkg/sendgrid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Tracing setup
	shutdownTracing, err := telemetry.Setup(ctx, &cfg.Otel, cfg.Env)
	if err != nil {
		slog.Error("❌ Error initializing tracing", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Error("⚠️ Error flushing traces", slog.String("error", err.Error()))
		}
	}()

	deps := service.WizardDeps{
		Orders: service.NewMockOrderSource(),
		Logger: logger,
	}

	addresses := addressapi.New(addressapi.Options{
		UseRealAPI: cfg.AddressAPI.UseRealAPI,
		HTTP: addressapi.HTTPOptions{
			BaseURL:          cfg.AddressAPI.BaseURL,
			Timeout:          cfg.AddressAPI.Timeout,
			FailureThreshold: cfg.AddressAPI.FailureThreshold,
			OpenTimeout:      cfg.AddressAPI.OpenTimeout,
		},
	})

	// Database setup
	var store service.SubmissionStore

	if cfg.Database.Enabled {
		repos, err := repository.New(cfg)
		if err != nil {
			slog.Error("❌ Error accessing the database", "error", err.Error())
			os.Exit(1)
		}

		defer func() {
			if err := repos.Close(); err != nil {
				slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
			} else {
				slog.Info("✅ Database connection closed")
			}
		}()

		store = repos.Submission
	}

	// Redis setup
	if cfg.RedisConnect.Enabled {
		redisClient, err := repository.NewRedisClient(cfg)
		if err != nil {
			slog.Error("❌ Error accessing the redis instance", "error", err.Error())
			os.Exit(1)
		}

		defer func() {
			if err := redisClient.Close(); err != nil {
				slog.Error("⚠️ Error closing redis connection", slog.String("error", err.Error()))
			}
		}()

		deps.Limiter = repository.NewRateLimitRepo(redisClient, cfg)
		addresses = cache.NewAddressAPI(addresses, cache.NewRedisCache(redisClient, &cfg.Cache), cfg.Cache.DefaultTTL, logger)
	}

	deps.Addresses = addresses

	// The lookup is diagnostic only and runs against the real backend.
	if cfg.Lookup.Enabled && cfg.AddressAPI.UseRealAPI {
		deps.Verifier = ordersearch.NewClient(cfg.Lookup.URL, ordersearch.Mode(cfg.Lookup.Mode), cfg.Lookup.Timeout, logger)
	}

	var mailer sendgrid.EmailService
	if cfg.SendGrid.Enabled {
		mailer = sendgrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	}

	jwtKey := []byte(cfg.Security.JWTKey)
	deps.Journal = service.NewJournal(store, mailer, logger)
	deps.Tokens = service.NewTokenIssuer(jwtKey, cfg.Security.TokenTTL)

	wizardService := service.NewWizardService(wizard.Config{
		LoadDelayMin: cfg.Wizard.LoadDelayMin,
		LoadDelayMax: cfg.Wizard.LoadDelayMax,
		ConfirmDelay: cfg.Wizard.ConfirmDelay,
	}, cfg.Wizard.SessionTTL, deps)

	go wizardService.Run(ctx, cfg.Wizard.SweepInterval)

	wizardHandler := handlers.NewWizardHandler(wizardService)
	sessionAuth := middleware.NewSessionAuth(jwtKey)

	healthHandler, err := health.NewHealthHandler(cfg)
	if err != nil {
		slog.Error("❌ Error creating health checks", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("wizard initialized",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
		slog.Bool("real_address_api", cfg.AddressAPI.UseRealAPI),
	)

	// Setup router
	routerMux := http.NewServeMux()
	wizardHandler.Register(routerMux, sessionAuth)
	routerMux.Handle("GET /health", healthHandler.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = middleware.Logging(handler)
	handler = metrics.Middleware(handler)
	handler = otelhttp.NewHandler(handler, "selfservice-widget")

	// Setup http server
	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {

		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	stop()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

}
