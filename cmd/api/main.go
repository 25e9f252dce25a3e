package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"planportal/docs"
	"planportal/internal/auth"
	"planportal/internal/config"
	"planportal/internal/database"
	"planportal/internal/database/migration"
	handlers "planportal/internal/http/handler"
	"planportal/internal/http/middleware"
	"planportal/internal/letterhead"
	"planportal/internal/logging"
	"planportal/internal/metrics"
	"planportal/internal/notify"
	"planportal/internal/otel"
	"planportal/internal/repository/postgres"
	"planportal/internal/service"
	"planportal/internal/storage"
)

func fatal(msg string, err error) {
	slog.Error(msg, "error", err.Error())
	os.Exit(1)
}

// @title Building Plan Portal API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	logging.Setup(time.UTC)
	logger := slog.Default()

	ctx := context.Background()
	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		fatal("tracing_init_failed", err)
	}
	defer shutdownTracing(context.Background())

	if cfg.Auth.JWTSecret == "" {
		slog.Error("config_invalid", "error", "JWT_SECRET is required")
		os.Exit(1)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		fatal("database_connect_failed", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		fatal("database_migration_failed", err)
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		fatal("storage_init_failed", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	domainMetrics, err := metrics.NewDomain(reg)
	if err != nil {
		fatal("metrics_init_failed", err)
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		fatal("metrics_init_failed", err)
	}

	renderer, err := letterhead.NewRenderer(cfg.Letterhead.BasePDFPath)
	if err != nil {
		fatal("letterhead_base_invalid", err)
	}

	users := postgres.NewUserPostgres(db)
	drafts := postgres.NewDraftPostgres(db)
	authSvc := service.NewAuthService(
		users,
		postgres.NewRefreshTokenPostgres(db),
		postgres.NewOTPPostgres(db),
		notify.New(cfg.OTP, logger),
		auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessExpiry),
		cfg.Auth,
		cfg.OTP,
		domainMetrics,
	)
	uploadSvc := service.NewUploadService(objStore, postgres.NewFilePostgres(db), storage.NewURLChecker(5*time.Second), domainMetrics, logger)
	svcs := handlers.Services{
		Auth:         authSvc,
		Account:      service.NewAccountService(users, authSvc),
		Profile:      service.NewProfileService(users, authSvc, uploadSvc),
		Uploads:      uploadSvc,
		Drafts:       service.NewDraftService(drafts),
		Projects:     service.NewProjectService(postgres.NewProjectPostgres(db)),
		Registration: service.NewRegistrationService(users, drafts, authSvc, uploadSvc, logger),
		Letterhead:   service.NewLetterheadService(users, authSvc, uploadSvc, renderer, logger),
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry_init_failed", "error", err.Error())
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	app := fiber.New(fiber.Config{
		// Registration carries several documents in one request.
		BodyLimit:    4 * service.MaxUploadSize,
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(sentryfiber.New(sentryfiber.Options{Repanic: true}))
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Logger())
	app.Use(httpMetrics.Handler())
	app.Use(middleware.SecurityHeaders())
	exposed := []string{middleware.RequestIDHeader, handlers.HeaderDroppedLines, handlers.HeaderFilePath}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Authorization, Accept, X-Request-ID",
		AllowMethods:  "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders: strings.Join(exposed, ", "),
	}))

	handlers.RegisterRoutes(app, db, svcs, handlers.RouteConfig{
		JWTSecret: []byte(cfg.Auth.JWTSecret),
		Gatherer:  reg,
		RateLimit: cfg.RateLimit,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		slog.Info("server_starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			fatal("server_start_failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("server_stopping")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server_shutdown_failed", "error", err.Error())
	}
}
