package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"daoapi/docs"
	"daoapi/internal/auth"
	"daoapi/internal/config"
	"daoapi/internal/database"
	"daoapi/internal/database/migration"
	handlers "daoapi/internal/http/handler"
	"daoapi/internal/http/middleware"
	"daoapi/internal/logging"
	"daoapi/internal/otel"
	"daoapi/internal/repository/postgres"
	"daoapi/internal/service"
	"daoapi/internal/storage"
)

// @title DAO Dossier API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Location())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		logger.Fatal("failed to initialize tracing", "error", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		logger.Fatal("failed to migrate database", "error", err)
	}

	userRepo := postgres.NewUserPostgres(db)
	created, err := service.BootstrapDirector(ctx, userRepo, cfg.Auth.BootstrapName, cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapPassword)
	if err != nil {
		logger.Fatal("failed to seed bootstrap director", "error", err)
	}
	if created {
		logger.Info("bootstrap_director_created", "email", cfg.Auth.BootstrapEmail)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		logger.Fatal("failed to initialize object storage", "error", err)
	}

	issuer, err := auth.NewIssuer(cfg.Auth)
	if err != nil {
		logger.Fatal("failed to initialize token issuer", "error", err)
	}

	allocatorMetrics, err := service.NewAllocatorMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("failed to register allocator metrics", "error", err)
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("failed to register http metrics", "error", err)
	}

	// Initialize repositories and services
	dossierRepo := postgres.NewDossierPostgres(db)
	taskRepo := postgres.NewTaskPostgres(db)
	commentRepo := postgres.NewCommentPostgres(db)
	attachmentRepo := postgres.NewAttachmentPostgres(db)

	allocator := service.NewSequenceAllocator(
		postgres.NewSequencePostgres(db),
		service.SystemClock{Location: cfg.Location()},
		allocatorMetrics,
	)

	svc := handlers.Services{
		Users: service.NewUserService(userRepo, issuer),
		Dossiers: service.NewDossierService(
			dossierRepo, userRepo, taskRepo, allocator,
			service.SystemClock{Location: cfg.Location()},
			service.DossierOptions{StrictLeadRole: cfg.StrictLeadRole},
		),
		Tasks:       service.NewTaskService(taskRepo, dossierRepo),
		Comments:    service.NewCommentService(commentRepo, taskRepo, userRepo, dossierRepo),
		Attachments: service.NewAttachmentService(objStore, attachmentRepo, dossierRepo),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    25 * 1024 * 1024,
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(otelhttp.NewHandler(promhttp.Handler(), "metrics")))

	handlers.RegisterRoutes(app, db, middleware.Auth(service.NewSessionResolver(issuer, userRepo)), svc)

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
		<-ctx.Done()
		logger.Info("server_shutdown", "status", "draining")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("server_shutdown", "status", "error", "error", err)
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("server_start", "addr", addr, "strict_lead_role", cfg.StrictLeadRole)
	if err := app.Listen(addr); err != nil {
		logger.Fatal("failed to start server", "error", err)
	}
}
