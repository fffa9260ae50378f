package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"insadmin/docs"
	"insadmin/internal/auth"
	"insadmin/internal/config"
	"insadmin/internal/database"
	"insadmin/internal/database/migration"
	"insadmin/internal/document"
	handlers "insadmin/internal/http/handler"
	"insadmin/internal/http/middleware"
	"insadmin/internal/model"
	"insadmin/internal/otel"
	"insadmin/internal/repository"
	"insadmin/internal/repository/postgres"
	"insadmin/internal/service"
	"insadmin/internal/storage"
)

// @title Insurance Admin API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	loc := time.UTC

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry tracing (no-op when OTEL_SDK_DISABLED=true)
	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	views := document.NewViewBuilder(objStore, cfg.Upload.SignedURLTTL)

	// Initialize repositories and services
	adminRepo := postgres.NewAdminPostgres(db)
	customerRepo := postgres.NewCustomerPostgres(db)
	policyRepo := postgres.NewPolicyPostgres(db)

	if err := seedSuperAdmin(ctx, adminRepo); err != nil {
		log.Fatalf("failed to seed super admin: %v", err)
	}

	authSvc := service.NewAuthService(adminRepo, tokens)
	adminSvc := service.NewAdminService(adminRepo)
	customerSvc := service.NewCustomerService(customerRepo, objStore, views)
	policySvc := service.NewPolicyService(policyRepo, objStore, views)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// Leave headroom above the per-file cap for the rest of the form.
		BodyLimit: int(cfg.Upload.MaxFileSize)*cfg.Upload.MaxFilesPerRequest + 1024*1024,
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMW, err := middleware.NewPrometheusMiddleware(promReg)
	if err != nil {
		log.Fatalf("failed to register prometheus metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, handlers.RouterConfig{
		DB:                 db,
		Tokens:             tokens,
		Auth:               authSvc,
		Admins:             adminSvc,
		Customers:          customerSvc,
		Policies:           policySvc,
		MaxFileSize:        cfg.Upload.MaxFileSize,
		MaxFilesPerRequest: cfg.Upload.MaxFilesPerRequest,
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

	addr := ":" + cfg.Port

	go func() {
		if err := app.Listen(addr); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

// seedSuperAdmin creates the initial super admin account from SUPER_ADMIN_EMAIL
// and SUPER_ADMIN_PASSWORD when no account with that email exists yet.
func seedSuperAdmin(ctx context.Context, repo repository.AdminRepository) error {
	email := strings.ToLower(strings.TrimSpace(os.Getenv("SUPER_ADMIN_EMAIL")))
	password := os.Getenv("SUPER_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	_, err := repo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = repo.Create(ctx, &model.Admin{
		ID:           uuid.NewString(),
		Name:         "Super Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleSuperAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	return err
}
