package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/Returns-api/internal/application/analytics"
	"github.com/jhoicas/Returns-api/internal/application/auth"
	"github.com/jhoicas/Returns-api/internal/application/inventory"
	"github.com/jhoicas/Returns-api/internal/application/usecase"
	"github.com/jhoicas/Returns-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/Returns-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Returns-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Returns-api/internal/interfaces/http"
	"github.com/jhoicas/Returns-api/pkg/config"
	"github.com/jhoicas/Returns-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET no configurado")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	entryRepo := postgres.NewEntryRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	archiveRepo := postgres.NewArchiveRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Caché de lecturas; las escrituras la invalidan después del commit.
	responses := cache.NewResponseCache(cfg.Cache.TTL())

	locationUC := usecase.NewLocationUseCase(locationRepo, txRunner, responses, log.Component("locations"))
	entryUC := inventory.NewEntryUseCase(txRunner, entryRepo, auditRepo, responses, log.Component("entries"))
	importUC := inventory.NewImportEntriesUseCase(txRunner, responses, log.Component("import"))
	moveUC := inventory.NewMoveEntriesUseCase(txRunner, movementRepo, responses, log.Component("movements"))
	archiveUC := inventory.NewArchiveEntryUseCase(txRunner, archiveRepo, responses, log.Component("archives"))

	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)
	reportUC := appanalytics.NewReportUseCase(locationRepo, entryRepo, reportRepo, pdfGenerator)
	dashboardUC := appanalytics.NewDashboardUseCase(reportRepo)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	if cfg.Bootstrap.AdminUser != "" {
		created, err := authUC.EnsureAdmin(ctx, cfg.Bootstrap.AdminUser, cfg.Bootstrap.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("crear administrador inicial")
		}
		if created {
			log.Info().Str("username", cfg.Bootstrap.AdminUser).Msg("administrador inicial creado")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    10 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(httpRouter.AccessLog(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: cfg.App.SwaggerFile,
		Path:     "docs",
		Title:    "Returns API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		LocationUC:  locationUC,
		EntryUC:     entryUC,
		ImportUC:    importUC,
		MoveUC:      moveUC,
		ArchiveUC:   archiveUC,
		ReportUC:    reportUC,
		DashboardUC: dashboardUC,
		Cache:       responses,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
