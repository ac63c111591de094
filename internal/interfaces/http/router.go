package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Returns-api/internal/application/analytics"
	"github.com/jhoicas/Returns-api/internal/application/auth"
	"github.com/jhoicas/Returns-api/internal/application/inventory"
	"github.com/jhoicas/Returns-api/internal/application/usecase"
	"github.com/jhoicas/Returns-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	LocationUC  *usecase.LocationUseCase
	EntryUC     *inventory.EntryUseCase
	ImportUC    *inventory.ImportEntriesUseCase
	MoveUC      *inventory.MoveEntriesUseCase
	ArchiveUC   *inventory.ArchiveEntryUseCase
	ReportUC    *analytics.ReportUseCase
	DashboardUC *analytics.DashboardUseCase
	Cache       ResponseStore
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)

	protected.Post("/users", adminOnly, authHandler.Register)

	// Locations
	locations := protected.Group("/locations")
	locationHandler := NewLocationHandler(deps.LocationUC, deps.ReportUC)
	locations.Get("/", locationHandler.List)
	locations.Post("/", adminOnly, locationHandler.Create)
	locations.Get("/by-code/:code", locationHandler.FindByCode)
	locations.Get("/:id", locationHandler.GetByID)
	locations.Put("/:id", adminOnly, locationHandler.Update)
	locations.Delete("/:id", adminOnly, locationHandler.Delete)
	locations.Get("/:id/entries", locationHandler.Inventory)
	locations.Get("/:id/sheet.pdf", locationHandler.SheetPDF)
	locations.Get("/:id/label.pdf", locationHandler.LabelPDF)

	// Entries
	entries := protected.Group("/entries")
	entryHandler := NewEntryHandler(deps.EntryUC, deps.ImportUC, deps.ArchiveUC)
	entries.Get("/", entryHandler.List)
	entries.Post("/", entryHandler.Create)
	entries.Post("/import", entryHandler.Import)
	entries.Get("/recent", entryHandler.Recent)
	entries.Get("/:id", entryHandler.GetByID)
	entries.Put("/:id", entryHandler.Update)
	entries.Get("/:id/audit", entryHandler.Audit)
	entries.Post("/:id/archive", entryHandler.Archive)

	// Movements
	movements := protected.Group("/movements")
	movementHandler := NewMovementHandler(deps.MoveUC)
	movements.Get("/", movementHandler.History)
	movements.Post("/single", movementHandler.Single)
	movements.Post("/multiple", movementHandler.Multiple)
	movements.Post("/bulk", movementHandler.Bulk)

	// Archives
	archives := protected.Group("/archives")
	archiveHandler := NewArchiveHandler(deps.ArchiveUC)
	archives.Get("/", archiveHandler.List)
	archives.Post("/:id/restore", archiveHandler.Restore)

	// Reports
	reports := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC, deps.DashboardUC, deps.Cache)
	reports.Get("/activity", reportHandler.Activity)
	reports.Get("/dashboard", reportHandler.Dashboard)
	reports.Get("/inventory.csv", reportHandler.InventoryCSV)
	reports.Get("/inventory.xlsx", reportHandler.InventoryXLSX)
}
