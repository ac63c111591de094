package http

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Returns-api/internal/application/analytics"
	"github.com/jhoicas/Returns-api/internal/application/ports"
)

// ResponseStore caché de respuestas serializadas por ámbito. SetIfGeneration descarta la respuesta
// si el ámbito se invalidó después de leer gen.
type ResponseStore interface {
	Get(scope, key string) ([]byte, bool)
	Generation(scope string) uint64
	SetIfGeneration(scope, key string, gen uint64, body []byte) bool
}

// ReportHandler maneja actividad, dashboard y exportaciones (protegido).
type ReportHandler struct {
	reports   *analytics.ReportUseCase
	dashboard *analytics.DashboardUseCase
	cache     ResponseStore
}

// NewReportHandler construye el handler. cache puede ser nil.
func NewReportHandler(reports *analytics.ReportUseCase, dashboard *analytics.DashboardUseCase, cache ResponseStore) *ReportHandler {
	return &ReportHandler{reports: reports, dashboard: dashboard, cache: cache}
}

// Activity godoc
// @Summary      Actividad reciente
// @Description  Ingresos, movimientos y archivos mezclados, del más nuevo al más viejo.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        since  query  string  false  "Desde (RFC3339)"
// @Param        limit  query  int     false  "Límite"  default(50)
// @Success      200    {array}  dto.ActivityResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/reports/activity [get]
func (h *ReportHandler) Activity(c *fiber.Ctx) error {
	since, ok := queryTime(c, "since")
	if !ok {
		return invalidParam(c, "since")
	}
	out, err := h.reports.Activity(c.Context(), since, c.QueryInt("limit", 50))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Dashboard godoc
// @Summary      Resumen del almacén
// @Description  Conteos por estado, ingresos y movimientos del día y del mes, ubicaciones más ocupadas.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Router       /api/reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	const key = "summary"
	var gen uint64
	if h.cache != nil {
		gen = h.cache.Generation(ports.ScopeDashboard)
		if body, ok := h.cache.Get(ports.ScopeDashboard, key); ok {
			c.Set("X-Cache", "HIT")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(body)
		}
	}

	summary, err := h.dashboard.GetSummary(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	body, err := json.Marshal(summary)
	if err != nil {
		return respondError(c, err)
	}
	if h.cache != nil {
		h.cache.SetIfGeneration(ports.ScopeDashboard, key, gen, body)
	}
	c.Set("X-Cache", "MISS")
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

// InventoryCSV godoc
// @Summary      Exportar inventario activo a CSV
// @Tags         reports
// @Security     Bearer
// @Produce      text/csv
// @Param        location_id  query  int  false  "Solo una ubicación"
// @Success      200          {file}  binary
// @Failure      400          {object}  dto.ErrorResponse
// @Router       /api/reports/inventory.csv [get]
func (h *ReportHandler) InventoryCSV(c *fiber.Ctx) error {
	locationID, ok := queryInt64(c, "location_id")
	if !ok {
		return invalidParam(c, "location_id")
	}
	var buf bytes.Buffer
	if err := h.reports.ExportInventoryCSV(c.Context(), &buf, locationID); err != nil {
		return respondError(c, err)
	}
	filename := "inventario-" + time.Now().Format("20060102") + ".csv"
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}

// InventoryXLSX godoc
// @Summary      Exportar inventario activo a Excel
// @Tags         reports
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        location_id  query  int  false  "Solo una ubicación"
// @Success      200          {file}  binary
// @Failure      400          {object}  dto.ErrorResponse
// @Router       /api/reports/inventory.xlsx [get]
func (h *ReportHandler) InventoryXLSX(c *fiber.Ctx) error {
	locationID, ok := queryInt64(c, "location_id")
	if !ok {
		return invalidParam(c, "location_id")
	}
	var buf bytes.Buffer
	if err := h.reports.ExportInventoryXLSX(c.Context(), &buf, locationID); err != nil {
		return respondError(c, err)
	}
	filename := "inventario-" + time.Now().Format("20060102") + ".xlsx"
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}
