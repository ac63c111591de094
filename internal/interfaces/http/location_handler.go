package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Returns-api/internal/application/analytics"
	"github.com/jhoicas/Returns-api/internal/application/dto"
	"github.com/jhoicas/Returns-api/internal/application/usecase"
)

// LocationHandler maneja las peticiones HTTP para ubicaciones (protegido).
type LocationHandler struct {
	uc      *usecase.LocationUseCase
	reports *analytics.ReportUseCase
}

// NewLocationHandler construye el handler.
func NewLocationHandler(uc *usecase.LocationUseCase, reports *analytics.ReportUseCase) *LocationHandler {
	return &LocationHandler{uc: uc, reports: reports}
}

// Create godoc
// @Summary      Crear ubicación
// @Tags         locations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLocationRequest  true  "Datos de la ubicación"
// @Success      201   {object}  dto.LocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/locations [post]
func (h *LocationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLocationRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.Context(), GetUsername(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener ubicación por ID
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la ubicación"
// @Success      200  {object}  dto.LocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{id} [get]
func (h *LocationHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	out, err := h.uc.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// FindByCode godoc
// @Summary      Buscar ubicación por código exacto
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código impreso en la etiqueta"
// @Success      200   {object}  dto.LocationResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/locations/by-code/{code} [get]
func (h *LocationHandler) FindByCode(c *fiber.Ctx) error {
	out, err := h.uc.FindByCode(c.Context(), c.Params("code"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Reemplazar ubicación
// @Description  Reemplazo completo: description y area ausentes quedan vacías; is_active ausente conserva el valor.
// @Tags         locations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                        true  "ID de la ubicación"
// @Param        body  body  dto.UpdateLocationRequest  true  "Datos de la ubicación"
// @Success      200   {object}  dto.LocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/locations/{id} [put]
func (h *LocationHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	var in dto.UpdateLocationRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.Context(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar ubicación sin ocupantes
// @Tags         locations
// @Security     Bearer
// @Param        id   path  int  true  "ID de la ubicación"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/locations/{id} [delete]
func (h *LocationHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	if err := h.uc.Delete(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List godoc
// @Summary      Listar ubicaciones con ocupación
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        active_only  query  bool  false  "Solo activas"
// @Param        limit        query  int   false  "Límite"   default(20)
// @Param        offset       query  int   false  "Offset"   default(0)
// @Success      200          {object}  dto.LocationListResponse
// @Router       /api/locations [get]
func (h *LocationHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context(), c.QueryBool("active_only", false), c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Inventory godoc
// @Summary      Contenido actual de una ubicación
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la ubicación"
// @Success      200  {object}  dto.LocationInventoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{id}/entries [get]
func (h *LocationHandler) Inventory(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	out, err := h.reports.LocationInventory(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SheetPDF godoc
// @Summary      Hoja de inventario en PDF
// @Tags         locations
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  int  true  "ID de la ubicación"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{id}/sheet.pdf [get]
func (h *LocationHandler) SheetPDF(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	body, filename, err := h.reports.LocationSheetPDF(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return sendPDF(c, body, filename)
}

// LabelPDF godoc
// @Summary      Etiqueta de ubicación en PDF
// @Tags         locations
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  int  true  "ID de la ubicación"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{id}/label.pdf [get]
func (h *LocationHandler) LabelPDF(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	body, filename, err := h.reports.LocationLabelPDF(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return sendPDF(c, body, filename)
}

func sendPDF(c *fiber.Ctx, body []byte, filename string) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(body)
}
