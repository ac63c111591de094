package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Returns-api/internal/application/dto"
	"github.com/jhoicas/Returns-api/internal/application/inventory"
	"github.com/jhoicas/Returns-api/internal/domain/repository"
)

// EntryHandler maneja alta, edición, consulta, importación y archivo de entradas (protegido).
type EntryHandler struct {
	entries  *inventory.EntryUseCase
	imports  *inventory.ImportEntriesUseCase
	archives *inventory.ArchiveEntryUseCase
}

// NewEntryHandler construye el handler.
func NewEntryHandler(entries *inventory.EntryUseCase, imports *inventory.ImportEntriesUseCase, archives *inventory.ArchiveEntryUseCase) *EntryHandler {
	return &EntryHandler{entries: entries, imports: imports, archives: archives}
}

// Create godoc
// @Summary      Registrar entrada recibida
// @Description  Los campos numéricos se aceptan como número o texto; un valor no numérico queda nulo.
// @Description  Un location_id inexistente o inactivo deja la entrada sin ubicar (location_downgraded=true).
// @Tags         entries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateEntryRequest  true  "Datos de la entrada"
// @Success      201   {object}  dto.CreateEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/entries [post]
func (h *EntryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.entries.CreateEntry(c.Context(), GetUsername(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener entrada por ID
// @Tags         entries
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la entrada"
// @Success      200  {object}  dto.EntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/entries/{id} [get]
func (h *EntryHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	out, err := h.entries.GetEntry(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar entrada
// @Description  change_reason es obligatorio; cada campo auditado que cambia deja una fila en la bitácora.
// @Tags         entries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                     true  "ID de la entrada"
// @Param        body  body  dto.UpdateEntryRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.UpdateEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/entries/{id} [put]
func (h *EntryHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	var in dto.UpdateEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.entries.UpdateEntry(c.Context(), GetUsername(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Buscar entradas
// @Tags         entries
// @Security     Bearer
// @Produce      json
// @Param        carrier      query  string  false  "Transportista (parcial)"
// @Param        q            query  string  false  "Tracking, RMA, orden o cliente (parcial)"
// @Param        location_id  query  int     false  "Ubicación actual"
// @Param        stage        query  string  false  "Etapa"
// @Param        archived     query  bool    false  "Solo archivadas (true) o solo activas (false)"
// @Param        limit        query  int     false  "Límite"   default(20)
// @Param        offset       query  int     false  "Offset"   default(0)
// @Success      200          {object}  dto.EntryListResponse
// @Router       /api/entries [get]
func (h *EntryHandler) List(c *fiber.Ctx) error {
	locationID, ok := queryInt64(c, "location_id")
	if !ok {
		return invalidParam(c, "location_id")
	}
	filter := repository.EntryFilter{
		Carrier:    strings.TrimSpace(c.Query("carrier")),
		Search:     strings.TrimSpace(c.Query("q")),
		LocationID: locationID,
		Stage:      c.Query("stage"),
		Limit:      c.QueryInt("limit", 20),
		Offset:     c.QueryInt("offset", 0),
	}
	if raw := c.Query("archived"); raw != "" {
		v := c.QueryBool("archived")
		filter.Archived = &v
	}
	out, err := h.entries.SearchEntries(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Recent godoc
// @Summary      Últimas entradas registradas
// @Tags         entries
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Límite"  default(20)
// @Success      200    {array}  dto.EntryResponse
// @Router       /api/entries/recent [get]
func (h *EntryHandler) Recent(c *fiber.Ctx) error {
	out, err := h.entries.ListRecentEntries(c.Context(), c.QueryInt("limit", 20))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Audit godoc
// @Summary      Bitácora de cambios de una entrada
// @Tags         entries
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la entrada"
// @Success      200  {array}  dto.AuditLogResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/entries/{id}/audit [get]
func (h *EntryHandler) Audit(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	out, err := h.entries.GetAuditTrail(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Import godoc
// @Summary      Importar entradas desde CSV o Excel
// @Description  Archivo CSV (UTF-8 o Windows-1252, separado por coma o punto y coma) o libro .xlsx
// @Description  (hoja activa, primera fila como cabecera) en el campo "file".
// @Tags         entries
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CSV o XLSX de entradas"
// @Success      200   {object}  dto.ImportSummaryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/entries/import [post]
func (h *EntryHandler) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "campo file requerido"})
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer f.Close()

	importFile := h.imports.ImportCSV
	if strings.HasSuffix(strings.ToLower(fh.Filename), ".xlsx") {
		importFile = h.imports.ImportXLSX
	}
	out, err := importFile(c.Context(), GetUsername(c), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Archive godoc
// @Summary      Archivar entrada
// @Description  Guarda la ubicación actual en el registro de archivo y deja la entrada sin ubicar.
// @Tags         entries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                      true  "ID de la entrada"
// @Param        body  body  dto.ArchiveEntryRequest  true  "Motivo y notas"
// @Success      201   {object}  dto.ArchiveEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/entries/{id}/archive [post]
func (h *EntryHandler) Archive(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	var in dto.ArchiveEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.archives.ArchiveEntry(c.Context(), GetUsername(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
