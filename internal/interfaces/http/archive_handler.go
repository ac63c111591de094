package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Returns-api/internal/application/dto"
	"github.com/jhoicas/Returns-api/internal/application/inventory"
)

// ArchiveHandler maneja los registros de archivo (protegido).
type ArchiveHandler struct {
	uc *inventory.ArchiveEntryUseCase
}

// NewArchiveHandler construye el handler.
func NewArchiveHandler(uc *inventory.ArchiveEntryUseCase) *ArchiveHandler {
	return &ArchiveHandler{uc: uc}
}

// List godoc
// @Summary      Listar archivos
// @Tags         archives
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {array}  dto.ArchiveResponse
// @Router       /api/archives [get]
func (h *ArchiveHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListArchives(c.Context(), c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Restore godoc
// @Summary      Restaurar entrada archivada
// @Description  Sin override_location_id la entrada vuelve a la ubicación que tenía al archivarse.
// @Tags         archives
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                      true  "ID del archivo"
// @Param        body  body  dto.RestoreEntryRequest  false "Ubicación alternativa"
// @Success      200   {object}  dto.RestoreEntryResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/archives/{id}/restore [post]
func (h *ArchiveHandler) Restore(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidParam(c, "id")
	}
	var in dto.RestoreEntryRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	out, err := h.uc.RestoreEntry(c.Context(), GetUsername(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
