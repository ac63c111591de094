package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Returns-api/internal/application/dto"
	"github.com/jhoicas/Returns-api/internal/application/inventory"
	"github.com/jhoicas/Returns-api/internal/domain/repository"
)

// MovementHandler maneja los movimientos entre ubicaciones (protegido).
type MovementHandler struct {
	uc *inventory.MoveEntriesUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *inventory.MoveEntriesUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// Single godoc
// @Summary      Mover una entrada
// @Description  from_location_id debe coincidir con la ubicación actual (null = sin ubicar).
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MoveSingleRequest  true  "Movimiento"
// @Success      201   {object}  dto.MoveResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/movements/single [post]
func (h *MovementHandler) Single(c *fiber.Ctx) error {
	var in dto.MoveSingleRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.MoveSingle(c.Context(), GetUsername(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Multiple godoc
// @Summary      Mover varias entradas desde un mismo origen
// @Description  Todo o nada: si alguna entrada no está en el origen no se mueve ninguna.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MoveMultipleRequest  true  "Movimiento"
// @Success      201   {object}  dto.MoveResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/movements/multiple [post]
func (h *MovementHandler) Multiple(c *fiber.Ctx) error {
	var in dto.MoveMultipleRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.MoveMultiple(c.Context(), GetUsername(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Bulk godoc
// @Summary      Vaciar una ubicación en otra
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MoveBulkRequest  true  "Movimiento"
// @Success      201   {object}  dto.MoveResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/movements/bulk [post]
func (h *MovementHandler) Bulk(c *fiber.Ctx) error {
	var in dto.MoveBulkRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.MoveBulk(c.Context(), GetUsername(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// History godoc
// @Summary      Historial de movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  int     false  "Origen o destino"
// @Param        entry_id     query  int     false  "Entrada"
// @Param        from         query  string  false  "Desde (RFC3339)"
// @Param        to           query  string  false  "Hasta (RFC3339, exclusivo)"
// @Param        limit        query  int     false  "Límite"  default(50)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200          {array}  dto.MovementResponse
// @Failure      400          {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) History(c *fiber.Ctx) error {
	filter := repository.MovementFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	var ok bool
	if filter.LocationID, ok = queryInt64(c, "location_id"); !ok {
		return invalidParam(c, "location_id")
	}
	if filter.EntryID, ok = queryInt64(c, "entry_id"); !ok {
		return invalidParam(c, "entry_id")
	}
	if filter.From, ok = queryTime(c, "from"); !ok {
		return invalidParam(c, "from")
	}
	if filter.To, ok = queryTime(c, "to"); !ok {
		return invalidParam(c, "to")
	}
	out, err := h.uc.ListMovementHistory(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// queryTime lee una fecha RFC3339 opcional.
func queryTime(c *fiber.Ctx, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}
