package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Returns-api/internal/application/dto"
	"github.com/jhoicas/Returns-api/internal/domain"
)

// respondError traduce un error de dominio a status HTTP + dto.ErrorResponse.
// ErrAlreadyArchived se evalúa antes que los "no encontrado" porque también los envuelve.
func respondError(c *fiber.Ctx, err error) error {
	var (
		missing  *domain.MissingFieldError
		mismatch *domain.SourceMismatchError
		notFound *domain.EntryNotFoundError
		inUse    *domain.LocationInUseError
	)
	status, body := fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}

	switch {
	// validación
	case errors.As(err, &missing):
		status, body = fiber.StatusBadRequest, dto.ErrorResponse{Code: "MISSING_FIELD", Message: err.Error(), Details: map[string]any{"field": missing.Field}}
	case errors.Is(err, domain.ErrMissingChangeReason):
		status, body = fiber.StatusBadRequest, dto.ErrorResponse{Code: "MISSING_CHANGE_REASON", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidQuantity):
		status, body = fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: err.Error()}
	case errors.Is(err, domain.ErrSameLocation):
		status, body = fiber.StatusBadRequest, dto.ErrorResponse{Code: "SAME_LOCATION", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		status, body = fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}

	// acceso
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthorized):
		status, body = fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()}
	case errors.Is(err, domain.ErrForbidden):
		status, body = fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()}

	// conflictos con el estado actual
	case errors.Is(err, domain.ErrAlreadyArchived):
		status, body = fiber.StatusConflict, dto.ErrorResponse{Code: "ALREADY_ARCHIVED", Message: domain.ErrAlreadyArchived.Error()}
	case errors.As(err, &mismatch):
		status, body = fiber.StatusConflict, dto.ErrorResponse{
			Code:    "SOURCE_LOCATION_MISMATCH",
			Message: err.Error(),
			Details: map[string]any{"mismatched": mismatch.Mismatched, "entry_ids": mismatch.EntryIDs},
		}
	case errors.As(err, &inUse):
		status, body = fiber.StatusConflict, dto.ErrorResponse{
			Code:    "LOCATION_IN_USE",
			Message: err.Error(),
			Details: map[string]any{"occupants": inUse.Occupants},
		}
	case errors.Is(err, domain.ErrDuplicateCode):
		status, body = fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE_CODE", Message: err.Error()}
	case errors.Is(err, domain.ErrNoEntriesAtSource):
		status, body = fiber.StatusConflict, dto.ErrorResponse{Code: "NO_ENTRIES_AT_SOURCE", Message: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		status, body = fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()}
	case errors.Is(err, domain.ErrLocationInactive):
		status, body = fiber.StatusUnprocessableEntity, dto.ErrorResponse{Code: "LOCATION_INACTIVE", Message: err.Error()}

	// no encontrado
	case errors.As(err, &notFound):
		status, body = fiber.StatusNotFound, dto.ErrorResponse{
			Code:    "ENTRY_NOT_FOUND",
			Message: err.Error(),
			Details: map[string]any{"entry_ids": notFound.IDs},
		}
	case errors.Is(err, domain.ErrEntryNotFound):
		status, body = fiber.StatusNotFound, dto.ErrorResponse{Code: "ENTRY_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrLocationNotFound):
		status, body = fiber.StatusNotFound, dto.ErrorResponse{Code: "LOCATION_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrArchiveNotFound):
		status, body = fiber.StatusNotFound, dto.ErrorResponse{Code: "ARCHIVE_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		status, body = fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}

	default:
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
	}
	return c.Status(status).JSON(body)
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// paramID lee un parámetro de ruta numérico positivo.
func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func invalidParam(c *fiber.Ctx, name string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAM", Message: name + " inválido"})
}

// queryInt64 lee un parámetro de query opcional; vacío devuelve nil.
func queryInt64(c *fiber.Ctx, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}
