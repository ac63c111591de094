package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
//
// Validación: se detectan antes de cualquier escritura.
var (
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrMissingRequiredField = errors.New("campo obligatorio ausente")
	ErrMissingChangeReason  = errors.New("el motivo del cambio es obligatorio")
	ErrInvalidQuantity      = errors.New("la cantidad no puede ser negativa")
	ErrSameLocation         = errors.New("la ubicación de origen y destino son la misma")
	ErrDuplicateCode        = errors.New("ya existe una ubicación con ese código")
	ErrInvalidCredentials   = errors.New("usuario o contraseña incorrectos")
)

// Conflictos con el estado actual: el llamador puede releer y reintentar con otros parámetros.
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrEntryNotFound          = errors.New("entrada no encontrada o archivada")
	ErrLocationNotFound       = errors.New("ubicación no encontrada")
	ErrLocationInactive       = errors.New("la ubicación está inactiva")
	ErrArchiveNotFound        = errors.New("archivo no encontrado")
	ErrAlreadyArchived        = errors.New("la entrada ya está archivada")
	ErrSourceLocationMismatch = errors.New("la ubicación de origen no coincide con la ubicación actual")
	ErrNoEntriesAtSource      = errors.New("no hay entradas en la ubicación de origen")
	ErrLocationInUse          = errors.New("la ubicación tiene entradas asignadas")
	ErrConflict               = errors.New("conflicto con el estado actual")
)

// Acceso.
var (
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
)

// MissingFieldError indica qué campo obligatorio faltó.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingRequiredField.Error(), e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingRequiredField }

// MissingField construye un MissingFieldError.
func MissingField(field string) error {
	return &MissingFieldError{Field: field}
}

// SourceMismatchError entradas cuya ubicación actual no es la declarada como origen.
type SourceMismatchError struct {
	Mismatched int
	EntryIDs   []int64
}

func (e *SourceMismatchError) Error() string {
	return fmt.Sprintf("%s: %d entrada(s) [%s]", ErrSourceLocationMismatch.Error(), e.Mismatched, joinIDs(e.EntryIDs))
}

func (e *SourceMismatchError) Unwrap() error { return ErrSourceLocationMismatch }

// EntryNotFoundError entradas inexistentes o archivadas dentro de una operación.
type EntryNotFoundError struct {
	IDs []int64
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("%s: [%s]", ErrEntryNotFound.Error(), joinIDs(e.IDs))
}

func (e *EntryNotFoundError) Unwrap() error { return ErrEntryNotFound }

// AlreadyArchived la entrada ya tiene un archivo activo. Cumple errors.Is con ErrAlreadyArchived
// y con ErrEntryNotFound: para las operaciones de inventario sigue sin existir.
func AlreadyArchived(entryID int64) error {
	return fmt.Errorf("%w: %w", ErrAlreadyArchived, &EntryNotFoundError{IDs: []int64{entryID}})
}

// LocationInUseError la ubicación no se puede borrar mientras tenga ocupantes.
type LocationInUseError struct {
	LocationID int64
	Occupants  int
}

func (e *LocationInUseError) Error() string {
	return fmt.Sprintf("%s: ubicación %d con %d entrada(s)", ErrLocationInUse.Error(), e.LocationID, e.Occupants)
}

func (e *LocationInUseError) Unwrap() error { return ErrLocationInUse }

func joinIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprint(id))
	}
	return strings.Join(parts, ",")
}
