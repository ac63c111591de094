package dto

import "time"

// MoveSingleRequest mueve una entrada.
type MoveSingleRequest struct {
	EntryID        int64  `json:"entry_id" validate:"required"`
	FromLocationID *int64 `json:"from_location_id"`
	ToLocationID   *int64 `json:"to_location_id" validate:"required"`
	Reason         string `json:"reason"`
}

// MoveMultipleRequest mueve un conjunto explícito de entradas desde un mismo origen.
type MoveMultipleRequest struct {
	EntryIDs       []int64 `json:"entry_ids" validate:"required,min=1"`
	FromLocationID *int64  `json:"from_location_id"`
	ToLocationID   *int64  `json:"to_location_id" validate:"required"`
	Reason         string  `json:"reason"`
}

// MoveBulkRequest mueve todo lo que hay en una ubicación a otra.
type MoveBulkRequest struct {
	FromLocationID *int64 `json:"from_location_id" validate:"required"`
	ToLocationID   *int64 `json:"to_location_id" validate:"required"`
	Reason         string `json:"reason"`
}

// MoveResponse resultado de una operación de movimiento.
type MoveResponse struct {
	BatchID    string  `json:"batch_id"`
	MovedCount int     `json:"moved_count"`
	EntryIDs   []int64 `json:"entry_ids"`
}

// MovementResponse fila del historial de movimientos.
type MovementResponse struct {
	ID               int64     `json:"id"`
	BatchID          string    `json:"batch_id"`
	EntryID          int64     `json:"entry_id"`
	FromLocationID   *int64    `json:"from_location_id"`
	FromLocationCode string    `json:"from_location_code,omitempty"`
	ToLocationID     int64     `json:"to_location_id"`
	ToLocationCode   string    `json:"to_location_code"`
	MovedAt          time.Time `json:"moved_at"`
	MovedBy          string    `json:"moved_by"`
	Reason           string    `json:"reason"`
}
