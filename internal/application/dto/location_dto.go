package dto

import "time"

// CreateLocationRequest entrada para crear una ubicación.
type CreateLocationRequest struct {
	Code        string `json:"code" validate:"required,max=50"`
	Description string `json:"description"`
	Area        string `json:"area"`
}

// UpdateLocationRequest reemplazo completo de una ubicación.
// Description y Area ausentes quedan vacíos; IsActive ausente conserva el valor actual.
type UpdateLocationRequest struct {
	Code        string `json:"code" validate:"required,max=50"`
	Description string `json:"description"`
	Area        string `json:"area"`
	IsActive    *bool  `json:"is_active"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Area        string    `json:"area"`
	IsActive    bool      `json:"is_active"`
	Occupants   *int      `json:"occupants,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LocationListResponse lista paginada de ubicaciones.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
