package entity

import "time"

// Location representa una posición física de almacenamiento (rack, bin, zona de piso).
// El código es único y es lo que el operador ve impreso en la etiqueta.
type Location struct {
	ID          int64
	Code        string
	Description string
	Area        string
	IsActive    bool
	CreatedAt   time.Time
	CreatedBy   string
	UpdatedAt   time.Time
}

// LocationWithOccupancy ubicación con el número de entradas que la ocupan actualmente.
type LocationWithOccupancy struct {
	Location
	Occupants int
}
