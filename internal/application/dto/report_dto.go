package dto

import "time"

// LocationInventoryResponse contenido actual de una ubicación.
type LocationInventoryResponse struct {
	Location LocationResponse `json:"location"`
	Entries  []EntryResponse  `json:"entries"`
}

// ActivityResponse evento de la línea de tiempo.
type ActivityResponse struct {
	Type         string    `json:"type"` // INBOUND | MOVEMENT | ARCHIVE
	EntryID      int64     `json:"entry_id"`
	LocationCode string    `json:"location_code,omitempty"`
	FromCode     string    `json:"from_code,omitempty"`
	Actor        string    `json:"actor"`
	Detail       string    `json:"detail,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// LocationOccupancyDTO ocupación de una ubicación para el dashboard.
type LocationOccupancyDTO struct {
	LocationID int64  `json:"location_id"`
	Code       string `json:"code"`
	Area       string `json:"area"`
	Occupants  int    `json:"occupants"`
}

// DashboardSummaryDTO respuesta de GET /api/reports/dashboard.
type DashboardSummaryDTO struct {
	PlacedEntries   int `json:"placed_entries"`
	UnplacedEntries int `json:"unplaced_entries"`
	ArchivedEntries int `json:"archived_entries"`

	// Actividad del día y del mes en curso (hora del servidor)
	MovementsToday int `json:"movements_today"`
	MovementsMonth int `json:"movements_month"`
	ArchivesMonth  int `json:"archives_month"`

	TopLocations []LocationOccupancyDTO `json:"top_locations"`
	MonthLabel   string                 `json:"month_label"` // ej: "Octubre 2026"
	GeneratedAt  time.Time              `json:"generated_at"`
}
