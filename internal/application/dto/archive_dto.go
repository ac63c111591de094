package dto

import "time"

// ArchiveEntryRequest retira una entrada del inventario activo.
type ArchiveEntryRequest struct {
	Reason string `json:"reason" validate:"required"`
	Notes  string `json:"notes"`
}

// ArchiveEntryResponse id del registro de archivo creado.
type ArchiveEntryResponse struct {
	ArchiveID int64 `json:"archive_id"`
	EntryID   int64 `json:"entry_id"`
}

// RestoreEntryRequest restaura una entrada archivada.
// Sin OverrideLocationID vuelve a la ubicación que tenía al archivarse.
type RestoreEntryRequest struct {
	OverrideLocationID *int64 `json:"override_location_id"`
	Reason             string `json:"reason"`
}

// RestoreEntryResponse ubicación final de la entrada restaurada.
type RestoreEntryResponse struct {
	EntryID    int64  `json:"entry_id"`
	LocationID *int64 `json:"location_id"`
}

// ArchiveResponse registro de archivo.
type ArchiveResponse struct {
	ID           int64     `json:"id"`
	EntryID      int64     `json:"entry_id"`
	LocationID   *int64    `json:"location_id"`
	LocationCode string    `json:"location_code,omitempty"`
	ArchivedAt   time.Time `json:"archived_at"`
	ArchivedBy   string    `json:"archived_by"`
	Reason       string    `json:"reason"`
	Notes        string    `json:"notes"`
}
