package entity

import "time"

// Archive registro de una entrada retirada del inventario activo.
// Existe como máximo uno por entrada; restaurar la entrada elimina el registro.
type Archive struct {
	ID           int64
	EntryID      int64
	LocationID   *int64 // ubicación que tenía la entrada al archivarse
	LocationCode string
	ArchivedAt   time.Time
	ArchivedBy   string
	Reason       string
	Notes        string
}
