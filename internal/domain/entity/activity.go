package entity

import "time"

// Tipos de evento de la línea de tiempo de actividad.
const (
	ActivityInbound  = "INBOUND"
	ActivityMovement = "MOVEMENT"
	ActivityArchive  = "ARCHIVE"
)

// Activity evento de la línea de tiempo combinada (ingreso, movimiento o archivo).
type Activity struct {
	Type         string
	EntryID      int64
	LocationCode string // destino del movimiento o ubicación archivada; vacío en ingresos
	FromCode     string // solo movimientos
	Actor        string
	Detail       string // transportista en ingresos, motivo en movimientos y archivos
	OccurredAt   time.Time
}
