package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Etapas habituales de una devolución. El campo Stage es texto libre; estas son las del flujo estándar.
const (
	StageReceived  = "RECEIVED"
	StageInspected = "INSPECTED"
	StageRestocked = "RESTOCKED"
	StageDisposed  = "DISPOSED"
)

// Entry representa una unidad física (caja o pallet) de devolución recibida en bodega.
//
// LocationID es la única fuente de verdad de "dónde está ahora": nil si la entrada
// está archivada o nunca se ubicó. Archived se deriva de la existencia de un registro
// en entry_archives y no se persiste en la fila.
type Entry struct {
	ID             int64
	CarrierName    string
	TrackingNumber string
	ReturnNumber   string
	OrderNumber    string
	CustomerName   string
	ExpectedCarton *int
	ActualCarton   *int
	WeightKg       *decimal.Decimal
	Stage          string
	Remarks        string
	LocationID     *int64
	LocationCode   string // solo lectura (JOIN)
	Archived       bool   // solo lectura
	ReceivedAt     time.Time
	CreatedAt      time.Time
	CreatedBy      string
	UpdatedAt      time.Time
	UpdatedBy      string
}

// IsPlaced indica si la entrada ocupa actualmente una ubicación.
func (e *Entry) IsPlaced() bool {
	return e.LocationID != nil
}
