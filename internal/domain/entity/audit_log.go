package entity

import "time"

// Campos auditados de Entry (nombres de columna).
const (
	FieldCarrierName    = "carrier_name"
	FieldLocationID     = "location_id"
	FieldTrackingNumber = "tracking_number"
	FieldReturnNumber   = "return_number"
	FieldOrderNumber    = "order_number"
	FieldExpectedCarton = "expected_carton"
	FieldActualCarton   = "actual_carton"
	FieldStage          = "stage"
)

// AuditLog cambio de un campo de una entrada. Solo se inserta, nunca se actualiza ni borra.
// OldValue/NewValue nil representan un valor vacío o inexistente.
type AuditLog struct {
	ID           int64
	EntryID      int64
	FieldName    string
	OldValue     *string
	NewValue     *string
	ChangedBy    string
	ChangeReason string
	ChangedAt    time.Time
}
