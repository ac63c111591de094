package entity

import "time"

// Movement registro inmutable de una reubicación de una entrada.
// BatchID agrupa las filas generadas por una misma operación (individual, múltiple o masiva).
type Movement struct {
	ID               int64
	BatchID          string
	EntryID          int64
	FromLocationID   *int64 // nil: la entrada no estaba ubicada
	FromLocationCode string
	ToLocationID     int64
	ToLocationCode   string
	MovedAt          time.Time
	MovedBy          string
	Reason           string
}
