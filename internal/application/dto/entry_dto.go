package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateEntryRequest alta de una entrada. Los campos numéricos son tolerantes:
// texto vacío o no numérico se guarda como nulo.
type CreateEntryRequest struct {
	CarrierName    string         `json:"carrier_name" validate:"required"`
	TrackingNumber string         `json:"tracking_number"`
	ReturnNumber   string         `json:"return_number"`
	OrderNumber    string         `json:"order_number"`
	CustomerName   string         `json:"customer_name"`
	ExpectedCarton LenientInt     `json:"expected_carton"`
	ActualCarton   LenientInt     `json:"actual_carton"`
	WeightKg       LenientDecimal `json:"weight_kg"`
	Stage          string         `json:"stage"`
	Remarks        string         `json:"remarks"`
	LocationID     LenientInt     `json:"location_id"`
	ReceivedAt     *time.Time     `json:"received_at"`
}

// UpdateEntryRequest actualización parcial de campos descriptivos.
// Solo se modifican los campos presentes; la ubicación no se cambia por esta vía.
type UpdateEntryRequest struct {
	CarrierName    *string          `json:"carrier_name"`
	TrackingNumber *string          `json:"tracking_number"`
	ReturnNumber   *string          `json:"return_number"`
	OrderNumber    *string          `json:"order_number"`
	CustomerName   *string          `json:"customer_name"`
	ExpectedCarton *int             `json:"expected_carton"`
	ActualCarton   *int             `json:"actual_carton"`
	WeightKg       *decimal.Decimal `json:"weight_kg"`
	Stage          *string          `json:"stage"`
	Remarks        *string          `json:"remarks"`
	ChangeReason   string           `json:"change_reason" validate:"required"`
}

// CreateEntryResponse id generado.
type CreateEntryResponse struct {
	ID         int64 `json:"id"`
	Downgraded bool  `json:"location_downgraded,omitempty"`
}

// UpdateEntryResponse id y número de cambios auditados.
type UpdateEntryResponse struct {
	ID         int64 `json:"id"`
	AuditCount int   `json:"audit_count"`
}

// EntryResponse salida de una entrada.
type EntryResponse struct {
	ID             int64            `json:"id"`
	CarrierName    string           `json:"carrier_name"`
	TrackingNumber string           `json:"tracking_number"`
	ReturnNumber   string           `json:"return_number"`
	OrderNumber    string           `json:"order_number"`
	CustomerName   string           `json:"customer_name"`
	ExpectedCarton *int             `json:"expected_carton"`
	ActualCarton   *int             `json:"actual_carton"`
	WeightKg       *decimal.Decimal `json:"weight_kg"`
	Stage          string           `json:"stage"`
	Remarks        string           `json:"remarks"`
	LocationID     *int64           `json:"location_id"`
	LocationCode   string           `json:"location_code,omitempty"`
	Archived       bool             `json:"archived"`
	ReceivedAt     time.Time        `json:"received_at"`
	CreatedAt      time.Time        `json:"created_at"`
	CreatedBy      string           `json:"created_by"`
	UpdatedAt      time.Time        `json:"updated_at"`
	UpdatedBy      string           `json:"updated_by"`
}

// EntryListResponse lista paginada de entradas.
type EntryListResponse struct {
	Items []EntryResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// AuditLogResponse un cambio de campo en la bitácora.
type AuditLogResponse struct {
	ID           int64     `json:"id"`
	EntryID      int64     `json:"entry_id"`
	FieldName    string    `json:"field_name"`
	OldValue     *string   `json:"old_value"`
	NewValue     *string   `json:"new_value"`
	ChangedBy    string    `json:"changed_by"`
	ChangeReason string    `json:"change_reason"`
	ChangedAt    time.Time `json:"changed_at"`
}

// ImportRowError error de una fila del CSV (Line es 1-based contando la cabecera).
type ImportRowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportSummaryResponse resultado de una importación masiva.
type ImportSummaryResponse struct {
	Inserted         int              `json:"inserted"`
	Errors           int              `json:"errors"`
	LocationsCreated []string         `json:"locations_created,omitempty"`
	RowErrors        []ImportRowError `json:"row_errors,omitempty"`
}
