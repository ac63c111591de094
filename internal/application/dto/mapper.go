package dto

import "github.com/jhoicas/Returns-api/internal/domain/entity"

// NewEntryResponse convierte una entidad Entry a su salida HTTP.
func NewEntryResponse(e *entity.Entry) EntryResponse {
	return EntryResponse{
		ID:             e.ID,
		CarrierName:    e.CarrierName,
		TrackingNumber: e.TrackingNumber,
		ReturnNumber:   e.ReturnNumber,
		OrderNumber:    e.OrderNumber,
		CustomerName:   e.CustomerName,
		ExpectedCarton: e.ExpectedCarton,
		ActualCarton:   e.ActualCarton,
		WeightKg:       e.WeightKg,
		Stage:          e.Stage,
		Remarks:        e.Remarks,
		LocationID:     e.LocationID,
		LocationCode:   e.LocationCode,
		Archived:       e.Archived,
		ReceivedAt:     e.ReceivedAt,
		CreatedAt:      e.CreatedAt,
		CreatedBy:      e.CreatedBy,
		UpdatedAt:      e.UpdatedAt,
		UpdatedBy:      e.UpdatedBy,
	}
}

// NewEntryResponses convierte una lista de entradas (nunca devuelve nil).
func NewEntryResponses(list []*entity.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, NewEntryResponse(e))
	}
	return out
}

// NewLocationResponse convierte una entidad Location a su salida HTTP.
func NewLocationResponse(l *entity.Location) LocationResponse {
	return LocationResponse{
		ID:          l.ID,
		Code:        l.Code,
		Description: l.Description,
		Area:        l.Area,
		IsActive:    l.IsActive,
		CreatedAt:   l.CreatedAt,
		CreatedBy:   l.CreatedBy,
		UpdatedAt:   l.UpdatedAt,
	}
}

// NewMovementResponse convierte un movimiento.
func NewMovementResponse(m *entity.Movement) MovementResponse {
	return MovementResponse{
		ID:               m.ID,
		BatchID:          m.BatchID,
		EntryID:          m.EntryID,
		FromLocationID:   m.FromLocationID,
		FromLocationCode: m.FromLocationCode,
		ToLocationID:     m.ToLocationID,
		ToLocationCode:   m.ToLocationCode,
		MovedAt:          m.MovedAt,
		MovedBy:          m.MovedBy,
		Reason:           m.Reason,
	}
}

// NewArchiveResponse convierte un registro de archivo.
func NewArchiveResponse(a *entity.Archive) ArchiveResponse {
	return ArchiveResponse{
		ID:           a.ID,
		EntryID:      a.EntryID,
		LocationID:   a.LocationID,
		LocationCode: a.LocationCode,
		ArchivedAt:   a.ArchivedAt,
		ArchivedBy:   a.ArchivedBy,
		Reason:       a.Reason,
		Notes:        a.Notes,
	}
}

// NewAuditLogResponse convierte una fila de bitácora.
func NewAuditLogResponse(l *entity.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:           l.ID,
		EntryID:      l.EntryID,
		FieldName:    l.FieldName,
		OldValue:     l.OldValue,
		NewValue:     l.NewValue,
		ChangedBy:    l.ChangedBy,
		ChangeReason: l.ChangeReason,
		ChangedAt:    l.ChangedAt,
	}
}
