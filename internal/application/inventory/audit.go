package inventory

import (
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/Returns-api/internal/domain/entity"
)

// auditedFields campos de Entry cuyo cambio queda en la bitácora.
var auditedFields = []string{
	entity.FieldCarrierName,
	entity.FieldLocationID,
	entity.FieldTrackingNumber,
	entity.FieldReturnNumber,
	entity.FieldOrderNumber,
	entity.FieldExpectedCarton,
	entity.FieldActualCarton,
	entity.FieldStage,
}

// auditValue representación textual de un campo auditado; nil si está vacío.
func auditValue(e *entity.Entry, field string) *string {
	switch field {
	case entity.FieldCarrierName:
		return textValue(e.CarrierName)
	case entity.FieldLocationID:
		return idValue(e.LocationID)
	case entity.FieldTrackingNumber:
		return textValue(e.TrackingNumber)
	case entity.FieldReturnNumber:
		return textValue(e.ReturnNumber)
	case entity.FieldOrderNumber:
		return textValue(e.OrderNumber)
	case entity.FieldExpectedCarton:
		return intValue(e.ExpectedCarton)
	case entity.FieldActualCarton:
		return intValue(e.ActualCarton)
	case entity.FieldStage:
		return textValue(e.Stage)
	}
	return nil
}

func textValue(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func idValue(id *int64) *string {
	if id == nil {
		return nil
	}
	s := strconv.FormatInt(*id, 10)
	return &s
}

func intValue(n *int) *string {
	if n == nil {
		return nil
	}
	s := strconv.Itoa(*n)
	return &s
}

func sameValue(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// diffEntries una fila por campo auditado cuyo valor cambió entre before y after.
// Con before nil (alta) se registran los campos poblados con old_value nulo.
func diffEntries(before, after *entity.Entry, actor, reason string, at time.Time) []*entity.AuditLog {
	var logs []*entity.AuditLog
	for _, f := range auditedFields {
		var old *string
		if before != nil {
			old = auditValue(before, f)
		}
		cur := auditValue(after, f)
		if sameValue(old, cur) {
			continue
		}
		logs = append(logs, &entity.AuditLog{
			EntryID:      after.ID,
			FieldName:    f,
			OldValue:     old,
			NewValue:     cur,
			ChangedBy:    actor,
			ChangeReason: reason,
			ChangedAt:    at,
		})
	}
	return logs
}

// locationChange fila de bitácora del cambio de ubicación hecho por los motores de movimiento y archivo.
func locationChange(entryID int64, from, to *int64, actor, reason string, at time.Time) *entity.AuditLog {
	return &entity.AuditLog{
		EntryID:      entryID,
		FieldName:    entity.FieldLocationID,
		OldValue:     idValue(from),
		NewValue:     idValue(to),
		ChangedBy:    actor,
		ChangeReason: reason,
		ChangedAt:    at,
	}
}

func sameLocation(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
