package dto

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// LenientInt número entero tolerante: acepta número JSON, texto numérico, "" o null.
// Cualquier valor no numérico o vacío queda como nil en lugar de producir error.
type LenientInt struct {
	v *int64
}

// NewLenientInt construye un LenientInt con valor.
func NewLenientInt(n int64) LenientInt {
	return LenientInt{v: &n}
}

// LenientIntFromString interpreta texto de una celda o formulario con las mismas reglas que el JSON.
func LenientIntFromString(s string) LenientInt {
	return LenientInt{v: ParseLenientInt(s)}
}

// UnmarshalJSON implementa json.Unmarshaler sin fallar nunca por contenido.
func (l *LenientInt) UnmarshalJSON(data []byte) error {
	l.v = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
	} else {
		s = string(data)
	}
	l.v = ParseLenientInt(s)
	return nil
}

// MarshalJSON serializa como número o null.
func (l LenientInt) MarshalJSON() ([]byte, error) {
	if l.v == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(*l.v, 10)), nil
}

// Int64 devuelve el valor como *int64 (nil si no hay valor).
func (l LenientInt) Int64() *int64 {
	if l.v == nil {
		return nil
	}
	n := *l.v
	return &n
}

// Int devuelve el valor como *int (nil si no hay valor o no cabe en int).
func (l LenientInt) Int() *int {
	if l.v == nil || *l.v > math.MaxInt || *l.v < math.MinInt {
		return nil
	}
	n := int(*l.v)
	return &n
}

// ParseLenientInt interpreta texto como entero; "12", " 12 " y "12.0" son válidos.
func ParseLenientInt(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return nil
	}
	n := int64(f)
	return &n
}

// LenientDecimal decimal tolerante con las mismas reglas que LenientInt.
type LenientDecimal struct {
	v *decimal.Decimal
}

// LenientDecimalFromString interpreta texto con las mismas reglas que el JSON.
func LenientDecimalFromString(s string) LenientDecimal {
	return LenientDecimal{v: ParseLenientDecimal(s)}
}

// UnmarshalJSON implementa json.Unmarshaler sin fallar nunca por contenido.
func (l *LenientDecimal) UnmarshalJSON(data []byte) error {
	l.v = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
	} else {
		s = string(data)
	}
	l.v = ParseLenientDecimal(s)
	return nil
}

// MarshalJSON serializa como número o null.
func (l LenientDecimal) MarshalJSON() ([]byte, error) {
	if l.v == nil {
		return []byte("null"), nil
	}
	return []byte(l.v.String()), nil
}

// Decimal devuelve el valor (nil si no hay valor).
func (l LenientDecimal) Decimal() *decimal.Decimal {
	if l.v == nil {
		return nil
	}
	d := *l.v
	return &d
}

// ParseLenientDecimal interpreta texto como decimal; acepta coma decimal ("12,5").
func ParseLenientDecimal(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}
