package inventory

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeQuantity convierte un valor crudo del catálogo en cantidad.
// Valores ausentes, no numéricos, NaN o infinitos se tratan como 0; nunca falla.
func NormalizeQuantity(v any) decimal.Decimal {
	switch q := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return q
	case *decimal.Decimal:
		if q == nil {
			return decimal.Zero
		}
		return *q
	case decimal.NullDecimal:
		if !q.Valid {
			return decimal.Zero
		}
		return q.Decimal
	case int:
		return decimal.NewFromInt(int64(q))
	case int32:
		return decimal.NewFromInt32(q)
	case int64:
		return decimal.NewFromInt(q)
	case float32:
		return fromFloat(float64(q))
	case float64:
		return fromFloat(q)
	case json.Number:
		return fromString(q.String())
	case string:
		return fromString(q)
	default:
		return decimal.Zero
	}
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func fromString(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Precisión de las columnas de cantidades (NUMERIC(18,4)).
const (
	QuantityScale     = 4
	quantityIntDigits = 14
)

var maxQuantity = decimal.New(1, quantityIntDigits)

// ValidCount indica si una cantidad digitada cabe en el almacenamiento sin
// redondeo: no negativa, a lo sumo 4 decimales y menor a 1e14.
func ValidCount(d decimal.Decimal) bool {
	if d.IsNegative() || d.GreaterThanOrEqual(maxQuantity) {
		return false
	}
	return d.Equal(d.Truncate(QuantityScale))
}

// ParseCount interpreta una cantidad digitada por el usuario (conteo o merma).
// A diferencia de NormalizeQuantity, el texto inválido, negativo o fuera de la
// precisión almacenable es un error.
func ParseCount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !ValidCount(d) {
		return decimal.Zero, false
	}
	return d, true
}
