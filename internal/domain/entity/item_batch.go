package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BatchExpirySentinel valor con que se normaliza un vencimiento ausente
// para que la clave (ítem, lote, vencimiento) sea comparable por igualdad.
var BatchExpirySentinel = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// NormalizeExpiry devuelve el vencimiento truncado a día, o el centinela si es nil.
func NormalizeExpiry(expiry *time.Time) time.Time {
	if expiry == nil {
		return BatchExpirySentinel
	}
	return time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
}

// ItemBatch existencia por (ítem, lote, vencimiento). Las filas sobreviven a
// los documentos que las crearon: una recepción suma cantidad y pisa precios;
// anular la recepción la resta.
type ItemBatch struct {
	ID         string
	ItemID     string
	BatchNo    string    // '' = sin lote (normalizado)
	ExpiryDate time.Time // centinela 1900-01-01 = sin vencimiento
	Quantity   decimal.Decimal
	CostPrice  decimal.Decimal
	SalePrice  decimal.Decimal
	UpdatedAt  time.Time
}
