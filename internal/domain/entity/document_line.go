package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentLine representa una línea de detalle de un documento.
// LineNo es 1-based, contiguo y único dentro del documento; la cantidad
// se guarda con el signo del tipo de documento (TypeSign).
type DocumentLine struct {
	ID             string // clave interna inmutable (UUID)
	DocumentID     string
	LineNo         int
	ItemID         string
	Quantity       decimal.Decimal // firmada: negativa en devoluciones al proveedor
	CostPrice      decimal.Decimal
	SalePrice      decimal.Decimal
	UnitPrice      decimal.Decimal // precio de transacción (TrnPri)
	TaxAmount      decimal.Decimal // GST de la línea (devoluciones al proveedor)
	OtherAmount    decimal.Decimal // otros gravámenes (NSL)
	DiscountPct    decimal.Decimal
	DiscountAmount decimal.Decimal
	BatchNo        string     // vacío = sin lote
	ExpiryDate     *time.Time // nil = sin vencimiento
	CreatedAt      time.Time
}

// Amount importe bruto de la línea (cantidad firmada por precio de transacción).
func (l *DocumentLine) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}
