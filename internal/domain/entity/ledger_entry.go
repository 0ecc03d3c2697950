package entity

import "github.com/shopspring/decimal"

// Números de línea del asiento, con significado fijo por tipo de documento.
const (
	LedgerLineParty  = 1 // contraparte (proveedor o cliente)
	LedgerLineContra = 2 // cuenta de compras / devoluciones / ventas
	LedgerLineTax    = 3 // cuenta de impuesto (solo si aplica)
)

// LedgerEntry es una línea del asiento contable derivado de un documento.
// Los importes firmados de todas las líneas de un documento suman cero.
type LedgerEntry struct {
	DocumentID    string
	LineNo        int
	AccountID     string
	Amount        decimal.Decimal
	PaymentModeID string
	Status        string // A al crear, U al re-postear
}
