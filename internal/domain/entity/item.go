package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item maestro de artículos. El motor de documentos solo lo consulta para
// resolver precios de líneas insertadas sin precio (política del reconciliador).
type Item struct {
	ID        string
	CompanyID string
	Code      string
	Name      string
	Unit      string
	CostPrice decimal.Decimal
	SalePrice decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
