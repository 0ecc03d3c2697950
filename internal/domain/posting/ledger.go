package posting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
)

// Accounts cuentas contables fijas de un tipo de documento:
// Contra recibe el neto (línea 2) y Tax el impuesto (línea 3, opcional).
type Accounts struct {
	Contra string
	Tax    string
}

// Totals totales de un documento, calculados del set de líneas ya
// reconciliado. Todos vienen firmados con el signo del tipo de documento.
type Totals struct {
	Net   decimal.Decimal // Σ cantidad·precio − descuentos + otros gravámenes
	Tax   decimal.Decimal // Σ impuesto de línea
	Gross decimal.Decimal // Net + Tax
}

// ComputeTotals suma el set de líneas sobreviviente. Las líneas ya traen
// cantidades e importes firmados, así que no se aplica signo aquí.
func ComputeTotals(lines []*entity.DocumentLine) Totals {
	var net, tax decimal.Decimal
	for _, l := range lines {
		net = net.Add(l.Amount()).Sub(l.DiscountAmount).Add(l.OtherAmount)
		tax = tax.Add(l.TaxAmount)
	}
	return Totals{Net: net, Tax: tax, Gross: net.Add(tax)}
}

// DeriveLedger produce las líneas del asiento de un documento:
// línea 1 = −bruto contra la cuenta de la contraparte, línea 2 = +neto contra
// la cuenta contra, línea 3 = +impuesto (solo si hay impuesto). La suma de las
// líneas es cero por construcción y se verifica igual antes de retornar.
func DeriveLedger(doc *entity.Document, accounts Accounts, totals Totals, status string) ([]*entity.LedgerEntry, error) {
	if doc.AccountID == "" {
		return nil, fmt.Errorf("documento sin cuenta de contraparte: %w", domain.ErrInvalidInput)
	}
	if accounts.Contra == "" {
		return nil, fmt.Errorf("tipo %s sin cuenta contra configurada: %w", doc.Type, domain.ErrInvalidInput)
	}

	entries := []*entity.LedgerEntry{
		{
			DocumentID:    doc.ID,
			LineNo:        entity.LedgerLineParty,
			AccountID:     doc.AccountID,
			Amount:        totals.Gross.Neg(),
			PaymentModeID: doc.PaymentTermID,
			Status:        status,
		},
		{
			DocumentID:    doc.ID,
			LineNo:        entity.LedgerLineContra,
			AccountID:     accounts.Contra,
			Amount:        totals.Net,
			PaymentModeID: doc.PaymentTermID,
			Status:        status,
		},
	}
	if !totals.Tax.IsZero() {
		if accounts.Tax == "" {
			return nil, fmt.Errorf("tipo %s con impuesto pero sin cuenta de impuesto: %w", doc.Type, domain.ErrInvalidInput)
		}
		entries = append(entries, &entity.LedgerEntry{
			DocumentID:    doc.ID,
			LineNo:        entity.LedgerLineTax,
			AccountID:     accounts.Tax,
			Amount:        totals.Tax,
			PaymentModeID: doc.PaymentTermID,
			Status:        status,
		})
	}

	if err := CheckBalanced(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CheckBalanced verifica la partida doble: los importes firmados del asiento
// deben sumar exactamente cero (decimal exacto, sin tolerancia de redondeo).
func CheckBalanced(entries []*entity.LedgerEntry) error {
	var sum decimal.Decimal
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	if !sum.IsZero() {
		return fmt.Errorf("el asiento suma %s: %w", sum.String(), domain.ErrUnbalancedPosting)
	}
	return nil
}
