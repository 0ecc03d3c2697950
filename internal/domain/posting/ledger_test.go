package posting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/posting"
)

var testAccounts = posting.Accounts{Contra: "acct-compras", Tax: "acct-gst"}

func ledgerDoc(docType string) *entity.Document {
	return &entity.Document{
		ID:            testDocID,
		Type:          docType,
		AccountID:     "acct-proveedor",
		PaymentTermID: "contado",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Totales
// ──────────────────────────────────────────────────────────────────────────────

// TestComputeTotals_RecepcionDosLineas reproduce el escenario de referencia:
// 10 @ 5 + 5 @ 8 = 90 neto, sin impuesto.
func TestComputeTotals_RecepcionDosLineas(t *testing.T) {
	lines := []*entity.DocumentLine{
		{Quantity: dec(10), UnitPrice: dec(5)},
		{Quantity: dec(5), UnitPrice: dec(8)},
	}

	totals := posting.ComputeTotals(lines)
	assert.True(t, totals.Net.Equal(dec(90)))
	assert.True(t, totals.Tax.IsZero())
	assert.True(t, totals.Gross.Equal(dec(90)))
}

// TestComputeTotals_DescuentosYGravamenes verifica neto = importe − descuento
// + otros gravámenes, e impuesto aparte.
func TestComputeTotals_DescuentosYGravamenes(t *testing.T) {
	lines := []*entity.DocumentLine{
		{Quantity: dec(2), UnitPrice: dec(100), DiscountAmount: dec(20), TaxAmount: dec(19), OtherAmount: dec(5)},
	}

	totals := posting.ComputeTotals(lines)
	assert.True(t, totals.Net.Equal(dec(185)), "200 − 20 + 5")
	assert.True(t, totals.Tax.Equal(dec(19)))
	assert.True(t, totals.Gross.Equal(dec(204)))
}

// TestComputeTotals_DevolucionFirmada verifica que con líneas ya negadas
// (PURRTN) los totales salen negativos sin tratamiento especial.
func TestComputeTotals_DevolucionFirmada(t *testing.T) {
	lines := []*entity.DocumentLine{
		{Quantity: dec(-4), UnitPrice: dec(10), TaxAmount: dec(-2)},
	}

	totals := posting.ComputeTotals(lines)
	assert.True(t, totals.Net.Equal(dec(-40)))
	assert.True(t, totals.Tax.Equal(dec(-2)))
	assert.True(t, totals.Gross.Equal(dec(-42)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Derivación del asiento
// ──────────────────────────────────────────────────────────────────────────────

// TestDeriveLedger_RecepcionDosLineas el asiento de una recepción sin impuesto:
// línea 1 = −90 contra el proveedor, línea 2 = +90 contra compras.
func TestDeriveLedger_RecepcionDosLineas(t *testing.T) {
	totals := posting.Totals{Net: dec(90), Gross: dec(90)}

	entries, err := posting.DeriveLedger(ledgerDoc(entity.DocTypeGRN), testAccounts, totals, entity.DocStatusActive)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, entity.LedgerLineParty, entries[0].LineNo)
	assert.Equal(t, "acct-proveedor", entries[0].AccountID)
	assert.True(t, entries[0].Amount.Equal(dec(-90)))
	assert.Equal(t, entity.LedgerLineContra, entries[1].LineNo)
	assert.Equal(t, "acct-compras", entries[1].AccountID)
	assert.True(t, entries[1].Amount.Equal(dec(90)))
}

// TestDeriveLedger_ConImpuestoTresLineas verifica la tercera línea y que el
// asiento completo sume cero.
func TestDeriveLedger_ConImpuestoTresLineas(t *testing.T) {
	totals := posting.Totals{Net: dec(-40), Tax: dec(-2), Gross: dec(-42)}

	entries, err := posting.DeriveLedger(ledgerDoc(entity.DocTypeSupplierReturn), testAccounts, totals, entity.DocStatusActive)
	require.NoError(t, err)

	require.Len(t, entries, 3)
	assert.True(t, entries[0].Amount.Equal(dec(42)), "línea 1 = −bruto")
	assert.True(t, entries[1].Amount.Equal(dec(-40)))
	assert.Equal(t, "acct-gst", entries[2].AccountID)
	assert.True(t, entries[2].Amount.Equal(dec(-2)))
	assert.NoError(t, posting.CheckBalanced(entries))
}

func TestDeriveLedger_ImpuestoSinCuentaRetornaError(t *testing.T) {
	totals := posting.Totals{Net: dec(40), Tax: dec(2), Gross: dec(42)}
	_, err := posting.DeriveLedger(ledgerDoc(entity.DocTypeSupplierReturn), posting.Accounts{Contra: "acct-compras"}, totals, entity.DocStatusActive)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeriveLedger_SinCuentaContraparteRetornaError(t *testing.T) {
	doc := ledgerDoc(entity.DocTypeGRN)
	doc.AccountID = ""
	_, err := posting.DeriveLedger(doc, testAccounts, posting.Totals{}, entity.DocStatusActive)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestCheckBalanced_Desbalanceado verifica la verificación de partida doble.
func TestCheckBalanced_Desbalanceado(t *testing.T) {
	entries := []*entity.LedgerEntry{
		{LineNo: 1, Amount: dec(-90)},
		{LineNo: 2, Amount: dec(89)},
	}
	assert.ErrorIs(t, posting.CheckBalanced(entries), domain.ErrUnbalancedPosting)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventana de fechas
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateDate_Ventana(t *testing.T) {
	now := time.Date(2026, 8, 27, 15, 30, 0, 0, time.UTC)

	casos := []struct {
		nombre string
		fecha  time.Time
		valida bool
	}{
		{"hoy", now, true},
		{"hace una semana", now.AddDate(0, 0, -7), true},
		{"límite exacto 60 días", now.AddDate(0, 0, -60), true},
		{"61 días atrás", now.AddDate(0, 0, -61), false},
		{"mañana", now.AddDate(0, 0, 1), false},
	}

	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			err := posting.ValidateDate(c.fecha, now)
			if c.valida {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrDateOutOfRange)
			}
		})
	}
}
