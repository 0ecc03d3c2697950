package entity

import "time"

// Tipos de documento comercial.
const (
	DocTypeGRN            = "GRN"    // recepción de mercancía (entrada de inventario)
	DocTypeSupplierReturn = "PURRTN" // devolución al proveedor
	DocTypeSalesReturn    = "SLSRTN" // devolución de venta (cliente)
)

// Estados del documento. Inactive es terminal.
const (
	DocStatusActive   = "A" // creado
	DocStatusUpdated  = "U" // editado al menos una vez
	DocStatusInactive = "I" // anulado (borrado lógico)
)

// Document representa la cabecera de un documento comercial
// (recepción o devolución). El número es único y creciente por
// (empresa, tipo); el ID interno nunca se reutiliza.
type Document struct {
	ID            string // clave interna inmutable (UUID)
	CompanyID     string
	Type          string // GRN, PURRTN, SLSRTN
	Number        int    // consecutivo visible por (CompanyID, Type)
	Date          time.Time
	PartyID       string // proveedor o cliente según el tipo
	AccountID     string // cuenta de la contraparte (línea 1 del asiento)
	WarehouseID   string
	PaymentTermID string
	DocNo         string // número de documento externo
	Reference     string // referencia del tercero (YurRef)
	Description   string
	Status        string
	IsActive      bool
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidTypes tipos de documento soportados por el motor.
var ValidTypes = map[string]bool{
	DocTypeGRN:            true,
	DocTypeSupplierReturn: true,
	DocTypeSalesReturn:    true,
}

// TracksBatches indica si el tipo de documento afecta lotes de inventario.
// Solo las recepciones (GRN) crean y consumen filas de ItmBatch.
func TracksBatches(docType string) bool {
	return docType == DocTypeGRN
}

// TypeSign signo con que se almacenan las cantidades de línea:
// las devoluciones al proveedor se guardan en negativo.
func TypeSign(docType string) int {
	if docType == DocTypeSupplierReturn {
		return -1
	}
	return 1
}
