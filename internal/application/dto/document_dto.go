package dto

import "github.com/shopspring/decimal"

// DocumentLineRequest línea entrante de un documento. En creación todas las
// líneas son nuevas (sin line_id); en actualización cada línea viene etiquetada:
// line_id vacío = insertar, is_updated = sobrescribir, is_deleted = borrar.
// Cantidades e importes van en magnitud positiva; el motor aplica el signo
// del tipo de documento.
type DocumentLineRequest struct {
	LineID         string          `json:"line_id,omitempty"`
	IsDeleted      bool            `json:"is_deleted,omitempty"`
	IsUpdated      bool            `json:"is_updated,omitempty"`
	ItemID         string          `json:"item_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	CostPrice      decimal.Decimal `json:"cost_price,omitempty"`
	SalePrice      decimal.Decimal `json:"sale_price,omitempty"`
	UnitPrice      decimal.Decimal `json:"unit_price,omitempty"`
	TaxAmount      decimal.Decimal `json:"tax_amount,omitempty"`
	OtherAmount    decimal.Decimal `json:"other_amount,omitempty"`
	DiscountPct    decimal.Decimal `json:"discount_pct,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount,omitempty"`
	BatchNo        string          `json:"batch_no,omitempty"`
	ExpiryDate     string          `json:"expiry_date,omitempty"` // YYYY-MM-DD
}

// CreateDocumentRequest body para POST /api/documents/:type.
type CreateDocumentRequest struct {
	Date          string                `json:"date"` // YYYY-MM-DD, dentro de la ventana permitida
	PartyID       string                `json:"party_id"`
	AccountID     string                `json:"account_id"`
	WarehouseID   string                `json:"warehouse_id,omitempty"`
	PaymentTermID string                `json:"payment_term_id,omitempty"`
	DocNo         string                `json:"doc_no,omitempty"`    // número del documento externo
	Reference     string                `json:"reference,omitempty"` // referencia del tercero
	Description   string                `json:"description,omitempty"`
	Lines         []DocumentLineRequest `json:"lines"`
}

// UpdateDocumentRequest body para PUT /api/documents/:type/:number.
// Las líneas vienen etiquetadas por línea (ver DocumentLineRequest).
type UpdateDocumentRequest struct {
	Date          string                `json:"date"`
	PartyID       string                `json:"party_id"`
	AccountID     string                `json:"account_id"`
	WarehouseID   string                `json:"warehouse_id,omitempty"`
	PaymentTermID string                `json:"payment_term_id,omitempty"`
	DocNo         string                `json:"doc_no,omitempty"`
	Reference     string                `json:"reference,omitempty"`
	Description   string                `json:"description,omitempty"`
	Lines         []DocumentLineRequest `json:"lines"`
}

// CreateDocumentResponse número asignado al documento creado.
type CreateDocumentResponse struct {
	Number int    `json:"number"`
	Status string `json:"status"`
}

// DocumentLineResponse línea de detalle en respuestas.
type DocumentLineResponse struct {
	LineID         string          `json:"line_id"`
	LineNo         int             `json:"line_no"`
	ItemID         string          `json:"item_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Amount         decimal.Decimal `json:"amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount,omitempty"`
	OtherAmount    decimal.Decimal `json:"other_amount,omitempty"`
	DiscountPct    decimal.Decimal `json:"discount_pct,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount,omitempty"`
	BatchNo        string          `json:"batch_no,omitempty"`
	ExpiryDate     string          `json:"expiry_date,omitempty"`
}

// DocumentResponse cabecera con detalle para GET /api/documents/:type/:number.
type DocumentResponse struct {
	Type          string                 `json:"type"`
	Number        int                    `json:"number"`
	Date          string                 `json:"date"`
	PartyID       string                 `json:"party_id"`
	AccountID     string                 `json:"account_id"`
	WarehouseID   string                 `json:"warehouse_id,omitempty"`
	PaymentTermID string                 `json:"payment_term_id,omitempty"`
	DocNo         string                 `json:"doc_no,omitempty"`
	Reference     string                 `json:"reference,omitempty"`
	Description   string                 `json:"description,omitempty"`
	Status        string                 `json:"status"`
	NetTotal      decimal.Decimal        `json:"net_total"`
	TaxTotal      decimal.Decimal        `json:"tax_total"`
	GrossTotal    decimal.Decimal        `json:"gross_total"`
	Lines         []DocumentLineResponse `json:"lines"`
}
