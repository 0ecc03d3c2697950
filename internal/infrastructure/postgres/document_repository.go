package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo implementación de DocumentRepository sobre PostgreSQL (usable con pool o tx).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador de cabeceras. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

const documentColumns = `
	id, company_id, doc_type, doc_number, doc_date, party_id, account_id,
	warehouse_id, payment_term_id, doc_no, reference, description,
	status, is_active, created_by, created_at, updated_at`

// Insert persiste la cabecera. El constraint único (company_id, doc_type,
// doc_number) convierte una carrera de numeración en ErrDuplicate, que el
// caso de uso reintenta.
func (r *DocumentRepo) Insert(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO documents (id, company_id, doc_type, doc_number, doc_date, party_id, account_id,
			warehouse_id, payment_term_id, doc_no, reference, description,
			status, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.CompanyID, doc.Type, doc.Number, doc.Date, doc.PartyID, doc.AccountID,
		nullIfEmpty(doc.WarehouseID), nullIfEmpty(doc.PaymentTermID), nullIfEmpty(doc.DocNo),
		nullIfEmpty(doc.Reference), nullIfEmpty(doc.Description),
		doc.Status, doc.IsActive, doc.CreatedBy, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("número %d de %s ya existe: %w", doc.Number, doc.Type, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// UpdateHeader sobreescribe los campos editables y el estado de la cabecera.
func (r *DocumentRepo) UpdateHeader(ctx context.Context, doc *entity.Document) error {
	query := `
		UPDATE documents
		SET doc_date        = $2,
		    party_id        = $3,
		    account_id      = $4,
		    warehouse_id    = $5,
		    payment_term_id = $6,
		    doc_no          = $7,
		    reference       = $8,
		    description     = $9,
		    status          = $10,
		    updated_at      = $11
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		doc.ID, doc.Date, doc.PartyID, doc.AccountID,
		nullIfEmpty(doc.WarehouseID), nullIfEmpty(doc.PaymentTermID), nullIfEmpty(doc.DocNo),
		nullIfEmpty(doc.Reference), nullIfEmpty(doc.Description),
		doc.Status, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update document header: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkInactive borra lógicamente la cabecera (el documento deja de resolverse).
func (r *DocumentRepo) MarkInactive(ctx context.Context, id string) error {
	query := `UPDATE documents SET status = $2, is_active = false, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, entity.DocStatusInactive)
	if err != nil {
		return fmt.Errorf("mark document inactive: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByNumber resuelve por (empresa, tipo, número) incluyendo anulados;
// devuelve nil sin error si no existe.
func (r *DocumentRepo) GetByNumber(ctx context.Context, companyID, docType string, number int) (*entity.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE company_id = $1 AND doc_type = $2 AND doc_number = $3`
	return r.scanOne(r.q.QueryRow(ctx, query, companyID, docType, number))
}

// GetByNumberForUpdate igual que GetByNumber pero bloquea la fila
// (SELECT FOR UPDATE) para serializar update/delete concurrentes.
func (r *DocumentRepo) GetByNumberForUpdate(ctx context.Context, companyID, docType string, number int) (*entity.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE company_id = $1 AND doc_type = $2 AND doc_number = $3
		FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, companyID, docType, number))
}

func (r *DocumentRepo) scanOne(row pgx.Row) (*entity.Document, error) {
	var d entity.Document
	var warehouseID, paymentTermID, docNo, reference, description *string
	err := row.Scan(
		&d.ID, &d.CompanyID, &d.Type, &d.Number, &d.Date, &d.PartyID, &d.AccountID,
		&warehouseID, &paymentTermID, &docNo, &reference, &description,
		&d.Status, &d.IsActive, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	d.WarehouseID = deref(warehouseID)
	d.PaymentTermID = deref(paymentTermID)
	d.DocNo = deref(docNo)
	d.Reference = deref(reference)
	d.Description = deref(description)
	return &d, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
