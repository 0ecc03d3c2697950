package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
)

var _ repository.LineRepository = (*LineRepo)(nil)

// LineRepo implementación de LineRepository sobre PostgreSQL (usable con pool o tx).
// El constraint único (document_id, line_no) es DEFERRABLE: la renumeración
// dentro de la transacción puede cruzar números sin violarlo.
type LineRepo struct {
	q Querier
}

// NewLineRepository construye el adaptador de líneas. Pasar pool o tx (Querier).
func NewLineRepository(q Querier) *LineRepo {
	return &LineRepo{q: q}
}

// Insert persiste una línea de detalle.
func (r *LineRepo) Insert(ctx context.Context, line *entity.DocumentLine) error {
	query := `
		INSERT INTO document_lines (id, document_id, line_no, item_id, quantity,
			cost_price, sale_price, unit_price, tax_amount, other_amount,
			discount_pct, discount_amount, batch_no, expiry_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		line.ID, line.DocumentID, line.LineNo, line.ItemID, line.Quantity,
		line.CostPrice, line.SalePrice, line.UnitPrice, line.TaxAmount, line.OtherAmount,
		line.DiscountPct, line.DiscountAmount, line.BatchNo, line.ExpiryDate, line.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document line: %w", err)
	}
	return nil
}

// Update sobreescribe una línea existente (incluida su renumeración).
func (r *LineRepo) Update(ctx context.Context, line *entity.DocumentLine) error {
	query := `
		UPDATE document_lines
		SET line_no         = $2,
		    item_id         = $3,
		    quantity        = $4,
		    cost_price      = $5,
		    sale_price      = $6,
		    unit_price      = $7,
		    tax_amount      = $8,
		    other_amount    = $9,
		    discount_pct    = $10,
		    discount_amount = $11,
		    batch_no        = $12,
		    expiry_date     = $13
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		line.ID, line.LineNo, line.ItemID, line.Quantity,
		line.CostPrice, line.SalePrice, line.UnitPrice, line.TaxAmount, line.OtherAmount,
		line.DiscountPct, line.DiscountAmount, line.BatchNo, line.ExpiryDate,
	)
	if err != nil {
		return fmt.Errorf("update document line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra físicamente una línea.
func (r *LineRepo) Delete(ctx context.Context, lineID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM document_lines WHERE id = $1`, lineID); err != nil {
		return fmt.Errorf("delete document line: %w", err)
	}
	return nil
}

// DeleteByDocument borra físicamente todas las líneas del documento.
func (r *LineRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM document_lines WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete document lines: %w", err)
	}
	return nil
}

// ListByDocument devuelve las líneas ordenadas por line_no.
func (r *LineRepo) ListByDocument(ctx context.Context, documentID string) ([]*entity.DocumentLine, error) {
	query := `
		SELECT id, document_id, line_no, item_id, quantity,
		       cost_price, sale_price, unit_price, tax_amount, other_amount,
		       discount_pct, discount_amount, batch_no, expiry_date, created_at
		FROM document_lines
		WHERE document_id = $1
		ORDER BY line_no`
	rows, err := r.q.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document lines: %w", err)
	}
	defer rows.Close()

	var out []*entity.DocumentLine
	for rows.Next() {
		var l entity.DocumentLine
		var expiry *time.Time
		if err := rows.Scan(
			&l.ID, &l.DocumentID, &l.LineNo, &l.ItemID, &l.Quantity,
			&l.CostPrice, &l.SalePrice, &l.UnitPrice, &l.TaxAmount, &l.OtherAmount,
			&l.DiscountPct, &l.DiscountAmount, &l.BatchNo, &expiry, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document line: %w", err)
		}
		l.ExpiryDate = expiry
		out = append(out, &l)
	}
	return out, rows.Err()
}
