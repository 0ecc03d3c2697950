package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo implementación de LedgerRepository sobre PostgreSQL (usable con pool o tx).
// Las filas del asiento se localizan por (document_id, line_no).
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador del asiento. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Upsert sobreescribe la línea del asiento si existe, o la inserta.
func (r *LedgerRepo) Upsert(ctx context.Context, e *entity.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (document_id, line_no, account_id, amount, payment_mode_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (document_id, line_no)
		DO UPDATE SET account_id      = EXCLUDED.account_id,
		              amount          = EXCLUDED.amount,
		              payment_mode_id = EXCLUDED.payment_mode_id,
		              status          = EXCLUDED.status`
	_, err := r.q.Exec(ctx, query,
		e.DocumentID, e.LineNo, e.AccountID, e.Amount, nullIfEmpty(e.PaymentModeID), e.Status,
	)
	if err != nil {
		return fmt.Errorf("upsert ledger entry: %w", err)
	}
	return nil
}

// DeleteAbove recorta las líneas sobrantes tras re-postear con menos líneas.
func (r *LedgerRepo) DeleteAbove(ctx context.Context, documentID string, maxLineNo int) error {
	query := `DELETE FROM ledger_entries WHERE document_id = $1 AND line_no > $2`
	if _, err := r.q.Exec(ctx, query, documentID, maxLineNo); err != nil {
		return fmt.Errorf("delete ledger entries above %d: %w", maxLineNo, err)
	}
	return nil
}

// DeleteByDocument borra físicamente el asiento completo del documento.
func (r *LedgerRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM ledger_entries WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete ledger entries: %w", err)
	}
	return nil
}

// ListByDocument devuelve el asiento ordenado por línea.
func (r *LedgerRepo) ListByDocument(ctx context.Context, documentID string) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT document_id, line_no, account_id, amount, COALESCE(payment_mode_id, ''), status
		FROM ledger_entries
		WHERE document_id = $1
		ORDER BY line_no`
	rows, err := r.q.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var out []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		if err := rows.Scan(&e.DocumentID, &e.LineNo, &e.AccountID, &e.Amount, &e.PaymentModeID, &e.Status); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
