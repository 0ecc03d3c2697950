package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Documentos-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo asigna consecutivos de documento sobre la tabla
// document_counters, una fila por (empresa, tipo). El incremento atómico
// bloquea la fila contadora el resto de la transacción, serializando las
// creaciones concurrentes de la misma partición.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el asignador. Usar siempre dentro de la
// transacción que consume el número.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// NextNumber devuelve el siguiente consecutivo para (empresa, tipo): 1 si la
// partición no existe todavía. La fila queda bloqueada hasta el commit, así
// que dos creaciones concurrentes nunca observan el mismo máximo.
func (r *SequenceRepo) NextNumber(ctx context.Context, companyID, docType string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		INSERT INTO document_counters (company_id, doc_type, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (company_id, doc_type)
		DO UPDATE SET last_number = document_counters.last_number + 1
		RETURNING last_number`,
		companyID, docType,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next document number: %w", err)
	}
	return n, nil
}
