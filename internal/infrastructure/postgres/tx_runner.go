package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Documentos-api/internal/application/posting"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
)

var _ posting.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. El rollback diferido cubre cualquier salida con error.
func (r *TxRunner) Run(ctx context.Context, fn func(
	docRepo repository.DocumentRepository,
	lineRepo repository.LineRepository,
	ledgerRepo repository.LedgerRepository,
	batchRepo repository.BatchRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	docRepo := NewDocumentRepository(tx)
	lineRepo := NewLineRepository(tx)
	ledgerRepo := NewLedgerRepository(tx)
	batchRepo := NewBatchRepository(tx)
	seqRepo := NewSequenceRepository(tx)

	if err := fn(docRepo, lineRepo, ledgerRepo, batchRepo, seqRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
