package posting

import (
	"context"

	"github.com/jhoicas/Documentos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de
// documentos: cualquier error de fn revierte todas las escrituras,
// incluida la asignación de número.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		docRepo repository.DocumentRepository,
		lineRepo repository.LineRepository,
		ledgerRepo repository.LedgerRepository,
		batchRepo repository.BatchRepository,
		seqRepo repository.SequenceRepository,
	) error) error
}
