package repository

import (
	"context"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
)

// LedgerRepository define el puerto de persistencia para el asiento contable
// de un documento. Las filas se localizan por (document_id, line_no).
type LedgerRepository interface {
	// Upsert sobreescribe la línea si existe, o la inserta.
	Upsert(ctx context.Context, entry *entity.LedgerEntry) error
	// DeleteAbove elimina las líneas con line_no mayor al indicado
	// (recorte al re-postear un asiento con menos líneas).
	DeleteAbove(ctx context.Context, documentID string, maxLineNo int) error
	DeleteByDocument(ctx context.Context, documentID string) error
	ListByDocument(ctx context.Context, documentID string) ([]*entity.LedgerEntry, error)
}
