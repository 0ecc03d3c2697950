package repository

import (
	"context"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
)

// LineRepository define el puerto de persistencia para líneas de documento.
// Las líneas solo se tocan dentro de la transacción del documento dueño.
type LineRepository interface {
	Insert(ctx context.Context, line *entity.DocumentLine) error
	Update(ctx context.Context, line *entity.DocumentLine) error
	Delete(ctx context.Context, lineID string) error
	DeleteByDocument(ctx context.Context, documentID string) error
	// ListByDocument devuelve las líneas ordenadas por line_no.
	ListByDocument(ctx context.Context, documentID string) ([]*entity.DocumentLine, error)
}
