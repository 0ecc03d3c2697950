package repository

import (
	"context"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
)

// DocumentRepository define el puerto de persistencia para cabeceras de documento (DIP).
// La implementación vive en infrastructure.
type DocumentRepository interface {
	Insert(ctx context.Context, doc *entity.Document) error
	UpdateHeader(ctx context.Context, doc *entity.Document) error
	// MarkInactive borra lógicamente la cabecera (Status=I, is_active=false).
	MarkInactive(ctx context.Context, id string) error
	// GetByNumber resuelve por (empresa, tipo, número) sin filtrar por estado;
	// el caso de uso decide qué hacer con documentos inactivos.
	GetByNumber(ctx context.Context, companyID, docType string, number int) (*entity.Document, error)
	// GetByNumberForUpdate igual que GetByNumber pero bloquea la fila
	// (SELECT FOR UPDATE) para serializar update/delete concurrentes.
	GetByNumberForUpdate(ctx context.Context, companyID, docType string, number int) (*entity.Document, error)
}
