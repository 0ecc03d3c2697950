package repository

import (
	"context"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
)

// ItemRepository define el puerto de lectura del maestro de artículos.
// El motor de documentos solo necesita resolver precios por ID.
type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Item, error)
}
