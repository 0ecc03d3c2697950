package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo lectura del maestro de artículos (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de artículos. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// GetByID devuelve el artículo, o nil si no existe.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	var it entity.Item
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, code, name, COALESCE(unit, ''), cost_price, sale_price, created_at, updated_at
		FROM items WHERE id = $1`,
		id,
	).Scan(&it.ID, &it.CompanyID, &it.Code, &it.Name, &it.Unit, &it.CostPrice, &it.SalePrice, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &it, nil
}
