package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación de BatchRepository sobre PostgreSQL (usable con pool o tx).
// Las filas se identifican por (item_id, batch_no normalizado a '', expiry_date
// normalizado al centinela 1900-01-01); ese triple tiene constraint único.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// Upsert bloquea la fila del lote (SELECT FOR UPDATE), suma qtyDelta y pisa
// los precios con los últimos valores; inserta si no existe y qtyDelta > 0.
// El precio de venta cae al costo cuando no es positivo.
func (r *BatchRepo) Upsert(ctx context.Context, itemID, batchNo string, expiry *time.Time, qtyDelta, costPrice, salePrice decimal.Decimal) error {
	if !salePrice.IsPositive() {
		salePrice = costPrice
	}
	normExpiry := entity.NormalizeExpiry(expiry)

	var id string
	var current decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT id, quantity FROM item_batches
		WHERE item_id = $1 AND batch_no = $2 AND expiry_date = $3
		FOR UPDATE`,
		itemID, batchNo, normExpiry,
	).Scan(&id, &current)
	switch {
	case err == nil:
		_, err = r.q.Exec(ctx, `
			UPDATE item_batches
			SET quantity = quantity + $2, cost_price = $3, sale_price = $4, updated_at = now()
			WHERE id = $1`,
			id, qtyDelta, costPrice, salePrice,
		)
		if err != nil {
			return fmt.Errorf("update item batch: %w", err)
		}
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		if !qtyDelta.IsPositive() {
			return fmt.Errorf("lote %s/%q: %w", itemID, batchNo, domain.ErrBatchNotFound)
		}
		_, err = r.q.Exec(ctx, `
			INSERT INTO item_batches (id, item_id, batch_no, expiry_date, quantity, cost_price, sale_price, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
			uuid.NewString(), itemID, batchNo, normExpiry, qtyDelta, costPrice, salePrice,
		)
		if err != nil {
			return fmt.Errorf("insert item batch: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("get item batch for update: %w", err)
	}
}

// Reverse resta qty de la fila que coincida con la clave de lote de la línea
// anulada. Si no existe, retorna ErrBatchNotFound y el borrado del documento
// debe abortar.
func (r *BatchRepo) Reverse(ctx context.Context, itemID, batchNo string, expiry *time.Time, qty decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE item_batches
		SET quantity = quantity - $4, updated_at = now()
		WHERE item_id = $1 AND batch_no = $2 AND expiry_date = $3`,
		itemID, batchNo, entity.NormalizeExpiry(expiry), qty,
	)
	if err != nil {
		return fmt.Errorf("reverse item batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lote %s/%q: %w", itemID, batchNo, domain.ErrBatchNotFound)
	}
	return nil
}

// Get devuelve la fila del lote, o nil si no existe.
func (r *BatchRepo) Get(ctx context.Context, itemID, batchNo string, expiry *time.Time) (*entity.ItemBatch, error) {
	var b entity.ItemBatch
	err := r.q.QueryRow(ctx, `
		SELECT id, item_id, batch_no, expiry_date, quantity, cost_price, sale_price, updated_at
		FROM item_batches
		WHERE item_id = $1 AND batch_no = $2 AND expiry_date = $3`,
		itemID, batchNo, entity.NormalizeExpiry(expiry),
	).Scan(&b.ID, &b.ItemID, &b.BatchNo, &b.ExpiryDate, &b.Quantity, &b.CostPrice, &b.SalePrice, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item batch: %w", err)
	}
	return &b, nil
}
