package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// BatchRepository define el puerto para existencias por lote.
// La clave de match es (ítem, lote normalizado a '', vencimiento normalizado
// al centinela 1900-01-01). Usado dentro de transacciones de documento.
type BatchRepository interface {
	// Upsert suma qtyDelta a la fila que coincida y pisa los precios con los
	// últimos valores; si no existe y qtyDelta > 0, inserta una fila nueva.
	// La lectura previa bloquea la fila (SELECT FOR UPDATE).
	Upsert(ctx context.Context, itemID, batchNo string, expiry *time.Time, qtyDelta, costPrice, salePrice decimal.Decimal) error
	// Reverse resta qty de la fila que coincida con la clave de lote de la
	// línea original. Si no hay fila, retorna domain.ErrBatchNotFound y la
	// transacción del borrado debe abortar.
	Reverse(ctx context.Context, itemID, batchNo string, expiry *time.Time, qty decimal.Decimal) error
	Get(ctx context.Context, itemID, batchNo string, expiry *time.Time) (*entity.ItemBatch, error)
}
