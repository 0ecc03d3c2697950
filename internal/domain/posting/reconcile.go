package posting

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
)

// LineInput es una línea entrante etiquetada por el llamador.
// LineID vacío significa línea nueva; IsDeleted/IsUpdated marcan líneas
// existentes. Las cantidades e importes llegan en magnitud positiva y el
// reconciliador les aplica el signo del tipo de documento.
type LineInput struct {
	LineID         string
	IsDeleted      bool
	IsUpdated      bool
	ItemID         string
	Quantity       decimal.Decimal
	CostPrice      decimal.Decimal
	SalePrice      decimal.Decimal
	UnitPrice      decimal.Decimal
	TaxAmount      decimal.Decimal
	OtherAmount    decimal.Decimal
	DiscountPct    decimal.Decimal
	DiscountAmount decimal.Decimal
	BatchNo        string
	ExpiryDate     *time.Time
}

// BatchDelta es el ajuste de existencia por lote que produce una operación
// de línea. QtyDelta positivo suma al lote, negativo resta.
type BatchDelta struct {
	ItemID     string
	BatchNo    string
	ExpiryDate *time.Time
	QtyDelta   decimal.Decimal
	CostPrice  decimal.Decimal
	SalePrice  decimal.Decimal
}

// Plan es el resultado de reconciliar el set entrante contra el almacenado:
// operaciones a ejecutar y ajustes de lote, en ese orden. Los números de
// línea de los sobrevivientes quedan contiguos 1..k.
type Plan struct {
	Inserts     []*entity.DocumentLine
	Updates     []*entity.DocumentLine
	DeleteIDs   []string
	BatchDeltas []BatchDelta
}

// PriceResolver resuelve los precios vigentes del maestro de artículos.
// El caso de uso lo implementa como cierre sobre ItemRepository.
type PriceResolver func(itemID string) (cost, sale decimal.Decimal, err error)

// Reconcile diferencia el set de líneas entrante contra las líneas almacenadas
// y emite el plan de insert/update/delete con renumeración contigua.
//
// Reglas:
//   - etiquetada borrada sin clave: se ignora;
//   - etiquetada actualizada con clave vacía: se trata como inserción;
//   - clave que no existe en lo almacenado: entrada inválida (referencia vieja);
//   - inserción en recepción con cantidad no positiva: se omite;
//   - precios en cero de una inserción de recepción: se resuelven del maestro.
//
// La numeración sigue el orden del set entrante (sobrevivientes primero) y
// después las líneas almacenadas que el llamador no mencionó.
func Reconcile(doc *entity.Document, stored []*entity.DocumentLine, incoming []LineInput, resolve PriceResolver) (*Plan, error) {
	sign := decimal.NewFromInt(int64(entity.TypeSign(doc.Type)))
	trackBatches := entity.TracksBatches(doc.Type)

	byID := make(map[string]*entity.DocumentLine, len(stored))
	for _, l := range stored {
		byID[l.ID] = l
	}

	plan := &Plan{}
	mentioned := make(map[string]bool, len(incoming))
	nextNo := 0

	for _, in := range incoming {
		if in.LineID == "" {
			if in.IsDeleted {
				continue
			}
			if trackBatches && !in.Quantity.IsPositive() {
				continue
			}
			line, err := buildInsert(doc, in, sign, nextNo+1, trackBatches, resolve)
			if err != nil {
				return nil, err
			}
			nextNo++
			plan.Inserts = append(plan.Inserts, line)
			if trackBatches {
				plan.BatchDeltas = append(plan.BatchDeltas, BatchDelta{
					ItemID:     line.ItemID,
					BatchNo:    line.BatchNo,
					ExpiryDate: line.ExpiryDate,
					QtyDelta:   line.Quantity,
					CostPrice:  line.CostPrice,
					SalePrice:  line.SalePrice,
				})
			}
			continue
		}

		old, ok := byID[in.LineID]
		if !ok || old.DocumentID != doc.ID {
			return nil, fmt.Errorf("línea %s no pertenece al documento: %w", in.LineID, domain.ErrInvalidInput)
		}
		if mentioned[in.LineID] {
			return nil, fmt.Errorf("línea %s repetida en la petición: %w", in.LineID, domain.ErrInvalidInput)
		}
		mentioned[in.LineID] = true

		if in.IsDeleted {
			plan.DeleteIDs = append(plan.DeleteIDs, old.ID)
			if trackBatches {
				plan.BatchDeltas = append(plan.BatchDeltas, BatchDelta{
					ItemID:     old.ItemID,
					BatchNo:    old.BatchNo,
					ExpiryDate: old.ExpiryDate,
					QtyDelta:   old.Quantity.Neg(),
					CostPrice:  old.CostPrice,
					SalePrice:  old.SalePrice,
				})
			}
			continue
		}

		nextNo++
		if !in.IsUpdated {
			// Sin cambios declarados: solo renumerar si hace falta.
			if old.LineNo != nextNo {
				renum := *old
				renum.LineNo = nextNo
				plan.Updates = append(plan.Updates, &renum)
			}
			continue
		}

		upd := applyUpdate(old, in, sign, nextNo)
		plan.Updates = append(plan.Updates, upd)
		if trackBatches {
			plan.BatchDeltas = append(plan.BatchDeltas, batchDeltasForUpdate(old, upd)...)
		}
	}

	// Líneas almacenadas que el llamador no mencionó sobreviven al final.
	for _, old := range stored {
		if mentioned[old.ID] {
			continue
		}
		nextNo++
		if old.LineNo != nextNo {
			renum := *old
			renum.LineNo = nextNo
			plan.Updates = append(plan.Updates, &renum)
		}
	}

	return plan, nil
}

func buildInsert(doc *entity.Document, in LineInput, sign decimal.Decimal, lineNo int, trackBatches bool, resolve PriceResolver) (*entity.DocumentLine, error) {
	if in.ItemID == "" {
		return nil, fmt.Errorf("línea %d sin artículo: %w", lineNo, domain.ErrInvalidInput)
	}
	cost, sale := in.CostPrice, in.SalePrice
	if trackBatches && (cost.IsZero() || sale.IsZero()) && resolve != nil {
		mCost, mSale, err := resolve(in.ItemID)
		if err != nil {
			return nil, fmt.Errorf("resolviendo precios del artículo %s: %w", in.ItemID, err)
		}
		if cost.IsZero() {
			cost = mCost
		}
		if sale.IsZero() {
			sale = mSale
		}
	}
	unit := in.UnitPrice
	if unit.IsZero() {
		unit = cost
	}
	return &entity.DocumentLine{
		ID:             uuid.NewString(),
		DocumentID:     doc.ID,
		LineNo:         lineNo,
		ItemID:         in.ItemID,
		Quantity:       in.Quantity.Mul(sign),
		CostPrice:      cost,
		SalePrice:      sale,
		UnitPrice:      unit,
		TaxAmount:      in.TaxAmount.Mul(sign),
		OtherAmount:    in.OtherAmount.Mul(sign),
		DiscountPct:    in.DiscountPct,
		DiscountAmount: in.DiscountAmount.Mul(sign),
		BatchNo:        in.BatchNo,
		ExpiryDate:     in.ExpiryDate,
	}, nil
}

func applyUpdate(old *entity.DocumentLine, in LineInput, sign decimal.Decimal, lineNo int) *entity.DocumentLine {
	upd := *old
	upd.LineNo = lineNo
	upd.ItemID = in.ItemID
	upd.Quantity = in.Quantity.Mul(sign)
	if !in.CostPrice.IsZero() {
		upd.CostPrice = in.CostPrice
	}
	if !in.SalePrice.IsZero() {
		upd.SalePrice = in.SalePrice
	}
	if !in.UnitPrice.IsZero() {
		upd.UnitPrice = in.UnitPrice
	}
	upd.TaxAmount = in.TaxAmount.Mul(sign)
	upd.OtherAmount = in.OtherAmount.Mul(sign)
	upd.DiscountPct = in.DiscountPct
	upd.DiscountAmount = in.DiscountAmount.Mul(sign)
	upd.BatchNo = in.BatchNo
	upd.ExpiryDate = in.ExpiryDate
	return &upd
}

// batchDeltasForUpdate conserva la cantidad por lote cuando cambia una línea.
// Si la clave de lote no cambió, un solo delta (nueva − vieja); si cambió,
// se resta todo del lote viejo y se suma todo al nuevo.
func batchDeltasForUpdate(old, upd *entity.DocumentLine) []BatchDelta {
	sameKey := old.ItemID == upd.ItemID &&
		old.BatchNo == upd.BatchNo &&
		entity.NormalizeExpiry(old.ExpiryDate).Equal(entity.NormalizeExpiry(upd.ExpiryDate))

	if sameKey {
		delta := upd.Quantity.Sub(old.Quantity)
		if delta.IsZero() {
			return nil
		}
		return []BatchDelta{{
			ItemID:     upd.ItemID,
			BatchNo:    upd.BatchNo,
			ExpiryDate: upd.ExpiryDate,
			QtyDelta:   delta,
			CostPrice:  upd.CostPrice,
			SalePrice:  upd.SalePrice,
		}}
	}
	return []BatchDelta{
		{
			ItemID:     old.ItemID,
			BatchNo:    old.BatchNo,
			ExpiryDate: old.ExpiryDate,
			QtyDelta:   old.Quantity.Neg(),
			CostPrice:  old.CostPrice,
			SalePrice:  old.SalePrice,
		},
		{
			ItemID:     upd.ItemID,
			BatchNo:    upd.BatchNo,
			ExpiryDate: upd.ExpiryDate,
			QtyDelta:   upd.Quantity,
			CostPrice:  upd.CostPrice,
			SalePrice:  upd.SalePrice,
		},
	}
}
