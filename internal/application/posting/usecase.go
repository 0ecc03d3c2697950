package posting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Documentos-api/internal/application/dto"
	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/posting"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
)

// createMaxAttempts reintentos de la transacción completa de creación cuando
// el número asignado colisiona con una creación concurrente.
const createMaxAttempts = 3

// DocumentUseCase motor de posteo de documentos: Create/Update/Delete/Get para
// GRN, PURRTN y SLSRTN. Cada operación de escritura corre en una transacción
// (TxRunner) con bloqueo de fila sobre la cabecera en update/delete.
type DocumentUseCase struct {
	txRunner TxRunner
	docRepo  repository.DocumentRepository // atado al pool, solo lecturas
	lineRepo repository.LineRepository
	itemRepo repository.ItemRepository
	accounts map[string]posting.Accounts // cuentas contra/impuesto por tipo
}

// NewDocumentUseCase construye el caso de uso. accounts mapea cada tipo de
// documento a sus cuentas fijas del asiento (contra e impuesto).
func NewDocumentUseCase(
	txRunner TxRunner,
	docRepo repository.DocumentRepository,
	lineRepo repository.LineRepository,
	itemRepo repository.ItemRepository,
	accounts map[string]posting.Accounts,
) *DocumentUseCase {
	return &DocumentUseCase{
		txRunner: txRunner,
		docRepo:  docRepo,
		lineRepo: lineRepo,
		itemRepo: itemRepo,
		accounts: accounts,
	}
}

// Get devuelve cabecera, líneas ordenadas y totales de un documento activo.
// Retorna ErrNotFound si no existe o está anulado.
func (uc *DocumentUseCase) Get(ctx context.Context, companyID, docType string, number int) (*dto.DocumentResponse, error) {
	if !entity.ValidTypes[docType] {
		return nil, fmt.Errorf("tipo de documento %q: %w", docType, domain.ErrInvalidInput)
	}
	doc, err := uc.docRepo.GetByNumber(ctx, companyID, docType, number)
	if err != nil {
		return nil, err
	}
	if doc == nil || !doc.IsActive {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.lineRepo.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc, lines), nil
}

// Create valida, asigna número y postea el documento completo (cabecera,
// líneas, lotes, asiento) en una transacción. Si el número colisiona con una
// creación concurrente, reintenta la transacción entera hasta 3 veces.
func (uc *DocumentUseCase) Create(ctx context.Context, companyID, userID, docType string, in dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	accounts, date, err := uc.validateHeader(docType, in.Date, in.PartyID, in.AccountID, len(in.Lines))
	if err != nil {
		return nil, err
	}
	inputs, err := toLineInputs(in.Lines)
	if err != nil {
		return nil, err
	}
	resolve := uc.priceResolver(ctx)

	var number int
	for attempt := 1; ; attempt++ {
		number = 0
		err = uc.txRunner.Run(ctx, func(
			docRepo repository.DocumentRepository,
			lineRepo repository.LineRepository,
			ledgerRepo repository.LedgerRepository,
			batchRepo repository.BatchRepository,
			seqRepo repository.SequenceRepository,
		) error {
			n, err := seqRepo.NextNumber(ctx, companyID, docType)
			if err != nil {
				return err
			}
			now := time.Now()
			doc := &entity.Document{
				ID:            uuid.NewString(),
				CompanyID:     companyID,
				Type:          docType,
				Number:        n,
				Date:          date,
				PartyID:       in.PartyID,
				AccountID:     in.AccountID,
				WarehouseID:   in.WarehouseID,
				PaymentTermID: in.PaymentTermID,
				DocNo:         in.DocNo,
				Reference:     in.Reference,
				Description:   in.Description,
				Status:        entity.DocStatusActive,
				IsActive:      true,
				CreatedBy:     userID,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := docRepo.Insert(ctx, doc); err != nil {
				return err
			}
			plan, err := posting.Reconcile(doc, nil, inputs, resolve)
			if err != nil {
				return err
			}
			if len(plan.Inserts) == 0 {
				return fmt.Errorf("documento sin líneas válidas: %w", domain.ErrInvalidInput)
			}
			for _, line := range plan.Inserts {
				line.CreatedAt = now
				if err := lineRepo.Insert(ctx, line); err != nil {
					return err
				}
			}
			if err := applyBatchDeltas(ctx, batchRepo, plan.BatchDeltas); err != nil {
				return err
			}
			totals := posting.ComputeTotals(plan.Inserts)
			entries, err := posting.DeriveLedger(doc, accounts, totals, entity.DocStatusActive)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if err := ledgerRepo.Upsert(ctx, e); err != nil {
					return err
				}
			}
			number = n
			return nil
		})
		// Colisión de número: contención transitoria, se reintenta todo.
		if (errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrDuplicate)) && attempt < createMaxAttempts {
			continue
		}
		break
	}
	if err != nil {
		return nil, err
	}
	return &dto.CreateDocumentResponse{Number: number, Status: entity.DocStatusActive}, nil
}

// Update bloquea la cabecera, reconcilia el set de líneas etiquetado contra lo
// almacenado, ajusta lotes y re-postea el asiento completo. El documento queda
// en estado U. Retorna ErrNotFound si no existe o está anulado.
func (uc *DocumentUseCase) Update(ctx context.Context, companyID, docType string, number int, in dto.UpdateDocumentRequest) (*dto.StatusResponse, error) {
	accounts, date, err := uc.validateHeader(docType, in.Date, in.PartyID, in.AccountID, len(in.Lines))
	if err != nil {
		return nil, err
	}
	inputs, err := toLineInputs(in.Lines)
	if err != nil {
		return nil, err
	}
	resolve := uc.priceResolver(ctx)

	err = uc.txRunner.Run(ctx, func(
		docRepo repository.DocumentRepository,
		lineRepo repository.LineRepository,
		ledgerRepo repository.LedgerRepository,
		batchRepo repository.BatchRepository,
		_ repository.SequenceRepository,
	) error {
		doc, err := docRepo.GetByNumberForUpdate(ctx, companyID, docType, number)
		if err != nil {
			return err
		}
		if doc == nil || !doc.IsActive {
			return domain.ErrNotFound
		}
		now := time.Now()
		doc.Date = date
		doc.PartyID = in.PartyID
		doc.AccountID = in.AccountID
		doc.WarehouseID = in.WarehouseID
		doc.PaymentTermID = in.PaymentTermID
		doc.DocNo = in.DocNo
		doc.Reference = in.Reference
		doc.Description = in.Description
		doc.Status = entity.DocStatusUpdated
		doc.UpdatedAt = now
		if err := docRepo.UpdateHeader(ctx, doc); err != nil {
			return err
		}

		stored, err := lineRepo.ListByDocument(ctx, doc.ID)
		if err != nil {
			return err
		}
		plan, err := posting.Reconcile(doc, stored, inputs, resolve)
		if err != nil {
			return err
		}
		for _, id := range plan.DeleteIDs {
			if err := lineRepo.Delete(ctx, id); err != nil {
				return err
			}
		}
		for _, line := range plan.Updates {
			if err := lineRepo.Update(ctx, line); err != nil {
				return err
			}
		}
		for _, line := range plan.Inserts {
			line.CreatedAt = now
			if err := lineRepo.Insert(ctx, line); err != nil {
				return err
			}
		}
		if err := applyBatchDeltas(ctx, batchRepo, plan.BatchDeltas); err != nil {
			return err
		}

		// Los totales se recalculan del set sobreviviente ya persistido.
		final, err := lineRepo.ListByDocument(ctx, doc.ID)
		if err != nil {
			return err
		}
		if len(final) == 0 {
			return fmt.Errorf("el documento quedaría sin líneas: %w", domain.ErrInvalidInput)
		}
		totals := posting.ComputeTotals(final)
		entries, err := posting.DeriveLedger(doc, accounts, totals, entity.DocStatusUpdated)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := ledgerRepo.Upsert(ctx, e); err != nil {
				return err
			}
		}
		// Un re-posteo con menos líneas recorta el excedente anterior.
		return ledgerRepo.DeleteAbove(ctx, doc.ID, len(entries))
	})
	if err != nil {
		return nil, err
	}
	return &dto.StatusResponse{Status: entity.DocStatusUpdated}, nil
}

// Delete anula el documento: revierte el efecto de inventario de cada línea,
// borra físicamente líneas y asiento, y marca la cabecera inactiva. Repetir el
// borrado sobre un documento ya anulado es un no-op exitoso.
func (uc *DocumentUseCase) Delete(ctx context.Context, companyID, docType string, number int) (*dto.StatusResponse, error) {
	if !entity.ValidTypes[docType] {
		return nil, fmt.Errorf("tipo de documento %q: %w", docType, domain.ErrInvalidInput)
	}
	err := uc.txRunner.Run(ctx, func(
		docRepo repository.DocumentRepository,
		lineRepo repository.LineRepository,
		ledgerRepo repository.LedgerRepository,
		batchRepo repository.BatchRepository,
		_ repository.SequenceRepository,
	) error {
		doc, err := docRepo.GetByNumberForUpdate(ctx, companyID, docType, number)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrNotFound
		}
		if !doc.IsActive {
			return nil // ya anulado: idempotente
		}
		if entity.TracksBatches(doc.Type) {
			stored, err := lineRepo.ListByDocument(ctx, doc.ID)
			if err != nil {
				return err
			}
			for _, l := range stored {
				if err := batchRepo.Reverse(ctx, l.ItemID, l.BatchNo, l.ExpiryDate, l.Quantity); err != nil {
					return fmt.Errorf("reversando lote de la línea %d: %w", l.LineNo, err)
				}
			}
		}
		if err := lineRepo.DeleteByDocument(ctx, doc.ID); err != nil {
			return err
		}
		if err := ledgerRepo.DeleteByDocument(ctx, doc.ID); err != nil {
			return err
		}
		return docRepo.MarkInactive(ctx, doc.ID)
	})
	if err != nil {
		return nil, err
	}
	return &dto.StatusResponse{Status: entity.DocStatusInactive}, nil
}

// validateHeader valida tipo, cuentas configuradas, campos obligatorios y
// ventana de fechas. Común a Create y Update.
func (uc *DocumentUseCase) validateHeader(docType, dateStr, partyID, accountID string, lineCount int) (posting.Accounts, time.Time, error) {
	var zero posting.Accounts
	if !entity.ValidTypes[docType] {
		return zero, time.Time{}, fmt.Errorf("tipo de documento %q: %w", docType, domain.ErrInvalidInput)
	}
	accounts, ok := uc.accounts[docType]
	if !ok {
		return zero, time.Time{}, fmt.Errorf("tipo %s sin cuentas configuradas: %w", docType, domain.ErrInvalidInput)
	}
	if partyID == "" || accountID == "" {
		return zero, time.Time{}, fmt.Errorf("contraparte y cuenta son obligatorias: %w", domain.ErrInvalidInput)
	}
	if lineCount == 0 {
		return zero, time.Time{}, fmt.Errorf("el documento requiere al menos una línea: %w", domain.ErrInvalidInput)
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return zero, time.Time{}, fmt.Errorf("fecha %q inválida: %w", dateStr, domain.ErrInvalidInput)
	}
	if err := posting.ValidateDate(date, time.Now()); err != nil {
		return zero, time.Time{}, err
	}
	return accounts, date, nil
}

// priceResolver cierre sobre el maestro de artículos para el reconciliador.
func (uc *DocumentUseCase) priceResolver(ctx context.Context) posting.PriceResolver {
	return func(itemID string) (decimal.Decimal, decimal.Decimal, error) {
		item, err := uc.itemRepo.GetByID(ctx, itemID)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		if item == nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("artículo %s: %w", itemID, domain.ErrNotFound)
		}
		return item.CostPrice, item.SalePrice, nil
	}
}

func applyBatchDeltas(ctx context.Context, batchRepo repository.BatchRepository, deltas []posting.BatchDelta) error {
	for _, d := range deltas {
		if d.QtyDelta.IsZero() {
			continue
		}
		if err := batchRepo.Upsert(ctx, d.ItemID, d.BatchNo, d.ExpiryDate, d.QtyDelta, d.CostPrice, d.SalePrice); err != nil {
			return err
		}
	}
	return nil
}

func toLineInputs(lines []dto.DocumentLineRequest) ([]posting.LineInput, error) {
	inputs := make([]posting.LineInput, 0, len(lines))
	for i, l := range lines {
		var expiry *time.Time
		if l.ExpiryDate != "" {
			t, err := time.Parse("2006-01-02", l.ExpiryDate)
			if err != nil {
				return nil, fmt.Errorf("vencimiento %q en línea %d: %w", l.ExpiryDate, i+1, domain.ErrInvalidInput)
			}
			expiry = &t
		}
		inputs = append(inputs, posting.LineInput{
			LineID:         l.LineID,
			IsDeleted:      l.IsDeleted,
			IsUpdated:      l.IsUpdated,
			ItemID:         l.ItemID,
			Quantity:       l.Quantity,
			CostPrice:      l.CostPrice,
			SalePrice:      l.SalePrice,
			UnitPrice:      l.UnitPrice,
			TaxAmount:      l.TaxAmount,
			OtherAmount:    l.OtherAmount,
			DiscountPct:    l.DiscountPct,
			DiscountAmount: l.DiscountAmount,
			BatchNo:        l.BatchNo,
			ExpiryDate:     expiry,
		})
	}
	return inputs, nil
}

func toDocumentResponse(doc *entity.Document, lines []*entity.DocumentLine) *dto.DocumentResponse {
	totals := posting.ComputeTotals(lines)
	out := &dto.DocumentResponse{
		Type:          doc.Type,
		Number:        doc.Number,
		Date:          doc.Date.Format("2006-01-02"),
		PartyID:       doc.PartyID,
		AccountID:     doc.AccountID,
		WarehouseID:   doc.WarehouseID,
		PaymentTermID: doc.PaymentTermID,
		DocNo:         doc.DocNo,
		Reference:     doc.Reference,
		Description:   doc.Description,
		Status:        doc.Status,
		NetTotal:      totals.Net,
		TaxTotal:      totals.Tax,
		GrossTotal:    totals.Gross,
		Lines:         make([]dto.DocumentLineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		lr := dto.DocumentLineResponse{
			LineID:         l.ID,
			LineNo:         l.LineNo,
			ItemID:         l.ItemID,
			Quantity:       l.Quantity,
			CostPrice:      l.CostPrice,
			SalePrice:      l.SalePrice,
			UnitPrice:      l.UnitPrice,
			Amount:         l.Amount(),
			TaxAmount:      l.TaxAmount,
			OtherAmount:    l.OtherAmount,
			DiscountPct:    l.DiscountPct,
			DiscountAmount: l.DiscountAmount,
			BatchNo:        l.BatchNo,
		}
		if l.ExpiryDate != nil {
			lr.ExpiryDate = l.ExpiryDate.Format("2006-01-02")
		}
		out.Lines = append(out.Lines, lr)
	}
	return out
}
