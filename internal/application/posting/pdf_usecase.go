package posting

import (
	"context"
	"fmt"

	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/posting"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
)

// DocumentLineForPDF línea enriquecida con el nombre del artículo para imprimir.
type DocumentLineForPDF struct {
	entity.DocumentLine
	ItemName string
}

// DocumentPDFGenerator puerto del generador de la representación impresa.
type DocumentPDFGenerator interface {
	GenerateDocumentPDF(ctx context.Context, doc *entity.Document, totals posting.Totals, lines []DocumentLineForPDF) ([]byte, error)
}

// PDFUseCase genera la representación impresa (PDF) de un documento posteado.
type PDFUseCase struct {
	docRepo   repository.DocumentRepository
	lineRepo  repository.LineRepository
	itemRepo  repository.ItemRepository
	generator DocumentPDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando sus dependencias.
func NewPDFUseCase(
	docRepo repository.DocumentRepository,
	lineRepo repository.LineRepository,
	itemRepo repository.ItemRepository,
	generator DocumentPDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{docRepo: docRepo, lineRepo: lineRepo, itemRepo: itemRepo, generator: generator}
}

// DownloadDocumentPDF carga el documento activo con sus líneas, enriquece cada
// línea con el nombre del artículo y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil) si todo sale bien.
//   - domain.ErrNotFound        si el documento no existe o está anulado.
func (uc *PDFUseCase) DownloadDocumentPDF(ctx context.Context, companyID, docType string, number int) (pdfBytes []byte, filename string, err error) {
	if !entity.ValidTypes[docType] {
		return nil, "", fmt.Errorf("tipo de documento %q: %w", docType, domain.ErrInvalidInput)
	}
	doc, err := uc.docRepo.GetByNumber(ctx, companyID, docType, number)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener documento: %w", err)
	}
	if doc == nil || !doc.IsActive {
		return nil, "", domain.ErrNotFound
	}

	lines, err := uc.lineRepo.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener líneas: %w", err)
	}

	enriched := make([]DocumentLineForPDF, 0, len(lines))
	for _, l := range lines {
		name := "Artículo " + l.ItemID // fallback
		if item, iErr := uc.itemRepo.GetByID(ctx, l.ItemID); iErr == nil && item != nil {
			name = item.Name
		}
		enriched = append(enriched, DocumentLineForPDF{DocumentLine: *l, ItemName: name})
	}

	totals := posting.ComputeTotals(lines)
	pdfBytes, err = uc.generator.GenerateDocumentPDF(ctx, doc, totals, enriched)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	filename = fmt.Sprintf("%s_%d.pdf", doc.Type, doc.Number)
	return pdfBytes, filename, nil
}
