package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Documentos-api/internal/application/dto"
	appposting "github.com/jhoicas/Documentos-api/internal/application/posting"
	"github.com/jhoicas/Documentos-api/internal/domain"
)

// DocumentHandler expone el motor de posteo de documentos por HTTP.
type DocumentHandler struct {
	uc    *appposting.DocumentUseCase
	pdfUC *appposting.PDFUseCase
}

// NewDocumentHandler construye el handler de documentos.
func NewDocumentHandler(uc *appposting.DocumentUseCase, pdfUC *appposting.PDFUseCase) *DocumentHandler {
	return &DocumentHandler{uc: uc, pdfUC: pdfUC}
}

// Get godoc
// @Summary      Obtener un documento por tipo y número
// @Tags         documents
// @Produce      json
// @Param        type    path  string  true  "GRN | PURRTN | SLSRTN"
// @Param        number  path  int     true  "número del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/documents/{type}/{number} [get]
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	companyID, docType, number, ok := h.params(c)
	if !ok {
		return nil
	}
	out, err := h.uc.Get(c.Context(), companyID, docType, number)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear y postear un documento
// @Description  Valida, asigna número consecutivo y postea cabecera, líneas, lotes y asiento en una transacción.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        type  path  string                     true  "GRN | PURRTN | SLSRTN"
// @Param        body  body  dto.CreateDocumentRequest  true  "cabecera y líneas"
// @Success      201  {object}  dto.CreateDocumentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/documents/{type} [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token sin empresa o usuario"})
	}
	docType := strings.ToUpper(c.Params("type"))

	var in dto.CreateDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.Context(), companyID, userID, docType, in)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar un documento posteado
// @Description  Reconcilia el set de líneas etiquetado contra lo almacenado, ajusta lotes y re-postea el asiento.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        type    path  string                     true  "GRN | PURRTN | SLSRTN"
// @Param        number  path  int                        true  "número del documento"
// @Param        body    body  dto.UpdateDocumentRequest  true  "cabecera y líneas etiquetadas"
// @Success      200  {object}  dto.StatusResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/documents/{type}/{number} [put]
func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	companyID, docType, number, ok := h.params(c)
	if !ok {
		return nil
	}
	var in dto.UpdateDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.Context(), companyID, docType, number, in)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Anular un documento
// @Description  Revierte el inventario, borra líneas y asiento y marca la cabecera inactiva. Idempotente sobre documentos ya anulados.
// @Tags         documents
// @Produce      json
// @Param        type    path  string  true  "GRN | PURRTN | SLSRTN"
// @Param        number  path  int     true  "número del documento"
// @Success      200  {object}  dto.StatusResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/documents/{type}/{number} [delete]
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	companyID, docType, number, ok := h.params(c)
	if !ok {
		return nil
	}
	out, err := h.uc.Delete(c.Context(), companyID, docType, number)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(out)
}

// DownloadPDF godoc
// @Summary      Descargar la representación impresa de un documento
// @Tags         documents
// @Produce      application/pdf
// @Param        type    path  string  true  "GRN | PURRTN | SLSRTN"
// @Param        number  path  int     true  "número del documento"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/documents/{type}/{number}/pdf [get]
func (h *DocumentHandler) DownloadPDF(c *fiber.Ctx) error {
	companyID, docType, number, ok := h.params(c)
	if !ok {
		return nil
	}
	pdfBytes, filename, err := h.pdfUC.DownloadDocumentPDF(c.Context(), companyID, docType, number)
	if err != nil {
		return h.mapError(c, err)
	}
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(pdfBytes)
}

// params extrae empresa del token y tipo + número de la ruta. Si algo falta,
// escribe la respuesta de error y retorna ok=false.
func (h *DocumentHandler) params(c *fiber.Ctx) (companyID, docType string, number int, ok bool) {
	companyID = GetCompanyID(c)
	if companyID == "" {
		_ = c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token sin empresa"})
		return "", "", 0, false
	}
	docType = strings.ToUpper(c.Params("type"))
	number, err := c.ParamsInt("number")
	if err != nil || number <= 0 {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "número de documento inválido"})
		return "", "", 0, false
	}
	return companyID, docType, number, true
}

// mapError traduce errores de dominio a códigos HTTP.
func (h *DocumentHandler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrDateOutOfRange):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "DATE_OUT_OF_RANGE", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrBatchNotFound):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "BATCH_NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrUnbalancedPosting):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "UNBALANCED", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
