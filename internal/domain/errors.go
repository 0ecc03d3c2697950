package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrDateOutOfRange    = errors.New("fecha fuera del período permitido")
	ErrBatchNotFound     = errors.New("lote no encontrado para reversar")
	ErrUnbalancedPosting = errors.New("asiento contable desbalanceado")
)
