package repository

import "context"

// SequenceRepository asigna el consecutivo visible de documento por
// (empresa, tipo). NextNumber debe llamarse dentro de la misma transacción
// que inserta la cabecera: el incremento atómico sobre la fila contadora
// serializa creaciones concurrentes de la misma partición.
type SequenceRepository interface {
	NextNumber(ctx context.Context, companyID, docType string) (int, error)
}
