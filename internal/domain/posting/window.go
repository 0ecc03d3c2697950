package posting

import (
	"fmt"
	"time"

	"github.com/jhoicas/Documentos-api/internal/domain"
)

// DateWindowDays días hacia atrás en que se acepta la fecha de un documento.
const DateWindowDays = 60

// ValidateDate acepta fechas dentro de la ventana [hoy−60 días, hoy],
// comparando por día calendario. Se valida al crear y al actualizar.
func ValidateDate(date, now time.Time) error {
	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	d, today := day(date), day(now)
	if d.After(today) {
		return fmt.Errorf("la fecha %s es futura: %w", d.Format("2006-01-02"), domain.ErrDateOutOfRange)
	}
	if d.Before(today.AddDate(0, 0, -DateWindowDays)) {
		return fmt.Errorf("la fecha %s excede los %d días permitidos: %w", d.Format("2006-01-02"), DateWindowDays, domain.ErrDateOutOfRange)
	}
	return nil
}
