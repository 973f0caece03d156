package referral

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/samu777684/financial360/logging"
	"github.com/samu777684/financial360/monitoring"
)

// Porcentajes de comisión por nivel (nivel 1 = referidor directo).
var levelPercent = map[int]int64{
	1: 20,
	2: 10,
	3: 5,
}

// Entry es la fila contable que escribe el asignador por cada nivel.
type Entry struct {
	ReferrerID    int64
	ReferredID    *int64
	PaymentID     int64
	Nivel         int
	MontoCentavos int64
	Moneda        string
	Descripcion   string
}

// CommissionStore persiste una comisión: inserta la fila del historial y
// mueve el agregado del referidor en una misma transacción. Devuelve
// false (sin error) cuando ya existía una fila para (payment, nivel).
type CommissionStore interface {
	InsertCommission(ctx context.Context, entry Entry) (bool, error)
}

// CommissionAmount calcula la comisión de un nivel en centavos, con
// redondeo a la unidad (mitad hacia arriba). Nunca se opera con
// flotantes sobre dinero.
func CommissionAmount(baseCentavos int64, pct int64) int64 {
	return (baseCentavos*pct + 50) / 100
}

// Allocate escribe una comisión por cada nivel poblado de la cadena.
// Cada nivel es independiente: una falla se registra y se sigue con el
// siguiente. Devuelve cuántas filas nuevas se escribieron y el conjunto
// de errores de los niveles fallidos.
func Allocate(ctx context.Context, store CommissionStore, chain []Level, paymentID int64, baseCentavos int64, moneda, planNombre string, referredID *int64) (int, error) {
	log := logging.Sugar()
	inserted := 0
	var errs []error

	for _, lvl := range chain {
		pct, ok := levelPercent[lvl.Nivel]
		if !ok {
			continue
		}
		entry := Entry{
			ReferrerID:    lvl.UserID,
			ReferredID:    referredID,
			PaymentID:     paymentID,
			Nivel:         lvl.Nivel,
			MontoCentavos: CommissionAmount(baseCentavos, pct),
			Moneda:        moneda,
			Descripcion:   fmt.Sprintf("Comisión Nivel %d - %s", lvl.Nivel, planNombre),
		}

		ok, err := store.InsertCommission(ctx, entry)
		if err != nil {
			log.Errorw("comisión no registrada",
				"payment_id", paymentID, "nivel", lvl.Nivel, "referidor", lvl.UserID, "error", err)
			errs = append(errs, fmt.Errorf("nivel %d: %w", lvl.Nivel, err))
			continue
		}
		if !ok {
			// Ya existía (webhook repetido): no-op.
			continue
		}
		inserted++
		monitoring.CommissionsAllocated.WithLabelValues(strconv.Itoa(lvl.Nivel)).Inc()
		log.Infow("comisión registrada",
			"payment_id", paymentID, "nivel", lvl.Nivel,
			"referidor", lvl.UserID, "monto_centavos", entry.MontoCentavos)
	}

	return inserted, errors.Join(errs...)
}
