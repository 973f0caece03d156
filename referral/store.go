package referral

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samu777684/financial360/database"
)

// Store agrupa lo que necesitan el resolutor y el asignador.
type Store interface {
	ChainStore
	CommissionStore
}

// PGStore implementa Store sobre el pool global.
type PGStore struct{}

func NewPGStore() *PGStore { return &PGStore{} }

func (s *PGStore) ReferrerOf(ctx context.Context, userID int64) (*int64, error) {
	var ref *int64
	err := database.Pool.QueryRow(ctx,
		`SELECT referido_por FROM usuarios WHERE id = $1`, userID).Scan(&ref)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Usuario inexistente: eslabón ausente, no error.
			return nil, nil
		}
		return nil, err
	}
	return ref, nil
}

func (s *PGStore) InsertCommission(ctx context.Context, entry Entry) (bool, error) {
	tx, err := database.Pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	// El índice único (payment_id, nivel) hace la deduplicación; el
	// ON CONFLICT convierte el duplicado en cero filas afectadas.
	tag, err := tx.Exec(ctx, `
        INSERT INTO referidos_historial
            (id_referidor, id_referido, payment_id, nivel, monto_centavos, moneda, estado, descripcion)
        VALUES ($1, $2, $3, $4, $5, $6, 'pendiente', $7)
        ON CONFLICT (payment_id, nivel) DO NOTHING
    `, entry.ReferrerID, entry.ReferredID, entry.PaymentID, entry.Nivel,
		entry.MontoCentavos, entry.Moneda, entry.Descripcion)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	// referidos_activos cuenta referidos directos nuevos; los niveles 2 y
	// 3 solo suman comisión.
	activos := 0
	if entry.Nivel == 1 {
		activos = 1
	}
	_, err = tx.Exec(ctx, `
        INSERT INTO referidos_totales (id_usuario, total_comisiones_centavos, referidos_activos, ultima_actualizacion)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (id_usuario) DO UPDATE SET
            total_comisiones_centavos = referidos_totales.total_comisiones_centavos + EXCLUDED.total_comisiones_centavos,
            referidos_activos = referidos_totales.referidos_activos + EXCLUDED.referidos_activos,
            ultima_actualizacion = NOW()
    `, entry.ReferrerID, entry.MontoCentavos, activos)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
