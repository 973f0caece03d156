package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samu777684/financial360/database"
)

// PGStore implementa Store sobre el pool global.
type PGStore struct{}

func NewPGStore() *PGStore { return &PGStore{} }

func (s *PGStore) ClaimApproved(ctx context.Context, externalReference string, paymentID int64, metodoPago string) (*ClaimedTransaction, error) {
	var c ClaimedTransaction
	// El guard estado='pending' más el índice único de payment_id cierran
	// la carrera entre entregas concurrentes del mismo webhook.
	err := database.Pool.QueryRow(ctx, `
        UPDATE transacciones
        SET estado = 'approved', payment_id = $2, metodo_pago = $3, fecha_actualizacion = NOW()
        WHERE external_reference = $1 AND estado = 'pending'
        RETURNING id, id_usuario, plan_id, monto_centavos, moneda, codigo_referido
    `, externalReference, paymentID, metodoPago).Scan(
		&c.ID, &c.IDUsuario, &c.PlanID, &c.MontoCentavos, &c.Moneda, &c.CodigoReferido)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (s *PGStore) MarkStatus(ctx context.Context, externalReference, estado string, paymentID int64) error {
	_, err := database.Pool.Exec(ctx, `
        UPDATE transacciones
        SET estado = $2, payment_id = $3, fecha_actualizacion = NOW()
        WHERE external_reference = $1 AND estado = 'pending'
    `, externalReference, estado, paymentID)
	return err
}

func (s *PGStore) RevertClaim(ctx context.Context, transactionID int64) error {
	_, err := database.Pool.Exec(ctx, `
        UPDATE transacciones
        SET estado = 'pending', fecha_actualizacion = NOW()
        WHERE id = $1 AND estado = 'approved'
    `, transactionID)
	return err
}

func (s *PGStore) CreateGuestUser(ctx context.Context, referidoPor *int64) (int64, error) {
	correo := fmt.Sprintf("temp_%s@financial360.com", uuid.NewString())
	var id int64
	err := database.Pool.QueryRow(ctx, `
        INSERT INTO usuarios (nombre, correo, contrasena, rol, referido_por, codigo_referido)
        VALUES ('Cliente Temporal', $1, '', 'usuario', $2, $3)
        RETURNING id
    `, correo, referidoPor, uuid.NewString()).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *PGStore) AttachUser(ctx context.Context, transactionID, userID int64) error {
	_, err := database.Pool.Exec(ctx,
		`UPDATE transacciones SET id_usuario = $2 WHERE id = $1`, transactionID, userID)
	return err
}

func (s *PGStore) PlanInfo(ctx context.Context, planID int) (string, int, error) {
	var nombre string
	var duracion int
	err := database.Pool.QueryRow(ctx,
		`SELECT nombre, duracion_dias FROM planes WHERE id = $1`, planID).Scan(&nombre, &duracion)
	if err != nil {
		return "", 0, err
	}
	if duracion <= 0 {
		duracion = 30
	}
	return nombre, duracion, nil
}

func (s *PGStore) ActivatePlan(ctx context.Context, userID int64, planID int, montoCentavos int64, metodoPago string, duracionDias int) error {
	tx, err := database.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Swap en una sola transacción: después de cualquier activación queda
	// exactamente una membresía activa.
	if _, err := tx.Exec(ctx, `
        UPDATE usuarios_planes SET activo = false
        WHERE id_usuario = $1 AND activo = true
    `, userID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
        INSERT INTO usuarios_planes
            (id_usuario, plan_id, activo, fecha_activacion, fecha_expiracion, monto_centavos, metodo_pago)
        VALUES ($1, $2, true, NOW(), NOW() + ($3 * INTERVAL '1 day'), $4, $5)
    `, userID, planID, duracionDias, montoCentavos, metodoPago); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *PGStore) ResolveReferralCode(ctx context.Context, codigo string) (*int64, error) {
	var id int64
	err := database.Pool.QueryRow(ctx,
		`SELECT id FROM usuarios WHERE codigo_referido = $1`, codigo).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}
