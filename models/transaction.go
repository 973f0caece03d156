package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samu777684/financial360/database"
)

type Transaction struct {
	ID                 int64      `json:"id" db:"id"`
	IDUsuario          *int64     `json:"id_usuario" db:"id_usuario"`
	PlanID             int        `json:"plan_id" db:"plan_id"`
	PreferenceID       string     `json:"preference_id" db:"preference_id"`
	PaymentID          *int64     `json:"payment_id" db:"payment_id"`
	ExternalReference  string     `json:"external_reference" db:"external_reference"`
	MontoCentavos      int64      `json:"monto_centavos" db:"monto_centavos"`
	Moneda             string     `json:"moneda" db:"moneda"`
	Estado             string     `json:"estado" db:"estado"`
	MetodoPago         *string    `json:"metodo_pago" db:"metodo_pago"`
	CodigoReferido     *string    `json:"codigo_referido" db:"codigo_referido"`
	FechaCreacion      time.Time  `json:"fecha_creacion" db:"fecha_creacion"`
	FechaActualizacion *time.Time `json:"fecha_actualizacion" db:"fecha_actualizacion"`
}

// NewExternalReference genera la clave de idempotencia de una preferencia.
func NewExternalReference() string {
	return fmt.Sprintf("F360-%s", uuid.NewString())
}

// CreatePendingTransaction registra el intento de pago al crear la
// preferencia; el webhook lo moverá a approved/rejected.
func CreatePendingTransaction(ctx context.Context, userID *int64, planID int, preferenceID, externalReference string, montoCentavos int64, moneda string, codigoReferido *string) (*Transaction, error) {
	var t Transaction
	query := `INSERT INTO transacciones
          (id_usuario, plan_id, preference_id, external_reference, monto_centavos, moneda, estado, codigo_referido)
          VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7)
          RETURNING id, id_usuario, plan_id, preference_id, payment_id, external_reference,
                    monto_centavos, moneda, estado, metodo_pago, codigo_referido,
                    fecha_creacion, fecha_actualizacion`
	err := database.Pool.QueryRow(ctx, query,
		userID, planID, preferenceID, externalReference, montoCentavos, moneda, codigoReferido,
	).Scan(
		&t.ID, &t.IDUsuario, &t.PlanID, &t.PreferenceID, &t.PaymentID, &t.ExternalReference,
		&t.MontoCentavos, &t.Moneda, &t.Estado, &t.MetodoPago, &t.CodigoReferido,
		&t.FechaCreacion, &t.FechaActualizacion,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
