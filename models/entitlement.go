package models

import (
	"context"
	"time"

	"github.com/samu777684/financial360/database"
)

type Entitlement struct {
	ID              int64     `json:"id" db:"id"`
	IDUsuario       int64     `json:"id_usuario" db:"id_usuario"`
	PlanID          int       `json:"plan_id" db:"plan_id"`
	Activo          bool      `json:"activo" db:"activo"`
	FechaActivacion time.Time `json:"fecha_activacion" db:"fecha_activacion"`
	FechaExpiracion time.Time `json:"fecha_expiracion" db:"fecha_expiracion"`
	MontoCentavos   int64     `json:"monto_centavos" db:"monto_centavos"`
	MetodoPago      *string   `json:"metodo_pago" db:"metodo_pago"`
	PlanNombre      string    `json:"plan_nombre" db:"plan_nombre"`
	PlanPrecio      int64     `json:"plan_precio_centavos" db:"plan_precio_centavos"`
}

type MembershipStatus struct {
	Activa    bool
	Expirada  bool
	Membresia *Entitlement
}

// GetMembershipStatus devuelve la membresía activa más reciente del
// usuario. Si ya venció, apaga la fila como efecto del propio read y
// reporta expirada=true (comportamiento que espera el frontend).
func GetMembershipStatus(ctx context.Context, userID int64) (*MembershipStatus, error) {
	var e Entitlement
	err := database.Pool.QueryRow(ctx, `
        SELECT up.id, up.id_usuario, up.plan_id, up.activo, up.fecha_activacion,
               up.fecha_expiracion, up.monto_centavos, up.metodo_pago,
               p.nombre, p.precio_centavos
        FROM usuarios_planes up
        INNER JOIN planes p ON up.plan_id = p.id
        WHERE up.id_usuario = $1 AND up.activo = true
        ORDER BY up.fecha_activacion DESC
        LIMIT 1
    `, userID).Scan(
		&e.ID, &e.IDUsuario, &e.PlanID, &e.Activo, &e.FechaActivacion,
		&e.FechaExpiracion, &e.MontoCentavos, &e.MetodoPago,
		&e.PlanNombre, &e.PlanPrecio,
	)
	if err != nil {
		if isNoRows(err) {
			return &MembershipStatus{Activa: false}, nil
		}
		return nil, err
	}

	if e.FechaExpiracion.Before(time.Now()) {
		if _, err := database.Pool.Exec(ctx,
			`UPDATE usuarios_planes SET activo = false WHERE id = $1`, e.ID); err != nil {
			return nil, err
		}
		return &MembershipStatus{Activa: false, Expirada: true}, nil
	}

	return &MembershipStatus{Activa: true, Membresia: &e}, nil
}
