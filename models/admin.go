package models

import (
	"context"
	"time"

	"github.com/samu777684/financial360/database"
)

// PendingCommission es una fila del panel de comisiones por pagar, con
// los datos de contacto del referidor.
type PendingCommission struct {
	ID            int64     `json:"id"`
	IDReferidor   int64     `json:"id_referidor"`
	Referidor     string    `json:"referidor"`
	Correo        string    `json:"correo"`
	PaymentID     int64     `json:"payment_id"`
	Nivel         int       `json:"nivel"`
	MontoCentavos int64     `json:"monto_centavos"`
	Moneda        string    `json:"moneda"`
	Descripcion   string    `json:"descripcion"`
	FechaRegistro time.Time `json:"fecha_registro"`
}

func GetPendingCommissions(ctx context.Context) ([]PendingCommission, error) {
	rows, err := database.Pool.Query(ctx, `
        SELECT h.id, h.id_referidor, u.nombre, u.correo, h.payment_id, h.nivel,
               h.monto_centavos, h.moneda, COALESCE(h.descripcion, ''), h.fecha_registro
        FROM referidos_historial h
        JOIN usuarios u ON u.id = h.id_referidor
        WHERE h.estado = 'pendiente'
        ORDER BY h.fecha_registro ASC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingCommission
	for rows.Next() {
		var p PendingCommission
		err := rows.Scan(&p.ID, &p.IDReferidor, &p.Referidor, &p.Correo, &p.PaymentID,
			&p.Nivel, &p.MontoCentavos, &p.Moneda, &p.Descripcion, &p.FechaRegistro)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ReferrerOverview es la vista de conciliación por referidor: el
// agregado incremental contra la suma derivada del historial.
type ReferrerOverview struct {
	IDUsuario          int64  `json:"id_usuario"`
	Nombre             string `json:"nombre"`
	Correo             string `json:"correo"`
	CodigoReferido     string `json:"codigo_referido"`
	ReferidosActivos   int    `json:"referidos_activos"`
	TotalAgregado      int64  `json:"total_agregado_centavos"`
	TotalHistorial     int64  `json:"total_historial_centavos"`
	PendienteCentavos  int64  `json:"pendiente_centavos"`
	PagadoCentavos     int64  `json:"pagado_centavos"`
}

func GetReferrerOverviews(ctx context.Context) ([]ReferrerOverview, error) {
	rows, err := database.Pool.Query(ctx, `
        SELECT u.id, u.nombre, u.correo, u.codigo_referido,
               COALESCE(t.referidos_activos, 0),
               COALESCE(t.total_comisiones_centavos, 0),
               COALESCE(SUM(h.monto_centavos) FILTER (WHERE h.estado <> 'cancelado'), 0),
               COALESCE(SUM(h.monto_centavos) FILTER (WHERE h.estado = 'pendiente'), 0),
               COALESCE(SUM(h.monto_centavos) FILTER (WHERE h.estado = 'pagado'), 0)
        FROM usuarios u
        JOIN referidos_historial h ON h.id_referidor = u.id
        LEFT JOIN referidos_totales t ON t.id_usuario = u.id
        GROUP BY u.id, u.nombre, u.correo, u.codigo_referido,
                 t.referidos_activos, t.total_comisiones_centavos
        ORDER BY 6 DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReferrerOverview
	for rows.Next() {
		var r ReferrerOverview
		err := rows.Scan(&r.IDUsuario, &r.Nombre, &r.Correo, &r.CodigoReferido,
			&r.ReferidosActivos, &r.TotalAgregado, &r.TotalHistorial,
			&r.PendienteCentavos, &r.PagadoCentavos)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PaidCommission es una comisión ya pagada con los datos bancarios del
// referidor, para verificar el desembolso.
type PaidCommission struct {
	ID            int64      `json:"id"`
	Referidor     string     `json:"referidor"`
	Correo        string     `json:"correo"`
	PaymentID     int64      `json:"payment_id"`
	Nivel         int        `json:"nivel"`
	MontoCentavos int64      `json:"monto_centavos"`
	Moneda        string     `json:"moneda"`
	FechaPago     *time.Time `json:"fecha_pago"`
	Banco         *string    `json:"banco"`
	TipoCuenta    *string    `json:"tipo_cuenta"`
	NumeroCuenta  *string    `json:"numero_cuenta"`
	TitularCuenta *string    `json:"titular_cuenta"`
}

func GetPaidCommissions(ctx context.Context, limit int) ([]PaidCommission, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := database.Pool.Query(ctx, `
        SELECT h.id, u.nombre, u.correo, h.payment_id, h.nivel,
               h.monto_centavos, h.moneda, h.fecha_pago,
               p.banco, p.tipo_cuenta, p.numero_cuenta, p.titular_cuenta
        FROM referidos_historial h
        JOIN usuarios u ON u.id = h.id_referidor
        LEFT JOIN perfil_usuario p ON p.id_usuario = h.id_referidor
        WHERE h.estado = 'pagado'
        ORDER BY h.fecha_pago DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PaidCommission
	for rows.Next() {
		var p PaidCommission
		err := rows.Scan(&p.ID, &p.Referidor, &p.Correo, &p.PaymentID, &p.Nivel,
			&p.MontoCentavos, &p.Moneda, &p.FechaPago,
			&p.Banco, &p.TipoCuenta, &p.NumeroCuenta, &p.TitularCuenta)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RecentUser es un registro reciente con el nombre de su referidor.
type RecentUser struct {
	ID             int64     `json:"id"`
	Nombre         string    `json:"nombre"`
	Correo         string    `json:"correo"`
	Rol            string    `json:"rol"`
	CodigoReferido string    `json:"codigo_referido"`
	Referidor      *string   `json:"referidor"`
	CreatedAt      time.Time `json:"created_at"`
}

func GetRecentUsers(ctx context.Context, limit int) ([]RecentUser, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := database.Pool.Query(ctx, `
        SELECT u.id, u.nombre, u.correo, u.rol, u.codigo_referido,
               r.nombre, u.created_at
        FROM usuarios u
        LEFT JOIN usuarios r ON r.id = u.referido_por
        ORDER BY u.created_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecentUser
	for rows.Next() {
		var u RecentUser
		err := rows.Scan(&u.ID, &u.Nombre, &u.Correo, &u.Rol,
			&u.CodigoReferido, &u.Referidor, &u.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Stats son los agregados del panel de administración.
type Stats struct {
	TotalUsuarios        int64 `json:"total_usuarios"`
	UsuariosConReferidos int64 `json:"usuarios_con_referidos"`
	MembresiasActivas    int64 `json:"membresias_activas"`
	PlanesActivos        int64 `json:"planes_activos"`
	IngresosCentavos     int64 `json:"ingresos_centavos"`
	PagosAprobados       int64 `json:"pagos_aprobados"`
	ComisionesGeneradas  int64 `json:"comisiones_generadas_centavos"`
	ComisionesPendientes int64 `json:"comisiones_pendientes_centavos"`
	ComisionesPagadas    int64 `json:"comisiones_pagadas_centavos"`
	PagadasEsteMes       int64 `json:"comisiones_pagadas_mes_centavos"`
}

func CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := database.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM usuarios WHERE activo = true`).Scan(&n)
	return n, err
}

func CountActiveMemberships(ctx context.Context) (int64, error) {
	var n int64
	err := database.Pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM usuarios_planes
        WHERE activo = true AND fecha_expiracion > NOW()
    `).Scan(&n)
	return n, err
}

func SumApprovedRevenue(ctx context.Context) (total int64, count int64, err error) {
	err = database.Pool.QueryRow(ctx, `
        SELECT COALESCE(SUM(monto_centavos), 0), COUNT(*)
        FROM transacciones WHERE estado = 'approved'
    `).Scan(&total, &count)
	return total, count, err
}

func SumCommissionsByState(ctx context.Context) (generado, pendiente, pagado, pagadoMes int64, err error) {
	err = database.Pool.QueryRow(ctx, `
        SELECT COALESCE(SUM(monto_centavos) FILTER (WHERE estado <> 'cancelado'), 0),
               COALESCE(SUM(monto_centavos) FILTER (WHERE estado = 'pendiente'), 0),
               COALESCE(SUM(monto_centavos) FILTER (WHERE estado = 'pagado'), 0),
               COALESCE(SUM(monto_centavos) FILTER (WHERE estado = 'pagado'
                   AND fecha_pago >= date_trunc('month', NOW())), 0)
        FROM referidos_historial
    `).Scan(&generado, &pendiente, &pagado, &pagadoMes)
	return generado, pendiente, pagado, pagadoMes, err
}

func CountReferrers(ctx context.Context) (int64, error) {
	var n int64
	err := database.Pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT referido_por) FROM usuarios WHERE referido_por IS NOT NULL`).Scan(&n)
	return n, err
}

func CountActivePlans(ctx context.Context) (int64, error) {
	var n int64
	err := database.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM planes WHERE activo = true`).Scan(&n)
	return n, err
}
