package models

import (
	"context"
	"time"

	"github.com/samu777684/financial360/database"
)

type LedgerEntry struct {
	ID            int64      `json:"id" db:"id"`
	IDReferidor   int64      `json:"id_referidor" db:"id_referidor"`
	IDReferido    *int64     `json:"id_referido" db:"id_referido"`
	PaymentID     int64      `json:"payment_id" db:"payment_id"`
	Nivel         int        `json:"nivel" db:"nivel"`
	MontoCentavos int64      `json:"monto_centavos" db:"monto_centavos"`
	Moneda        string     `json:"moneda" db:"moneda"`
	Estado        string     `json:"estado" db:"estado"`
	Descripcion   string     `json:"descripcion" db:"descripcion"`
	FechaRegistro time.Time  `json:"fecha_registro" db:"fecha_registro"`
	FechaPago     *time.Time `json:"fecha_pago" db:"fecha_pago"`
}

type ReferralSummary struct {
	CodigoReferido       string `json:"codigo_referido"`
	TotalComisiones      int64  `json:"total_comisiones_centavos"`
	ReferidosActivos     int    `json:"referidos_activos"`
	ComisionesPendientes int64  `json:"comisiones_pendientes_centavos"`
	ComisionesPagadas    int64  `json:"comisiones_pagadas_centavos"`
}

// GetReferralSummary combina el agregado incremental con el desglose
// derivado del historial.
func GetReferralSummary(ctx context.Context, userID int64) (*ReferralSummary, error) {
	var s ReferralSummary

	err := database.Pool.QueryRow(ctx,
		`SELECT codigo_referido FROM usuarios WHERE id = $1`, userID).Scan(&s.CodigoReferido)
	if err != nil {
		return nil, err
	}

	err = database.Pool.QueryRow(ctx, `
        SELECT COALESCE(total_comisiones_centavos, 0), COALESCE(referidos_activos, 0)
        FROM referidos_totales WHERE id_usuario = $1
    `, userID).Scan(&s.TotalComisiones, &s.ReferidosActivos)
	if err != nil && !isNoRows(err) {
		return nil, err
	}

	err = database.Pool.QueryRow(ctx, `
        SELECT COALESCE(SUM(monto_centavos) FILTER (WHERE estado = 'pendiente'), 0),
               COALESCE(SUM(monto_centavos) FILTER (WHERE estado = 'pagado'), 0)
        FROM referidos_historial WHERE id_referidor = $1
    `, userID).Scan(&s.ComisionesPendientes, &s.ComisionesPagadas)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// GetLedgerEntries devuelve el historial de comisiones del referidor,
// más recientes primero.
func GetLedgerEntries(ctx context.Context, userID int64, limit int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := database.Pool.Query(ctx, `
        SELECT id, id_referidor, id_referido, payment_id, nivel, monto_centavos,
               moneda, estado, COALESCE(descripcion, ''), fecha_registro, fecha_pago
        FROM referidos_historial
        WHERE id_referidor = $1
        ORDER BY fecha_registro DESC
        LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		err := rows.Scan(&e.ID, &e.IDReferidor, &e.IDReferido, &e.PaymentID, &e.Nivel,
			&e.MontoCentavos, &e.Moneda, &e.Estado, &e.Descripcion,
			&e.FechaRegistro, &e.FechaPago)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkCommissionPaid mueve una comisión pendiente a pagado. Devuelve
// false si no existía o ya no estaba pendiente.
func MarkCommissionPaid(ctx context.Context, id int64) (bool, error) {
	tag, err := database.Pool.Exec(ctx, `
        UPDATE referidos_historial
        SET estado = 'pagado', fecha_pago = NOW()
        WHERE id = $1 AND estado = 'pendiente'
    `, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CancelCommission cancela una comisión pendiente y descuenta el
// agregado del referidor en la misma transacción, para que el total siga
// siendo la suma de las no canceladas.
func CancelCommission(ctx context.Context, id int64) (bool, error) {
	tx, err := database.Pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var referidor, monto int64
	err = tx.QueryRow(ctx, `
        UPDATE referidos_historial
        SET estado = 'cancelado'
        WHERE id = $1 AND estado = 'pendiente'
        RETURNING id_referidor, monto_centavos
    `, id).Scan(&referidor, &monto)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, err
	}

	_, err = tx.Exec(ctx, `
        UPDATE referidos_totales
        SET total_comisiones_centavos = total_comisiones_centavos - $1,
            ultima_actualizacion = NOW()
        WHERE id_usuario = $2
    `, monto, referidor)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
