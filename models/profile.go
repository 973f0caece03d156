package models

import (
	"context"

	"github.com/samu777684/financial360/database"
)

type Profile struct {
	NombreCompleto string `json:"nombre_completo" db:"nombre_completo"`
	Cedula         string `json:"cedula" db:"cedula"`
	Telefono       string `json:"telefono" db:"telefono"`
	Pais           string `json:"pais" db:"pais"`
	Ciudad         string `json:"ciudad" db:"ciudad"`
	CodigoPostal   string `json:"codigo_postal" db:"codigo_postal"`
	Banco          string `json:"banco" db:"banco"`
	TipoCuenta     string `json:"tipo_cuenta" db:"tipo_cuenta"`
	NumeroCuenta   string `json:"numero_cuenta" db:"numero_cuenta"`
	TitularCuenta  string `json:"titular_cuenta" db:"titular_cuenta"`
}

// GetProfile devuelve el perfil del usuario, o (nil, nil) si todavía no
// lo completó.
func GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	var p Profile
	query := `SELECT nombre_completo, cedula, COALESCE(telefono, ''), COALESCE(pais, ''),
                 COALESCE(ciudad, ''), COALESCE(codigo_postal, ''),
                 banco, tipo_cuenta, numero_cuenta, titular_cuenta
          FROM perfil_usuario WHERE id_usuario = $1`
	err := database.Pool.QueryRow(ctx, query, userID).Scan(
		&p.NombreCompleto, &p.Cedula, &p.Telefono, &p.Pais, &p.Ciudad,
		&p.CodigoPostal, &p.Banco, &p.TipoCuenta, &p.NumeroCuenta, &p.TitularCuenta,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func HasProfile(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := database.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM perfil_usuario WHERE id_usuario = $1)`, userID).Scan(&exists)
	return exists, err
}

// UpsertProfile crea o actualiza el perfil completo. Devuelve true si el
// perfil ya existía.
func UpsertProfile(ctx context.Context, userID int64, p *Profile) (bool, error) {
	existed, err := HasProfile(ctx, userID)
	if err != nil {
		return false, err
	}

	query := `INSERT INTO perfil_usuario
          (id_usuario, nombre_completo, cedula, telefono, pais, ciudad, codigo_postal,
           banco, tipo_cuenta, numero_cuenta, titular_cuenta)
          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
          ON CONFLICT (id_usuario) DO UPDATE SET
              nombre_completo = EXCLUDED.nombre_completo,
              cedula = EXCLUDED.cedula,
              telefono = EXCLUDED.telefono,
              pais = EXCLUDED.pais,
              ciudad = EXCLUDED.ciudad,
              codigo_postal = EXCLUDED.codigo_postal,
              banco = EXCLUDED.banco,
              tipo_cuenta = EXCLUDED.tipo_cuenta,
              numero_cuenta = EXCLUDED.numero_cuenta,
              titular_cuenta = EXCLUDED.titular_cuenta,
              fecha_actualizacion = NOW()`
	_, err = database.Pool.Exec(ctx, query,
		userID, p.NombreCompleto, p.Cedula, p.Telefono, p.Pais, p.Ciudad,
		p.CodigoPostal, p.Banco, p.TipoCuenta, p.NumeroCuenta, p.TitularCuenta)
	if err != nil {
		return existed, err
	}
	return existed, nil
}
