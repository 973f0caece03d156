package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/samu777684/financial360/database"
)

type Plan struct {
	ID              int             `json:"id" db:"id"`
	Nombre          string          `json:"nombre" db:"nombre"`
	Descripcion     string          `json:"descripcion" db:"descripcion"`
	PrecioCentavos  int64           `json:"precio_centavos" db:"precio_centavos"`
	Moneda          string          `json:"moneda" db:"moneda"`
	DuracionDias    int             `json:"duracion_dias" db:"duracion_dias"`
	Caracteristicas json.RawMessage `json:"caracteristicas" db:"caracteristicas"`
	Activo          bool            `json:"activo" db:"activo"`
	Orden           int             `json:"orden" db:"orden"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// GetActivePlans devuelve el catálogo activo ordenado por precio, como lo
// consume el frontend de planes.
func GetActivePlans(ctx context.Context) ([]Plan, error) {
	rows, err := database.Pool.Query(ctx, `
        SELECT id, nombre, COALESCE(descripcion, ''), precio_centavos, moneda,
               duracion_dias, caracteristicas, activo, orden, created_at
        FROM planes
        WHERE activo = true
        ORDER BY precio_centavos ASC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var planes []Plan
	for rows.Next() {
		var p Plan
		err := rows.Scan(&p.ID, &p.Nombre, &p.Descripcion, &p.PrecioCentavos, &p.Moneda,
			&p.DuracionDias, &p.Caracteristicas, &p.Activo, &p.Orden, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		planes = append(planes, p)
	}
	return planes, rows.Err()
}

// GetActivePlanByID obtiene un plan activo; ErrNoRows si no existe o está
// inactivo.
func GetActivePlanByID(ctx context.Context, id int) (*Plan, error) {
	var p Plan
	err := database.Pool.QueryRow(ctx, `
        SELECT id, nombre, COALESCE(descripcion, ''), precio_centavos, moneda,
               duracion_dias, caracteristicas, activo, orden, created_at
        FROM planes
        WHERE id = $1 AND activo = true
    `, id).Scan(&p.ID, &p.Nombre, &p.Descripcion, &p.PrecioCentavos, &p.Moneda,
		&p.DuracionDias, &p.Caracteristicas, &p.Activo, &p.Orden, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
