package models

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samu777684/financial360/database"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID             int64     `json:"id" db:"id"`
	Nombre         string    `json:"nombre" db:"nombre"`
	Correo         string    `json:"correo" db:"correo"`
	Contrasena     string    `json:"-" db:"contrasena"`
	Rol            string    `json:"rol" db:"rol"`
	ReferidoPor    *int64    `json:"referido_por" db:"referido_por"`
	CodigoReferido string    `json:"codigo_referido" db:"codigo_referido"`
	Activo         bool      `json:"activo" db:"activo"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// NormalizeEmail aplica la normalización con la que se guarda y busca
// todo correo: trim + minúsculas.
func NormalizeEmail(correo string) string {
	return strings.ToLower(strings.TrimSpace(correo))
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func FindUserByEmail(ctx context.Context, correo string) (*User, error) {
	var user User
	// LOWER(TRIM(...)) también del lado de la columna: los datos heredados
	// pueden traer mayúsculas o espacios.
	query := `SELECT id, nombre, correo, contrasena, rol, referido_por, codigo_referido, activo, created_at, updated_at
          FROM usuarios WHERE LOWER(TRIM(correo)) = $1 LIMIT 1`
	err := database.Pool.QueryRow(ctx, query, NormalizeEmail(correo)).Scan(
		&user.ID, &user.Nombre, &user.Correo, &user.Contrasena, &user.Rol,
		&user.ReferidoPor, &user.CodigoReferido, &user.Activo,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserByID(ctx context.Context, id int64) (*User, error) {
	var user User
	query := `SELECT id, nombre, correo, contrasena, rol, referido_por, codigo_referido, activo, created_at, updated_at
          FROM usuarios WHERE id = $1`
	err := database.Pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Nombre, &user.Correo, &user.Contrasena, &user.Rol,
		&user.ReferidoPor, &user.CodigoReferido, &user.Activo,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUserByReferralCode resuelve un código de referido a su dueño.
func FindUserByReferralCode(ctx context.Context, codigo string) (*User, error) {
	var user User
	query := `SELECT id, nombre, correo, contrasena, rol, referido_por, codigo_referido, activo, created_at, updated_at
          FROM usuarios WHERE codigo_referido = $1`
	err := database.Pool.QueryRow(ctx, query, strings.TrimSpace(codigo)).Scan(
		&user.ID, &user.Nombre, &user.Correo, &user.Contrasena, &user.Rol,
		&user.ReferidoPor, &user.CodigoReferido, &user.Activo,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func CreateUser(ctx context.Context, nombre, correo, password string, referidoPor *int64) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	var user User
	query := `INSERT INTO usuarios (nombre, correo, contrasena, rol, referido_por, codigo_referido)
          VALUES ($1, $2, $3, 'usuario', $4, $5)
          RETURNING id, nombre, correo, contrasena, rol, referido_por, codigo_referido, activo, created_at, updated_at`
	err = database.Pool.QueryRow(ctx, query,
		strings.TrimSpace(nombre), NormalizeEmail(correo), hash, referidoPor, uuid.NewString(),
	).Scan(
		&user.ID, &user.Nombre, &user.Correo, &user.Contrasena, &user.Rol,
		&user.ReferidoPor, &user.CodigoReferido, &user.Activo,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func UpdatePassword(ctx context.Context, correo, newPassword string) (bool, error) {
	hash, err := HashPassword(newPassword)
	if err != nil {
		return false, err
	}
	tag, err := database.Pool.Exec(ctx,
		`UPDATE usuarios SET contrasena = $1, updated_at = NOW() WHERE LOWER(TRIM(correo)) = $2`,
		hash, NormalizeEmail(correo))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func EmailExists(ctx context.Context, correo string) (bool, error) {
	var exists bool
	err := database.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM usuarios WHERE LOWER(TRIM(correo)) = $1)`,
		NormalizeEmail(correo)).Scan(&exists)
	return exists, err
}
