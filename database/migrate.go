package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MigratePlaintextCredentials hashea las contraseñas heredadas que siguen
// en texto plano. Es un job único fuera de línea (MIGRATE_PLAINTEXT_PASSWORDS=true),
// no una rama del login: en producción la columna contrasena solo contiene
// hashes bcrypt.
func MigratePlaintextCredentials(ctx context.Context) (int, error) {
	rows, err := Pool.Query(ctx,
		`SELECT id, contrasena FROM usuarios WHERE contrasena NOT LIKE '$2%' AND contrasena <> ''`)
	if err != nil {
		return 0, fmt.Errorf("listing legacy credentials: %w", err)
	}
	defer rows.Close()

	type legacy struct {
		id    int64
		plain string
	}
	var pending []legacy
	for rows.Next() {
		var l legacy
		if err := rows.Scan(&l.id, &l.plain); err != nil {
			return 0, err
		}
		pending = append(pending, l)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	migrated := 0
	for _, l := range pending {
		if strings.HasPrefix(l.plain, "$2a$") || strings.HasPrefix(l.plain, "$2b$") {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(l.plain), bcrypt.DefaultCost)
		if err != nil {
			return migrated, fmt.Errorf("hashing credential for user %d: %w", l.id, err)
		}
		tag, err := Pool.Exec(ctx,
			`UPDATE usuarios SET contrasena = $1, updated_at = NOW() WHERE id = $2 AND contrasena = $3`,
			string(hash), l.id, l.plain)
		if err != nil {
			return migrated, fmt.Errorf("updating credential for user %d: %w", l.id, err)
		}
		if tag.RowsAffected() == 1 {
			migrated++
		}
	}

	log.Printf("✅ Migración de contraseñas: %d actualizadas", migrated)
	return migrated, nil
}
