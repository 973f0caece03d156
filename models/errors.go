package models

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsNotFound expone la comprobación para los handlers.
func IsNotFound(err error) bool {
	return isNoRows(err)
}
