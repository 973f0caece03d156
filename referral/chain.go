package referral

import (
	"context"
	"fmt"
)

// MaxDepth es la profundidad máxima de la cadena de referidos.
const MaxDepth = 3

// Level es un ancestro de la cadena: nivel 1 = referidor directo.
type Level struct {
	Nivel  int
	UserID int64
}

// ChainStore resuelve el enlace "referido por" de un usuario.
type ChainStore interface {
	// ReferrerOf devuelve el referidor directo, o nil si no tiene.
	ReferrerOf(ctx context.Context, userID int64) (*int64, error)
}

// ResolveChain arma la cadena de hasta MaxDepth referidores por encima
// del usuario. override siembra el nivel 1 cuando el comprador fue un
// invitado que llegó con código de referido. Cualquier error de lookup
// aborta la resolución completa: no se devuelven cadenas parciales.
func ResolveChain(ctx context.Context, store ChainStore, userID *int64, override *int64) ([]Level, error) {
	var chain []Level

	current := override
	if current == nil {
		if userID == nil {
			return nil, nil
		}
		ref, err := store.ReferrerOf(ctx, *userID)
		if err != nil {
			return nil, fmt.Errorf("resolving level 1 referrer: %w", err)
		}
		current = ref
	}

	for nivel := 1; nivel <= MaxDepth && current != nil; nivel++ {
		chain = append(chain, Level{Nivel: nivel, UserID: *current})
		if nivel == MaxDepth {
			break
		}
		next, err := store.ReferrerOf(ctx, *current)
		if err != nil {
			return nil, fmt.Errorf("resolving level %d referrer: %w", nivel+1, err)
		}
		current = next
	}

	return chain, nil
}
