package payments

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samu777684/financial360/config"
	"github.com/samu777684/financial360/database"
)

// Tests de integración contra PostgreSQL real. Se omiten sin
// TEST_DB_NAME; con él, ejercitan el SQL de verdad.
func setupTestDB(t *testing.T) {
	t.Helper()
	if os.Getenv("TEST_DB_NAME") == "" {
		t.Skip("TEST_DB_NAME no definido; test de integración omitido")
	}
	cfg := &config.Config{
		DBHost:     envOr("TEST_DB_HOST", "localhost"),
		DBPort:     envOr("TEST_DB_PORT", "5432"),
		DBUser:     envOr("TEST_DB_USER", "postgres"),
		DBPassword: os.Getenv("TEST_DB_PASSWORD"),
		DBName:     os.Getenv("TEST_DB_NAME"),
		DBSSLMode:  envOr("TEST_DB_SSLMODE", "disable"),
	}
	require.NoError(t, database.InitDB(cfg))
	t.Cleanup(database.CloseDB)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func createTestUser(t *testing.T, ctx context.Context) int64 {
	t.Helper()
	var id int64
	err := database.Pool.QueryRow(ctx, `
        INSERT INTO usuarios (nombre, correo, contrasena, rol, codigo_referido)
        VALUES ('Usuario Prueba', $1, '', 'usuario', $2)
        RETURNING id
    `, "test_"+uuid.NewString()+"@financial360.com", uuid.NewString()).Scan(&id)
	require.NoError(t, err)
	return id
}

func createTestPlan(t *testing.T, ctx context.Context, precioCentavos int64) int {
	t.Helper()
	var id int
	err := database.Pool.QueryRow(ctx, `
        INSERT INTO planes (nombre, descripcion, precio_centavos, moneda, duracion_dias, caracteristicas, activo, orden)
        VALUES ($1, 'plan de prueba', $2, 'COP', 30, '[]', true, 99)
        RETURNING id
    `, "Prueba "+uuid.NewString(), precioCentavos).Scan(&id)
	require.NoError(t, err)
	return id
}

func countActiveEntitlements(t *testing.T, ctx context.Context, userID int64) int {
	t.Helper()
	var n int
	err := database.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM usuarios_planes WHERE id_usuario = $1 AND activo = true`,
		userID).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestActivatePlanKeepsSingleActiveRow(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	userID := createTestUser(t, ctx)
	planA := createTestPlan(t, ctx, 100000)
	planB := createTestPlan(t, ctx, 200000)
	store := NewPGStore()

	require.NoError(t, store.ActivatePlan(ctx, userID, planA, 100000, "credit_card", 30))
	assert.Equal(t, 1, countActiveEntitlements(t, ctx, userID))

	// Segunda activación (upgrade): el swap apaga la anterior e inserta
	// la nueva dentro de la misma transacción.
	require.NoError(t, store.ActivatePlan(ctx, userID, planB, 200000, "credit_card", 30))
	assert.Equal(t, 1, countActiveEntitlements(t, ctx, userID))

	var activePlan int
	err := database.Pool.QueryRow(ctx, `
        SELECT plan_id FROM usuarios_planes
        WHERE id_usuario = $1 AND activo = true
    `, userID).Scan(&activePlan)
	require.NoError(t, err)
	assert.Equal(t, planB, activePlan)
}

func TestClaimApprovedAndRevertRoundTrip(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	userID := createTestUser(t, ctx)
	planID := createTestPlan(t, ctx, 100000)
	store := NewPGStore()

	ref := "F360-" + uuid.NewString()
	var txID int64
	err := database.Pool.QueryRow(ctx, `
        INSERT INTO transacciones (id_usuario, plan_id, preference_id, external_reference, monto_centavos, moneda, estado)
        VALUES ($1, $2, 'pref-test', $3, 100000, 'COP', 'pending')
        RETURNING id
    `, userID, planID, ref).Scan(&txID)
	require.NoError(t, err)

	claimed, err := store.ClaimApproved(ctx, ref, 424242, "credit_card")
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, txID, claimed.ID)

	// Segunda entrega: ya no hay fila pendiente.
	dup, err := store.ClaimApproved(ctx, ref, 424242, "credit_card")
	require.NoError(t, err)
	assert.Nil(t, dup)

	// El revert devuelve la transacción a pending y el reintento la
	// vuelve a reclamar.
	require.NoError(t, store.RevertClaim(ctx, txID))
	reclaimed, err := store.ClaimApproved(ctx, ref, 424242, "credit_card")
	require.NoError(t, err)
	require.NotNil(t, reclaimed)
	assert.Equal(t, txID, reclaimed.ID)
}
