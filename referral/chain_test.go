package referral

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChainStore struct {
	parents map[int64]int64
	failOn  int64
}

func (f *fakeChainStore) ReferrerOf(ctx context.Context, userID int64) (*int64, error) {
	if f.failOn != 0 && userID == f.failOn {
		return nil, errors.New("db down")
	}
	if p, ok := f.parents[userID]; ok {
		return &p, nil
	}
	return nil, nil
}

func ptr(v int64) *int64 { return &v }

func TestResolveChainFullDepth(t *testing.T) {
	// 10 <- 20 <- 30 <- 40 <- 50: más ancestros que MaxDepth.
	store := &fakeChainStore{parents: map[int64]int64{10: 20, 20: 30, 30: 40, 40: 50}}

	chain, err := ResolveChain(context.Background(), store, ptr(10), nil)
	require.NoError(t, err)
	require.Len(t, chain, MaxDepth)
	assert.Equal(t, Level{Nivel: 1, UserID: 20}, chain[0])
	assert.Equal(t, Level{Nivel: 2, UserID: 30}, chain[1])
	assert.Equal(t, Level{Nivel: 3, UserID: 40}, chain[2])
}

func TestResolveChainShort(t *testing.T) {
	store := &fakeChainStore{parents: map[int64]int64{10: 20}}

	chain, err := ResolveChain(context.Background(), store, ptr(10), nil)
	require.NoError(t, err)
	require.Len(t, chain, 1)
	assert.Equal(t, int64(20), chain[0].UserID)
}

func TestResolveChainNoReferrer(t *testing.T) {
	store := &fakeChainStore{parents: map[int64]int64{}}

	chain, err := ResolveChain(context.Background(), store, ptr(10), nil)
	require.NoError(t, err)
	assert.Empty(t, chain)
}

func TestResolveChainNilUser(t *testing.T) {
	store := &fakeChainStore{parents: map[int64]int64{}}

	chain, err := ResolveChain(context.Background(), store, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, chain)
}

func TestResolveChainOverrideSeedsLevelOne(t *testing.T) {
	// El código explícito del checkout gana sobre el referidor guardado:
	// el nivel 1 es el dueño del código, y la cadena sigue desde él.
	store := &fakeChainStore{parents: map[int64]int64{10: 99, 77: 88}}

	chain, err := ResolveChain(context.Background(), store, ptr(10), ptr(77))
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, Level{Nivel: 1, UserID: 77}, chain[0])
	assert.Equal(t, Level{Nivel: 2, UserID: 88}, chain[1])
}

func TestResolveChainOverrideForGuest(t *testing.T) {
	store := &fakeChainStore{parents: map[int64]int64{}}

	chain, err := ResolveChain(context.Background(), store, nil, ptr(77))
	require.NoError(t, err)
	require.Len(t, chain, 1)
	assert.Equal(t, int64(77), chain[0].UserID)
}

func TestResolveChainLookupErrorAborts(t *testing.T) {
	// Un error en cualquier nivel descarta la cadena completa: nunca se
	// asignan comisiones sobre una cadena parcial.
	store := &fakeChainStore{parents: map[int64]int64{10: 20, 20: 30}, failOn: 20}

	chain, err := ResolveChain(context.Background(), store, ptr(10), nil)
	require.Error(t, err)
	assert.Nil(t, chain)
}
