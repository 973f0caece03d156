package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ana@financial360.com", NormalizeEmail("  Ana@Financial360.COM  "))
	assert.Equal(t, "ana@financial360.com", NormalizeEmail("ana@financial360.com"))
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("secreto123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"))

	assert.True(t, CheckPasswordHash("secreto123", hash))
	assert.False(t, CheckPasswordHash("otra-clave", hash))
}

func TestNewExternalReference(t *testing.T) {
	ref := NewExternalReference()
	assert.True(t, strings.HasPrefix(ref, "F360-"))
	assert.NotEqual(t, ref, NewExternalReference())
}
