package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidPassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		want     bool
	}{
		{"all classes present", "Abcdef1@", true},
		{"no uppercase", "abcdef1@", false},
		{"no lowercase", "ABCDEF1@", false},
		{"no digit", "Abcdefg@", false},
		{"no special", "Abcdef12", false},
		{"too short", "Ab1@", false},
		{"empty", "", false},
		{"disallowed character", "Abcdef1@ ", false},
		{"disallowed special", "Abcdef1#", false},
		{"longer valid", "S0meL0nger&Pass", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsValidPassword(tc.password))
		})
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Abcdef1@", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "Abcdef1@", hash)

	assert.True(t, VerifyPassword(hash, "Abcdef1@"))
	assert.False(t, VerifyPassword(hash, "abcdef1@"))
	assert.False(t, VerifyPassword("not-a-hash", "Abcdef1@"))
}
