package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"john.doe@example.com", "jo****@example.com"},
		{"ab@x.com", "a*@x.com"},
		{"a@x.com", "a*@x.com"},
		{"abc@x.com", "ab****@x.com"},
		{"no-at-sign", "unknown@example.com"},
		{"", "unknown@example.com"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MaskEmail(tc.in), "mask(%q)", tc.in)
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("john.doe@example.com"))
	assert.True(t, IsValidEmail("a@x.com"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("spaced out@example.com"))
	assert.False(t, IsValidEmail(""))
}
