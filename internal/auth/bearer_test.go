package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":   "abc",
		"bearer abc":   "abc",
		"BEARER  abc ": "abc",
		"abc":          "abc",
		"Bearer ":      "",
		"":             "",
	}

	for in, want := range tests {
		assert.Equal(t, want, BearerToken(in), "input %q", in)
	}
}
