package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigma/auth/internal/domain"
)

func TestNewPhone_StripsFormatting(t *testing.T) {
	phone, err := domain.NewPhone("+34 (612) 345-678")
	require.NoError(t, err)
	assert.Equal(t, "+34612345678", phone.Value())
}

func TestNewPhone_RejectsInvalidNumbers(t *testing.T) {
	cases := []string{
		"",
		"612345678",           // missing country code
		"+0612345678",         // leading zero after plus
		"+1234",               // too short
		"+123456789012345678", // too long
	}
	for _, raw := range cases {
		_, err := domain.NewPhone(raw)
		assert.Error(t, err, "expected %q to be rejected", raw)
	}
}
