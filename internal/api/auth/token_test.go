package auth

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationToken(t *testing.T) {
	token, err := generateVerificationToken()
	require.NoError(t, err)

	raw, err := hex.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, raw, 16)

	other, err := generateVerificationToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other, "tokens must not repeat")
}
