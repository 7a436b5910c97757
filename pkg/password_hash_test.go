package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	passwordHash, err := HashPassword("welcome1")
	require.NoError(t, err)
	assert.NotEmpty(t, passwordHash)

	assert.True(t, CheckPasswordHash("welcome1", passwordHash))
	assert.False(t, CheckPasswordHash("welcome2", passwordHash))
	assert.False(t, CheckPasswordHash("welcome1", "not-a-bcrypt-hash"))
}
