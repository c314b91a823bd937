package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotaEnforcer_WithinLimit(t *testing.T) {
	q := NewQuotaEnforcer(3)
	for i := 0; i < 3; i++ {
		require.NoError(t, q.Check("g"))
	}
	assert.Equal(t, 3, q.Current())
	assert.Equal(t, 3, q.MaxPasses())
}

func TestQuotaEnforcer_ExceedsLimit(t *testing.T) {
	q := NewQuotaEnforcer(2)
	require.NoError(t, q.Check("g"))
	require.NoError(t, q.Check("g"))

	err := q.Check("g")
	require.Error(t, err)
	assert.True(t, IsPassesExceededError(err))
	assert.True(t, IsCascadeLimit(err))
	assert.Equal(t, "game g exceeded cascade pass quota: 3 passes > 2 limit", err.Error())

	wrapped := fmt.Errorf("resolve: %w", err)
	assert.True(t, IsPassesExceededError(wrapped))
}

func TestQuotaEnforcer_ZeroLimit(t *testing.T) {
	assert.Error(t, NewQuotaEnforcer(0).Check("g"))
}
