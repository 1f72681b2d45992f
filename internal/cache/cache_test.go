package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var got map[string]int64
	ok, err := m.Get(ctx, "settings", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "settings", map[string]int64{"referral_default_points": 100}, 0))
	ok, err = m.Get(ctx, "settings", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(100), got["referral_default_points"])

	require.NoError(t, m.Delete(ctx, "settings"))
	ok, _ = m.Get(ctx, "settings", &got)
	assert.False(t, ok)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "home", "x", time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	var s string
	ok, err := m.Get(ctx, "home", &s)
	require.NoError(t, err)
	assert.False(t, ok)
}
