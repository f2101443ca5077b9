package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := NewCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	require.NoError(t, c.Migrate(context.Background()))
	return c
}

func TestCache_MissReturnsNil(t *testing.T) {
	c := newTestCache(t)

	data, err := c.GetProfile(context.Background(), "acme.com")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestCache_SetGetRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	payload := []byte(`{"company_name":"Acme","website":"acme.com"}`)
	require.NoError(t, c.SetProfile(ctx, "acme.com", "dataset", payload, time.Hour))

	data, err := c.GetProfile(ctx, "acme.com")
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestCache_SetReplacesExisting(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetProfile(ctx, "acme.com", "dataset", []byte(`{"v":1}`), time.Hour))
	require.NoError(t, c.SetProfile(ctx, "acme.com", "salesforce", []byte(`{"v":2}`), time.Hour))

	data, err := c.GetProfile(ctx, "acme.com")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(data))
}

func TestCache_ExpiredEntryIsMiss(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetProfile(ctx, "acme.com", "dataset", []byte(`{}`), -time.Minute))

	data, err := c.GetProfile(ctx, "acme.com")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestCache_Prune(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetProfile(ctx, "stale.com", "dataset", []byte(`{}`), -time.Minute))
	require.NoError(t, c.SetProfile(ctx, "fresh.com", "dataset", []byte(`{}`), time.Hour))

	n, err := c.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := c.GetProfile(ctx, "fresh.com")
	require.NoError(t, err)
	assert.NotNil(t, data)
}
