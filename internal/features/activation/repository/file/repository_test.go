package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activated_servers.json")
	ctx := context.Background()

	r := New(path)
	ok, err := r.IsActivated(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, ok)

	changed, err := r.SetActivated(ctx, "g1", true)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = r.SetActivated(ctx, "g1", true)
	require.NoError(t, err)
	assert.False(t, changed, "already active")

	_, err = r.SetActivated(ctx, "g2", true)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `["g1","g2"]`, string(data))

	reloaded := New(path)
	ok, err = reloaded.IsActivated(ctx, "g2")
	require.NoError(t, err)
	assert.True(t, ok)

	changed, err = reloaded.SetActivated(ctx, "g1", false)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = reloaded.SetActivated(ctx, "g1", false)
	require.NoError(t, err)
	assert.False(t, changed)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `["g2"]`, string(data))
}

func TestRepository_MalformedFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activated_servers.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	r := New(path)
	ok, err := r.IsActivated(context.Background(), "g1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_EmptyListIsArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activated_servers.json")
	r := New(path)
	ctx := context.Background()

	_, err := r.SetActivated(ctx, "g1", true)
	require.NoError(t, err)
	_, err = r.SetActivated(ctx, "g1", false)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}
