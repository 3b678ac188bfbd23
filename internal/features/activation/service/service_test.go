package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-bot/internal/features/activation/repository/file"
)

type brokenRepo struct{}

func (brokenRepo) IsActivated(context.Context, string) (bool, error) {
	return false, errors.New("store down")
}

func (brokenRepo) SetActivated(context.Context, string, bool) (bool, error) {
	return false, errors.New("store down")
}

func TestService_Toggles(t *testing.T) {
	svc := NewService(file.New(filepath.Join(t.TempDir(), "a.json")))
	ctx := context.Background()

	assert.False(t, svc.IsActive(ctx, "g1"))

	reply, err := svc.Deactivate(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, ReplyAlreadyDeactivated, reply)

	reply, err = svc.Reactivate(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, ReplyReactivated, reply)
	assert.True(t, svc.IsActive(ctx, "g1"))

	reply, err = svc.Reactivate(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, ReplyAlreadyActive, reply)

	reply, err = svc.Deactivate(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, ReplyDeactivated, reply)
	assert.False(t, svc.IsActive(ctx, "g1"))
}

func TestService_JoinedActivates(t *testing.T) {
	svc := NewService(file.New(filepath.Join(t.TempDir(), "a.json")))
	ctx := context.Background()

	svc.Joined(ctx, "g1")
	assert.True(t, svc.IsActive(ctx, "g1"))
	svc.Joined(ctx, "g1")
	assert.True(t, svc.IsActive(ctx, "g1"))
}

func TestService_StoreFailure(t *testing.T) {
	svc := NewService(brokenRepo{})
	ctx := context.Background()

	assert.False(t, svc.IsActive(ctx, "g1"))
	_, err := svc.Deactivate(ctx, "g1")
	assert.Error(t, err)
	assert.NotPanics(t, func() { svc.Joined(ctx, "g1") })
}
