package channel

import (
	"context"
	"testing"

	"adsettle/internal/repositories"
	"adsettle/internal/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, nil)

	channel, err := svc.Register(context.Background(), 7, "tech", 1000, 0.10, 0.50)
	require.NoError(t, err)
	assert.NotZero(t, channel.ID)
	assert.True(t, channel.Active)
	assert.Equal(t, 1.0, channel.QualityScore)
	assert.Equal(t, 0.10, channel.MinCPC)
}

func TestRegister_Validation(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, nil)

	_, err := svc.Register(context.Background(), 7, "  ", 1000, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = svc.Register(context.Background(), 7, "tech", 0, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidSubscribers)
}

func TestDeactivate(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	channel, err := svc.Register(ctx, 7, "tech", 1000, 0, 0)
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, channel.ID))
	// Deactivating twice is a no-op.
	require.NoError(t, svc.Deactivate(ctx, channel.ID))

	got, err := svc.Get(ctx, channel.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestGet_Unknown(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, nil)

	_, err := svc.Get(context.Background(), 404)
	assert.ErrorIs(t, err, repositories.ErrChannelNotFound)
}
