package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStateRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryStateRepository()

	initial, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, initial.Habits)

	s := sampleState(t)
	require.NoError(t, repo.Save(ctx, s))
	assert.Equal(t, 1, repo.Saves())

	s.Habits[0].Name = "mutated after save"

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Habits, 2)
	assert.Equal(t, "Read", got.Habits[0].Name, "stored state is isolated from callers")

	got.Habits = nil
	again, _ := repo.Load(ctx)
	assert.Len(t, again.Habits, 2)
}
