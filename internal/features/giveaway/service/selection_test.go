package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-bot/internal/domain/giveaway"
)

func finalizedGiveaway(t *testing.T, r *Registry, winners int, entrants ...string) *giveaway.Giveaway {
	t.Helper()
	ctx := context.Background()
	id, err := r.Create(ctx, longConfig("m1", winners))
	require.NoError(t, err)
	enter(t, r, id, entrants...)
	g, err := r.Finalize(ctx, id)
	require.NoError(t, err)
	require.Equal(t, giveaway.StateEndedSuccess, g.State)
	return g
}

func TestReroll_ReplacesInPlaceAndNeverRepeats(t *testing.T) {
	r, rec := newTestRegistry(t, nil)
	ctx := context.Background()
	entrants := []string{"a", "b", "c", "d", "e"}
	g := finalizedGiveaway(t, r, 2, entrants...)
	original := append([]string{}, g.Winners...)

	target := original[0]
	winners, err := r.Reroll(ctx, g.ID, []string{target})
	require.NoError(t, err)
	require.Len(t, winners, 2)
	assert.Equal(t, original[1], winners[1], "untargeted winner keeps its slot")
	assert.NotContains(t, original, winners[0])
	assert.Contains(t, entrants, winners[0])

	snap, err := r.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{target}, snap.RerollExcluded)

	e, ok := rec.last(giveaway.EventRerolled)
	require.True(t, ok)
	assert.Equal(t, []string{target}, e.Replaced)
	assert.Equal(t, []string{winners[0]}, e.Replacements)

	// Rerolling the newcomer must not bring back the first target.
	second, err := r.Reroll(ctx, g.ID, []string{winners[0]})
	require.NoError(t, err)
	assert.NotEqual(t, target, second[0])
	assert.NotEqual(t, winners[0], second[0])
	assert.Equal(t, original[1], second[1])

	// Five entrants, two winners, two excluded: only one candidate left.
	_, err = r.Reroll(ctx, g.ID, []string{second[0], second[1]})
	assert.ErrorIs(t, err, giveaway.ErrInsufficientEligible)

	third, err := r.Reroll(ctx, g.ID, []string{second[1]})
	require.NoError(t, err)
	_, err = r.Reroll(ctx, g.ID, []string{third[0]})
	assert.ErrorIs(t, err, giveaway.ErrInsufficientEligible)

	seen := map[string]bool{}
	final, err := r.Get(ctx, g.ID)
	require.NoError(t, err)
	for _, w := range append(final.Winners, final.RerollExcluded...) {
		assert.False(t, seen[w], "%s appears twice", w)
		seen[w] = true
	}
}

func TestReroll_FailuresDoNotMutate(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	ctx := context.Background()
	g := finalizedGiveaway(t, r, 2, "a", "b", "c")

	before, err := r.Get(ctx, g.ID)
	require.NoError(t, err)

	_, err = r.Reroll(ctx, g.ID, []string{"nobody"})
	assert.ErrorIs(t, err, giveaway.ErrNotAWinner)

	_, err = r.Reroll(ctx, g.ID, []string{before.Winners[0], "nobody"})
	assert.ErrorIs(t, err, giveaway.ErrNotAWinner)

	_, err = r.Reroll(ctx, g.ID, []string{before.Winners[0], before.Winners[1]})
	assert.ErrorIs(t, err, giveaway.ErrInsufficientEligible)

	_, err = r.Reroll(ctx, g.ID, nil)
	assert.ErrorIs(t, err, giveaway.ErrEmptyRerollTargets)

	after, err := r.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Winners, after.Winners)
	assert.Empty(t, after.RerollExcluded)
}

func TestReroll_DuplicateTargetsCountOnce(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	ctx := context.Background()
	g := finalizedGiveaway(t, r, 1, "a", "b")

	winners, err := r.Reroll(ctx, g.ID, []string{g.Winners[0], g.Winners[0]})
	require.NoError(t, err)
	require.Len(t, winners, 1)
	assert.NotEqual(t, g.Winners[0], winners[0])
}

func TestReroll_RequiresWinners(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	ctx := context.Background()

	_, err := r.Reroll(ctx, "missing", []string{"a"})
	assert.ErrorIs(t, err, giveaway.ErrGiveawayNotFound)

	id, err := r.Create(ctx, longConfig("active", 1))
	require.NoError(t, err)
	enter(t, r, id, "a", "b")
	_, err = r.Reroll(ctx, id, []string{"a"})
	assert.ErrorIs(t, err, giveaway.ErrNoWinners)

	id, err = r.Create(ctx, longConfig("short", 3))
	require.NoError(t, err)
	enter(t, r, id, "a")
	_, err = r.Finalize(ctx, id)
	require.NoError(t, err)
	_, err = r.Reroll(ctx, id, []string{"a"})
	assert.ErrorIs(t, err, giveaway.ErrNoWinners)
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, dedupe([]string{"a", "", "b", "a"}))
	assert.Empty(t, dedupe(nil))
}
