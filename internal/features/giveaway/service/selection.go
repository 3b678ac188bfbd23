package service

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"giveaway-bot/internal/common/logger"
	"giveaway-bot/internal/domain/giveaway"
	"giveaway-bot/internal/utils/random"
)

// maxConcurrentLookups bounds membership lookups during finalization.
const maxConcurrentLookups = 8

// Finalize closes entries and draws winners. It runs at most once per giveaway;
// the countdown calls it at expiry, and it may be called earlier to end a
// giveaway manually.
func (r *Registry) Finalize(ctx context.Context, id string) (*giveaway.Giveaway, error) {
	rec, ok := r.records.Load(id)
	if !ok {
		return nil, giveaway.ErrGiveawayNotFound
	}
	return r.finalize(ctx, rec)
}

func (r *Registry) finalize(ctx context.Context, rec *record) (*giveaway.Giveaway, error) {
	rec.mu.Lock()
	if rec.removed {
		rec.mu.Unlock()
		return nil, giveaway.ErrGiveawayNotFound
	}
	if rec.closed {
		rec.mu.Unlock()
		return nil, giveaway.ErrAlreadyFinalized
	}
	rec.closed = true
	cd := rec.countdown
	guildID := rec.cfg.GuildID
	entrants := append([]string{}, rec.entrants...)
	rec.mu.Unlock()

	// Non-blocking: finalize may run on the countdown goroutine itself.
	if cd != nil {
		cd.Cancel()
	}

	eligible := r.resolveEligible(ctx, guildID, entrants)

	rec.mu.Lock()
	if rec.removed {
		rec.mu.Unlock()
		return nil, giveaway.ErrGiveawayNotFound
	}
	rec.endedAt = r.now().UTC()
	if len(eligible) < rec.cfg.WinnersCount {
		rec.state = giveaway.StateEndedInsufficient
		rec.winners = nil
	} else {
		winners, err := random.Sample(eligible, rec.cfg.WinnersCount)
		if err != nil {
			// Entries stay closed; without a random source no fair draw is possible.
			rec.state = giveaway.StateEndedInsufficient
			rec.winners = nil
			logger.Component("giveaway").Error().Err(err).Str("giveaway_id", rec.cfg.MessageID).Msg("Winner draw failed")
		} else {
			rec.state = giveaway.StateEndedSuccess
			rec.winners = winners
		}
	}
	snap := rec.snapshot()
	rec.mu.Unlock()

	logger.Component("giveaway").Info().
		Str("giveaway_id", snap.ID).
		Str("state", string(snap.State)).
		Int("entrants", len(entrants)).
		Int("eligible", len(eligible)).
		Strs("winners", snap.Winners).
		Msg("Giveaway finalized")

	r.emit(ctx, giveaway.Event{Type: giveaway.EventEnded, Giveaway: snap})
	return &snap, nil
}

// resolveEligible keeps entrants that are still guild members, preserving
// entry order. A failed lookup counts as absent.
func (r *Registry) resolveEligible(ctx context.Context, guildID string, entrants []string) []string {
	if r.resolver == nil || len(entrants) == 0 {
		return entrants
	}

	present := make([]bool, len(entrants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for i, userID := range entrants {
		i, userID := i, userID
		g.Go(func() error {
			ok, err := r.resolver.IsMember(gctx, guildID, userID)
			if err != nil {
				logger.Component("giveaway").Warn().Err(err).
					Str("guild_id", guildID).
					Str("user_id", userID).
					Msg("Membership lookup failed, excluding entrant")
				return nil
			}
			present[i] = ok
			return nil
		})
	}
	_ = g.Wait()

	eligible := make([]string, 0, len(entrants))
	for i, userID := range entrants {
		if present[i] {
			eligible = append(eligible, userID)
		}
	}
	return eligible
}

// Reroll replaces each target winner in place with a fresh draw from entrants
// that have never won or been rerolled out. Nothing changes on failure.
func (r *Registry) Reroll(ctx context.Context, id string, targets []string) ([]string, error) {
	rec, ok := r.records.Load(id)
	if !ok {
		return nil, giveaway.ErrGiveawayNotFound
	}

	targets = dedupe(targets)
	if len(targets) == 0 {
		return nil, giveaway.ErrEmptyRerollTargets
	}

	rec.mu.Lock()
	if rec.removed {
		rec.mu.Unlock()
		return nil, giveaway.ErrGiveawayNotFound
	}
	if rec.state != giveaway.StateEndedSuccess || len(rec.winners) == 0 {
		rec.mu.Unlock()
		return nil, giveaway.ErrNoWinners
	}

	position := make(map[string]int, len(rec.winners))
	for i, w := range rec.winners {
		position[w] = i
	}
	for _, t := range targets {
		if _, isWinner := position[t]; !isWinner {
			rec.mu.Unlock()
			return nil, fmt.Errorf("%w: %s", giveaway.ErrNotAWinner, t)
		}
	}

	pool := make([]string, 0, len(rec.entrants))
	for _, e := range rec.entrants {
		if _, isWinner := position[e]; isWinner {
			continue
		}
		if _, gone := rec.excludeSet[e]; gone {
			continue
		}
		pool = append(pool, e)
	}
	if len(pool) < len(targets) {
		rec.mu.Unlock()
		return nil, giveaway.ErrInsufficientEligible
	}

	picks, err := random.Sample(pool, len(targets))
	if err != nil {
		rec.mu.Unlock()
		return nil, fmt.Errorf("reroll draw: %w", err)
	}

	for i, t := range targets {
		rec.winners[position[t]] = picks[i]
		rec.excludeSet[t] = struct{}{}
		rec.excluded = append(rec.excluded, t)
	}
	snap := rec.snapshot()
	rec.mu.Unlock()

	logger.Component("giveaway").Info().
		Str("giveaway_id", id).
		Strs("replaced", targets).
		Strs("replacements", picks).
		Msg("Giveaway rerolled")

	r.emit(ctx, giveaway.Event{
		Type:         giveaway.EventRerolled,
		Giveaway:     snap,
		Replaced:     targets,
		Replacements: picks,
	})
	return append([]string{}, snap.Winners...), nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func sortByStart(gs []giveaway.Giveaway) {
	sort.SliceStable(gs, func(i, j int) bool {
		if gs[i].StartedAt.Equal(gs[j].StartedAt) {
			return gs[i].ID < gs[j].ID
		}
		return gs[i].StartedAt.Before(gs[j].StartedAt)
	})
}
