package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"

	"giveaway-bot/internal/common/logger"
	"giveaway-bot/internal/domain/giveaway"
)

// ParticipantResolver reports whether a user is still a member of a guild.
type ParticipantResolver interface {
	IsMember(ctx context.Context, guildID, userID string) (bool, error)
}

// record is the mutable state behind one giveaway. Every field below mu is
// guarded by it. I/O never happens while mu is held.
type record struct {
	mu sync.Mutex

	cfg       giveaway.Config
	state     giveaway.State
	startedAt time.Time
	endedAt   time.Time

	entrants   []string
	entrantSet map[string]struct{}
	winners    []string
	excluded   []string
	excludeSet map[string]struct{}

	// closed is set once finalization starts; entries are refused from then on.
	closed bool
	// removed is set when the giveaway is cancelled and dropped from the registry.
	removed bool

	countdown *Countdown
}

// Registry owns every live giveaway of the process.
type Registry struct {
	ctx    context.Context
	cancel context.CancelFunc

	records  *xsync.MapOf[string, *record]
	resolver ParticipantResolver
	listener giveaway.Listener
	tick     time.Duration
	now      func() time.Time
}

// NewRegistry creates a registry. tick is the length of one countdown unit.
func NewRegistry(resolver ParticipantResolver, listener giveaway.Listener, tick time.Duration) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	if listener == nil {
		listener = giveaway.Listeners(nil)
	}
	if tick <= 0 {
		tick = time.Second
	}
	return &Registry{
		ctx:      ctx,
		cancel:   cancel,
		records:  xsync.NewMapOf[*record](),
		resolver: resolver,
		listener: listener,
		tick:     tick,
		now:      time.Now,
	}
}

// Stop cancels every countdown and waits for them to exit.
func (r *Registry) Stop() {
	logger.Component("giveaway").Info().Msg("Stopping giveaway registry")
	r.cancel()
	r.records.Range(func(_ string, rec *record) bool {
		rec.mu.Lock()
		cd := rec.countdown
		rec.mu.Unlock()
		if cd != nil {
			<-cd.Done()
		}
		return true
	})
	logger.Component("giveaway").Info().Msg("Giveaway registry stopped")
}

// Create registers a new active giveaway and starts its countdown.
func (r *Registry) Create(ctx context.Context, cfg giveaway.Config) (string, error) {
	if err := validateConfig(cfg, r.tick); err != nil {
		return "", err
	}

	id := cfg.MessageID
	if id == "" {
		id = uuid.NewString()
		cfg.MessageID = id
	}

	rec := &record{
		cfg:        cfg,
		state:      giveaway.StateActive,
		startedAt:  r.now().UTC(),
		entrantSet: make(map[string]struct{}),
		excludeSet: make(map[string]struct{}),
	}
	if _, loaded := r.records.LoadOrStore(id, rec); loaded {
		return "", fmt.Errorf("%w: %s", giveaway.ErrAlreadyExists, id)
	}

	rec.mu.Lock()
	live := !rec.removed
	if live {
		rec.countdown = NewCountdown(cfg.DurationSeconds, r.tick, CountdownHooks{
			OnDisplay: func(ctx context.Context, _ int64, display string) {
				r.onCountdown(ctx, rec, display)
			},
			OnExpire: func(context.Context) {
				if _, err := r.finalize(r.ctx, rec); err != nil {
					logger.Component("giveaway").Warn().Err(err).Str("giveaway_id", id).Msg("Finalize at expiry skipped")
				}
			},
		})
		rec.countdown.Start(r.ctx)
	}
	snap := rec.snapshot()
	rec.mu.Unlock()
	if live {
		r.emit(ctx, giveaway.Event{Type: giveaway.EventCreated, Giveaway: snap})
	}

	logger.Component("giveaway").Info().
		Str("giveaway_id", id).
		Str("guild_id", cfg.GuildID).
		Int("winners", cfg.WinnersCount).
		Int64("duration_seconds", cfg.DurationSeconds).
		Msg("Giveaway created")
	return id, nil
}

// RegisterEntrant adds a user to an active giveaway. Repeated entries are no-ops.
func (r *Registry) RegisterEntrant(ctx context.Context, id, userID string) error {
	rec, ok := r.records.Load(id)
	if !ok {
		return giveaway.ErrGiveawayNotFound
	}

	rec.mu.Lock()
	if rec.removed {
		rec.mu.Unlock()
		return giveaway.ErrGiveawayNotFound
	}
	if rec.closed || rec.state != giveaway.StateActive {
		rec.mu.Unlock()
		return giveaway.ErrGiveawayEnded
	}
	if _, dup := rec.entrantSet[userID]; dup {
		rec.mu.Unlock()
		return nil
	}
	rec.entrantSet[userID] = struct{}{}
	rec.entrants = append(rec.entrants, userID)
	snap := rec.snapshot()
	rec.mu.Unlock()

	r.emit(ctx, giveaway.Event{Type: giveaway.EventEntered, Giveaway: snap})
	return nil
}

// Cancel removes a giveaway. Its countdown has fully stopped when Cancel returns.
func (r *Registry) Cancel(ctx context.Context, id string) error {
	rec, ok := r.records.LoadAndDelete(id)
	if !ok {
		return giveaway.ErrGiveawayNotFound
	}

	rec.mu.Lock()
	previous := rec.state
	rec.removed = true
	rec.closed = true
	rec.state = giveaway.StateCancelled
	rec.endedAt = r.now().UTC()
	cd := rec.countdown
	snap := rec.snapshot()
	rec.mu.Unlock()

	if cd != nil {
		cd.Stop()
	}

	logger.Component("giveaway").Info().Str("giveaway_id", id).Msg("Giveaway cancelled")
	r.emit(ctx, giveaway.Event{Type: giveaway.EventCancelled, Giveaway: snap, PreviousState: previous})
	return nil
}

// Get returns a snapshot of one giveaway.
func (r *Registry) Get(_ context.Context, id string) (*giveaway.Giveaway, error) {
	rec, ok := r.records.Load(id)
	if !ok {
		return nil, giveaway.ErrGiveawayNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.removed {
		return nil, giveaway.ErrGiveawayNotFound
	}
	snap := rec.snapshot()
	return &snap, nil
}

// List returns snapshots of every giveaway still held, ordered by start time.
func (r *Registry) List(_ context.Context) []giveaway.Giveaway {
	out := make([]giveaway.Giveaway, 0, r.records.Size())
	r.records.Range(func(_ string, rec *record) bool {
		rec.mu.Lock()
		if !rec.removed {
			out = append(out, rec.snapshot())
		}
		rec.mu.Unlock()
		return true
	})
	sortByStart(out)
	return out
}

// Len returns the number of giveaways held, including ended ones.
func (r *Registry) Len() int {
	return r.records.Size()
}

func (r *Registry) onCountdown(ctx context.Context, rec *record, display string) {
	rec.mu.Lock()
	if rec.removed || rec.closed {
		rec.mu.Unlock()
		return
	}
	snap := rec.snapshot()
	rec.mu.Unlock()

	r.emit(ctx, giveaway.Event{Type: giveaway.EventCountdown, Giveaway: snap, Display: display})
}

func (r *Registry) emit(ctx context.Context, e giveaway.Event) {
	r.listener.OnEvent(ctx, e)
}

// snapshot copies the record. Caller holds rec.mu.
func (rec *record) snapshot() giveaway.Giveaway {
	g := giveaway.Giveaway{
		ID:             rec.cfg.MessageID,
		GuildID:        rec.cfg.GuildID,
		ChannelID:      rec.cfg.ChannelID,
		Prize:          rec.cfg.Prize,
		HostTag:        rec.cfg.HostTag,
		WinnersCount:   rec.cfg.WinnersCount,
		TotalSeconds:   rec.cfg.DurationSeconds,
		State:          rec.state,
		Entrants:       append([]string{}, rec.entrants...),
		Winners:        append([]string{}, rec.winners...),
		RerollExcluded: append([]string{}, rec.excluded...),
		StartedAt:      rec.startedAt,
	}
	switch {
	case rec.closed:
		g.RemainingSeconds = 0
	case rec.countdown != nil:
		g.RemainingSeconds = rec.countdown.Remaining()
	default:
		g.RemainingSeconds = rec.cfg.DurationSeconds
	}
	if !rec.endedAt.IsZero() {
		ended := rec.endedAt
		g.EndedAt = &ended
	}
	return g
}

func validateConfig(cfg giveaway.Config, tick time.Duration) error {
	switch {
	case strings.TrimSpace(cfg.Prize) == "":
		return fmt.Errorf("%w: prize is required", giveaway.ErrInvalidConfig)
	case cfg.WinnersCount < 1:
		return fmt.Errorf("%w: winners count must be at least 1", giveaway.ErrInvalidConfig)
	case cfg.DurationSeconds < 1:
		return fmt.Errorf("%w: duration must be positive", giveaway.ErrInvalidConfig)
	case cfg.DurationSeconds > math.MaxInt64/int64(tick):
		return fmt.Errorf("%w: duration is too long", giveaway.ErrInvalidConfig)
	}
	return nil
}
