package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"

	apperrors "giveaway-bot/internal/common/errors"
	"giveaway-bot/internal/common/logger"
	"giveaway-bot/internal/domain/giveaway"
)

var (
	ErrSetupInProgress = errors.New("a giveaway setup is already in progress")
	ErrSetupTimeout    = errors.New("giveaway setup timed out")
	ErrSetupExited     = errors.New("giveaway setup exited")
	ErrSetupCancelled  = errors.New("giveaway setup cancelled")
)

const (
	noticeTimeout = "Timed out. Giveaway setup canceled."
	noticeExited  = "Giveaway setup exited."

	diagnosticTTL = 3 * time.Second
	exitNoticeTTL = time.Second
)

// State of a setup session.
type State string

const (
	StateCollecting State = "collecting"
	StateCompleted  State = "completed"
	StateAborted    State = "aborted"
)

// AbortReason explains why a session ended without a giveaway.
type AbortReason string

const (
	AbortNone     AbortReason = ""
	AbortExit     AbortReason = "exit_requested"
	AbortTimeout  AbortReason = "timeout"
	AbortShutdown AbortReason = "shutdown"
)

// Reply is an operator message received during setup.
type Reply struct {
	MessageID string
	Content   string
}

// Conversation is the chat channel a setup session talks through. It is bound
// to one guild, channel and operator.
type Conversation interface {
	ChannelResolver
	Prompt(ctx context.Context, text string) (messageID string, err error)
	AwaitReply(ctx context.Context, timeout time.Duration) (Reply, error)
	// Notice posts a short message; a positive ttl deletes it afterwards.
	Notice(ctx context.Context, text string, ttl time.Duration)
	Cleanup(ctx context.Context, messageIDs ...string)
}

// ErrReplyTimeout must be returned by Conversation.AwaitReply on timeout.
var ErrReplyTimeout = errors.New("reply timeout")

// Launcher receives the collected config once a session completes.
type Launcher interface {
	Launch(ctx context.Context, cfg giveaway.Config) error
}

// Observer is told how each session ended.
type Observer interface {
	SetupFinished(outcome string)
}

// Manager enforces one running setup per guild.
type Manager struct {
	slots       *xsync.MapOf[string, *Session]
	stepTimeout time.Duration
	exitKeyword string
	launcher    Launcher
	observer    Observer
}

// NewManager creates a manager. exitKeyword is matched case-insensitively.
func NewManager(launcher Launcher, observer Observer, stepTimeout time.Duration, exitKeyword string) *Manager {
	return &Manager{
		slots:       xsync.NewMapOf[*Session](),
		stepTimeout: stepTimeout,
		exitKeyword: strings.ToLower(strings.TrimSpace(exitKeyword)),
		launcher:    launcher,
		observer:    observer,
	}
}

// Session is one in-flight setup dialogue.
type Session struct {
	ID      string
	GuildID string

	manager  *Manager
	conv     Conversation
	released atomic.Bool

	mu          sync.Mutex
	state       State
	abortReason AbortReason
	stepIndex   int
	cfg         giveaway.Config
}

// Start claims the guild's setup slot.
func (m *Manager) Start(guildID string, conv Conversation) (*Session, error) {
	s := &Session{
		ID:      uuid.NewString(),
		GuildID: guildID,
		manager: m,
		conv:    conv,
		state:   StateCollecting,
		cfg:     giveaway.Config{GuildID: guildID},
	}
	if _, loaded := m.slots.LoadOrStore(guildID, s); loaded {
		return nil, ErrSetupInProgress
	}
	logger.Component("setup").Info().Str("session_id", s.ID).Str("guild_id", guildID).Msg("Setup session started")
	return s, nil
}

// InProgress reports whether a guild has a running setup.
func (m *Manager) InProgress(guildID string) bool {
	_, ok := m.slots.Load(guildID)
	return ok
}

// release frees the guild slot if s still holds it. Only the holder can clear
// the slot, so a single release per session makes load-then-delete safe.
func (m *Manager) release(s *Session) {
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	if held, ok := m.slots.Load(s.GuildID); ok && held == s {
		m.slots.Delete(s.GuildID)
	}
}

func (m *Manager) finished(outcome string) {
	if m.observer != nil {
		m.observer.SetupFinished(outcome)
	}
}

// Run walks the operator through every step. The slot is released before the
// launcher is invoked, so a new setup may begin while the giveaway is posted.
func (s *Session) Run(ctx context.Context) (giveaway.Config, error) {
	for i, step := range Steps {
		s.setStep(i)
		v, err := s.ask(ctx, step)
		if err != nil {
			return giveaway.Config{}, err
		}
		s.mu.Lock()
		step.Apply(&s.cfg, v)
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.state = StateCompleted
	cfg := s.cfg
	s.mu.Unlock()
	s.manager.release(s)
	s.manager.finished(string(StateCompleted))

	logger.Component("setup").Info().Str("session_id", s.ID).Str("guild_id", s.GuildID).Msg("Setup session completed")

	if s.manager.launcher != nil {
		if err := s.manager.launcher.Launch(ctx, cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// ask repeats one step until it gets a valid answer or the session aborts.
func (s *Session) ask(ctx context.Context, step Step) (value, error) {
	for {
		promptID, err := s.conv.Prompt(ctx, step.Prompt)
		if err != nil {
			// Without a prompt the operator cannot answer; treat it as a shutdown.
			s.abort(ctx, AbortShutdown, promptID)
			return value{}, apperrors.Wrap(err, apperrors.ErrCodeDiscordAPI, "Failed to post setup prompt")
		}

		reply, err := s.conv.AwaitReply(ctx, s.manager.stepTimeout)
		switch {
		case errors.Is(err, ErrReplyTimeout):
			s.abort(ctx, AbortTimeout, promptID)
			return value{}, ErrSetupTimeout
		case err != nil:
			s.abort(ctx, AbortShutdown, promptID)
			return value{}, ErrSetupCancelled
		}

		if s.isExit(reply.Content) {
			s.abort(ctx, AbortExit, promptID, reply.MessageID)
			return value{}, ErrSetupExited
		}

		v, diag, ok := convert(ctx, step.Kind, reply.Content, s.conv)
		s.conv.Cleanup(ctx, promptID, reply.MessageID)
		if ok {
			return v, nil
		}
		logger.Component("setup").Debug().
			Str("session_id", s.ID).
			Str("step", step.Kind.String()).
			Msg("Setup answer rejected")
		s.conv.Notice(ctx, diag, diagnosticTTL)
	}
}

func (s *Session) isExit(content string) bool {
	return s.manager.exitKeyword != "" &&
		strings.ToLower(strings.TrimSpace(content)) == s.manager.exitKeyword
}

func (s *Session) abort(ctx context.Context, reason AbortReason, cleanup ...string) {
	s.mu.Lock()
	s.state = StateAborted
	s.abortReason = reason
	s.mu.Unlock()
	s.manager.release(s)
	s.manager.finished(string(reason))

	ids := make([]string, 0, len(cleanup))
	for _, id := range cleanup {
		if id != "" {
			ids = append(ids, id)
		}
	}

	// Use a fresh context so shutdown does not leave prompts behind.
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	s.conv.Cleanup(cctx, ids...)

	switch reason {
	case AbortTimeout:
		s.conv.Notice(cctx, noticeTimeout, 0)
	case AbortExit:
		s.conv.Notice(cctx, noticeExited, exitNoticeTTL)
	}

	logger.Component("setup").Info().
		Str("session_id", s.ID).
		Str("guild_id", s.GuildID).
		Str("reason", string(reason)).
		Msg("Setup session aborted")
}

func (s *Session) setStep(i int) {
	s.mu.Lock()
	s.stepIndex = i
	s.mu.Unlock()
}

// State returns the session state and, when aborted, the reason.
func (s *Session) State() (State, AbortReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.abortReason
}

// StepIndex returns the zero-based step currently being asked.
func (s *Session) StepIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepIndex
}

// ToAppError maps setup errors to the application taxonomy.
func ToAppError(err error) *apperrors.AppError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrSetupInProgress):
		return apperrors.Wrap(err, apperrors.ErrCodeSetupInProgress, "A giveaway setup is already in progress.")
	case errors.Is(err, ErrSetupTimeout):
		return apperrors.Wrap(err, apperrors.ErrCodeSetupTimeout, noticeTimeout)
	}
	return giveaway.ToAppError(err)
}
