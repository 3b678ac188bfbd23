package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-bot/internal/domain/giveaway"
)

const timeoutReply = "\x00timeout"

type fakeConversation struct {
	mu       sync.Mutex
	replies  []string
	prompts  []string
	notices  []string
	cleaned  []string
	nextID   int
	channels map[string]string
	block    chan struct{}
}

func newConversation(replies ...string) *fakeConversation {
	return &fakeConversation{
		replies:  replies,
		channels: map[string]string{"<#100>": "100"},
	}
}

func (f *fakeConversation) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeConversation) Prompt(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, text)
	return f.id("prompt"), nil
}

func (f *fakeConversation) AwaitReply(ctx context.Context, _ time.Duration) (Reply, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return Reply{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.replies) == 0 {
		return Reply{}, ErrReplyTimeout
	}
	next := f.replies[0]
	f.replies = f.replies[1:]
	if next == timeoutReply {
		return Reply{}, ErrReplyTimeout
	}
	return Reply{MessageID: f.id("reply"), Content: next}, nil
}

func (f *fakeConversation) Notice(_ context.Context, text string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, text)
}

func (f *fakeConversation) Cleanup(_ context.Context, ids ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleaned = append(f.cleaned, ids...)
}

func (f *fakeConversation) ResolveChannel(_ context.Context, text string) (string, bool) {
	id, ok := f.channels[strings.TrimSpace(text)]
	return id, ok
}

type fakeLauncher struct {
	mu      sync.Mutex
	configs []giveaway.Config
}

func (f *fakeLauncher) Launch(_ context.Context, cfg giveaway.Config) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configs = append(f.configs, cfg)
	return nil
}

type outcomes struct {
	mu   sync.Mutex
	list []string
}

func (o *outcomes) SetupFinished(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.list = append(o.list, outcome)
}

func newTestManager() (*Manager, *fakeLauncher, *outcomes) {
	l := &fakeLauncher{}
	o := &outcomes{}
	return NewManager(l, o, time.Second, "$exit"), l, o
}

func TestSession_HappyPath(t *testing.T) {
	m, launcher, obs := newTestManager()
	conv := newConversation("<#100>", "Nitro", "2", "1d 2hr 30min", "@host")

	s, err := m.Start("g1", conv)
	require.NoError(t, err)
	assert.True(t, m.InProgress("g1"))

	cfg, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, giveaway.Config{
		GuildID:         "g1",
		ChannelID:       "100",
		Prize:           "Nitro",
		WinnersCount:    2,
		DurationSeconds: 86400 + 7200 + 1800,
		HostTag:         "@host",
	}, cfg)
	require.Len(t, launcher.configs, 1)
	assert.Equal(t, cfg, launcher.configs[0])

	state, reason := s.State()
	assert.Equal(t, StateCompleted, state)
	assert.Equal(t, AbortNone, reason)
	assert.False(t, m.InProgress("g1"))
	assert.Equal(t, []string{"completed"}, obs.list)

	assert.Len(t, conv.prompts, 5)
	assert.Equal(t, "1 | Mention the channel to host the giveaway", conv.prompts[0])
	assert.Len(t, conv.cleaned, 10, "every prompt and reply is deleted")
	assert.Empty(t, conv.notices)
}

func TestSession_RepromptsOnInvalidInput(t *testing.T) {
	m, launcher, _ := newTestManager()
	conv := newConversation(
		"#general", "<#100>",
		"   ", "Nitro",
		"zero", "0", "3",
		"soon", "45min",
		"@host",
	)

	s, err := m.Start("g1", conv)
	require.NoError(t, err)
	cfg, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.WinnersCount)
	assert.Equal(t, int64(2700), cfg.DurationSeconds)
	assert.Equal(t, []string{
		"Please mention a valid channel.",
		"Invalid input. Try again.",
		"Invalid input. Try again.",
		"Invalid input. Try again.",
		"Invalid input. Try again.",
	}, conv.notices)
	assert.Len(t, conv.prompts, 10)
	assert.Len(t, launcher.configs, 1)
}

func TestSession_ExitAborts(t *testing.T) {
	m, launcher, obs := newTestManager()
	conv := newConversation("<#100>", "  $EXIT ")

	s, err := m.Start("g1", conv)
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	assert.ErrorIs(t, err, ErrSetupExited)

	state, reason := s.State()
	assert.Equal(t, StateAborted, state)
	assert.Equal(t, AbortExit, reason)
	assert.Equal(t, 1, s.StepIndex())
	assert.Equal(t, []string{"Giveaway setup exited."}, conv.notices)
	assert.Empty(t, launcher.configs)
	assert.False(t, m.InProgress("g1"))
	assert.Equal(t, []string{"exit_requested"}, obs.list)
}

func TestSession_TimeoutAborts(t *testing.T) {
	m, launcher, _ := newTestManager()
	conv := newConversation("<#100>", "Nitro", timeoutReply)

	s, err := m.Start("g1", conv)
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	assert.ErrorIs(t, err, ErrSetupTimeout)

	_, reason := s.State()
	assert.Equal(t, AbortTimeout, reason)
	assert.Equal(t, []string{"Timed out. Giveaway setup canceled."}, conv.notices)
	assert.Contains(t, conv.cleaned, "prompt-5", "the unanswered prompt is removed")
	assert.Empty(t, launcher.configs)
	assert.False(t, m.InProgress("g1"))
}

func TestSession_SingleFlightPerGuild(t *testing.T) {
	m, _, _ := newTestManager()
	conv := newConversation()
	conv.block = make(chan struct{})

	s, err := m.Start("g1", conv)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.Run(ctx)
		done <- err
	}()

	_, err = m.Start("g1", newConversation())
	assert.ErrorIs(t, err, ErrSetupInProgress)

	other, err := m.Start("g2", newConversation())
	require.NoError(t, err)
	assert.NotNil(t, other)

	cancel()
	assert.ErrorIs(t, <-done, ErrSetupCancelled)
	_, reason := s.State()
	assert.Equal(t, AbortShutdown, reason)

	_, err = m.Start("g1", newConversation())
	assert.NoError(t, err)
}

func TestManager_ReleaseOnlyFreesOwnSlot(t *testing.T) {
	m, _, _ := newTestManager()

	first, err := m.Start("g1", newConversation())
	require.NoError(t, err)
	m.release(first)
	assert.False(t, m.InProgress("g1"))

	second, err := m.Start("g1", newConversation())
	require.NoError(t, err)

	m.release(first)
	assert.True(t, m.InProgress("g1"), "a stale session must not free the current holder")

	stranger := &Session{GuildID: "g1", manager: m}
	m.release(stranger)
	assert.True(t, m.InProgress("g1"))

	m.release(second)
	assert.False(t, m.InProgress("g1"))
}

func TestSession_ConcurrentStartsOneWins(t *testing.T) {
	m, _, _ := newTestManager()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Start("g1", newConversation()); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestConvert(t *testing.T) {
	conv := newConversation()
	ctx := context.Background()

	v, _, ok := convert(ctx, StepPositiveInt, " 7 ", conv)
	require.True(t, ok)
	assert.Equal(t, int64(7), v.integer)

	_, diag, ok := convert(ctx, StepPositiveInt, "-1", conv)
	assert.False(t, ok)
	assert.Equal(t, "Invalid input. Try again.", diag)

	_, diag, ok = convert(ctx, StepChannel, "<#999>", conv)
	assert.False(t, ok)
	assert.Equal(t, "Please mention a valid channel.", diag)

	v, _, ok = convert(ctx, StepDuration, "2hr", conv)
	require.True(t, ok)
	assert.Equal(t, int64(7200), v.integer)

	assert.Equal(t, "duration", StepDuration.String())
}
