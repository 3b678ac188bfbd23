package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-bot/internal/domain/giveaway"
)

func TestMetrics_TracksLifecycle(t *testing.T) {
	m := New()
	ctx := context.Background()

	m.OnEvent(ctx, giveaway.Event{Type: giveaway.EventCreated})
	m.OnEvent(ctx, giveaway.Event{Type: giveaway.EventCreated})
	m.OnEvent(ctx, giveaway.Event{Type: giveaway.EventEntered})
	m.OnEvent(ctx, giveaway.Event{Type: giveaway.EventCountdown})
	m.OnEvent(ctx, giveaway.Event{Type: giveaway.EventEnded, Giveaway: giveaway.Giveaway{State: giveaway.StateEndedSuccess}})
	m.OnEvent(ctx, giveaway.Event{Type: giveaway.EventRerolled})
	m.OnEvent(ctx, giveaway.Event{Type: giveaway.EventCancelled, PreviousState: giveaway.StateActive})
	m.OnEvent(ctx, giveaway.Event{Type: giveaway.EventCancelled, PreviousState: giveaway.StateEndedSuccess})
	m.SetupFinished("completed")
	m.SetupFinished("timeout")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.giveawaysCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.entrantsRegistered))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.giveawaysFinalized.WithLabelValues("ended_success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rerolls))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.giveawaysCancelled))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeGiveaways))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.setupSessions.WithLabelValues("timeout")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.OnEvent(context.Background(), giveaway.Event{Type: giveaway.EventCreated})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "giveaway_bot_giveaways_created_total 1")
	assert.Contains(t, rec.Body.String(), "giveaway_bot_active_giveaways 1")
}
