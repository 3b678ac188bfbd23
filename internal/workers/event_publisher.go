package workers

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	go_redis "github.com/redis/go-redis/v9"

	"giveaway-bot/internal/common/logger"
	"giveaway-bot/internal/domain/giveaway"
	"giveaway-bot/internal/platform/redis"
)

const eventsStreamMaxLen = 10000

// EventPublisher appends giveaway lifecycle events to a Redis stream.
// Countdown ticks are not published.
type EventPublisher struct {
	rdb    *redis.Client
	stream string
}

func NewEventPublisher(rdb *redis.Client, stream string) *EventPublisher {
	return &EventPublisher{rdb: rdb, stream: stream}
}

// OnEvent implements giveaway.Listener.
func (p *EventPublisher) OnEvent(ctx context.Context, e giveaway.Event) {
	if e.Type == giveaway.EventCountdown {
		return
	}

	values := map[string]interface{}{
		"type":        string(e.Type),
		"giveaway_id": e.Giveaway.ID,
		"guild_id":    e.Giveaway.GuildID,
		"channel_id":  e.Giveaway.ChannelID,
		"state":       string(e.Giveaway.State),
		"entrants":    strconv.Itoa(e.Giveaway.EntrantsCount()),
		"at":          time.Now().UTC().Format(time.RFC3339),
	}
	if len(e.Giveaway.Winners) > 0 {
		values["winners"] = mustJSON(e.Giveaway.Winners)
	}
	if len(e.Replaced) > 0 {
		values["replaced"] = mustJSON(e.Replaced)
		values["replacements"] = mustJSON(e.Replacements)
	}

	err := p.rdb.XAdd(ctx, &go_redis.XAddArgs{
		Stream: p.stream,
		MaxLen: eventsStreamMaxLen,
		Approx: true,
		Values: values,
	}).Err()
	if err != nil {
		logger.Warn().Err(err).
			Str("stream", p.stream).
			Str("event", string(e.Type)).
			Str("giveaway_id", e.Giveaway.ID).
			Msg("Failed to publish giveaway event")
	}
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
