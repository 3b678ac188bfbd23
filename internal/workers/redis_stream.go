package workers

import (
	"context"
	"errors"
	"strings"
	"time"

	go_redis "github.com/redis/go-redis/v9"

	"giveaway-bot/internal/common/logger"
	"giveaway-bot/internal/platform/redis"
)

const (
	ControlStream = "giveaway:control"
	consumerGroup = "giveaway_bot_consumers"
	consumerName  = "giveaway_bot_1"
)

// Control message types accepted on the control stream.
const (
	ControlGuildActivate   = "guild_activate"
	ControlGuildDeactivate = "guild_deactivate"
	ControlGiveawayCancel  = "giveaway_cancel"
)

// ControlHandler applies control messages.
type ControlHandler interface {
	SetGuildActive(ctx context.Context, guildID string, active bool) error
	CancelGiveaway(ctx context.Context, giveawayID string) error
}

// RedisStreamWorker consumes operator control messages from a Redis stream.
type RedisStreamWorker struct {
	rdb     *redis.Client
	handler ControlHandler
	stream  string
	block   time.Duration
}

func NewRedisStreamWorker(rdb *redis.Client, handler ControlHandler) *RedisStreamWorker {
	return &RedisStreamWorker{
		rdb:     rdb,
		handler: handler,
		stream:  ControlStream,
		block:   5 * time.Second,
	}
}

// Start listens to the control stream until ctx is done.
func (w *RedisStreamWorker) Start(ctx context.Context) {
	err := w.rdb.XGroupCreateMkStream(ctx, w.stream, consumerGroup, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		logger.Error().Err(err).Str("stream", w.stream).Msg("Error creating consumer group")
	}

	logger.Info().Str("stream", w.stream).Msg("Starting Redis stream worker")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Stopping Redis stream worker")
			return
		default:
		}

		entries, err := w.rdb.XReadGroup(ctx, &go_redis.XReadGroupArgs{
			Group:    consumerGroup,
			Consumer: consumerName,
			Streams:  []string{w.stream, ">"},
			Count:    10,
			Block:    w.block,
		}).Result()
		if err != nil {
			if errors.Is(err, go_redis.Nil) || ctx.Err() != nil {
				continue
			}
			logger.Warn().Err(err).Msg("Error reading from stream")
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
			continue
		}

		for _, stream := range entries {
			for _, msg := range stream.Messages {
				w.processMessage(ctx, msg.Values)
				if err := w.rdb.XAck(ctx, w.stream, consumerGroup, msg.ID).Err(); err != nil {
					logger.Warn().Err(err).Str("id", msg.ID).Msg("Failed to ack control message")
				}
			}
		}
	}
}

func (w *RedisStreamWorker) processMessage(ctx context.Context, values map[string]interface{}) {
	eventType, _ := values["type"].(string)
	var err error

	switch eventType {
	case ControlGuildActivate, ControlGuildDeactivate:
		guildID, _ := values["guild_id"].(string)
		if guildID == "" {
			logger.Warn().Interface("values", values).Msg("Control message without guild_id")
			return
		}
		err = w.handler.SetGuildActive(ctx, guildID, eventType == ControlGuildActivate)
	case ControlGiveawayCancel:
		giveawayID, _ := values["giveaway_id"].(string)
		if giveawayID == "" {
			logger.Warn().Interface("values", values).Msg("Control message without giveaway_id")
			return
		}
		err = w.handler.CancelGiveaway(ctx, giveawayID)
	default:
		logger.Debug().Str("type", eventType).Msg("Ignoring unknown control message")
		return
	}

	if err != nil {
		logger.Warn().Err(err).Str("type", eventType).Msg("Control message failed")
		return
	}
	logger.Info().Str("type", eventType).Msg("Control message applied")
}
