package bot

import (
	"context"
	"errors"
	"time"

	"giveaway-bot/internal/common/logger"
	setupsvc "giveaway-bot/internal/features/setup/service"
	"giveaway-bot/internal/platform/discord"
)

// conversation binds a setup session to one channel and operator.
type conversation struct {
	chat      Chat
	guildID   string
	channelID string
	authorID  string
}

func (c *conversation) Prompt(ctx context.Context, text string) (string, error) {
	return c.chat.SendMessage(ctx, c.channelID, discord.Notice("**"+text+"**", discord.ColorLightBlue))
}

func (c *conversation) AwaitReply(ctx context.Context, timeout time.Duration) (setupsvc.Reply, error) {
	r, err := c.chat.AwaitReply(ctx, c.channelID, c.authorID, timeout)
	if errors.Is(err, discord.ErrReplyTimeout) {
		return setupsvc.Reply{}, setupsvc.ErrReplyTimeout
	}
	if err != nil {
		return setupsvc.Reply{}, err
	}
	return setupsvc.Reply{MessageID: r.MessageID, Content: r.Content}, nil
}

func (c *conversation) Notice(ctx context.Context, text string, ttl time.Duration) {
	id, err := c.chat.SendMessage(ctx, c.channelID, discord.Notice(text, discord.ColorRed))
	if err != nil {
		logger.Component("bot").Warn().Err(err).Str("channel_id", c.channelID).Msg("Setup notice failed")
		return
	}
	if ttl > 0 {
		c.chat.DeleteMessageAfter(c.channelID, id, ttl)
	}
}

func (c *conversation) Cleanup(ctx context.Context, messageIDs ...string) {
	for _, id := range messageIDs {
		if err := c.chat.DeleteMessage(ctx, c.channelID, id); err != nil {
			logger.Component("bot").Debug().Err(err).Str("message_id", id).Msg("Setup cleanup failed")
		}
	}
}

func (c *conversation) ResolveChannel(ctx context.Context, text string) (string, bool) {
	return c.chat.ResolveChannel(ctx, c.guildID, text)
}
