package bot

import (
	"context"

	"giveaway-bot/internal/common/logger"
	"giveaway-bot/internal/domain/giveaway"
	giveawaysvc "giveaway-bot/internal/features/giveaway/service"
	"giveaway-bot/internal/platform/discord"
)

// Announcer renders the first announcement of a giveaway.
type Announcer interface {
	Announcement(g giveaway.Giveaway, display string) discord.Message
}

// Launcher posts the announcement and registers the giveaway under its
// message ID.
type Launcher struct {
	chat      Chat
	announcer Announcer
	giveaways Giveaways
}

func NewLauncher(chat Chat, announcer Announcer, giveaways Giveaways) *Launcher {
	return &Launcher{chat: chat, announcer: announcer, giveaways: giveaways}
}

// Launch implements setup.Launcher.
func (l *Launcher) Launch(ctx context.Context, cfg giveaway.Config) error {
	preview := giveaway.Giveaway{
		GuildID:      cfg.GuildID,
		ChannelID:    cfg.ChannelID,
		Prize:        cfg.Prize,
		HostTag:      cfg.HostTag,
		WinnersCount: cfg.WinnersCount,
		TotalSeconds: cfg.DurationSeconds,
		State:        giveaway.StateActive,
	}
	msg := l.announcer.Announcement(preview, giveawaysvc.InitialDisplay(cfg.DurationSeconds))

	messageID, err := l.chat.SendMessage(ctx, cfg.ChannelID, msg)
	if err != nil {
		return err
	}

	cfg.MessageID = messageID
	if _, err := l.giveaways.Create(ctx, cfg); err != nil {
		if derr := l.chat.DeleteMessage(context.WithoutCancel(ctx), cfg.ChannelID, messageID); derr != nil {
			logger.Component("bot").Warn().Err(derr).Str("message_id", messageID).Msg("Failed to remove orphaned announcement")
		}
		return err
	}
	return nil
}
