package bot

import (
	"errors"

	"github.com/bwmarrin/discordgo"

	"giveaway-bot/internal/common/logger"
	"giveaway-bot/internal/domain/giveaway"
)

// onReactionAdd registers entries. Reactions on other messages are ignored;
// wrong emoji and reactions on ended giveaways are removed.
func (b *Bot) onReactionAdd(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.MessageReaction == nil || b.isSelf(r.UserID) {
		return
	}
	if r.Member != nil && r.Member.User != nil && r.Member.User.Bot {
		return
	}

	ctx, cancel := b.handlerContext()
	defer cancel()

	g, err := b.giveaways.Get(ctx, r.MessageID)
	if err != nil {
		return
	}

	emoji := r.Emoji.APIName()
	if g.State.Ended() || emoji != b.opts.EntryEmoji.APIName() {
		b.removeReaction(r, emoji)
		return
	}

	err = b.giveaways.RegisterEntrant(ctx, g.ID, r.UserID)
	switch {
	case err == nil:
	case errors.Is(err, giveaway.ErrGiveawayEnded):
		b.removeReaction(r, emoji)
	default:
		logger.Component("bot").Debug().Err(err).Str("giveaway_id", g.ID).Msg("Entry not registered")
	}
}

func (b *Bot) removeReaction(r *discordgo.MessageReactionAdd, emoji string) {
	ctx, cancel := b.handlerContext()
	defer cancel()
	if err := b.chat.RemoveReaction(ctx, r.ChannelID, r.MessageID, emoji, r.UserID); err != nil {
		logger.Component("bot").Debug().Err(err).Str("message_id", r.MessageID).Msg("Reaction removal failed")
	}
}
