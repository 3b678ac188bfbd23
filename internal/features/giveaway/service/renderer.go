package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"giveaway-bot/internal/common/logger"
	"giveaway-bot/internal/domain/giveaway"
	"giveaway-bot/internal/platform/discord"
	"giveaway-bot/internal/utils/duration"
)

const (
	footerActive = "React with the emoji below to enter!"
	footerEnded  = "Giveaway Ended"

	endedTimeLayout = "02 Jan 2006, 03:04 PM MST"
)

// Messenger is the outward chat surface used by the renderer.
type Messenger interface {
	SendMessage(ctx context.Context, channelID string, msg discord.Message) (string, error)
	EditMessage(ctx context.Context, channelID, messageID string, msg discord.Message) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error
}

type RendererOptions struct {
	PrizeEmoji string
	ArrowEmoji string
	// EntryEmoji is the reaction added to announcements, in API form.
	EntryEmoji string
	Location   *time.Location
}

// Renderer turns lifecycle events into announcement edits and replies.
// Failures are logged and never reach the registry.
type Renderer struct {
	messenger Messenger
	opts      RendererOptions
}

func NewRenderer(messenger Messenger, opts RendererOptions) *Renderer {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Renderer{messenger: messenger, opts: opts}
}

// Announcement renders the embed of an active giveaway.
func (r *Renderer) Announcement(g giveaway.Giveaway, display string) discord.Message {
	return discord.Message{Embed: &discord.Embed{
		Title: r.title(g.Prize),
		Description: r.lines(
			"Ends in", display,
			"Winners", fmt.Sprint(g.WinnersCount),
			"Hosted by", g.HostTag,
		),
		Footer: footerActive,
		Color:  discord.ColorLightBlue,
	}}
}

// Ended renders the embed of a finished giveaway.
func (r *Renderer) Ended(g giveaway.Giveaway) discord.Message {
	endedAt := time.Now()
	if g.EndedAt != nil {
		endedAt = *g.EndedAt
	}
	winners := "Not enough entries."
	if len(g.Winners) > 0 {
		winners = discord.Mentions(g.Winners)
	}
	return discord.Message{Embed: &discord.Embed{
		Title: r.title(g.Prize),
		Description: r.lines(
			"Ended on", endedAt.In(r.opts.Location).Format(endedTimeLayout),
			"Winners", winners,
			"Hosted by", g.HostTag,
		),
		Footer: footerEnded,
		Color:  discord.ColorLightBlue,
	}}
}

// OnEvent implements giveaway.Listener.
func (r *Renderer) OnEvent(ctx context.Context, e giveaway.Event) {
	g := e.Giveaway
	switch e.Type {
	case giveaway.EventCreated:
		if r.opts.EntryEmoji != "" {
			r.check(e, "add entry reaction", r.messenger.AddReaction(ctx, g.ChannelID, g.ID, r.opts.EntryEmoji))
		}

	case giveaway.EventCountdown:
		r.check(e, "edit countdown", r.messenger.EditMessage(ctx, g.ChannelID, g.ID, r.Announcement(g, e.Display)))

	case giveaway.EventEnded:
		r.check(e, "edit ended embed", r.messenger.EditMessage(ctx, g.ChannelID, g.ID, r.Ended(g)))
		reply := discord.Message{Content: "**Not enough entries to select winners.**", ReplyTo: g.ID}
		if g.State == giveaway.StateEndedSuccess {
			reply.Content = fmt.Sprintf("🎉 Congratulations %s! You’ve won `%s`!", discord.Mentions(g.Winners), g.Prize)
		}
		_, err := r.messenger.SendMessage(ctx, g.ChannelID, reply)
		r.check(e, "send result", err)

	case giveaway.EventRerolled:
		r.check(e, "edit rerolled embed", r.messenger.EditMessage(ctx, g.ChannelID, g.ID, r.Ended(g)))
		_, err := r.messenger.SendMessage(ctx, g.ChannelID, discord.Message{
			Content: "🎉 Updated Final Winners: " + discord.Mentions(g.Winners),
			ReplyTo: g.ID,
		})
		r.check(e, "send reroll result", err)

	case giveaway.EventCancelled:
		r.check(e, "delete announcement", r.messenger.DeleteMessage(ctx, g.ChannelID, g.ID))
	}
}

func (r *Renderer) check(e giveaway.Event, op string, err error) {
	if err == nil {
		return
	}
	logger.Component("giveaway").Warn().Err(err).
		Str("giveaway_id", e.Giveaway.ID).
		Str("event", string(e.Type)).
		Str("op", op).
		Msg("Render failed")
}

func (r *Renderer) title(prize string) string {
	if r.opts.PrizeEmoji == "" {
		return prize
	}
	return fmt.Sprintf("%s %s %s", r.opts.PrizeEmoji, prize, r.opts.PrizeEmoji)
}

// lines renders label/value pairs as arrow-prefixed bold-label lines.
func (r *Renderer) lines(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if i > 0 {
			b.WriteByte('\n')
		}
		if r.opts.ArrowEmoji != "" {
			b.WriteString(r.opts.ArrowEmoji)
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "**%s:** %s", pairs[i], pairs[i+1])
	}
	return b.String()
}

// InitialDisplay is the countdown text shown when a giveaway is posted.
func InitialDisplay(seconds int64) string {
	return duration.Format(seconds)
}
