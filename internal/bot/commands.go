package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"giveaway-bot/internal/common/logger"
	"giveaway-bot/internal/domain/giveaway"
	setupsvc "giveaway-bot/internal/features/setup/service"
	"giveaway-bot/internal/platform/discord"
)

var errNotConnected = errors.New("discord gateway not connected")

const (
	replyDeactivated     = "This bot is deactivated in this server."
	replySetupInProgress = "A giveaway setup is already in progress."

	replyCancelNeedsID = "Provide a valid giveaway message ID."
	replyNotFound      = "Giveaway not found."
	replyCancelled     = "Giveaway canceled successfully."

	replyRerollInvalid      = "Invalid reroll request."
	replyRerollNotWinner    = "Only current winners can be rerolled."
	replyRerollInsufficient = "Not enough eligible participants to reroll."
)

type command struct {
	name string
	args []string
}

// parseCommand splits a prefixed message into a command name and arguments.
func parseCommand(prefix, content string) (command, bool) {
	text := strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return command{}, false
	}
	fields := strings.Fields(text[len(prefix):])
	if len(fields) == 0 || strings.HasPrefix(text[len(prefix):], " ") {
		return command{}, false
	}
	return command{name: fields[0], args: fields[1:]}, true
}

type commandHandler struct {
	// gated commands are ignored in deactivated guilds.
	gated bool
	run   func(ctx context.Context, m *discordgo.Message, cmd command)
}

func (b *Bot) commandTable() map[string]commandHandler {
	return map[string]commandHandler{
		// giveaway answers deactivated guilds itself.
		"giveaway":       {run: b.cmdGiveaway},
		"giveawaycancel": {gated: true, run: b.cmdCancel},
		"reroll":         {gated: true, run: b.cmdReroll},
		"help":           {gated: true, run: b.cmdHelp},
		"deactivate":     {run: b.cmdDeactivate},
		"reactivate":     {run: b.cmdReactivate},
	}
}

func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	// Replies to a running setup never reach the command router.
	if b.chat.DeliverReply(m.ChannelID, m.Author.ID, discord.Reply{MessageID: m.ID, Content: m.Content}) {
		return
	}

	cmd, ok := parseCommand(b.opts.Prefix, m.Content)
	if !ok {
		return
	}
	h, ok := b.commands[cmd.name]
	if !ok {
		return
	}

	ctx, cancel := b.handlerContext()
	defer cancel()

	admin, err := b.chat.IsAdministrator(ctx, m.ChannelID, m.Author.ID)
	if err != nil {
		logger.Component("bot").Warn().Err(err).Str("guild_id", m.GuildID).Str("command", cmd.name).Msg("Permission check failed")
		return
	}
	if !admin {
		logger.Component("bot").Debug().Str("guild_id", m.GuildID).Str("user_id", m.Author.ID).Str("command", cmd.name).Msg("Command refused: not an administrator")
		return
	}
	if h.gated && !b.activation.IsActive(ctx, m.GuildID) {
		return
	}

	h.run(ctx, m.Message, cmd)
}

func (b *Bot) cmdGiveaway(ctx context.Context, m *discordgo.Message, cmd command) {
	if !b.activation.IsActive(ctx, m.GuildID) {
		b.send(ctx, m.ChannelID, discord.Notice(replyDeactivated, discord.ColorRed))
		return
	}
	if len(cmd.args) > 0 {
		return
	}

	conv := &conversation{chat: b.chat, guildID: m.GuildID, channelID: m.ChannelID, authorID: m.Author.ID}
	session, err := b.setups.Start(m.GuildID, conv)
	if errors.Is(err, setupsvc.ErrSetupInProgress) {
		b.send(ctx, m.ChannelID, discord.Notice(replySetupInProgress, discord.ColorOrange))
		return
	}
	if err != nil {
		logger.Component("bot").Error().Err(err).Str("guild_id", m.GuildID).Msg("Failed to start setup")
		return
	}

	b.sessions.Add(1)
	go func() {
		defer b.sessions.Done()
		if _, err := session.Run(b.ctx); err != nil {
			logger.Component("bot").Info().
				Err(err).
				Str("session_id", session.ID).
				Str("code", string(setupsvc.ToAppError(err).Code)).
				Msg("Setup session ended without a giveaway")
		}
	}()
}

func (b *Bot) cmdCancel(ctx context.Context, m *discordgo.Message, cmd command) {
	id, ok := messageIDArg(cmd.args)
	if !ok {
		b.send(ctx, m.ChannelID, discord.Notice(replyCancelNeedsID, discord.ColorRed))
		return
	}
	if _, ok := b.lookup(ctx, m.GuildID, id); !ok {
		b.send(ctx, m.ChannelID, discord.Notice(replyNotFound, discord.ColorRed))
		return
	}
	if err := b.giveaways.Cancel(ctx, id); err != nil {
		b.send(ctx, m.ChannelID, discord.Notice(replyNotFound, discord.ColorRed))
		return
	}
	b.send(ctx, m.ChannelID, discord.Notice(replyCancelled, discord.ColorRed))
}

func (b *Bot) cmdReroll(ctx context.Context, m *discordgo.Message, cmd command) {
	id, ok := messageIDArg(cmd.args)
	targets := make([]string, 0, len(m.Mentions))
	for _, u := range m.Mentions {
		targets = append(targets, u.ID)
	}
	if !ok || len(targets) == 0 {
		b.send(ctx, m.ChannelID, discord.Message{Content: replyRerollInvalid})
		return
	}
	if _, ok := b.lookup(ctx, m.GuildID, id); !ok {
		b.send(ctx, m.ChannelID, discord.Message{Content: replyRerollInvalid})
		return
	}

	_, err := b.giveaways.Reroll(ctx, id, targets)
	switch {
	case err == nil:
	case errors.Is(err, giveaway.ErrNotAWinner):
		b.send(ctx, m.ChannelID, discord.Message{Content: replyRerollNotWinner})
	case errors.Is(err, giveaway.ErrInsufficientEligible):
		b.send(ctx, m.ChannelID, discord.Message{Content: replyRerollInsufficient})
	default:
		logger.Component("bot").Debug().Err(err).Str("giveaway_id", id).Msg("Reroll rejected")
		b.send(ctx, m.ChannelID, discord.Message{Content: replyRerollInvalid})
	}
}

func (b *Bot) cmdHelp(ctx context.Context, m *discordgo.Message, _ command) {
	b.send(ctx, m.ChannelID, helpMessage(b.opts.Prefix))
}

func (b *Bot) cmdDeactivate(ctx context.Context, m *discordgo.Message, _ command) {
	reply, err := b.activation.Deactivate(ctx, m.GuildID)
	if err != nil {
		logger.Component("bot").Error().Err(err).Str("guild_id", m.GuildID).Msg("Deactivate failed")
		return
	}
	b.send(ctx, m.ChannelID, discord.Message{Content: reply})
}

func (b *Bot) cmdReactivate(ctx context.Context, m *discordgo.Message, _ command) {
	reply, err := b.activation.Reactivate(ctx, m.GuildID)
	if err != nil {
		logger.Component("bot").Error().Err(err).Str("guild_id", m.GuildID).Msg("Reactivate failed")
		return
	}
	b.send(ctx, m.ChannelID, discord.Message{Content: reply})
}

// lookup finds a giveaway of the given guild.
func (b *Bot) lookup(ctx context.Context, guildID, id string) (*giveaway.Giveaway, bool) {
	g, err := b.giveaways.Get(ctx, id)
	if err != nil || g.GuildID != guildID {
		return nil, false
	}
	return g, true
}

func (b *Bot) send(ctx context.Context, channelID string, msg discord.Message) {
	if _, err := b.chat.SendMessage(ctx, channelID, msg); err != nil {
		logger.Component("bot").Warn().Err(err).Str("channel_id", channelID).Msg("Command reply failed")
	}
}

// messageIDArg returns the first argument when it is a snowflake.
func messageIDArg(args []string) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	if _, err := strconv.ParseUint(args[0], 10, 64); err != nil {
		return "", false
	}
	return args[0], true
}

func helpMessage(prefix string) discord.Message {
	return discord.Message{Embed: &discord.Embed{
		Title: "📍 Giveaway Bot Commands",
		Color: discord.ColorLightBlue,
		Fields: []discord.EmbedField{
			{Name: "#1  **" + prefix + "giveaway**", Value: "- Trigger giveaway setup. Includes: Channel, Prize-pool, Winners-count, Time, Host."},
			{Name: "#2  **" + prefix + "giveawaycancel [message_id]**", Value: "- Cancel an ongoing giveaway"},
			{Name: "#3  **" + prefix + "reroll [message_id] @winners**", Value: "- Reroll selected winners"},
			{Name: "#4  **" + prefix + "exit**", Value: "- Exit giveaway setup"},
		},
		Footer: "Admin-only commands.",
	}}
}
