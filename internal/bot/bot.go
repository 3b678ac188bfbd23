package bot

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/puzpuzpuz/xsync"

	"giveaway-bot/internal/common/errors"
	"giveaway-bot/internal/common/logger"
	"giveaway-bot/internal/domain/giveaway"
	setupsvc "giveaway-bot/internal/features/setup/service"
	"giveaway-bot/internal/platform/discord"
)

const handlerTimeout = 15 * time.Second

// Chat is the subset of the Discord client the bot drives.
type Chat interface {
	SendMessage(ctx context.Context, channelID string, msg discord.Message) (string, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	DeleteMessageAfter(channelID, messageID string, delay time.Duration)
	RemoveReaction(ctx context.Context, channelID, messageID, emoji, userID string) error
	IsAdministrator(ctx context.Context, channelID, userID string) (bool, error)
	ResolveChannel(ctx context.Context, guildID, text string) (string, bool)
	AwaitReply(ctx context.Context, channelID, authorID string, timeout time.Duration) (discord.Reply, error)
	DeliverReply(channelID, authorID string, reply discord.Reply) bool
}

// Giveaways is the registry surface used by commands and reactions.
type Giveaways interface {
	Create(ctx context.Context, cfg giveaway.Config) (string, error)
	RegisterEntrant(ctx context.Context, id, userID string) error
	Cancel(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*giveaway.Giveaway, error)
	Reroll(ctx context.Context, id string, targets []string) ([]string, error)
}

// Activation answers and toggles per-guild activation.
type Activation interface {
	IsActive(ctx context.Context, guildID string) bool
	Deactivate(ctx context.Context, guildID string) (string, error)
	Reactivate(ctx context.Context, guildID string) (string, error)
	Joined(ctx context.Context, guildID string)
}

// Gateway is the websocket session lifecycle.
type Gateway interface {
	Open() error
	Close() error
	AddHandler(handler interface{}) func()
}

type Options struct {
	Prefix     string
	EntryEmoji discordgo.Emoji
}

// Bot routes gateway events to the giveaway features.
type Bot struct {
	gateway    Gateway
	chat       Chat
	giveaways  Giveaways
	setups     *setupsvc.Manager
	activation Activation
	opts       Options

	ctx      context.Context
	selfID   atomic.Value
	ready    atomic.Bool
	known    *xsync.MapOf[string, struct{}]
	sessions sync.WaitGroup
	commands map[string]commandHandler
}

func New(gateway Gateway, chat Chat, giveaways Giveaways, setups *setupsvc.Manager, activation Activation, opts Options) *Bot {
	b := &Bot{
		gateway:    gateway,
		chat:       chat,
		giveaways:  giveaways,
		setups:     setups,
		activation: activation,
		opts:       opts,
		ctx:        context.Background(),
		known:      xsync.NewMapOf[struct{}](),
	}
	b.selfID.Store("")
	b.commands = b.commandTable()
	return b
}

// Run opens the gateway and blocks until ctx is done. Running setup sessions
// are aborted and awaited before the gateway closes.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	b.gateway.AddHandler(b.onReady)
	b.gateway.AddHandler(b.onResumed)
	b.gateway.AddHandler(b.onDisconnect)
	b.gateway.AddHandler(b.onGuildCreate)
	b.gateway.AddHandler(b.onMessageCreate)
	b.gateway.AddHandler(b.onReactionAdd)

	if err := b.gateway.Open(); err != nil {
		return errors.NewDiscordAPIError("open gateway", err)
	}
	logger.Component("bot").Info().
		Str("prefix", b.opts.Prefix).
		Str("entry_emoji", b.opts.EntryEmoji.MessageFormat()).
		Msg("Discord gateway connected")

	<-ctx.Done()

	logger.Component("bot").Info().Msg("Waiting for setup sessions to abort")
	b.sessions.Wait()
	if err := b.gateway.Close(); err != nil {
		logger.Component("bot").Warn().Err(err).Msg("Closing Discord gateway failed")
	}
	logger.Component("bot").Info().Msg("Discord gateway closed")
	return nil
}

// Ready reports whether the gateway session is usable.
func (b *Bot) Ready(context.Context) error {
	if !b.ready.Load() {
		return errNotConnected
	}
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	if r.User != nil {
		b.selfID.Store(r.User.ID)
	}
	// Guilds present at startup keep their stored activation state.
	for _, g := range r.Guilds {
		b.known.Store(g.ID, struct{}{})
	}
	b.ready.Store(true)
	logger.Component("bot").Info().Int("guilds", len(r.Guilds)).Msg("Discord session ready")
}

func (b *Bot) onResumed(*discordgo.Session, *discordgo.Resumed) {
	b.ready.Store(true)
}

func (b *Bot) onDisconnect(*discordgo.Session, *discordgo.Disconnect) {
	b.ready.Store(false)
	logger.Component("bot").Warn().Msg("Discord gateway disconnected")
}

func (b *Bot) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Guild == nil {
		return
	}
	if _, seen := b.known.LoadOrStore(g.ID, struct{}{}); seen {
		return
	}
	ctx, cancel := b.handlerContext()
	defer cancel()
	b.activation.Joined(ctx, g.ID)
}

func (b *Bot) isSelf(userID string) bool {
	self, _ := b.selfID.Load().(string)
	return self != "" && self == userID
}

func (b *Bot) handlerContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(b.ctx, handlerTimeout)
}
