package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/puzpuzpuz/xsync"

	apperrors "giveaway-bot/internal/common/errors"
	"giveaway-bot/internal/common/logger"
)

var (
	ErrReplyTimeout   = errors.New("timed out waiting for reply")
	ErrAlreadyWaiting = errors.New("a reply is already awaited in this channel")

	channelMentionRe = regexp.MustCompile(`<#(\d+)>`)
)

// Intents the bot needs for prefix commands, reactions and member lookups.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsMessageContent

// Client wraps a discordgo session with the operations the bot performs.
type Client struct {
	session *discordgo.Session
	waiters *xsync.MapOf[string, chan Reply]
}

// NewSession creates a discordgo session for a bot token.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, apperrors.NewDiscordAPIError("create session", err)
	}
	s.Identify.Intents = Intents
	return s, nil
}

func NewClient(session *discordgo.Session) *Client {
	return &Client{
		session: session,
		waiters: xsync.NewMapOf[chan Reply](),
	}
}

// Session exposes the underlying session for handler registration.
func (c *Client) Session() *discordgo.Session {
	return c.session
}

// SendMessage posts a message and returns its ID.
func (c *Client) SendMessage(ctx context.Context, channelID string, msg Message) (string, error) {
	sent, err := c.session.ChannelMessageSendComplex(channelID, msg.toSend(channelID), discordgo.WithContext(ctx))
	if err != nil {
		return "", apperrors.NewDiscordAPIError("send message", err).WithDetail("channel_id", channelID)
	}
	return sent.ID, nil
}

// EditMessage replaces the content and embed of a message.
func (c *Client) EditMessage(ctx context.Context, channelID, messageID string, msg Message) error {
	if _, err := c.session.ChannelMessageEditComplex(msg.toEdit(channelID, messageID), discordgo.WithContext(ctx)); err != nil {
		return apperrors.NewDiscordAPIError("edit message", err).
			WithDetail("channel_id", channelID).
			WithDetail("message_id", messageID)
	}
	return nil
}

func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if err := c.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return apperrors.NewDiscordAPIError("delete message", err).
			WithDetail("channel_id", channelID).
			WithDetail("message_id", messageID)
	}
	return nil
}

// DeleteMessageAfter removes a message once delay has passed. Failures are logged.
func (c *Client) DeleteMessageAfter(channelID, messageID string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.DeleteMessage(ctx, channelID, messageID); err != nil {
			logger.Debug().Err(err).Str("message_id", messageID).Msg("Delayed delete failed")
		}
	})
}

// AddReaction adds emoji (unicode or name:id) to a message.
func (c *Client) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	if err := c.session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx)); err != nil {
		return apperrors.NewDiscordAPIError("add reaction", err).WithDetail("message_id", messageID)
	}
	return nil
}

// RemoveReaction removes one user's reaction from a message.
func (c *Client) RemoveReaction(ctx context.Context, channelID, messageID, emoji, userID string) error {
	if err := c.session.MessageReactionRemove(channelID, messageID, emoji, userID, discordgo.WithContext(ctx)); err != nil {
		return apperrors.NewDiscordAPIError("remove reaction", err).WithDetail("message_id", messageID)
	}
	return nil
}

// IsMember reports whether a user is still in the guild. An unknown member is
// not an error.
func (c *Client) IsMember(ctx context.Context, guildID, userID string) (bool, error) {
	if m, err := c.session.State.Member(guildID, userID); err == nil && m != nil {
		return true, nil
	}
	_, err := c.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err == nil {
		return true, nil
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return false, nil
		}
		if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMember {
			return false, nil
		}
	}
	return false, apperrors.NewDiscordAPIError("get guild member", err).
		WithDetail("guild_id", guildID).
		WithDetail("user_id", userID)
}

// IsAdministrator reports whether a user holds the Administrator permission
// in a channel.
func (c *Client) IsAdministrator(ctx context.Context, channelID, userID string) (bool, error) {
	perms, err := c.session.UserChannelPermissions(userID, channelID, discordgo.WithContext(ctx))
	if err != nil {
		return false, apperrors.NewDiscordAPIError("channel permissions", err).WithDetail("channel_id", channelID)
	}
	return perms&discordgo.PermissionAdministrator != 0, nil
}

// ResolveChannel extracts the first channel mention in text and checks that
// it belongs to the guild.
func (c *Client) ResolveChannel(ctx context.Context, guildID, text string) (string, bool) {
	channelID := ParseChannelMention(text)
	if channelID == "" {
		return "", false
	}
	ch, err := c.session.State.Channel(channelID)
	if err != nil {
		ch, err = c.session.Channel(channelID, discordgo.WithContext(ctx))
		if err != nil {
			return "", false
		}
	}
	return ch.ID, ch.GuildID == guildID
}

// ParseChannelMention returns the ID in the first <#id> of text.
func ParseChannelMention(text string) string {
	m := channelMentionRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// AwaitReply blocks until authorID posts in channelID, the timeout elapses or
// ctx ends. Only one waiter per channel and author is allowed.
func (c *Client) AwaitReply(ctx context.Context, channelID, authorID string, timeout time.Duration) (Reply, error) {
	key := waiterKey(channelID, authorID)
	ch := make(chan Reply, 1)
	if _, loaded := c.waiters.LoadOrStore(key, ch); loaded {
		return Reply{}, ErrAlreadyWaiting
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reply := <-ch:
		return reply, nil
	case <-timer.C:
	case <-ctx.Done():
	}

	// The dispatcher may have claimed the waiter in the meantime.
	if _, ok := c.waiters.LoadAndDelete(key); !ok {
		return <-ch, nil
	}
	if ctx.Err() != nil {
		return Reply{}, ctx.Err()
	}
	return Reply{}, ErrReplyTimeout
}

// DeliverReply hands a message to a waiting conversation. It reports whether
// the message was consumed.
func (c *Client) DeliverReply(channelID, authorID string, reply Reply) bool {
	ch, ok := c.waiters.LoadAndDelete(waiterKey(channelID, authorID))
	if !ok {
		return false
	}
	ch <- reply
	return true
}

func waiterKey(channelID, authorID string) string {
	return fmt.Sprintf("%s:%s", channelID, authorID)
}
