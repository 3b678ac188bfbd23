package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Embed colors.
const (
	ColorLightBlue = 0xADD8E6
	ColorRed       = 0xE74C3C
	ColorOrange    = 0xE67E22
)

// Message is an outgoing chat message. Either Content or Embed may be empty.
type Message struct {
	Content string
	Embed   *Embed
	// ReplyTo references an existing message in the same channel.
	ReplyTo string
}

type Embed struct {
	Title       string
	Description string
	Footer      string
	Color       int
	Fields      []EmbedField
}

type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Reply is a user message delivered to a waiting conversation.
type Reply struct {
	MessageID string
	Content   string
}

// Notice builds a single-line embed message.
func Notice(text string, color int) Message {
	return Message{Embed: &Embed{Description: text, Color: color}}
}

// Mention renders a user mention.
func Mention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

// Mentions renders a comma separated list of user mentions.
func Mentions(userIDs []string) string {
	parts := make([]string, len(userIDs))
	for i, id := range userIDs {
		parts[i] = Mention(id)
	}
	return strings.Join(parts, ", ")
}

func (e *Embed) toDiscord() *discordgo.MessageEmbed {
	if e == nil {
		return nil
	}
	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	if e.Footer != "" {
		out.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return out
}

func (m Message) toSend(channelID string) *discordgo.MessageSend {
	send := &discordgo.MessageSend{Content: m.Content}
	if m.Embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{m.Embed.toDiscord()}
	}
	if m.ReplyTo != "" {
		send.Reference = &discordgo.MessageReference{
			MessageID: m.ReplyTo,
			ChannelID: channelID,
		}
	}
	return send
}

func (m Message) toEdit(channelID, messageID string) *discordgo.MessageEdit {
	edit := discordgo.NewMessageEdit(channelID, messageID)
	if m.Content != "" {
		edit.SetContent(m.Content)
	}
	if m.Embed != nil {
		edit.SetEmbed(m.Embed.toDiscord())
	}
	return edit
}
