package discord

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChannelMention(t *testing.T) {
	assert.Equal(t, "123", ParseChannelMention("<#123>"))
	assert.Equal(t, "42", ParseChannelMention("host it in <#42> please <#7>"))
	assert.Equal(t, "", ParseChannelMention("#general"))
	assert.Equal(t, "", ParseChannelMention("<@123>"))
}

func TestMentions(t *testing.T) {
	assert.Equal(t, "<@1>", Mention("1"))
	assert.Equal(t, "<@1>, <@2>", Mentions([]string{"1", "2"}))
	assert.Equal(t, "", Mentions(nil))
}

func TestMessageToSend(t *testing.T) {
	msg := Message{
		Content: "hi",
		Embed:   &Embed{Title: "T", Description: "D", Footer: "F", Color: ColorRed, Fields: []EmbedField{{Name: "n", Value: "v"}}},
		ReplyTo: "99",
	}
	send := msg.toSend("c1")

	assert.Equal(t, "hi", send.Content)
	require.Len(t, send.Embeds, 1)
	assert.Equal(t, "T", send.Embeds[0].Title)
	assert.Equal(t, "F", send.Embeds[0].Footer.Text)
	assert.Equal(t, ColorRed, send.Embeds[0].Color)
	require.Len(t, send.Embeds[0].Fields, 1)
	require.NotNil(t, send.Reference)
	assert.Equal(t, "99", send.Reference.MessageID)
	assert.Equal(t, "c1", send.Reference.ChannelID)

	plain := Message{Content: "x"}.toSend("c1")
	assert.Empty(t, plain.Embeds)
	assert.Nil(t, plain.Reference)
}

func TestMessageToEdit(t *testing.T) {
	edit := Notice("done", ColorLightBlue).toEdit("c1", "m1")
	assert.Equal(t, "c1", edit.Channel)
	assert.Equal(t, "m1", edit.ID)
	assert.Nil(t, edit.Content)
}

func TestAwaitReply_Delivered(t *testing.T) {
	c := NewClient(&discordgo.Session{})

	got := make(chan Reply, 1)
	go func() {
		r, err := c.AwaitReply(context.Background(), "chan", "user", time.Second)
		assert.NoError(t, err)
		got <- r
	}()

	require.Eventually(t, func() bool {
		return c.DeliverReply("chan", "user", Reply{MessageID: "m", Content: "hello"})
	}, time.Second, time.Millisecond)

	r := <-got
	assert.Equal(t, "hello", r.Content)
	assert.False(t, c.DeliverReply("chan", "user", Reply{}), "waiter is single use")
}

func TestAwaitReply_IgnoresOtherAuthors(t *testing.T) {
	c := NewClient(&discordgo.Session{})

	done := make(chan error, 1)
	go func() {
		_, err := c.AwaitReply(context.Background(), "chan", "user", 30*time.Millisecond)
		done <- err
	}()
	time.Sleep(5 * time.Millisecond)

	assert.False(t, c.DeliverReply("chan", "someone-else", Reply{}))
	assert.ErrorIs(t, <-done, ErrReplyTimeout)
}

func TestAwaitReply_SingleWaiterAndCancel(t *testing.T) {
	c := NewClient(&discordgo.Session{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := c.AwaitReply(ctx, "chan", "user", time.Minute)
		done <- err
	}()
	require.Eventually(t, func() bool { return c.waiters.Size() == 1 }, time.Second, time.Millisecond)

	_, err := c.AwaitReply(context.Background(), "chan", "user", time.Millisecond)
	assert.ErrorIs(t, err, ErrAlreadyWaiting)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
