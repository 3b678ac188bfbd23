package service

import (
	"context"
	"strconv"
	"strings"

	"giveaway-bot/internal/domain/giveaway"
	"giveaway-bot/internal/utils/duration"
)

// StepKind is the closed set of answer types a setup step can ask for.
type StepKind int

const (
	StepChannel StepKind = iota
	StepFreeText
	StepPositiveInt
	StepDuration
)

func (k StepKind) String() string {
	switch k {
	case StepChannel:
		return "channel"
	case StepFreeText:
		return "text"
	case StepPositiveInt:
		return "positive_int"
	case StepDuration:
		return "duration"
	default:
		return "unknown"
	}
}

const (
	diagInvalidChannel = "Please mention a valid channel."
	diagInvalidInput   = "Invalid input. Try again."
)

// Step is one question of the setup dialogue. Apply stores a validated value
// into the config under construction.
type Step struct {
	Prompt string
	Kind   StepKind
	Apply  func(cfg *giveaway.Config, v value)
}

// value is the converted answer of a step.
type value struct {
	text    string
	integer int64
}

// Steps is the fixed setup dialogue.
var Steps = []Step{
	{
		Prompt: "1 | Mention the channel to host the giveaway",
		Kind:   StepChannel,
		Apply:  func(cfg *giveaway.Config, v value) { cfg.ChannelID = v.text },
	},
	{
		Prompt: "2 | Prize-pool of the giveaway?",
		Kind:   StepFreeText,
		Apply:  func(cfg *giveaway.Config, v value) { cfg.Prize = v.text },
	},
	{
		Prompt: "3 | No of winners?",
		Kind:   StepPositiveInt,
		Apply:  func(cfg *giveaway.Config, v value) { cfg.WinnersCount = int(v.integer) },
	},
	{
		Prompt: "4 | Duration of the giveaway? (Eg. 1d 2hr 30min)",
		Kind:   StepDuration,
		Apply:  func(cfg *giveaway.Config, v value) { cfg.DurationSeconds = v.integer },
	},
	{
		Prompt: "5 | Host? (mention/name)",
		Kind:   StepFreeText,
		Apply:  func(cfg *giveaway.Config, v value) { cfg.HostTag = v.text },
	},
}

// ChannelResolver checks that a reply mentions a channel of the guild.
type ChannelResolver interface {
	ResolveChannel(ctx context.Context, text string) (channelID string, ok bool)
}

// convert validates raw reply text for a step kind. On failure it returns the
// diagnostic to show the operator.
func convert(ctx context.Context, kind StepKind, raw string, channels ChannelResolver) (value, string, bool) {
	text := strings.TrimSpace(raw)
	switch kind {
	case StepChannel:
		id, ok := channels.ResolveChannel(ctx, text)
		if !ok || id == "" {
			return value{}, diagInvalidChannel, false
		}
		return value{text: id}, "", true

	case StepFreeText:
		if text == "" {
			return value{}, diagInvalidInput, false
		}
		return value{text: text}, "", true

	case StepPositiveInt:
		n, err := strconv.Atoi(text)
		if err != nil || n < 1 {
			return value{}, diagInvalidInput, false
		}
		return value{integer: int64(n)}, "", true

	case StepDuration:
		secs, err := duration.Parse(text)
		if err != nil {
			return value{}, diagInvalidInput, false
		}
		return value{integer: secs}, "", true
	}
	return value{}, diagInvalidInput, false
}
