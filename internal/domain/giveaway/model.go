package giveaway

import "time"

// State represents the lifecycle state of a giveaway.
type State string

const (
	StateActive            State = "active"
	StateEndedSuccess      State = "ended_success"
	StateEndedInsufficient State = "ended_insufficient"
	StateCancelled         State = "cancelled"
)

// Ended reports whether the state is terminal for entry registration.
func (s State) Ended() bool {
	return s != StateActive
}

// Config is the validated output of a setup session. MessageID doubles as the
// giveaway identity; when empty a random ID is assigned on creation.
type Config struct {
	MessageID       string `json:"message_id"`
	GuildID         string `json:"guild_id"`
	ChannelID       string `json:"channel_id"`
	Prize           string `json:"prize"`
	WinnersCount    int    `json:"winners_count"`
	DurationSeconds int64  `json:"duration_seconds"`
	HostTag         string `json:"host"`
}

// Giveaway is an immutable snapshot of a running or finished giveaway.
type Giveaway struct {
	ID               string     `json:"id"`
	GuildID          string     `json:"guild_id"`
	ChannelID        string     `json:"channel_id"`
	Prize            string     `json:"prize"`
	HostTag          string     `json:"host"`
	WinnersCount     int        `json:"winners_count"`
	TotalSeconds     int64      `json:"total_seconds"`
	RemainingSeconds int64      `json:"remaining_seconds"`
	State            State      `json:"state"`
	Entrants         []string   `json:"entrants"`
	Winners          []string   `json:"winners"`
	RerollExcluded   []string   `json:"reroll_excluded"`
	StartedAt        time.Time  `json:"started_at"`
	EndedAt          *time.Time `json:"ended_at,omitempty"`
}

// EntrantsCount returns the number of registered entrants.
func (g *Giveaway) EntrantsCount() int {
	return len(g.Entrants)
}
