package giveaway

import "context"

// EventType enumerates lifecycle notifications emitted by the registry.
type EventType string

const (
	EventCreated   EventType = "created"
	EventEntered   EventType = "entered"
	EventCountdown EventType = "countdown"
	EventEnded     EventType = "ended"
	EventRerolled  EventType = "rerolled"
	EventCancelled EventType = "cancelled"
)

// Event carries a snapshot taken at the moment the transition happened.
type Event struct {
	Type     EventType
	Giveaway Giveaway

	// Display is the formatted remaining time for EventCountdown.
	Display string
	// PreviousState is the state a cancelled giveaway was in.
	PreviousState State
	// Replaced and Replacements are set for EventRerolled, index aligned.
	Replaced     []string
	Replacements []string
}

// Listener receives lifecycle events. Implementations must not call back into
// the registry synchronously for the same giveaway.
type Listener interface {
	OnEvent(ctx context.Context, e Event)
}

// Listeners fans an event out to each listener in order.
type Listeners []Listener

func (ls Listeners) OnEvent(ctx context.Context, e Event) {
	for _, l := range ls {
		if l != nil {
			l.OnEvent(ctx, e)
		}
	}
}
