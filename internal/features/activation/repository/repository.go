package repository

import "context"

// Repository stores which guilds have the bot enabled.
type Repository interface {
	IsActivated(ctx context.Context, guildID string) (bool, error)
	// SetActivated records the flag and reports whether it changed.
	SetActivated(ctx context.Context, guildID string, active bool) (bool, error)
}
