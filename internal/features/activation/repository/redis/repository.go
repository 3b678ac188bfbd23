package redis

import (
	"context"

	apperrors "giveaway-bot/internal/common/errors"
	"giveaway-bot/internal/platform/redis"
)

const activatedGuildsKey = "giveaway:activated_guilds"

// Repository keeps activated guild IDs in a Redis set.
type Repository struct {
	client *redis.Client
}

func New(client *redis.Client) *Repository {
	return &Repository{client: client}
}

func (r *Repository) IsActivated(ctx context.Context, guildID string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, activatedGuildsKey, guildID).Result()
	if err != nil {
		return false, apperrors.NewCacheError("sismember", err).WithDetail("guild_id", guildID)
	}
	return ok, nil
}

func (r *Repository) SetActivated(ctx context.Context, guildID string, active bool) (bool, error) {
	var (
		n   int64
		err error
	)
	if active {
		n, err = r.client.SAdd(ctx, activatedGuildsKey, guildID).Result()
	} else {
		n, err = r.client.SRem(ctx, activatedGuildsKey, guildID).Result()
	}
	if err != nil {
		return false, apperrors.NewCacheError("set activation", err).WithDetail("guild_id", guildID)
	}
	return n > 0, nil
}
