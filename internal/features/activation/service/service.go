package service

import (
	"context"

	"giveaway-bot/internal/common/logger"
	"giveaway-bot/internal/features/activation/repository"
)

const (
	ReplyAlreadyDeactivated = "Bot is already deactivated in this server."
	ReplyDeactivated        = "Bot has been deactivated in this server."
	ReplyAlreadyActive      = "Bot is already active."
	ReplyReactivated        = "Bot has been reactivated."
)

// Service answers activation questions and applies toggles.
type Service struct {
	repo repository.Repository
}

func NewService(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// IsActive reports whether giveaway commands are enabled in a guild. A store
// failure counts as inactive.
func (s *Service) IsActive(ctx context.Context, guildID string) bool {
	ok, err := s.repo.IsActivated(ctx, guildID)
	if err != nil {
		logger.Error().Err(err).Str("guild_id", guildID).Msg("Activation lookup failed")
		return false
	}
	return ok
}

// Deactivate disables the bot in a guild and returns the reply to show.
func (s *Service) Deactivate(ctx context.Context, guildID string) (string, error) {
	changed, err := s.repo.SetActivated(ctx, guildID, false)
	if err != nil {
		return "", err
	}
	if !changed {
		return ReplyAlreadyDeactivated, nil
	}
	logger.Info().Str("guild_id", guildID).Msg("Guild deactivated")
	return ReplyDeactivated, nil
}

// Reactivate enables the bot in a guild and returns the reply to show.
func (s *Service) Reactivate(ctx context.Context, guildID string) (string, error) {
	changed, err := s.repo.SetActivated(ctx, guildID, true)
	if err != nil {
		return "", err
	}
	if !changed {
		return ReplyAlreadyActive, nil
	}
	logger.Info().Str("guild_id", guildID).Msg("Guild reactivated")
	return ReplyReactivated, nil
}

// Joined activates a guild the bot was just added to.
func (s *Service) Joined(ctx context.Context, guildID string) {
	changed, err := s.repo.SetActivated(ctx, guildID, true)
	if err != nil {
		logger.Error().Err(err).Str("guild_id", guildID).Msg("Failed to activate joined guild")
		return
	}
	if changed {
		logger.Info().Str("guild_id", guildID).Msg("Joined guild activated")
	}
}
