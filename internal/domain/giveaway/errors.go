package giveaway

import (
	"errors"

	apperrors "giveaway-bot/internal/common/errors"
)

var (
	ErrGiveawayNotFound     = errors.New("giveaway not found")
	ErrGiveawayEnded        = errors.New("giveaway has ended")
	ErrAlreadyExists        = errors.New("giveaway already exists")
	ErrAlreadyFinalized     = errors.New("giveaway already finalized")
	ErrNoWinners            = errors.New("giveaway has no winners")
	ErrNotAWinner           = errors.New("reroll target is not a current winner")
	ErrInsufficientEligible = errors.New("not enough eligible participants")
	ErrEmptyRerollTargets   = errors.New("no reroll targets given")
	ErrInvalidConfig        = errors.New("invalid giveaway config")
)

// ToAppError maps domain errors to the application error taxonomy.
func ToAppError(err error) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	switch {
	case errors.Is(err, ErrGiveawayNotFound):
		return apperrors.Wrap(err, apperrors.ErrCodeGiveawayNotFound, "Giveaway not found")
	case errors.Is(err, ErrGiveawayEnded), errors.Is(err, ErrAlreadyFinalized):
		return apperrors.Wrap(err, apperrors.ErrCodeGiveawayEnded, "Giveaway has ended")
	case errors.Is(err, ErrNoWinners):
		return apperrors.Wrap(err, apperrors.ErrCodeNoWinners, "Giveaway has no winners")
	case errors.Is(err, ErrNotAWinner):
		return apperrors.Wrap(err, apperrors.ErrCodeNotAWinner, "Only current winners can be rerolled")
	case errors.Is(err, ErrInsufficientEligible):
		return apperrors.Wrap(err, apperrors.ErrCodeInsufficientEligible, "Not enough eligible participants")
	case errors.Is(err, ErrEmptyRerollTargets), errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrAlreadyExists):
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	default:
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "Internal error")
	}
}
