package bot

import "context"

// ControlHandler applies operator control messages from the Redis stream.
type ControlHandler struct {
	activation Activation
	giveaways  Giveaways
}

func NewControlHandler(activation Activation, giveaways Giveaways) *ControlHandler {
	return &ControlHandler{activation: activation, giveaways: giveaways}
}

func (h *ControlHandler) SetGuildActive(ctx context.Context, guildID string, active bool) error {
	var err error
	if active {
		_, err = h.activation.Reactivate(ctx, guildID)
	} else {
		_, err = h.activation.Deactivate(ctx, guildID)
	}
	return err
}

func (h *ControlHandler) CancelGiveaway(ctx context.Context, giveawayID string) error {
	return h.giveaways.Cancel(ctx, giveawayID)
}
