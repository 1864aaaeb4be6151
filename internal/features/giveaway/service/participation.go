package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/timelessnesses/giveaway-bot/internal/common/logger"
	"github.com/timelessnesses/giveaway-bot/internal/domain/giveaway"
	"github.com/timelessnesses/giveaway-bot/internal/features/giveaway/condition"
	"github.com/timelessnesses/giveaway-bot/internal/metrics"
)

// ParticipationHandler reacts to opt-in events on announcement messages. It
// enforces eligibility conditions immediately so rejected users get prompt
// feedback instead of a silent loss at resolution time.
type ParticipationHandler struct {
	service *Service
	repo    giveaway.Repository
	logger  zerolog.Logger
}

func NewParticipationHandler(service *Service, repo giveaway.Repository) *ParticipationHandler {
	return &ParticipationHandler{
		service: service,
		repo:    repo,
		logger:  logger.With("giveaway-participation"),
	}
}

// OnReaction handles an opt-in on the given message. Reactions on messages
// that are not giveaway announcements are ignored.
func (h *ParticipationHandler) OnReaction(ctx context.Context, ref giveaway.MessageRef, p giveaway.Participant) error {
	g, err := h.repo.FindByMessageID(ctx, ref.ChatID, ref.MessageID)
	if err != nil {
		return err
	}
	if g == nil || g.Resolved() {
		return nil
	}

	if g.Condition != "" {
		cond, err := condition.Parse(g.Condition)
		if err != nil {
			// Stored conditions are validated at creation, a parse failure
			// here means corrupt data. Leave the reaction alone.
			h.logger.Error().Err(err).Str("giveaway_id", g.ID).Msg("Stored condition is invalid")
			return err
		}
		if !condition.Evaluate(cond, p, h.service.now()) {
			h.reject(ctx, g, ref, p)
			return nil
		}
	}

	// A reaction after the deadline but before the scanner's next sweep
	// triggers resolution itself, so the late participant is still counted.
	if g.HasEnded(h.service.now()) {
		if err := h.service.Resolve(ctx, g); err != nil && !errors.Is(err, ErrResolutionConflict) {
			return err
		}
	}
	return nil
}

func (h *ParticipationHandler) reject(ctx context.Context, g *giveaway.Giveaway, ref giveaway.MessageRef, p giveaway.Participant) {
	metrics.RejectedOptIns.Inc()
	h.logger.Info().
		Str("giveaway_id", g.ID).
		Int64("user_id", p.ID).
		Str("condition", g.Condition).
		Msg("Rejected ineligible opt-in")

	if err := h.service.messenger.RetractReaction(ctx, ref, p, Emoji); err != nil {
		h.logger.Warn().Err(err).Str("giveaway_id", g.ID).Int64("user_id", p.ID).Msg("Failed to retract reaction")
	}
	if err := h.service.messenger.Notify(ctx, p.ID, rejectionText(g.Condition)); err != nil {
		h.logger.Warn().Err(err).Str("giveaway_id", g.ID).Int64("user_id", p.ID).Msg("Failed to notify rejected user")
	}
}
