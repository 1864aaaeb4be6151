package service

import (
	"context"
	"fmt"
	"time"

	"github.com/timelessnesses/giveaway-bot/internal/domain/giveaway"
	"github.com/timelessnesses/giveaway-bot/internal/features/giveaway/condition"
	"github.com/timelessnesses/giveaway-bot/internal/metrics"
)

const (
	finalizeAttempts = 3
	finalizeBackoff  = 2 * time.Second
)

// Resolve picks a winner for the giveaway and finalizes it. The store-level
// claim guarantees at most one caller proceeds; everyone else gets
// ErrResolutionConflict. A claim is only released by finalizing, so a crash
// between claim and finalize leaves a stale claim for the scanner to report.
func (s *Service) Resolve(ctx context.Context, g *giveaway.Giveaway) error {
	claimed, err := s.repo.ClaimForResolution(ctx, g.ID)
	if err != nil {
		return fmt.Errorf("failed to claim giveaway %s: %w", g.ID, err)
	}
	if !claimed {
		metrics.Resolutions.WithLabelValues("conflict").Inc()
		return ErrResolutionConflict
	}

	started := s.now()
	var lastErr error
	for attempt := 1; attempt <= finalizeAttempts; attempt++ {
		lastErr = s.completeClaim(ctx, g)
		if lastErr == nil {
			metrics.ResolutionDuration.Observe(s.now().Sub(started).Seconds())
			return nil
		}
		s.logger.Warn().
			Err(lastErr).
			Str("giveaway_id", g.ID).
			Int("attempt", attempt).
			Msg("Failed to complete resolution, retrying")
		if attempt < finalizeAttempts {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				attempt = finalizeAttempts
			case <-time.After(s.retryBackoff):
			}
		}
	}

	// The claim is kept. The giveaway stays in the resolving state until an
	// operator intervenes; FindStaleClaims surfaces it.
	metrics.Resolutions.WithLabelValues("error").Inc()
	s.logger.Error().
		Err(lastErr).
		Str("giveaway_id", g.ID).
		Msg("Giveaway stuck in resolving state after exhausting retries")
	return fmt.Errorf("failed to resolve giveaway %s: %w", g.ID, lastErr)
}

// completeClaim runs the winner selection and finalization for a giveaway the
// caller has already claimed. It is safe to retry on the same claim.
func (s *Service) completeClaim(ctx context.Context, g *giveaway.Giveaway) error {
	participants, err := s.messenger.FetchParticipants(ctx, g.MessageRef(), Emoji)
	if err != nil {
		return fmt.Errorf("failed to fetch participants: %w", err)
	}

	var cond *condition.Condition
	if g.Condition != "" {
		parsed, err := condition.Parse(g.Condition)
		if err != nil {
			// A stored condition that no longer parses is a bug, not a
			// transient failure, but the claim is kept so the giveaway
			// surfaces as stuck instead of silently resolving without it.
			return fmt.Errorf("stored condition is invalid: %w", err)
		}
		cond = &parsed
	}

	now := s.now()
	winner, found := SelectWinner(participants, cond, s.messenger.Self(), now, s.intn)

	winnerID := giveaway.NoWinnerID
	if found {
		winnerID = winner.ID
	}

	if err := s.repo.FinalizeWinner(ctx, g.ID, winnerID, now); err != nil {
		return fmt.Errorf("failed to finalize winner: %w", err)
	}
	s.invalidateCache(ctx, g.ID)

	if found {
		metrics.Resolutions.WithLabelValues("winner").Inc()
	} else {
		metrics.Resolutions.WithLabelValues("no_winner").Inc()
	}
	s.logger.Info().
		Str("giveaway_id", g.ID).
		Int64("winner_id", winnerID).
		Int("participants", len(participants)).
		Msg("Giveaway resolved")

	// Everything past finalization is best effort. Retrying the claim after
	// an announcement failure would double-finalize, so failures here only
	// log.
	if err := s.messenger.EditMessage(ctx, g.MessageRef(), resultText(g, winner, winnerID)); err != nil {
		s.logger.Warn().Err(err).Str("giveaway_id", g.ID).Msg("Failed to update announcement message")
	}
	if found {
		if err := s.messenger.Notify(ctx, winner.ID, winnerDMText(g)); err != nil {
			s.logger.Warn().Err(err).Str("giveaway_id", g.ID).Int64("winner_id", winner.ID).Msg("Failed to notify winner")
		}
	}
	if err := s.messenger.Cleanup(ctx, g.MessageRef()); err != nil {
		s.logger.Warn().Err(err).Str("giveaway_id", g.ID).Msg("Failed to clean up reaction state")
	}

	return nil
}
