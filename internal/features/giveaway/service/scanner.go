package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/timelessnesses/giveaway-bot/internal/common/logger"
	"github.com/timelessnesses/giveaway-bot/internal/domain/giveaway"
	"github.com/timelessnesses/giveaway-bot/internal/metrics"
)

const resolveConcurrency = 10

// Scanner periodically sweeps the store for giveaways past their deadline and
// resolves them. Ticks never overlap: a sweep runs to completion before the
// next one starts, so a slow sweep delays rather than stacks.
type Scanner struct {
	service    *Service
	repo       giveaway.Repository
	interval   time.Duration
	staleAfter time.Duration
	logger     zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
	now    func() time.Time
}

func NewScanner(service *Service, repo giveaway.Repository, interval, staleAfter time.Duration) *Scanner {
	return &Scanner{
		service:    service,
		repo:       repo,
		interval:   interval,
		staleAfter: staleAfter,
		logger:     logger.With("giveaway-scanner"),
		now:        time.Now,
	}
}

// Start launches the sweep loop. The first sweep runs immediately, picking up
// giveaways that expired while the process was down.
func (s *Scanner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Info().Dur("interval", s.interval).Msg("Scanner started")

		s.sweep(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info().Msg("Scanner stopped")
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (s *Scanner) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scanner) sweep(ctx context.Context) {
	expired, err := s.repo.FindExpiredUnresolved(ctx, s.now())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list expired giveaways")
		return
	}

	if len(expired) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(resolveConcurrency)
		for i := range expired {
			gw := expired[i]
			g.Go(func() error {
				err := s.service.Resolve(gctx, &gw)
				// Another coordinator got there first, nothing to do.
				if errors.Is(err, ErrResolutionConflict) {
					return nil
				}
				if err != nil {
					s.logger.Error().Err(err).Str("giveaway_id", gw.ID).Msg("Failed to resolve giveaway")
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	s.reportStaleClaims(ctx)
}

func (s *Scanner) reportStaleClaims(ctx context.Context) {
	stale, err := s.repo.FindStaleClaims(ctx, s.now().Add(-s.staleAfter))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to check for stale claims")
		return
	}
	metrics.StaleClaims.Set(float64(len(stale)))
	for _, g := range stale {
		s.logger.Error().
			Str("giveaway_id", g.ID).
			Time("ends_at", g.EndsAt).
			Msg("Giveaway claim is stale, manual intervention required")
	}
}
