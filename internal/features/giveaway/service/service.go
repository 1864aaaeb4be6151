package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/timelessnesses/giveaway-bot/internal/common/logger"
	"github.com/timelessnesses/giveaway-bot/internal/domain/giveaway"
	"github.com/timelessnesses/giveaway-bot/internal/features/giveaway/condition"
	"github.com/timelessnesses/giveaway-bot/internal/features/giveaway/models"
	"github.com/timelessnesses/giveaway-bot/internal/metrics"
)

// Emoji is the opt-in reaction on announcement messages.
const Emoji = "🎉"

// Messenger is the chat-platform client the engine sends through. All calls
// are potentially blocking I/O; the engine never holds a lock across them.
type Messenger interface {
	Self() int64
	SendAnnouncement(ctx context.Context, chatID int64, text, emoji string) (giveaway.MessageRef, error)
	EditMessage(ctx context.Context, ref giveaway.MessageRef, text string) error
	FetchParticipants(ctx context.Context, ref giveaway.MessageRef, emoji string) ([]giveaway.Participant, error)
	RetractReaction(ctx context.Context, ref giveaway.MessageRef, p giveaway.Participant, emoji string) error
	Notify(ctx context.Context, userID int64, text string) error
	Cleanup(ctx context.Context, ref giveaway.MessageRef) error
	IsChatAdmin(ctx context.Context, chatID, userID int64) (bool, error)
}

// StatusCache is an optional read cache in front of status lookups.
type StatusCache interface {
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, setter func() (interface{}, error)) error
	Delete(ctx context.Context, key string) error
}

// Service drives the giveaway lifecycle: creation, resolution and the
// operations exposed to the command layer.
type Service struct {
	repo      giveaway.Repository
	messenger Messenger
	cache     StatusCache
	cacheTTL  time.Duration
	logger    zerolog.Logger

	now          func() time.Time
	intn         func(n int) int
	retryBackoff time.Duration
}

type Option func(*Service)

// WithClock injects the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRand injects the random source for winner selection, used by tests.
func WithRand(intn func(n int) int) Option {
	return func(s *Service) { s.intn = intn }
}

// WithCache enables the status read cache.
func WithCache(cache StatusCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

func NewService(repo giveaway.Repository, messenger Messenger, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		messenger:    messenger,
		logger:       logger.With("giveaway-service"),
		now:          time.Now,
		intn:         rand.Intn,
		retryBackoff: finalizeBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the input, announces the giveaway and persists it.
// Validation and condition errors surface synchronously; nothing is
// persisted on failure.
func (s *Service) Create(ctx context.Context, input *models.GiveawayCreate) (*giveaway.Giveaway, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	duration, err := models.ParseDuration(input.Duration)
	if err != nil {
		return nil, err
	}

	if input.Condition != "" {
		// Fail fast: an unparsable condition is rejected up front, never
		// silently treated as "everyone".
		if err := condition.Validate(input.Condition); err != nil {
			return nil, err
		}
	}

	admin, err := s.messenger.IsChatAdmin(ctx, input.ChatID, input.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check chat membership: %w", err)
	}
	if !admin {
		return nil, ErrNotAuthorized
	}

	now := s.now()
	g := &giveaway.Giveaway{
		ID:          uuid.NewString(),
		OwnerID:     input.OwnerID,
		ChatID:      input.ChatID,
		Title:       input.Title,
		Description: input.Description,
		Prize:       input.Prize,
		StartedAt:   now,
		Duration:    int64(duration.Seconds()),
		EndsAt:      now.Add(duration),
		Condition:   input.Condition,
	}

	ref, err := s.messenger.SendAnnouncement(ctx, input.ChatID, announcementText(g), Emoji)
	if err != nil {
		return nil, fmt.Errorf("failed to announce giveaway: %w", err)
	}
	g.ChatID = ref.ChatID
	g.MessageID = ref.MessageID

	if err := s.repo.Insert(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to persist giveaway: %w", err)
	}

	metrics.GiveawaysCreated.Inc()
	s.logger.Info().
		Str("giveaway_id", g.ID).
		Int64("chat_id", g.ChatID).
		Time("ends_at", g.EndsAt).
		Msg("Giveaway created")

	return g, nil
}

// ForceEnd resolves a giveaway immediately, regardless of its deadline. It
// goes through the same claim path as every other resolution.
func (s *Service) ForceEnd(ctx context.Context, id string) (*giveaway.Giveaway, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrNotFound
	}
	if g.WinnerID != nil {
		return nil, ErrAlreadyResolved
	}

	if err := s.Resolve(ctx, g); err != nil {
		if err == ErrResolutionConflict {
			return nil, ErrAlreadyResolved
		}
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

// GetStatus returns the giveaway with its derived lifecycle state.
func (s *Service) GetStatus(ctx context.Context, id string) (*giveaway.Giveaway, error) {
	if s.cache == nil {
		return s.getStatus(ctx, id)
	}

	var g giveaway.Giveaway
	err := s.cache.GetOrSet(ctx, "giveaway:"+id, &g, s.cacheTTL, func() (interface{}, error) {
		found, err := s.getStatus(ctx, id)
		if err != nil {
			return nil, err
		}
		return found, nil
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Service) getStatus(ctx context.Context, id string) (*giveaway.Giveaway, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrNotFound
	}
	return g, nil
}

// List returns giveaways in the given lifecycle state.
func (s *Service) List(ctx context.Context, status giveaway.Status, limit int) ([]giveaway.Giveaway, error) {
	return s.repo.ListByStatus(ctx, status, limit)
}

func (s *Service) invalidateCache(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, "giveaway:"+id); err != nil {
		s.logger.Warn().Err(err).Str("giveaway_id", id).Msg("Failed to invalidate cache")
	}
}
