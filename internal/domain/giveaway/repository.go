package giveaway

import (
	"context"
	"time"
)

// Repository defines persistence operations for the Giveaway aggregate.
//
// ClaimForResolution is the only synchronization primitive the engine relies
// on: it must be a true compare-and-swap at the storage layer, so that
// concurrent resolvers (scanner ticks, participation events, replicas
// sharing one store) cannot both claim the same giveaway.
type Repository interface {
	Insert(ctx context.Context, g *Giveaway) error
	GetByID(ctx context.Context, id string) (*Giveaway, error)
	FindByMessageID(ctx context.Context, chatID, messageID int64) (*Giveaway, error)

	// FindExpiredUnresolved returns giveaways with ends_at <= now and
	// winner_id still null, ordered by ends_at.
	FindExpiredUnresolved(ctx context.Context, now time.Time) ([]Giveaway, error)

	// ClaimForResolution atomically sets winner_id to the claim marker where
	// it was null. Returns false when another resolver already claimed or
	// resolved the giveaway.
	ClaimForResolution(ctx context.Context, id string) (bool, error)

	// FinalizeWinner overwrites the claim marker with the final winner id
	// (or NoWinnerID) and records the actual resolution time.
	FinalizeWinner(ctx context.Context, id string, winnerID int64, endedAt time.Time) error

	// FindStaleClaims returns giveaways whose claim marker was written before
	// the given instant and never finalized. These require operator attention.
	FindStaleClaims(ctx context.Context, olderThan time.Time) ([]Giveaway, error)

	ListByStatus(ctx context.Context, status Status, limit int) ([]Giveaway, error)
}
