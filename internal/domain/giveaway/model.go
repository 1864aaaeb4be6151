package giveaway

import "time"

// Status is the lifecycle state of a giveaway, derived from winner_id.
type Status string

const (
	// StatusActive: winner_id is still unset, the giveaway accepts entries
	// (or awaits resolution once the deadline passed).
	StatusActive Status = "active"
	// StatusResolving: a resolver holds the claim and is computing the winner.
	StatusResolving Status = "resolving"
	// StatusEnded: winner_id is written, terminal.
	StatusEnded Status = "ended"
)

const (
	// NoWinnerID marks a giveaway resolved with zero eligible participants.
	// It is disjoint from every real Telegram user id.
	NoWinnerID int64 = 0
	// ClaimMarkerID is the placeholder written by a successful resolution
	// claim, overwritten by the final winner id.
	ClaimMarkerID int64 = -1
)

// MinDuration is the shortest lifespan a giveaway may be created with.
const MinDuration = 5 * time.Second

// MessageRef identifies an announcement message on the platform.
type MessageRef struct {
	ChatID    int64
	MessageID int64
}

// Participant is an account that opted in by reacting to the announcement.
type Participant struct {
	ID        int64
	Username  string
	IsBot     bool
	RoleIDs   []int64
	CreatedAt time.Time
}

// Giveaway is the central entity. All fields except WinnerID and EndedAt are
// immutable once created; WinnerID transitions null -> non-null exactly once.
type Giveaway struct {
	ID          string
	OwnerID     int64
	ChatID      int64
	MessageID   int64
	Title       string
	Description string
	Prize       string
	StartedAt   time.Time
	Duration    int64 // seconds
	EndsAt      time.Time
	Condition   string // empty when unrestricted
	WinnerID    *int64
	EndedAt     *time.Time
}

// MessageRef returns the announcement location of the giveaway.
func (g *Giveaway) MessageRef() MessageRef {
	return MessageRef{ChatID: g.ChatID, MessageID: g.MessageID}
}

// HasEnded reports whether the deadline has passed.
func (g *Giveaway) HasEnded(now time.Time) bool {
	return !now.Before(g.EndsAt)
}

// Resolved reports whether a final winner (or the no-winner sentinel) has
// been written. A pending claim marker does not count as resolved.
func (g *Giveaway) Resolved() bool {
	return g.WinnerID != nil && *g.WinnerID != ClaimMarkerID
}

// Status derives the lifecycle state from winner_id.
func (g *Giveaway) Status() Status {
	switch {
	case g.WinnerID == nil:
		return StatusActive
	case *g.WinnerID == ClaimMarkerID:
		return StatusResolving
	default:
		return StatusEnded
	}
}
