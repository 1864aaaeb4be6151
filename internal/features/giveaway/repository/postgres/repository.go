package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/timelessnesses/giveaway-bot/internal/domain/giveaway"
)

const schema = `
CREATE TABLE IF NOT EXISTS giveaways (
    id          TEXT PRIMARY KEY,
    owner_id    BIGINT NOT NULL,
    chat_id     BIGINT NOT NULL,
    message_id  BIGINT NOT NULL,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    prize       TEXT NOT NULL,
    started_at  TIMESTAMPTZ NOT NULL,
    duration    BIGINT NOT NULL,
    ends_at     TIMESTAMPTZ NOT NULL,
    condition   TEXT,
    winner_id   BIGINT,
    ended_at    TIMESTAMPTZ,
    claimed_at  TIMESTAMPTZ,
    UNIQUE (chat_id, message_id)
);

CREATE INDEX IF NOT EXISTS idx_giveaways_pending
    ON giveaways (ends_at) WHERE winner_id IS NULL;
`

// GiveawayRepository persists giveaways in PostgreSQL. The conditional
// UPDATE in ClaimForResolution is the synchronization point the whole
// resolution protocol rests on.
type GiveawayRepository struct {
	db *sqlx.DB
}

func NewGiveawayRepository(db *sqlx.DB) *GiveawayRepository {
	return &GiveawayRepository{db: db}
}

var _ giveaway.Repository = (*GiveawayRepository)(nil)

// Migrate creates the schema if it does not exist yet.
func (r *GiveawayRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate giveaways schema: %w", err)
	}
	return nil
}

type giveawayRow struct {
	ID          string         `db:"id"`
	OwnerID     int64          `db:"owner_id"`
	ChatID      int64          `db:"chat_id"`
	MessageID   int64          `db:"message_id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Prize       string         `db:"prize"`
	StartedAt   time.Time      `db:"started_at"`
	Duration    int64          `db:"duration"`
	EndsAt      time.Time      `db:"ends_at"`
	Condition   sql.NullString `db:"condition"`
	WinnerID    sql.NullInt64  `db:"winner_id"`
	EndedAt     sql.NullTime   `db:"ended_at"`
	ClaimedAt   sql.NullTime   `db:"claimed_at"`
}

func (row giveawayRow) toDomain() giveaway.Giveaway {
	g := giveaway.Giveaway{
		ID:          row.ID,
		OwnerID:     row.OwnerID,
		ChatID:      row.ChatID,
		MessageID:   row.MessageID,
		Title:       row.Title,
		Description: row.Description,
		Prize:       row.Prize,
		StartedAt:   row.StartedAt,
		Duration:    row.Duration,
		EndsAt:      row.EndsAt,
		Condition:   row.Condition.String,
	}
	if row.WinnerID.Valid {
		w := row.WinnerID.Int64
		g.WinnerID = &w
	}
	if row.EndedAt.Valid {
		t := row.EndedAt.Time
		g.EndedAt = &t
	}
	return g
}

const selectColumns = `id, owner_id, chat_id, message_id, title, description, prize,
    started_at, duration, ends_at, condition, winner_id, ended_at, claimed_at`

func (r *GiveawayRepository) Insert(ctx context.Context, g *giveaway.Giveaway) error {
	const q = `
        INSERT INTO giveaways (id, owner_id, chat_id, message_id, title, description, prize,
            started_at, duration, ends_at, condition, winner_id, ended_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NULL,NULL)`

	var cond interface{}
	if g.Condition != "" {
		cond = g.Condition
	}

	_, err := r.db.ExecContext(ctx, q,
		g.ID, g.OwnerID, g.ChatID, g.MessageID, g.Title, g.Description, g.Prize,
		g.StartedAt, g.Duration, g.EndsAt, cond,
	)
	if err != nil {
		return fmt.Errorf("failed to insert giveaway: %w", err)
	}
	return nil
}

// GetByID returns nil when no giveaway matches.
func (r *GiveawayRepository) GetByID(ctx context.Context, id string) (*giveaway.Giveaway, error) {
	const q = `SELECT ` + selectColumns + ` FROM giveaways WHERE id = $1`

	var row giveawayRow
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	g := row.toDomain()
	return &g, nil
}

func (r *GiveawayRepository) FindByMessageID(ctx context.Context, chatID, messageID int64) (*giveaway.Giveaway, error) {
	const q = `SELECT ` + selectColumns + ` FROM giveaways WHERE chat_id = $1 AND message_id = $2`

	var row giveawayRow
	if err := r.db.GetContext(ctx, &row, q, chatID, messageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	g := row.toDomain()
	return &g, nil
}

func (r *GiveawayRepository) FindExpiredUnresolved(ctx context.Context, now time.Time) ([]giveaway.Giveaway, error) {
	const q = `SELECT ` + selectColumns + `
        FROM giveaways
        WHERE ends_at <= $1 AND winner_id IS NULL
        ORDER BY ends_at ASC`

	var rows []giveawayRow
	if err := r.db.SelectContext(ctx, &rows, q, now); err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

// ClaimForResolution performs the atomic conditional claim: it succeeds for
// exactly one caller per giveaway, no matter how many resolvers race.
func (r *GiveawayRepository) ClaimForResolution(ctx context.Context, id string) (bool, error) {
	const q = `
        UPDATE giveaways
        SET winner_id = $2, claimed_at = now()
        WHERE id = $1 AND winner_id IS NULL`

	res, err := r.db.ExecContext(ctx, q, id, giveaway.ClaimMarkerID)
	if err != nil {
		return false, fmt.Errorf("failed to claim giveaway %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *GiveawayRepository) FinalizeWinner(ctx context.Context, id string, winnerID int64, endedAt time.Time) error {
	const q = `
        UPDATE giveaways
        SET winner_id = $2, ended_at = $3
        WHERE id = $1 AND winner_id = $4`

	res, err := r.db.ExecContext(ctx, q, id, winnerID, endedAt, giveaway.ClaimMarkerID)
	if err != nil {
		return fmt.Errorf("failed to finalize giveaway %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("giveaway %s is not claimed for resolution", id)
	}
	return nil
}

func (r *GiveawayRepository) FindStaleClaims(ctx context.Context, olderThan time.Time) ([]giveaway.Giveaway, error) {
	const q = `SELECT ` + selectColumns + `
        FROM giveaways
        WHERE winner_id = $1 AND claimed_at < $2
        ORDER BY claimed_at ASC`

	var rows []giveawayRow
	if err := r.db.SelectContext(ctx, &rows, q, giveaway.ClaimMarkerID, olderThan); err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

func (r *GiveawayRepository) ListByStatus(ctx context.Context, status giveaway.Status, limit int) ([]giveaway.Giveaway, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	var filter string
	switch status {
	case giveaway.StatusActive:
		filter = `winner_id IS NULL`
	case giveaway.StatusResolving:
		filter = `winner_id = ` + fmt.Sprintf("%d", giveaway.ClaimMarkerID)
	case giveaway.StatusEnded:
		filter = `winner_id IS NOT NULL AND winner_id <> ` + fmt.Sprintf("%d", giveaway.ClaimMarkerID)
	default:
		return nil, fmt.Errorf("unknown giveaway status %q", status)
	}

	q := `SELECT ` + selectColumns + `
        FROM giveaways WHERE ` + filter + `
        ORDER BY started_at DESC
        LIMIT $1`

	var rows []giveawayRow
	if err := r.db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

func toDomainSlice(rows []giveawayRow) []giveaway.Giveaway {
	out := make([]giveaway.Giveaway, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out
}
