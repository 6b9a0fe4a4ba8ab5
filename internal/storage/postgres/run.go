package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/toBeOfUse/patreon-post-tracker/internal/domain"
)

// ErrRunNotFound is returned when a run finalize matched no ledger row.
var ErrRunNotFound = errors.New("no run row matched started_at")

type RunStore struct {
	db *sqlx.DB
}

func NewRunStore(db *sqlx.DB) *RunStore {
	return &RunStore{db: db}
}

// Begin inserts the run's ledger row with only its start time. The rest
// of the columns stay NULL until Complete.
func (s *RunStore) Begin(ctx context.Context, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingest_runs (started_at) VALUES ($1)`,
		startedAt,
	)
	return err
}

// Latest returns the most recent run row by start time, complete or not.
// Returns (nil, nil) when the ledger is empty.
func (s *RunStore) Latest(ctx context.Context) (*domain.Run, error) {
	var run domain.Run
	query := `
		SELECT started_at, duration_seconds, items_retrieved, resume_cursor
		FROM ingest_runs
		ORDER BY started_at DESC
		LIMIT 1`

	err := s.db.GetContext(ctx, &run, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Complete finalizes the run row inserted by Begin. A nil resumeCursor
// records that the historical sweep reached the end of the feed.
func (s *RunStore) Complete(ctx context.Context, startedAt time.Time, durationSeconds float64, itemsRetrieved int, resumeCursor *string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE ingest_runs
		SET duration_seconds = $2, items_retrieved = $3, resume_cursor = $4
		WHERE started_at = $1`,
		startedAt,
		durationSeconds,
		itemsRetrieved,
		resumeCursor,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRunNotFound
	}
	return nil
}
