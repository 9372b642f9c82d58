package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rangefire/rangefire/internal/core/event"
	"github.com/rangefire/rangefire/internal/world"
)

type ShotRepo struct {
	db *DB
}

func NewShotRepo(db *DB) *ShotRepo {
	return &ShotRepo{db: db}
}

// StartSession registers a new range session.
func (r *ShotRepo) StartSession(ctx context.Context, session uuid.UUID) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO range_sessions (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`,
		session,
	)
	if err != nil {
		return fmt.Errorf("start session %s: %w", session, err)
	}
	return nil
}

// WriteShots inserts a batch of shots in a single transaction.
// Re-delivered shots (same session and seq) are ignored.
func (r *ShotRepo) WriteShots(ctx context.Context, session uuid.UUID, recs []world.ShotRecord) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("shots begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range recs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO shots (session_id, seq, fired_at, hit, kind, points, x, y, z)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (session_id, seq) DO NOTHING`,
			session, rec.Seq, rec.FiredAt, rec.Hit, rec.Kind, rec.Points,
			rec.Point.X(), rec.Point.Y(), rec.Point.Z(),
		); err != nil {
			return fmt.Errorf("shots insert seq %d: %w", rec.Seq, err)
		}
	}

	return tx.Commit(ctx)
}

// EndSession stamps the session's final tally.
func (r *ShotRepo) EndSession(ctx context.Context, session uuid.UUID, score event.ScoreState) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE range_sessions SET ended_at = now(), shots = $2, hits = $3, points = $4 WHERE id = $1`,
		session, score.Shots, score.Hits, score.Points,
	)
	if err != nil {
		return fmt.Errorf("end session %s: %w", session, err)
	}
	return nil
}

// SessionScore reads back the stored tally of a session.
func (r *ShotRepo) SessionScore(ctx context.Context, session uuid.UUID) (event.ScoreState, error) {
	var s event.ScoreState
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE hit AND kind = 'target'), COALESCE(SUM(points), 0)
		 FROM shots WHERE session_id = $1`,
		session,
	).Scan(&s.Shots, &s.Hits, &s.Points)
	if err != nil {
		return s, fmt.Errorf("session score %s: %w", session, err)
	}
	return s, nil
}
