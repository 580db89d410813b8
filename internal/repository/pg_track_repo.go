package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/canteenlab/jukebox/internal/domain"
)

type pgTrackRepository struct {
	pool *pgxpool.Pool
}

// NewPgTrackRepository returns a TrackRepository backed by PostgreSQL.
func NewPgTrackRepository(pool *pgxpool.Pool) TrackRepository {
	return &pgTrackRepository{pool: pool}
}

func (r *pgTrackRepository) Insert(ctx context.Context, t *domain.Track) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tracks
			(id, video_id, title, thumbnail_url, duration_seconds, added_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.ID, t.VideoID, t.Title, t.ThumbnailURL, t.DurationSeconds, t.AddedBy, t.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert track: %w", err)
	}
	return nil
}

func (r *pgTrackRepository) Exists(ctx context.Context, videoID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tracks WHERE video_id = $1)`, videoID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check track exists: %w", err)
	}
	return exists, nil
}

func (r *pgTrackRepository) List(ctx context.Context) ([]*domain.Track, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, video_id, title, thumbnail_url, duration_seconds, added_by, created_at
		FROM tracks
		ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*domain.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

func (r *pgTrackRepository) Delete(ctx context.Context, videoID string) (*domain.Track, error) {
	row := r.pool.QueryRow(ctx, `
		DELETE FROM tracks
		WHERE video_id = $1
		RETURNING id, video_id, title, thumbnail_url, duration_seconds, added_by, created_at`,
		videoID)

	t, err := scanTrack(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete track: %w", err)
	}
	return t, nil
}

// scanTrack reads a single track row from any pgx row type.
func scanTrack(row pgx.Row) (*domain.Track, error) {
	var t domain.Track
	err := row.Scan(
		&t.ID, &t.VideoID, &t.Title, &t.ThumbnailURL,
		&t.DurationSeconds, &t.AddedBy, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
