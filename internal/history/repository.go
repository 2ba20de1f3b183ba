package history

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	CreateRender(ctx context.Context, r *Render) error
	GetRender(ctx context.Context, id string) (*Render, error)
	ListRecent(ctx context.Context, limit int) ([]*Render, error)
	UpdateRenderStatus(ctx context.Context, id, status, errorMsg string, durationMs int64) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateRender(ctx context.Context, rec *Render) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO renders (id, frame_count, video_duration, pad_duration, encoder, output_path, status, error, duration_ms, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.FrameCount, rec.VideoDuration, rec.PadDuration, rec.Encoder, rec.OutputPath,
		rec.Status, nullString(rec.Error), rec.DurationMs,
		rec.CreatedAt.Format(time.RFC3339), rec.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetRender(ctx context.Context, id string) (*Render, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, frame_count, video_duration, pad_duration, encoder, output_path, status, error, duration_ms, created_at, updated_at
		FROM renders WHERE id = ?
	`, id)

	var rec Render
	var errMsg sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&rec.ID, &rec.FrameCount, &rec.VideoDuration, &rec.PadDuration,
		&rec.Encoder, &rec.OutputPath, &rec.Status, &errMsg, &rec.DurationMs, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.Error = errMsg.String
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &rec, nil
}

func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]*Render, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, frame_count, video_duration, pad_duration, encoder, output_path, status, error, duration_ms, created_at, updated_at
		FROM renders ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var renders []*Render
	for rows.Next() {
		var rec Render
		var errMsg sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&rec.ID, &rec.FrameCount, &rec.VideoDuration, &rec.PadDuration,
			&rec.Encoder, &rec.OutputPath, &rec.Status, &errMsg, &rec.DurationMs, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		rec.Error = errMsg.String
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		renders = append(renders, &rec)
	}
	return renders, rows.Err()
}

func (r *SQLiteRepository) UpdateRenderStatus(ctx context.Context, id, status, errorMsg string, durationMs int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE renders SET status = ?, error = ?, duration_ms = ?, updated_at = datetime('now') WHERE id = ?
	`, status, nullString(errorMsg), durationMs, id)
	return err
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
