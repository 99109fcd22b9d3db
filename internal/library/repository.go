package library

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	CreateMedia(ctx context.Context, m *Media) error
	GetMedia(ctx context.Context, id string) (*Media, error)
	GetMediaByPath(ctx context.Context, path string) (*Media, error)
	ListMedia(ctx context.Context) ([]*Media, error)
	DeleteMedia(ctx context.Context, id string) error
	UpdateMediaProbe(ctx context.Context, id string, width, height int, frameRate, duration float64) error
	CountMedia(ctx context.Context) (int, error)

	CreateAnnotation(ctx context.Context, a *Annotation) error
	GetAnnotation(ctx context.Context, id string) (*Annotation, error)
	ListAnnotationsByMedia(ctx context.Context, mediaID string) ([]*Annotation, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateMedia(ctx context.Context, m *Media) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO media (id, path, filename, size, width, height, frame_rate, duration, probed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Path, m.Filename, m.Size, m.Width, m.Height, m.FrameRate, m.Duration,
		boolToInt(m.Probed), m.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetMedia(ctx context.Context, id string) (*Media, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, path, filename, size, width, height, frame_rate, duration, probed, created_at
		FROM media WHERE id = ?
	`, id)
	return r.scanMedia(row)
}

func (r *SQLiteRepository) GetMediaByPath(ctx context.Context, path string) (*Media, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, path, filename, size, width, height, frame_rate, duration, probed, created_at
		FROM media WHERE path = ?
	`, path)
	return r.scanMedia(row)
}

func (r *SQLiteRepository) scanMedia(row *sql.Row) (*Media, error) {
	var m Media
	var probed int
	var createdAt string

	err := row.Scan(&m.ID, &m.Path, &m.Filename, &m.Size, &m.Width, &m.Height,
		&m.FrameRate, &m.Duration, &probed, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	m.Probed = probed == 1
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &m, nil
}

func (r *SQLiteRepository) ListMedia(ctx context.Context) ([]*Media, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, path, filename, size, width, height, frame_rate, duration, probed, created_at
		FROM media ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Media
	for rows.Next() {
		var m Media
		var probed int
		var createdAt string

		if err := rows.Scan(&m.ID, &m.Path, &m.Filename, &m.Size, &m.Width, &m.Height,
			&m.FrameRate, &m.Duration, &probed, &createdAt); err != nil {
			return nil, err
		}
		m.Probed = probed == 1
		m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		items = append(items, &m)
	}
	return items, rows.Err()
}

func (r *SQLiteRepository) DeleteMedia(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM media WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) UpdateMediaProbe(ctx context.Context, id string, width, height int, frameRate, duration float64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE media SET width = ?, height = ?, frame_rate = ?, duration = ?, probed = 1 WHERE id = ?
	`, width, height, frameRate, duration, id)
	return err
}

func (r *SQLiteRepository) CountMedia(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM media").Scan(&count)
	return count, err
}

func (r *SQLiteRepository) CreateAnnotation(ctx context.Context, a *Annotation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO annotations (id, media_id, locator, object_count, frame_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.ID, a.MediaID, a.Locator, a.ObjectCount, a.FrameCount, a.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetAnnotation(ctx context.Context, id string) (*Annotation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, media_id, locator, object_count, frame_count, created_at
		FROM annotations WHERE id = ?
	`, id)

	var a Annotation
	var createdAt string
	err := row.Scan(&a.ID, &a.MediaID, &a.Locator, &a.ObjectCount, &a.FrameCount, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &a, nil
}

func (r *SQLiteRepository) ListAnnotationsByMedia(ctx context.Context, mediaID string) ([]*Annotation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, media_id, locator, object_count, frame_count, created_at
		FROM annotations WHERE media_id = ? ORDER BY created_at DESC
	`, mediaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Annotation
	for rows.Next() {
		var a Annotation
		var createdAt string
		if err := rows.Scan(&a.ID, &a.MediaID, &a.Locator, &a.ObjectCount, &a.FrameCount, &createdAt); err != nil {
			return nil, err
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		items = append(items, &a)
	}
	return items, rows.Err()
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
