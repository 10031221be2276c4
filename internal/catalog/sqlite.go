package catalog

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteCatalog is the default catalog store. Publication timestamps come
// from the store's clock at commit time, never from the caller, so record
// order stays correct across clients with skewed clocks.
type SQLiteCatalog struct {
	db      *sql.DB
	now     func() time.Time
	changes chan struct{}
}

func NewSQLiteCatalog(dbPath string) (*SQLiteCatalog, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteCatalog{
		db:      db,
		now:     time.Now,
		changes: make(chan struct{}, 1),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteCatalog) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS videos (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		views INTEGER NOT NULL DEFAULT 0,
		uploaded_at DATETIME NOT NULL,
		user_id TEXT NOT NULL,
		channel TEXT NOT NULL,
		avatar TEXT NOT NULL DEFAULT '',
		thumbnail TEXT NOT NULL DEFAULT '',
		video_url TEXT NOT NULL,
		duration TEXT NOT NULL DEFAULT '0:00'
	);

	CREATE INDEX IF NOT EXISTS idx_videos_uploaded ON videos(uploaded_at DESC);

	CREATE TABLE IF NOT EXISTS playback_positions (
		video_id TEXT PRIMARY KEY REFERENCES videos(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		duration INTEGER NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteCatalog) Close() error {
	return s.db.Close()
}

func (s *SQLiteCatalog) Commit(ctx context.Context, rec *VideoRecord) (string, error) {
	id := uuid.NewString()
	publishedAt := s.now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO videos (
			id, title, description, views, uploaded_at,
			user_id, channel, avatar, thumbnail, video_url, duration
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id, rec.Title, rec.Description, rec.Views, publishedAt,
		rec.UserID, rec.Channel, rec.Avatar, rec.Thumbnail, rec.VideoURL, rec.Duration,
	)
	if err != nil {
		return "", err
	}

	rec.ID = id
	rec.UploadedAt = publishedAt
	s.notifyChanged()
	return id, nil
}

const videoColumns = `id, title, description, views, uploaded_at,
	user_id, channel, avatar, thumbnail, video_url, duration`

func (s *SQLiteCatalog) List(ctx context.Context) ([]VideoRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+videoColumns+`
		FROM videos ORDER BY uploaded_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []VideoRecord
	for rows.Next() {
		var r VideoRecord
		if err := rows.Scan(
			&r.ID, &r.Title, &r.Description, &r.Views, &r.UploadedAt,
			&r.UserID, &r.Channel, &r.Avatar, &r.Thumbnail, &r.VideoURL, &r.Duration,
		); err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

func (s *SQLiteCatalog) Get(ctx context.Context, id string) (*VideoRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+videoColumns+`
		FROM videos WHERE id = ?
	`, id)

	var r VideoRecord
	err := row.Scan(
		&r.ID, &r.Title, &r.Description, &r.Views, &r.UploadedAt,
		&r.UserID, &r.Channel, &r.Avatar, &r.Thumbnail, &r.VideoURL, &r.Duration,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &r, nil
}

func (s *SQLiteCatalog) IncrementView(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE videos SET views = views + 1 WHERE id = ?", id)
	if err != nil {
		return err
	}
	s.notifyChanged()
	return nil
}

func (s *SQLiteCatalog) Changes() <-chan struct{} {
	return s.changes
}

func (s *SQLiteCatalog) notifyChanged() {
	select {
	case s.changes <- struct{}{}:
	default: // a signal is already pending
	}
}

// Playback positions (continue watching)

type PlaybackPosition struct {
	VideoID   string    `json:"video_id"`
	Position  int64     `json:"position"` // seconds
	Duration  int64     `json:"duration"` // seconds
	UpdatedAt time.Time `json:"-"`
}

func (s *SQLiteCatalog) SavePlaybackPosition(ctx context.Context, pos *PlaybackPosition) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO playback_positions (video_id, position, duration, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			position = excluded.position,
			duration = excluded.duration,
			updated_at = excluded.updated_at
	`, pos.VideoID, pos.Position, pos.Duration, s.now().UTC())
	return err
}

func (s *SQLiteCatalog) GetPlaybackPosition(ctx context.Context, videoID string) (*PlaybackPosition, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT video_id, position, duration, updated_at
		FROM playback_positions WHERE video_id = ?
	`, videoID)

	var p PlaybackPosition
	err := row.Scan(&p.VideoID, &p.Position, &p.Duration, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}
