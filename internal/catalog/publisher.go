package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/santoshbirajdar/streamsanto/internal/session"
)

var ErrEmptyTitle = errors.New("catalog: title is required")

// DefaultThumbnail is used when no thumbnail could be generated for an
// upload.
const DefaultThumbnail = "https://images.unsplash.com/photo-1611162617474-5b21e879e113?q=80&w=1000&auto=format&fit=crop"

// Form is the metadata the uploader fills in before publishing.
type Form struct {
	Title       string
	Description string
	Thumbnail   string // optional, DefaultThumbnail when empty
	Duration    string // optional "m:ss", "0:00" when empty
}

// Publisher turns a successful transfer into a committed catalog record.
// It is not idempotent: two Publish calls create two records, so callers
// must claim the upload session first.
type Publisher struct {
	store  Store
	logger zerolog.Logger
}

func NewPublisher(store Store, logger zerolog.Logger) *Publisher {
	return &Publisher{store: store, logger: logger}
}

// Publish validates the form, builds the record with zero views and the
// caller's identity, and commits it. The store assigns id and publication
// timestamp; the generated id is returned.
func (p *Publisher) Publish(ctx context.Context, videoURL string, user session.User, form Form) (string, error) {
	if strings.TrimSpace(form.Title) == "" {
		return "", ErrEmptyTitle
	}
	if user.UserID == "" {
		return "", session.ErrNoSession
	}

	thumbnail := form.Thumbnail
	if thumbnail == "" {
		thumbnail = DefaultThumbnail
	}
	duration := form.Duration
	if duration == "" {
		duration = "0:00"
	}

	rec := &VideoRecord{
		Title:       strings.TrimSpace(form.Title),
		Description: form.Description,
		Views:       0,
		UserID:      user.UserID,
		Channel:     user.Channel(),
		Avatar:      user.Avatar(),
		Thumbnail:   thumbnail,
		VideoURL:    videoURL,
		Duration:    duration,
	}

	id, err := p.store.Commit(ctx, rec)
	if err != nil {
		// the transfer already succeeded; the stored asset stays behind
		// until the sweeper reconciles it
		p.logger.Error().Err(err).Str("video_url", videoURL).Msg("catalog commit failed")
		return "", fmt.Errorf("publish failed: %w", err)
	}

	p.logger.Info().
		Str("id", id).
		Str("title", rec.Title).
		Str("channel", rec.Channel).
		Msg("video published")

	return id, nil
}
