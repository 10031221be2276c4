// Package upload manages a single in-flight transfer from a selected file
// to durable blob storage, with progress reporting and explicit terminal
// outcomes. A pipeline owns exactly one session at a time.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/santoshbirajdar/streamsanto/internal/blob"
	"github.com/santoshbirajdar/streamsanto/internal/media"
	"github.com/santoshbirajdar/streamsanto/internal/session"
)

var (
	ErrInvalidFileType  = errors.New("upload: selected file is not a video")
	ErrNoFileSelected   = errors.New("upload: no file selected")
	ErrNoSession        = errors.New("upload: sign-in required")
	ErrTransferActive   = errors.New("upload: a transfer is already in flight")
	ErrStaleSelection   = errors.New("upload: selection replaced by a newer one")
	ErrNotSucceeded     = errors.New("upload: session has not succeeded")
	ErrAlreadyPublished = errors.New("upload: session already published")
)

// Selection identifies one staged file. Each SelectFile invalidates all
// earlier tokens, so a Begin racing a newer selection fails instead of
// transferring under the wrong key.
type Selection uint64

type Status int

const (
	StatusIdle Status = iota
	StatusTransferring
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusTransferring:
		return "transferring"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileInfo describes the locally selected file.
type FileInfo struct {
	Name        string
	Size        int64
	ContentType string
}

// Progress is one snapshot of a transfer. Snapshots for a session arrive
// in non-decreasing BytesTransferred order.
type Progress struct {
	BytesTransferred int64
	TotalBytes       int64
}

func (p Progress) Percent() float64 {
	if p.TotalBytes <= 0 {
		return 0
	}
	return float64(p.BytesTransferred) / float64(p.TotalBytes) * 100
}

// Session is the observable state of the current upload.
type Session struct {
	File             FileInfo
	BytesTransferred int64
	TotalBytes       int64
	Status           Status
	URL              string // set when Status == StatusSucceeded
	Reason           string // set when Status == StatusFailed
}

type Pipeline struct {
	mu        sync.Mutex
	store     blob.Store
	namespace string
	logger    zerolog.Logger
	now       func() time.Time

	session   *Session
	selection Selection
	cancel    context.CancelFunc
	published bool
}

func NewPipeline(store blob.Store, namespace string, logger zerolog.Logger) *Pipeline {
	if namespace == "" {
		namespace = "videos"
	}
	return &Pipeline{
		store:     store,
		namespace: namespace,
		logger:    logger,
		now:       time.Now,
	}
}

// SelectFile stages a file for upload without starting a transfer. A
// non-video selection is rejected and leaves any existing session alone; a
// valid one discards the prior idle or failed session and returns the
// token Begin needs to run this selection.
func (p *Pipeline) SelectFile(f FileInfo) (Selection, error) {
	if !media.IsVideoContentType(f.ContentType) {
		return 0, ErrInvalidFileType
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != nil && p.session.Status == StatusTransferring {
		return 0, ErrTransferActive
	}

	p.selection++
	p.session = &Session{
		File:       f,
		TotalBytes: f.Size,
		Status:     StatusIdle,
	}
	p.published = false
	return p.selection, nil
}

// Session returns a copy of the current session state.
func (p *Pipeline) Session() Session {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return Session{Status: StatusIdle}
	}
	return *p.session
}

// Begin runs the transfer to durable storage, blocking until one terminal
// outcome is reached. Progress snapshots are delivered on onProgress from
// the calling goroutine. Cancel from another goroutine aborts the transfer
// and returns the session to idle. A sel whose file was replaced by a
// later SelectFile fails with ErrStaleSelection.
func (p *Pipeline) Begin(ctx context.Context, user session.User, sel Selection, src io.Reader, onProgress func(Progress)) (string, error) {
	p.mu.Lock()
	if p.session == nil {
		p.mu.Unlock()
		return "", ErrNoFileSelected
	}
	if p.session.Status == StatusTransferring {
		p.mu.Unlock()
		return "", ErrTransferActive
	}
	if sel != p.selection {
		p.mu.Unlock()
		return "", ErrStaleSelection
	}
	if user.UserID == "" {
		p.mu.Unlock()
		return "", ErrNoSession
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.session.Status = StatusTransferring
	p.session.BytesTransferred = 0
	p.session.URL = ""
	p.session.Reason = ""

	file := p.session.File
	key := p.objectKey(user.UserID, file.Name)
	total := file.Size
	p.mu.Unlock()

	defer cancel()

	p.logger.Info().
		Str("key", key).
		Int64("size", total).
		Str("user", user.UserID).
		Msg("starting upload")

	reader := &progressReader{
		ctx:   ctx,
		src:   src,
		total: total,
		report: func(transferred int64) {
			p.mu.Lock()
			p.session.BytesTransferred = transferred
			p.mu.Unlock()
			if onProgress != nil {
				onProgress(Progress{BytesTransferred: transferred, TotalBytes: total})
			}
		},
	}

	url, err := p.store.Upload(ctx, key, reader, total, file.ContentType)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancel = nil

	if err != nil {
		if ctx.Err() != nil {
			// cancelled: back to idle, partial bytes discarded
			p.session.Status = StatusIdle
			p.session.BytesTransferred = 0
			p.logger.Info().Str("key", key).Msg("upload cancelled")
			return "", ctx.Err()
		}

		p.session.Status = StatusFailed
		p.session.Reason = err.Error()
		p.logger.Error().Err(err).Str("key", key).Msg("upload failed")
		return "", fmt.Errorf("transfer failed: %w", err)
	}

	p.session.Status = StatusSucceeded
	p.session.BytesTransferred = reader.transferred
	p.session.URL = url

	p.logger.Info().Str("key", key).Str("url", url).Msg("upload complete")
	return url, nil
}

// Cancel aborts an in-flight transfer. Progress callbacks stop and the
// session returns to idle. No-op outside a transfer.
func (p *Pipeline) Cancel() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// ClaimPublish marks the succeeded session as consumed by a publish. The
// second claim fails, which is what guarantees at most one catalog record
// per successful transfer.
func (p *Pipeline) ClaimPublish() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil || p.session.Status != StatusSucceeded {
		return ErrNotSucceeded
	}
	if p.published {
		return ErrAlreadyPublished
	}
	p.published = true
	return nil
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// objectKey builds namespace/ownerId/unixMillis_filename, unique across
// concurrent uploads by the same or different users.
func (p *Pipeline) objectKey(userID, filename string) string {
	name := unsafeKeyChars.ReplaceAllString(filename, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "upload"
	}
	return fmt.Sprintf("%s/%s/%d_%s", p.namespace, userID, p.now().UnixMilli(), name)
}

// progressReader reports cumulative bytes after every read. A cancelled
// context halts both reads and reports.
type progressReader struct {
	ctx         context.Context
	src         io.Reader
	total       int64
	transferred int64
	report      func(int64)
}

func (r *progressReader) Read(b []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}

	n, err := r.src.Read(b)
	if n > 0 {
		r.transferred += int64(n)
		if r.ctx.Err() == nil {
			r.report(r.transferred)
		}
	}
	return n, err
}
