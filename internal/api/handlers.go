package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/santoshbirajdar/streamsanto/internal/cache"
	"github.com/santoshbirajdar/streamsanto/internal/catalog"
	"github.com/santoshbirajdar/streamsanto/internal/media"
	"github.com/santoshbirajdar/streamsanto/internal/session"
	"github.com/santoshbirajdar/streamsanto/internal/streaming"
	"github.com/santoshbirajdar/streamsanto/internal/upload"
)

const Version = "0.1.0"

type Handler struct {
	sync          *catalog.Sync
	publisher     *catalog.Publisher
	positions     *catalog.SQLiteCatalog
	uploads       *upload.Pipeline
	sessions      session.Provider
	logger        zerolog.Logger
	maxUploadSize int64
	now           func() time.Time

	metadata   *media.MetadataExtractor
	thumbnails *media.ThumbnailGenerator
	thumbCache *cache.LRU
	streamer   *streaming.Handler
}

func NewHandler(
	sync *catalog.Sync,
	publisher *catalog.Publisher,
	positions *catalog.SQLiteCatalog,
	uploads *upload.Pipeline,
	sessions session.Provider,
	logger zerolog.Logger,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sync:          sync,
		publisher:     publisher,
		positions:     positions,
		uploads:       uploads,
		sessions:      sessions,
		logger:        logger,
		maxUploadSize: maxUploadSize,
		now:           time.Now,
	}
}

func (h *Handler) SetMediaTools(extractor *media.MetadataExtractor, generator *media.ThumbnailGenerator, thumbCache *cache.LRU) {
	h.metadata = extractor
	h.thumbnails = generator
	h.thumbCache = thumbCache
}

// SetStreamer enables serving stored video files directly. Only set when
// the blob backend is local disk.
func (h *Handler) SetStreamer(streamer *streaming.Handler) {
	h.streamer = streamer
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: Version,
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListVideos returns the current catalog snapshot, newest first, uploads
// before seed content. The optional q parameter filters by title or channel.
func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	records := h.sync.Snapshot()

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		records = filterVideos(records, q)
	}

	writeJSON(w, http.StatusOK, VideoListResponse{
		Videos: toVideoItems(records, h.now()),
	})
}

func filterVideos(records []catalog.VideoRecord, q string) []catalog.VideoRecord {
	q = strings.ToLower(q)
	matched := make([]catalog.VideoRecord, 0, len(records))
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Title), q) ||
			strings.Contains(strings.ToLower(rec.Channel), q) {
			matched = append(matched, rec)
		}
	}
	return matched
}

// VideoFeed streams catalog snapshots over server-sent events. The first
// event carries the current snapshot; later events follow catalog changes.
func (h *Handler) VideoFeed(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Coalesce: keep only the newest snapshot if the client reads slowly.
	updates := make(chan []catalog.VideoRecord, 1)
	sub := h.sync.Subscribe(func(records []catalog.VideoRecord) {
		for {
			select {
			case updates <- records:
				return
			default:
				select {
				case <-updates:
				default:
				}
			}
		}
	})
	defer sub.Unsubscribe()

	for {
		select {
		case <-r.Context().Done():
			return
		case records := <-updates:
			payload, err := json.Marshal(VideoListResponse{
				Videos: toVideoItems(records, h.now()),
			})
			if err != nil {
				h.logger.Error().Err(err).Msg("failed to encode feed event")
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	rec, ok := h.findVideo(videoID)
	if !ok {
		writeError(w, http.StatusNotFound, "VIDEO_NOT_FOUND", "Video not found")
		return
	}

	writeJSON(w, http.StatusOK, VideoResponse{
		Video: toVideoItem(rec, h.now()),
	})
}

// RecordView registers one view for a video. The increment is best-effort
// and the response never depends on its outcome.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	h.sync.RecordView(videoID)

	writeJSON(w, http.StatusAccepted, ViewResponse{Status: "accepted"})
}

// UploadVideo receives one multipart video upload, transfers it to blob
// storage, and publishes the catalog record in the same request.
func (h *Handler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	user, err := h.sessions.Current(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "NO_SESSION", "Sign in to upload videos")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "NO_FILE", "No video file provided")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	// browsers and curl often send octet-stream; fall back to the extension
	if (contentType == "" || contentType == "application/octet-stream") && media.IsSupportedVideo(header.Filename) {
		contentType = media.GetContentType(header.Filename)
	}

	info := upload.FileInfo{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: contentType,
	}

	sel, err := h.uploads.SelectFile(info)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrInvalidFileType):
			writeError(w, http.StatusUnsupportedMediaType, "INVALID_FILE_TYPE", "Please select a video file")
		case errors.Is(err, upload.ErrTransferActive):
			writeError(w, http.StatusConflict, "TRANSFER_ACTIVE", "Another upload is in progress")
		default:
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		}
		return
	}

	// Spool to disk so ffprobe and ffmpeg can read the file before the
	// transfer consumes it.
	tmp, err := os.CreateTemp("", "streamsanto-upload-*")
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create spool file")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to receive upload")
		return
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		h.logger.Error().Err(err).Msg("failed to spool upload")
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Failed to read upload")
		return
	}

	durationSecs := int64(0)
	durationLabel := ""
	if h.metadata != nil && h.metadata.IsAvailable() {
		if secs, err := h.metadata.Duration(tmp.Name()); err == nil {
			durationSecs = secs
			durationLabel = media.FormatDuration(secs)
		} else {
			h.logger.Warn().Err(err).Str("file", header.Filename).Msg("duration probe failed")
		}
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		h.logger.Error().Err(err).Msg("failed to rewind spool file")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to receive upload")
		return
	}

	videoURL, err := h.uploads.Begin(r.Context(), user, sel, tmp, func(p upload.Progress) {
		h.logger.Debug().
			Int64("transferred", p.BytesTransferred).
			Int64("total", p.TotalBytes).
			Msg("upload progress")
	})
	if err != nil {
		switch {
		case r.Context().Err() != nil:
			// client went away mid-transfer, nothing left to answer
			return
		case errors.Is(err, upload.ErrStaleSelection):
			writeError(w, http.StatusConflict, "SELECTION_REPLACED", "Another upload replaced this one")
		default:
			h.logger.Error().Err(err).Str("file", header.Filename).Msg("upload transfer failed")
			writeError(w, http.StatusBadGateway, "UPLOAD_FAILED", "Upload failed, please try again")
		}
		return
	}

	if err := h.uploads.ClaimPublish(); err != nil {
		writeError(w, http.StatusConflict, "ALREADY_PUBLISHED", "Upload already published")
		return
	}

	thumbnailURL := ""
	if h.thumbnails != nil && h.thumbnails.IsAvailable() {
		thumbKey := uuid.NewString()
		if _, err := h.thumbnails.Generate(tmp.Name(), thumbKey, durationSecs); err == nil {
			thumbnailURL = "/api/v1/thumbnails/" + thumbKey
		} else {
			h.logger.Warn().Err(err).Str("file", header.Filename).Msg("thumbnail generation failed")
		}
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = media.TitleFromFilename(header.Filename)
	}

	form := catalog.Form{
		Title:       title,
		Description: r.FormValue("description"),
		Thumbnail:   thumbnailURL,
		Duration:    durationLabel,
	}

	id, err := h.publisher.Publish(r.Context(), videoURL, user, form)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrEmptyTitle):
			writeError(w, http.StatusBadRequest, "EMPTY_TITLE", "Title is required")
		case errors.Is(err, session.ErrNoSession):
			writeError(w, http.StatusUnauthorized, "NO_SESSION", "Sign in to upload videos")
		default:
			h.logger.Error().Err(err).Msg("publish failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to publish video")
		}
		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{
		ID:        id,
		VideoURL:  videoURL,
		Thumbnail: form.Thumbnail,
		Duration:  form.Duration,
	})
}

// GetUploadSession reports the state of the current upload slot.
func (h *Handler) GetUploadSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSessionResponse(h.uploads.Session()))
}

// CancelUpload aborts an active transfer and clears the slot.
func (h *Handler) CancelUpload(w http.ResponseWriter, r *http.Request) {
	h.uploads.Cancel()
	writeJSON(w, http.StatusOK, toSessionResponse(h.uploads.Session()))
}

func (h *Handler) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if h.thumbnails == nil {
		writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Thumbnails not available")
		return
	}

	if key == "" || strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid thumbnail key")
		return
	}

	data, ok := h.thumbCache.Get(key)
	if !ok {
		var err error
		data, err = os.ReadFile(h.thumbnails.Path(key))
		if err != nil {
			writeError(w, http.StatusNotFound, "THUMBNAIL_NOT_FOUND", "Thumbnail not available")
			return
		}
		h.thumbCache.Set(key, data)
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// StreamMedia serves a stored video file with range support. Available
// only when videos live on local disk.
func (h *Handler) StreamMedia(w http.ResponseWriter, r *http.Request) {
	if h.streamer == nil {
		writeError(w, http.StatusNotFound, "MEDIA_NOT_FOUND", "Media not served from this host")
		return
	}

	key := chi.URLParam(r, "*")
	h.streamer.ServeKey(w, r, key)
}

func (h *Handler) findVideo(id string) (catalog.VideoRecord, bool) {
	for _, rec := range h.sync.Snapshot() {
		if rec.ID == id {
			return rec, true
		}
	}
	return catalog.VideoRecord{}, false
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// Playback handlers

func (h *Handler) SavePlaybackPosition(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	if _, ok := h.findVideo(videoID); !ok {
		writeError(w, http.StatusNotFound, "VIDEO_NOT_FOUND", "Video not found")
		return
	}

	var req SavePlaybackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}

	if req.Duration <= 0 {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Duration must be positive")
		return
	}

	if req.Position < 0 {
		req.Position = 0
	}

	if req.Position > req.Duration {
		req.Position = req.Duration
	}

	pos := &catalog.PlaybackPosition{
		VideoID:  videoID,
		Position: req.Position,
		Duration: req.Duration,
	}

	if err := h.positions.SavePlaybackPosition(r.Context(), pos); err != nil {
		h.logger.Error().Err(err).Str("id", videoID).Msg("failed to save playback position")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save position")
		return
	}

	progress := float64(req.Position) / float64(req.Duration)

	h.logger.Debug().
		Str("video_id", videoID).
		Int64("position", req.Position).
		Float64("progress", progress).
		Msg("playback position saved")

	writeJSON(w, http.StatusOK, PlaybackResponse{
		VideoID:  videoID,
		Position: req.Position,
		Duration: req.Duration,
		Progress: progress,
	})
}

func (h *Handler) GetPlaybackPosition(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	pos, err := h.positions.GetPlaybackPosition(r.Context(), videoID)
	if err != nil {
		h.logger.Error().Err(err).Str("id", videoID).Msg("failed to get playback position")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get position")
		return
	}

	if pos == nil {
		writeJSON(w, http.StatusOK, PlaybackResponse{VideoID: videoID})
		return
	}

	progress := float64(0)
	if pos.Duration > 0 {
		progress = float64(pos.Position) / float64(pos.Duration)
	}

	writeJSON(w, http.StatusOK, PlaybackResponse{
		VideoID:  pos.VideoID,
		Position: pos.Position,
		Duration: pos.Duration,
		Progress: progress,
	})
}
