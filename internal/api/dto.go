package api

import (
	"time"

	"github.com/santoshbirajdar/streamsanto/internal/catalog"
	"github.com/santoshbirajdar/streamsanto/internal/upload"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// VideoItem is one catalog entry plus the display labels the feed shows.
type VideoItem struct {
	catalog.VideoRecord
	ViewsLabel    string `json:"viewsLabel"`
	UploadedLabel string `json:"uploadedLabel"`
}

type VideoListResponse struct {
	Videos []VideoItem `json:"videos"`
}

type VideoResponse struct {
	Video VideoItem `json:"video"`
}

type ViewResponse struct {
	Status string `json:"status"`
}

type UploadResponse struct {
	ID        string `json:"id"`
	VideoURL  string `json:"videoUrl"`
	Thumbnail string `json:"thumbnail"`
	Duration  string `json:"duration"`
}

type UploadSessionResponse struct {
	Status           string  `json:"status"`
	FileName         string  `json:"fileName,omitempty"`
	BytesTransferred int64   `json:"bytesTransferred"`
	TotalBytes       int64   `json:"totalBytes"`
	Percent          float64 `json:"percent"`
	URL              string  `json:"url,omitempty"`
	Reason           string  `json:"reason,omitempty"`
}

// Playback DTOs

type SavePlaybackRequest struct {
	Position int64 `json:"position"` // Seconds
	Duration int64 `json:"duration"` // Seconds
}

type PlaybackResponse struct {
	VideoID  string  `json:"video_id"`
	Position int64   `json:"position"`
	Duration int64   `json:"duration"`
	Progress float64 `json:"progress"`
}

func toVideoItem(rec catalog.VideoRecord, now time.Time) VideoItem {
	return VideoItem{
		VideoRecord:   rec,
		ViewsLabel:    FormatViews(rec.Views),
		UploadedLabel: FormatRelativeTime(rec.UploadedAt, now),
	}
}

func toVideoItems(recs []catalog.VideoRecord, now time.Time) []VideoItem {
	items := make([]VideoItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, toVideoItem(rec, now))
	}
	return items
}

func toSessionResponse(s upload.Session) UploadSessionResponse {
	return UploadSessionResponse{
		Status:           s.Status.String(),
		FileName:         s.File.Name,
		BytesTransferred: s.BytesTransferred,
		TotalBytes:       s.TotalBytes,
		Percent: upload.Progress{
			BytesTransferred: s.BytesTransferred,
			TotalBytes:       s.TotalBytes,
		}.Percent(),
		URL:    s.URL,
		Reason: s.Reason,
	}
}
