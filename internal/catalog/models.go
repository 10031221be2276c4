package catalog

import (
	"strings"
	"time"
)

// SeedIDPrefix marks the fixed demonstration records that pad the catalog.
// Seed records never live in the store and never count views.
const SeedIDPrefix = "seed-"

// VideoRecord is the catalog entry for one published video. Once committed
// it is immutable apart from the best-effort views increment.
type VideoRecord struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Views       int64     `json:"views"`
	UploadedAt  time.Time `json:"uploadedAt"`
	UserID      string    `json:"userId"`
	Channel     string    `json:"channel"`
	Avatar      string    `json:"avatar"`
	Thumbnail   string    `json:"thumbnail"`
	VideoURL    string    `json:"videoUrl"`
	Duration    string    `json:"duration"` // "m:ss"
}

func (r VideoRecord) IsSeed() bool {
	return strings.HasPrefix(r.ID, SeedIDPrefix)
}
