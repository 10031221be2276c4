// Package streaming serves stored video files over HTTP with range
// request support, so browsers can seek without downloading the whole file.
package streaming

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/santoshbirajdar/streamsanto/internal/blob"
	"github.com/santoshbirajdar/streamsanto/internal/media"
)

// Handler serves objects stored under a local root directory by key.
type Handler struct {
	root string
}

func NewHandler(root string) *Handler {
	return &Handler{root: root}
}

// ServeKey streams the object at key. Keys are validated so requests
// cannot escape the root directory.
func (h *Handler) ServeKey(w http.ResponseWriter, r *http.Request, key string) {
	if err := blob.ValidateKey(key); err != nil {
		http.Error(w, "Invalid media path", http.StatusBadRequest)
		return
	}

	filePath := filepath.Join(h.root, filepath.FromSlash(key))

	file, err := os.Open(filePath)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil || stat.IsDir() {
		http.Error(w, "Cannot read file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", media.GetContentType(filePath))
	w.Header().Set("Accept-Ranges", "bytes")

	http.ServeContent(w, r, filepath.Base(filePath), stat.ModTime(), file)
}
