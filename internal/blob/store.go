// Package blob abstracts the durable object storage that uploaded videos
// land in. Any backend satisfying Store works: Google Cloud Storage for
// hosted deployments, the local filesystem for self-hosted ones.
package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

var ErrInvalidKey = errors.New("blob: invalid object key")

// Object describes a stored asset, as returned by List.
type Object struct {
	Key     string
	URL     string
	Size    int64
	Created time.Time
}

type Store interface {
	// Upload streams src to the object at key and returns its publicly
	// resolvable URL. The caller observes progress by wrapping src.
	Upload(ctx context.Context, key string, src io.Reader, size int64, contentType string) (string, error)

	// List returns all objects under the given key prefix.
	List(ctx context.Context, prefix string) ([]Object, error)

	// Delete removes the object at key. Deleting a missing object is not
	// an error.
	Delete(ctx context.Context, key string) error
}

// ValidateKey rejects keys that could escape the storage namespace.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
