package blobstore

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

// Store is durable named storage for attachment bytes. Implementations must
// treat Write on an existing name as a hard error; uniqueness of names is the
// property the rest of the system builds on.
type Store interface {
	Write(ctx context.Context, name string, data []byte) error
	Read(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
}

// NewName derives a globally unique storage name from the upload time and the
// client-supplied filename. The nanosecond prefix makes retries after an
// aborted batch safe: a re-upload never collides with leftovers.
func NewName(originalName string, now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixNano(), sanitizeFilename(originalName))
}

// sanitizeFilename reduces a client-supplied filename to a string safe to use
// as a blob name and to embed in a URL path segment.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "upload"
	}
	return b.String()
}
