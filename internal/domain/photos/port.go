package photos

import (
	"context"
	"io"
)

// BlobStore port (penyimpanan foto finding)
type BlobStore interface {
	// Upload stores the object under key and returns its public URL.
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// Delete removes the object a previously returned URL points at.
	Delete(ctx context.Context, url string) error
}
