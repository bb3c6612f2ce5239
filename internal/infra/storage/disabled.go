package storage

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
)

// ErrNotConfigured is returned by Disabled for every call.
var ErrNotConfigured = eris.New("photo storage is not configured")

// Disabled stands in for Store when no MinIO endpoint is set.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) Delete(context.Context, string) error { return ErrNotConfigured }

func (Disabled) Check(context.Context) error { return ErrNotConfigured }
