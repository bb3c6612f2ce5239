package uploads

import (
	"context"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bryanwahyu/inspecta/internal/application"
	"github.com/bryanwahyu/inspecta/internal/domain/photos"
)

// KeyPrefix groups finding photos in the bucket.
const KeyPrefix = "findings/"

// Service implements the photo upload use-case
type Service struct {
	Store photos.BlobStore
	// BestEffortDelete logs and ignores failures removing the replaced photo.
	BestEffortDelete bool
	NewID            func() string
}

type UploadCommand struct {
	File        io.Reader
	Size        int64
	Filename    string
	ContentType string
	// PreviousURL is the photo being replaced; empty skips the delete.
	PreviousURL string
}

// UploadPhoto deletes the previous photo (if any) and stores the new one.
// The two steps are not atomic: a failed upload after a successful delete
// leaves no photo.
func (s *Service) UploadPhoto(ctx context.Context, cmd UploadCommand) (string, error) {
	if cmd.File == nil {
		return "", application.Invalid("file is required")
	}

	if prev := strings.TrimSpace(cmd.PreviousURL); prev != "" {
		if err := s.Store.Delete(ctx, prev); err != nil {
			if !s.BestEffortDelete {
				return "", eris.Wrap(err, "delete previous photo")
			}
			zap.L().Warn("previous photo not deleted", zap.String("url", prev), zap.Error(err))
		}
	}

	ext := strings.ToLower(path.Ext(cmd.Filename))
	key := KeyPrefix + s.newID() + ext
	url, err := s.Store.Upload(ctx, key, cmd.File, cmd.Size, contentType(cmd.ContentType, ext))
	if err != nil {
		return "", eris.Wrap(err, "upload photo")
	}
	return url, nil
}

func contentType(declared, ext string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
