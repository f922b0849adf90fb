package distribution

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"audio-segment-downloader/domain/distribution"

	"github.com/rs/zerolog"
)

var (
	// ErrFolderNotConfigured is returned when no Drive folder id is set
	ErrFolderNotConfigured = errors.New("google drive folder id is not configured")

	// ErrInsufficientStorage is returned when the clip does not fit in the Drive quota
	ErrInsufficientStorage = errors.New("insufficient Google Drive storage")
)

// UploadService publishes produced clips to a Google Drive folder
type UploadService struct {
	driveClient distribution.DriveClient
	folderID    string
	log         zerolog.Logger
}

// UploadOption is a functional option for configuring UploadService
type UploadOption func(*UploadService)

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) UploadOption {
	return func(s *UploadService) {
		s.log = log
	}
}

// NewUploadService creates a new upload service
func NewUploadService(client distribution.DriveClient, folderID string, opts ...UploadOption) *UploadService {
	s := &UploadService{
		driveClient: client,
		folderID:    folderID,
		log:         zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// UploadClip uploads a clip and makes it readable by anyone with the link.
// A file with the same name already in the folder is replaced.
func (s *UploadService) UploadClip(ctx context.Context, clipPath string) (*distribution.UploadResult, error) {
	if s.folderID == "" {
		return nil, ErrFolderNotConfigured
	}

	info, err := os.Stat(clipPath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", clipPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", clipPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("not a file: %s", clipPath)
	}

	quota, err := s.driveClient.GetStorageQuota(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check storage quota: %w", err)
	}
	if !quota.HasSpaceFor(info.Size()) {
		return nil, fmt.Errorf("%w: need %d bytes, %d available", ErrInsufficientStorage, info.Size(), quota.AvailableBytes)
	}

	fileName := filepath.Base(clipPath)

	existing, err := s.driveClient.FindFileByName(ctx, s.folderID, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing file: %w", err)
	}
	if existing != nil {
		s.log.Info().Str("file", existing.Name).Str("file_id", existing.ID).Int64("size", existing.Size).Msg("replacing existing file")
		if err := s.driveClient.DeletePermanently(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to delete existing file %s: %w", existing.Name, err)
		}
	}

	result, err := s.driveClient.UploadAndShare(ctx, distribution.UploadRequest{
		LocalPath: clipPath,
		FileName:  fileName,
		FolderID:  s.folderID,
		MimeType:  distribution.MimeTypeFor(clipPath),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload and share %s: %w", fileName, err)
	}

	s.log.Info().Str("file_id", result.FileID).Str("url", result.ShareableURL).Msg("clip uploaded")
	return result, nil
}
