package services

import (
	"mime/multipart"

	"github.com/rs/zerolog"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/pkg/filestorage"
)

const imageDir = "images"

// UploadService stores user-provided images
type UploadService struct {
	storage filestorage.FileStorage
	logger  zerolog.Logger
}

// NewUploadService creates a new UploadService
func NewUploadService(storage filestorage.FileStorage, logger zerolog.Logger) *UploadService {
	return &UploadService{storage: storage, logger: logger}
}

// UploadImage validates and stores an image, returning its public URL
func (s *UploadService) UploadImage(userID int64, fh *multipart.FileHeader) (*dto.UploadResponse, error) {
	info, err := s.storage.SaveImage(fh, imageDir)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Int64("userID", userID).
		Str("file", info.Filename).
		Str("mime", info.MimeType).
		Int64("size", info.FileSize).
		Msg("Image uploaded")
	return &dto.UploadResponse{URL: info.URL}, nil
}
