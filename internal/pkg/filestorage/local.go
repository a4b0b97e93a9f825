package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
	"github.com/stayease/stayease-api/internal/pkg/logger"
)

// AllowedImageTypes maps accepted sniffed MIME types to the stored extension
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath  string // The root directory where files will be stored
	urlPrefix string // The route the directory is served under, e.g. /uploads
	maxSize   int64
}

// NewLocalStorage creates a new LocalStorage instance and ensures basePath exists.
func NewLocalStorage(basePath, urlPrefix string, maxSize int64) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath:  basePath,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		maxSize:   maxSize,
	}, nil
}

// SaveImage sniffs the content type, enforces the size limit and writes the file
// under a random name.
func (ls *LocalStorage) SaveImage(fileHeader *multipart.FileHeader, subPath string) (*FileInfo, error) {
	if fileHeader == nil {
		return nil, apperrors.NewBadRequestError("Không có tệp nào được tải lên")
	}
	if ls.maxSize > 0 && fileHeader.Size > ls.maxSize {
		return nil, apperrors.ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to detect content type: %w", err)
	}
	ext, ok := AllowedImageTypes[mtype.String()]
	if !ok {
		logger.Warn().Str("filename", fileHeader.Filename).Str("mime", mtype.String()).Msg("Rejected upload with unsupported type")
		return nil, apperrors.ErrUnsupportedFileType
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	dir := filepath.Join(ls.basePath, filepath.Clean("/"+subPath))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	name := uuid.New().String() + ext
	dstPath := filepath.Join(dir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	// Read one byte past the limit so a lying Size header is still caught
	written, err := io.Copy(dst, io.LimitReader(file, ls.limit()+1))
	if err != nil {
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}
	if ls.maxSize > 0 && written > ls.maxSize {
		_ = os.Remove(dstPath)
		return nil, apperrors.ErrFileTooLarge
	}

	url := ls.urlPrefix + "/" + strings.Trim(filepath.ToSlash(filepath.Join(subPath, name)), "/")
	logger.Info().Str("filename", fileHeader.Filename).Str("url", url).Msg("File saved successfully")

	return &FileInfo{
		URL:      url,
		Path:     dstPath,
		Filename: fileHeader.Filename,
		FileSize: written,
		MimeType: mtype.String(),
	}, nil
}

func (ls *LocalStorage) limit() int64 {
	if ls.maxSize > 0 {
		return ls.maxSize
	}
	return 1 << 40
}

// DeleteFile removes a stored file. Missing files are not an error.
func (ls *LocalStorage) DeleteFile(fileURL string) error {
	path := ls.GetFullPath(fileURL)
	if path == "" {
		return fmt.Errorf("invalid file path: %s", fileURL)
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", path).Msg("File to delete does not exist")
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GetFullPath maps a public URL back into basePath. URLs outside the prefix yield "".
func (ls *LocalStorage) GetFullPath(fileURL string) string {
	rel := strings.TrimPrefix(fileURL, ls.urlPrefix)
	if rel == fileURL || rel == "" || rel == "/" {
		return ""
	}
	return filepath.Join(ls.basePath, filepath.Clean("/"+rel))
}
