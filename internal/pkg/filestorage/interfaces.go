package filestorage

import (
	"mime/multipart"
)

// FileInfo represents information about a stored file
type FileInfo struct {
	URL      string // Public URL under the static route
	Path     string // Filesystem path
	Filename string // Original filename
	FileSize int64  // Size in bytes
	MimeType string // Sniffed MIME type
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveImage validates an uploaded image and stores it under subPath
	SaveImage(fileHeader *multipart.FileHeader, subPath string) (*FileInfo, error)

	// DeleteFile removes a file by its public URL
	DeleteFile(fileURL string) error

	// GetFullPath returns the filesystem path for a public URL
	GetFullPath(fileURL string) string
}
