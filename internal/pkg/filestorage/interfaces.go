package filestorage

import (
	"errors"
	"mime/multipart"
)

// ErrUnsupportedFileType is returned for uploads whose extension is not allowed
var ErrUnsupportedFileType = errors.New("unsupported file type")

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFileWithPath stores an upload under a subdirectory and returns its public path
	SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error)

	// DeleteFile removes a file previously returned by SaveFileWithPath
	DeleteFile(filePath string) error

	// GetFullPath returns the full filesystem path for a stored public path
	GetFullPath(filePath string) string
}
