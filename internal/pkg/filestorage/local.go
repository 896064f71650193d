package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/attendance-admin/internal/pkg/logger"
)

// ImageExtensions are the upload types accepted for face images
var ImageExtensions = []string{".jpg", ".jpeg", ".png"}

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath   string   // The root directory where files will be stored
	baseURL    string   // URL prefix the root directory is served under, e.g. "/uploads"
	extensions []string // Allowed lower-case extensions; empty allows any
}

// NewLocalStorage creates a new LocalStorage instance.
// basePath is the directory on the server, baseURL the prefix it is served under.
func NewLocalStorage(basePath, baseURL string, extensions ...string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath:   basePath,
		baseURL:    "/" + strings.Trim(baseURL, "/"),
		extensions: extensions,
	}, nil
}

func (ls *LocalStorage) allowed(ext string) bool {
	if len(ls.extensions) == 0 {
		return true
	}
	for _, e := range ls.extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// SaveFileWithPath saves a file to a specified subdirectory under a random name
func (ls *LocalStorage) SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", fmt.Errorf("no file uploaded")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !ls.allowed(ext) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, fileHeader.Filename)
	}

	subPath = path.Clean("/" + filepath.ToSlash(subPath))[1:]

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	fullDirPath := filepath.Join(ls.basePath, filepath.FromSlash(subPath))
	if err := os.MkdirAll(fullDirPath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", fullDirPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	uniqueFilename := uuid.New().String() + ext
	dstPath := filepath.Join(fullDirPath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	accessiblePath := path.Join(ls.baseURL, subPath, uniqueFilename)
	logger.Info().Str("filename", fileHeader.Filename).Str("accessible_path", accessiblePath).Msg("File saved successfully")
	return accessiblePath, nil
}

// DeleteFile removes a stored file. Missing files are not an error.
func (ls *LocalStorage) DeleteFile(filePath string) error {
	physicalPath := ls.GetFullPath(filePath)
	if physicalPath == "" {
		return fmt.Errorf("invalid file path: %s", filePath)
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// GetFullPath maps a public path back into basePath. Paths outside the
// storage root yield "".
func (ls *LocalStorage) GetFullPath(filePath string) string {
	rel := strings.TrimPrefix(path.Clean("/"+filePath), ls.baseURL)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || rel == "." {
		return ""
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(rel))
}
