package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/logger"
)

// URLPrefix is the route the storage directory is served under.
const URLPrefix = "/uploads"

// allowedImageTypes are sniffed from content, never taken from the client.
var allowedImageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // Optional absolute origin prepended to returned URLs
	maxBytes int64
}

// NewLocalStorage creates a new LocalStorage instance.
// basePath is the required directory path on the server.
// baseURL is optional; if provided, it will be prepended to returned file paths.
func NewLocalStorage(basePath, baseURL string, maxBytes int64) (*LocalStorage, error) {
	// Ensure the base path exists
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
	}, nil
}

// BasePath is the directory served under URLPrefix.
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// SaveImage checks size and content type, then writes the file under a random name.
func (ls *LocalStorage) SaveImage(fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", apperrors.NewBadRequestError("No file uploaded")
	}
	if ls.maxBytes > 0 && fileHeader.Size > ls.maxBytes {
		return "", apperrors.NewBadRequestError(fmt.Sprintf("File exceeds the %d MB limit", ls.maxBytes>>20))
	}

	// Open the uploaded file
	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return "", apperrors.NewBadRequestError("Only PNG, JPEG, GIF or WebP images are allowed")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	// Ensure the subdirectory exists
	fullDirPath := filepath.Join(ls.basePath, filepath.FromSlash(subPath))
	if err := os.MkdirAll(fullDirPath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", fullDirPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	uniqueFilename := uuid.New().String() + mtype.Extension()
	dstPath := filepath.Join(fullDirPath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	// The header size is client supplied; the cap applies to the bytes copied.
	src := io.Reader(file)
	if ls.maxBytes > 0 {
		src = io.LimitReader(file, ls.maxBytes+1)
	}
	n, err := io.Copy(dst, src)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}
	if ls.maxBytes > 0 && n > ls.maxBytes {
		_ = os.Remove(dstPath)
		return "", apperrors.NewBadRequestError(fmt.Sprintf("File exceeds the %d MB limit", ls.maxBytes>>20))
	}

	accessiblePath := ls.baseURL + path.Join(URLPrefix, subPath, uniqueFilename)
	logger.Info().
		Str("filename", fileHeader.Filename).
		Str("mime", mtype.String()).
		Str("accessible_path", accessiblePath).
		Msg("File saved successfully")
	return accessiblePath, nil
}

// DeleteFile removes a file from the storage filesystem.
// Returns nil if deletion is successful or if the file doesn't exist.
func (ls *LocalStorage) DeleteFile(fileURL string) error {
	if fileURL == "" {
		return nil
	}

	physicalPath := ls.GetFullPath(fileURL)
	if physicalPath == "" {
		return fmt.Errorf("invalid file path: %s", fileURL)
	}

	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
		return nil
	}

	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// GetFullPath maps a URL returned by SaveImage back to the file on disk. It
// returns "" for URLs outside the storage directory.
func (ls *LocalStorage) GetFullPath(fileURL string) string {
	idx := strings.Index(fileURL, URLPrefix+"/")
	if idx < 0 {
		return ""
	}
	rel := path.Clean(fileURL[idx+len(URLPrefix)+1:])
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") || strings.HasPrefix(rel, "/") {
		return ""
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(rel))
}
