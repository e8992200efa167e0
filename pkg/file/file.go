// Package file stores uploaded files on the local filesystem or in S3
// behind a common Storage interface.
package file

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// File represents stored file metadata.
type File struct {
	Filename     string
	Size         int64
	MIMEType     string
	Extension    string
	RelativePath string
}

// Storage abstracts the upload backend.
type Storage interface {
	// Save stores a file under path and returns metadata.
	Save(ctx context.Context, fh *multipart.FileHeader, path string) (*File, error)
	// Delete removes a single file.
	Delete(ctx context.Context, path string) error
	// Exists reports whether a file exists.
	Exists(ctx context.Context, path string) bool
	// URL returns the public URL for a stored file.
	URL(path string) string
}

// Config selects and configures the storage backend.
type Config struct {
	Driver string `env:"FILE_STORAGE_DRIVER" envDefault:"local"`

	LocalDir     string `env:"FILE_STORAGE_LOCAL_DIR" envDefault:"./uploads"`
	LocalBaseURL string `env:"FILE_STORAGE_LOCAL_BASE_URL" envDefault:"/static/"`

	S3Bucket         string `env:"FILE_STORAGE_S3_BUCKET"`
	S3Region         string `env:"FILE_STORAGE_S3_REGION"`
	S3AccessKeyID    string `env:"FILE_STORAGE_S3_ACCESS_KEY_ID"`
	S3SecretKey      string `env:"FILE_STORAGE_S3_SECRET_KEY"`
	S3Endpoint       string `env:"FILE_STORAGE_S3_ENDPOINT"`
	S3BaseURL        string `env:"FILE_STORAGE_S3_BASE_URL"`
	S3ForcePathStyle bool   `env:"FILE_STORAGE_S3_FORCE_PATH_STYLE" envDefault:"false"`

	MaxUploadSize int64 `env:"FILE_MAX_UPLOAD_SIZE" envDefault:"10485760"`
}

// GetExtension returns the file extension including the dot.
func GetExtension(fh *multipart.FileHeader) string {
	if fh == nil {
		return ""
	}
	return filepath.Ext(fh.Filename)
}

// GetMIMEType detects the MIME type by sniffing the file content rather than
// trusting the extension. Resets the read position afterwards.
func GetMIMEType(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", ErrNilFileHeader
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}
	defer func() { _ = f.Close() }()

	// http.DetectContentType reads at most 512 bytes
	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}

	if seeker, ok := f.(io.Seeker); ok {
		_, _ = seeker.Seek(0, io.SeekStart)
	}

	return http.DetectContentType(buf[:n]), nil
}

// ValidateSize checks the declared upload size against maxBytes.
func ValidateSize(fh *multipart.FileHeader, maxBytes int64) error {
	if fh == nil {
		return ErrNilFileHeader
	}
	if fh.Size > maxBytes {
		return fmt.Errorf("file size %d bytes exceeds %d bytes limit: %w", fh.Size, maxBytes, ErrFileTooLarge)
	}
	return nil
}

// SanitizeFilename strips path components and dangerous characters from a
// filename to block path traversal through user-supplied names.
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "\x00", "")

	if filename == "." || filename == ".." || filename == "" || filename == "/" {
		filename = "unnamed"
	}

	return filename
}
