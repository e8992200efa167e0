package file

import "errors"

var (
	ErrInvalidConfig           = errors.New("invalid storage config")
	ErrNilFileHeader           = errors.New("nil file header")
	ErrInvalidPath             = errors.New("invalid path")
	ErrFileNotFound            = errors.New("file not found")
	ErrFileTooLarge            = errors.New("file too large")
	ErrFailedToOpenFile        = errors.New("failed to open file")
	ErrFailedToReadFile        = errors.New("failed to read file")
	ErrFailedToWriteFile       = errors.New("failed to write file")
	ErrFailedToCreateFile      = errors.New("failed to create file")
	ErrFailedToDeleteFile      = errors.New("failed to delete file")
	ErrFailedToCreateDirectory = errors.New("failed to create directory")
	ErrFailedToGetAbsolutePath = errors.New("failed to get absolute path")
	ErrFailedToLoadConfig      = errors.New("failed to load aws config")
	ErrBucketNotFound          = errors.New("bucket not found")
	ErrAccessDenied            = errors.New("access denied")
	ErrServiceUnavailable      = errors.New("storage service unavailable")
	ErrOperationTimeout        = errors.New("storage operation timed out")
	ErrOperationCanceled       = errors.New("storage operation canceled")
)
