package catalog

import "errors"

var ErrNotFound = errors.New("not found")
var ErrInvalidID = errors.New("album id must be a base-10 integer")
var ErrValidation = errors.New("validation failed")
var ErrInvalidPageToken = errors.New("invalid page token")
var ErrMissingFile = errors.New("missing file")
var ErrFileTooLarge = errors.New("file exceeds the maximum upload size")

// UploadError indicates the blob stream failed before the object became
// public. The target record is never modified when an UploadError occurs.
type UploadError struct {
	Object string
	Err    error
}

func (e *UploadError) Error() string {
	return "upload of " + e.Object + " failed: " + e.Err.Error()
}

// Cause returns the underlying streaming error.
func (e *UploadError) Cause() error { return e.Err }

func (e *UploadError) Unwrap() error { return e.Err }
