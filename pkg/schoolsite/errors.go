package schoolsite

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrRecordNotFound indicates a record was not found
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicate indicates a unique constraint was violated (e.g. page slug)
	ErrDuplicate = errors.New("duplicate record")

	// ErrUnknownKind indicates a record kind the repository does not handle
	ErrUnknownKind = errors.New("unknown record kind")

	// ErrUnknownMediaField indicates a field name missing from a record's manifest
	ErrUnknownMediaField = errors.New("unknown media field")

	// ErrConfigurationMissing indicates storage credentials or bucket are not configured
	ErrConfigurationMissing = errors.New("storage credentials or bucket not configured")

	// ErrTransferFailed indicates the storage provider rejected or failed a write
	ErrTransferFailed = errors.New("transfer failed")

	// ErrObjectNotFound indicates a storage object was not found
	ErrObjectNotFound = errors.New("object not found")

	// ErrURLNotAvailable indicates a store cannot produce a direct URL for a key
	ErrURLNotAvailable = errors.New("direct url not available")

	// ErrInvalidCategory indicates a certificate category outside the allowed set
	ErrInvalidCategory = errors.New("invalid certificate category")

	// ErrInvalidLevel indicates a certificate level outside the allowed set
	ErrInvalidLevel = errors.New("invalid certificate level")

	// ErrValidation indicates a record failed field validation
	ErrValidation = errors.New("validation failed")
)

// UploadError represents a failed upload of one media field
type UploadError struct {
	Kind  Kind
	Field string
	Key   string
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %s.%s to %s failed: %v", e.Kind, e.Field, e.Key, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ValidationError names the field that failed validation
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
