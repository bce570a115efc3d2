package storage

import (
	"errors"
	"fmt"
)

// Error codes by origin. Validation and limit errors are raised before any
// network call; the rest wrap transport or database failures.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeTooManyFiles     = "TOO_MANY_FILES"
	CodeBatchTooLarge    = "BATCH_TOO_LARGE"
	CodeUploadFailed     = "UPLOAD_FAILED"
	CodeSignFailed       = "SIGN_FAILED"
	CodeDeleteFailed     = "DELETE_FAILED"
	CodeMetadataFailed   = "METADATA_FAILED"
)

var ErrUploadNotFound = errors.New("upload not found")

// StorageError is the error shape surfaced by the storage layer: a stable
// code, the provider responsible for the failure and the wrapped cause.
type StorageError struct {
	Code     string
	Message  string
	Provider Provider
	Err      error
}

func (e *StorageError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s (%s): %s", e.Code, e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StorageError) Unwrap() error { return e.Err }

func newError(code string, provider Provider, msg string, err error) *StorageError {
	return &StorageError{Code: code, Message: msg, Provider: provider, Err: err}
}

// IsCode reports whether err is a *StorageError carrying the given code.
func IsCode(err error, code string) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Code == code
}

// IsValidation reports whether err is one of the pre-network guard failures.
func IsValidation(err error) bool {
	return IsCode(err, CodeValidationFailed) ||
		IsCode(err, CodeTooManyFiles) ||
		IsCode(err, CodeBatchTooLarge)
}
