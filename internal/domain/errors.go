package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or malformed required field. Operations that
// return it have performed no writes.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// NotFoundError reports that a referenced invoice, user or attachment does not
// exist. Operations that return it have performed no writes.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// StorageError reports a failed blob write or delete. Name identifies the blob
// involved so callers can report which file was affected.
type StorageError struct {
	Op   string
	Name string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ConversionError reports a failed format normalization for a single file. The
// original blob is kept under Ref so the attachment remains usable.
type ConversionError struct {
	Ref string
	Err error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s: %v", e.Ref, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError anywhere in its chain.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is a ValidationError anywhere in its chain.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
