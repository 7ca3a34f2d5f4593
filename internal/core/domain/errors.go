package domain

import (
	"errors"
	"fmt"
)

var (
	ErrExtractionFailed = errors.New("extraction failed")
	ErrEmbedding        = errors.New("embedding failure")
	ErrVectorStore      = errors.New("vector store failure")
	ErrQuotaExceeded    = errors.New("storage quota exceeded")
	ErrTimeout          = errors.New("operation timed out")
	ErrInvalidInput     = errors.New("invalid input")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// QuotaError is the admission-control denial. It carries the usage snapshot
// that justified the denial so callers can message the user.
type QuotaError struct {
	Status    QuotaStatus
	Estimated int64
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("storage quota exceeded: %d bytes used of %d, upload needs %d more",
		e.Status.BytesUsed, e.Status.QuotaLimitBytes, e.Estimated)
}

func (e *QuotaError) Unwrap() error {
	return ErrQuotaExceeded
}
