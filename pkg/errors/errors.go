package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidID       = errors.New("invalid document id")
	ErrInvalidTerm     = errors.New("invalid term")
	ErrInvalidQuery    = errors.New("invalid query")
	ErrUnknownDocument = errors.New("unknown document")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: message,
	}
}

func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}

// Code maps an error to a stable label for metrics and log fields.
func Code(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidID):
		return "invalid_id"
	case errors.Is(err, ErrInvalidQuery):
		return "invalid_query"
	case errors.Is(err, ErrInvalidTerm):
		return "invalid_term"
	case errors.Is(err, ErrUnknownDocument):
		return "unknown_document"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrInvalidConfig):
		return "invalid_config"
	default:
		return "internal"
	}
}
