package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

// Pipeline errors
var (
	// ErrUnsupportedFormat is returned for file extensions outside pdf/doc/docx/txt.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrExtractionEmpty means extraction ran but produced no usable text.
	ErrExtractionEmpty = errors.New("no text could be extracted")
	// ErrEmptyText is returned by structured extraction for blank input.
	ErrEmptyText = errors.New("text is empty")
	// ErrAggregationSkipped marks a document that contributed nothing to a rebuild.
	ErrAggregationSkipped = errors.New("aggregation skipped")
	// ErrNotPending is returned when a document cannot be claimed for processing.
	ErrNotPending = errors.New("document is not pending")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// GRPCStatus maps application errors onto a gRPC status.
func GRPCStatus(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}
	if s, ok := status.FromError(err); ok && s.Code() != codes.Unknown {
		return s
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return status.New(codes.NotFound, err.Error())
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidation),
		errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrEmptyText):
		return status.New(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrNotPending), errors.Is(err, ErrConflict):
		return status.New(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ErrExtractionEmpty):
		return status.New(codes.DataLoss, err.Error())
	default:
		return status.New(codes.Internal, err.Error())
	}
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InvalidArgumentErrorf(format string, args ...any) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}
