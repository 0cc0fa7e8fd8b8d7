// Package domain defines domain-specific errors.
// These errors represent business logic failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services and adapters can return.
var (
	// ErrMediaLoad is returned when a stream cannot be opened (network failure, bad status, unsupported codec).
	ErrMediaLoad = errors.New("media load failed")

	// ErrPlaybackBlocked is returned when the environment refuses to start audio output.
	ErrPlaybackBlocked = errors.New("playback blocked")

	// ErrAlreadyAttached is returned when a media source is attached to a second analysis graph.
	// It signals broken teardown discipline and is never recoverable.
	ErrAlreadyAttached = errors.New("media source already attached to an analysis graph")

	// ErrGraphDisposed is returned when a disposed analysis graph is read.
	ErrGraphDisposed = errors.New("analysis graph disposed")

	// ErrSourceDisposed is returned when a disposed media source is used.
	ErrSourceDisposed = errors.New("media source disposed")

	// ErrUnsupportedFormat is returned when no decoder exists for a stream.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrInvalidTransition is returned when a command is issued in a state that does not accept it.
	ErrInvalidTransition = errors.New("invalid playback state transition")

	// ErrStationNotFound is returned when a station ID is not in the catalog.
	ErrStationNotFound = errors.New("station not found")

	// ErrEmptyCatalog is returned when a catalog contains no stations.
	ErrEmptyCatalog = errors.New("station catalog is empty")

	// ErrInvalidVolume is returned when the volume is out of valid range (0.0-1.0).
	ErrInvalidVolume = errors.New("invalid volume: must be between 0.0 and 1.0")

	// ErrSchedulerClosed is returned when work is submitted to a closed scheduler.
	ErrSchedulerClosed = errors.New("scheduler closed")
)

// MediaError represents a failure reported by a media source.
// Kind is one of ErrMediaLoad or ErrPlaybackBlocked, so errors.Is matches the taxonomy.
type MediaError struct {
	Kind       error  // ErrMediaLoad or ErrPlaybackBlocked
	Op         string // Operation that failed (e.g., "load", "play")
	URL        string // Stream URL (if applicable)
	StatusCode int    // HTTP status code (0 if not an HTTP failure)
	Err        error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *MediaError) Error() string {
	msg := fmt.Sprintf("media %s failed", e.Op)
	if e.URL != "" {
		msg = fmt.Sprintf("%s for '%s'", msg, e.URL)
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status: %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *MediaError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the error kind.
func (e *MediaError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// NewMediaLoadError creates a MediaError of kind ErrMediaLoad.
func NewMediaLoadError(url string, statusCode int, err error) *MediaError {
	return &MediaError{
		Kind:       ErrMediaLoad,
		Op:         "load",
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

// NewPlaybackBlockedError creates a MediaError of kind ErrPlaybackBlocked.
func NewPlaybackBlockedError(err error) *MediaError {
	return &MediaError{
		Kind: ErrPlaybackBlocked,
		Op:   "play",
		Err:  err,
	}
}

// CatalogError represents an error while loading the station catalog.
type CatalogError struct {
	Source  string // File path or "embedded"
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog %s: %s", e.Source, e.Message)
}

// Unwrap returns the underlying error.
func (e *CatalogError) Unwrap() error {
	return e.Err
}

// NewCatalogError creates a new CatalogError.
func NewCatalogError(source, message string, err error) *CatalogError {
	return &CatalogError{
		Source:  source,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string      // Field that failed validation
	Value   interface{} // Value that failed validation
	Message string      // Error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ServiceError represents an error from a service layer operation.
type ServiceError struct {
	Service string // Service name (e.g., "PlaybackController", "StationService")
	Op      string // Operation that failed
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
