package model

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	ErrKindInvalidQuery ErrorKind = "invalid_query"
	ErrKindUpstream     ErrorKind = "upstream"
	ErrKindTimeout      ErrorKind = "timeout"
	ErrKindCacheStore   ErrorKind = "cache_store"
	ErrKindEnrichment   ErrorKind = "enrichment"
	ErrKindNotFound     ErrorKind = "not_found"
	ErrKindForbidden    ErrorKind = "forbidden"
	ErrKindInternal     ErrorKind = "internal"
)

// DiscoveryError carries the failure class and the HTTP status the caller
// should see.
type DiscoveryError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *DiscoveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

func NewInvalidQueryError(message string) *DiscoveryError {
	return &DiscoveryError{Kind: ErrKindInvalidQuery, Status: http.StatusBadRequest, Message: message}
}

// NewUpstreamError keeps the upstream status. A zero or non-error status is
// reported as 502.
func NewUpstreamError(status int, message string, err error) *DiscoveryError {
	if status < 400 {
		status = http.StatusBadGateway
	}
	if message == "" {
		message = "YouTube API Error"
	}
	return &DiscoveryError{Kind: ErrKindUpstream, Status: status, Message: message, Err: err}
}

func NewTimeoutError(operation string, err error) *DiscoveryError {
	return &DiscoveryError{
		Kind:    ErrKindTimeout,
		Status:  http.StatusGatewayTimeout,
		Message: fmt.Sprintf("%s timed out", operation),
		Err:     err,
	}
}

func NewCacheStoreError(operation string, err error) *DiscoveryError {
	return &DiscoveryError{
		Kind:    ErrKindCacheStore,
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf("cache %s failed", operation),
		Err:     err,
	}
}

func NewEnrichmentError(itemID string, err error) *DiscoveryError {
	return &DiscoveryError{
		Kind:    ErrKindEnrichment,
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf("item %s could not be enriched", itemID),
		Err:     err,
	}
}

func NewNotFoundError(message string) *DiscoveryError {
	return &DiscoveryError{Kind: ErrKindNotFound, Status: http.StatusNotFound, Message: message}
}

func NewForbiddenError(message string) *DiscoveryError {
	return &DiscoveryError{Kind: ErrKindForbidden, Status: http.StatusForbidden, Message: message}
}

func NewInternalError(message string, err error) *DiscoveryError {
	return &DiscoveryError{Kind: ErrKindInternal, Status: http.StatusInternalServerError, Message: message, Err: err}
}

// KindOf returns the kind of the first DiscoveryError in err's chain, or
// ErrKindInternal.
func KindOf(err error) ErrorKind {
	var de *DiscoveryError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ErrKindInternal
}

// StatusOf returns the HTTP status for err, 500 when it is not a
// DiscoveryError.
func StatusOf(err error) int {
	var de *DiscoveryError
	if errors.As(err, &de) && de.Status != 0 {
		return de.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the user facing message for err.
func MessageOf(err error) string {
	var de *DiscoveryError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
