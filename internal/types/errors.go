package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrMissingCredentials = errors.New("missing hosted model credentials")
	ErrEmptyTopic         = errors.New("topic is empty")
	ErrContentTooShort    = errors.New("extracted content below minimum length")
	ErrNoContent          = errors.New("no content container found")
	ErrEmptyResponse      = errors.New("empty response body")
	ErrInvalidURL         = errors.New("invalid URL")
	ErrRunInProgress      = errors.New("a run is already in progress")
)

// FetchError wraps errors that occur during fetching.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SearchError wraps a failed query against a search provider.
type SearchError struct {
	Provider string
	Query    string
	Err      error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search error (%s, query=%q): %v", e.Provider, e.Query, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// ExtractError wraps errors from a single extraction strategy.
type ExtractError struct {
	URL    string
	Method ExtractionMethod
	Err    error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract error for %s (method=%s): %v", e.URL, e.Method, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// SummarizeError wraps a failed model call.
type SummarizeError struct {
	Title string
	Stage string
	Err   error
}

func (e *SummarizeError) Error() string {
	return fmt.Sprintf("summarize error at stage %q for %q: %v", e.Stage, e.Title, e.Err)
}

func (e *SummarizeError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur during storage/export.
type StorageError struct {
	Backend string
	Path    string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("storage error (%s, %s): %v", e.Backend, e.Path, e.Err)
	}
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
