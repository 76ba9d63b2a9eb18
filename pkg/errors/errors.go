package errors

import (
	"errors"
	"fmt"
)

// Error codes
const (
	CodeScraperError = "SCRAPER_ERROR"
	CodeFetch        = "FETCH_ERROR"
	CodeStructure    = "STRUCTURE_ERROR"
	CodeStore        = "STORE_ERROR"
	CodeCache        = "CACHE_ERROR"
	CodeConfig       = "CONFIG_ERROR"
)

type ScraperError struct {
	Message string
	Code    string
	Context map[string]any
	Cause   error
}

func (e *ScraperError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ScraperError) Unwrap() error {
	return e.Cause
}

func NewScraperError(message, code string, context map[string]any) *ScraperError {
	return &ScraperError{
		Message: message,
		Code:    code,
		Context: context,
	}
}

func (e *ScraperError) WithCause(cause error) *ScraperError {
	e.Cause = cause
	return e
}

// FetchError covers any failure to retrieve raw markup. Transient errors
// (timeouts, 5xx, rate limiting) are safe to retry; permanent ones are not.
type FetchError struct {
	*ScraperError
	URL        string
	StatusCode int
	Transient  bool
}

func NewFetchError(message, url string, statusCode int, transient bool, cause error) *FetchError {
	return &FetchError{
		ScraperError: &ScraperError{
			Message: message,
			Code:    CodeFetch,
			Context: map[string]any{
				"url":         url,
				"status_code": statusCode,
				"transient":   transient,
			},
			Cause: cause,
		},
		URL:        url,
		StatusCode: statusCode,
		Transient:  transient,
	}
}

// StructureError signals that a page parsed into zero usable entries when
// entries were expected - the usual symptom of an upstream markup change.
type StructureError struct {
	*ScraperError
	URL         string
	ParseErrors int
}

func NewStructureError(message, url string, parseErrors int) *StructureError {
	return &StructureError{
		ScraperError: &ScraperError{
			Message: message,
			Code:    CodeStructure,
			Context: map[string]any{
				"url":          url,
				"parse_errors": parseErrors,
			},
		},
		URL:         url,
		ParseErrors: parseErrors,
	}
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%s (parse errors: %d)", e.Message, e.ParseErrors)
}

type StoreError struct {
	*ScraperError
	Entity    string
	Operation string
}

func NewStoreError(message, entity, operation string, cause error) *StoreError {
	return &StoreError{
		ScraperError: &ScraperError{
			Message: message,
			Code:    CodeStore,
			Context: map[string]any{
				"entity":    entity,
				"operation": operation,
			},
			Cause: cause,
		},
		Entity:    entity,
		Operation: operation,
	}
}

type CacheError struct {
	*ScraperError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		ScraperError: &ScraperError{
			Message: message,
			Code:    CodeCache,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type ConfigError struct {
	*ScraperError
	Key string
}

func NewConfigError(message, key string) *ConfigError {
	return &ConfigError{
		ScraperError: &ScraperError{
			Message: message,
			Code:    CodeConfig,
			Context: map[string]any{
				"key": key,
			},
		},
		Key: key,
	}
}

// IsTransient reports whether err is a FetchError marked retryable.
func IsTransient(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Transient
	}
	return false
}

// IsStructureError reports whether err indicates an upstream markup change.
func IsStructureError(err error) bool {
	var se *StructureError
	return errors.As(err, &se)
}

// IsFetchError reports whether err originated in the fetch layer.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
