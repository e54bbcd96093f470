package apperr

import (
	"errors"
	"fmt"
)

// Kind names an error class for logs, metrics and HTTP mapping.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNetwork    Kind = "network"
	KindNotFound   Kind = "not_found"
	KindParse      Kind = "parse"
	KindUnknown    Kind = "unknown"
)

// ValidationError is returned for input rejected before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NetworkError covers transport failures and non-2xx upstream responses.
type NetworkError struct {
	Service    string
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed with status %d: %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s request failed: %s", e.Service, e.Message)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NotFoundError means the geocoding service returned no match for City.
type NotFoundError struct {
	City string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("city not found: %q", e.City)
}

// ParseError reports the upstream response field that was missing or malformed.
type ParseError struct {
	Service string
	Field   string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s response: invalid field %q: %v", e.Service, e.Field, e.Err)
	}
	return fmt.Sprintf("%s response: missing field %q", e.Service, e.Field)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func NewNotFound(city string) error {
	return &NotFoundError{City: city}
}

// KindOf classifies err by the first taxonomy error found in its chain.
func KindOf(err error) Kind {
	var (
		validationErr *ValidationError
		networkErr    *NetworkError
		notFoundErr   *NotFoundError
		parseErr      *ParseError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &notFoundErr):
		return KindNotFound
	case errors.As(err, &parseErr):
		return KindParse
	case errors.As(err, &networkErr):
		return KindNetwork
	default:
		return KindUnknown
	}
}
