// Package errors provides error handling utilities.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeDefinitionRead indicates the infrastructure definition could not be read
	TypeDefinitionRead Type = "DEFINITION_READ_ERROR"

	// TypeRemoteFetch indicates a remote pricing request failed
	TypeRemoteFetch Type = "REMOTE_FETCH_ERROR"

	// TypeInvalidCredentials indicates the remote service rejected the credentials
	TypeInvalidCredentials Type = "INVALID_CREDENTIALS"

	// TypeCacheWrite indicates a pricing cache file could not be written
	TypeCacheWrite Type = "CACHE_WRITE_ERROR"

	// TypeCacheRead indicates a pricing cache file could not be read or decoded
	TypeCacheRead Type = "CACHE_READ_ERROR"

	// TypeInput indicates an input validation error
	TypeInput Type = "INPUT_ERROR"

	// TypeParsing indicates a parsing error
	TypeParsing Type = "PARSING_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type           `json:"type"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Context map[string]any `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *Error) Is(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...any) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...any) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType reports whether err, or any error it wraps, is a domain error of type t
func IsType(err error, t Type) bool {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Type == t {
			return true
		}
		err = e.Cause
	}
	return false
}

// As is errors.As from the standard library
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Is is errors.Is from the standard library
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// DefinitionRead creates a definition read error
func DefinitionRead(message string, cause error) *Error {
	return Wrap(TypeDefinitionRead, message, cause)
}

// RemoteFetch creates a remote fetch error
func RemoteFetch(message string, cause error) *Error {
	return Wrap(TypeRemoteFetch, message, cause)
}

// InvalidCredentials creates an invalid credentials error
func InvalidCredentials(message string) *Error {
	return New(TypeInvalidCredentials, message)
}

// CacheWrite creates a cache write error
func CacheWrite(path string, cause error) *Error {
	return Wrapf(TypeCacheWrite, cause, "failed to write pricing cache %s", path)
}

// CacheRead creates a cache read error
func CacheRead(path string, cause error) *Error {
	return Wrapf(TypeCacheRead, cause, "failed to read pricing cache %s", path)
}

// Input creates an input error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// Parsing creates a parsing error
func Parsing(message string, cause error) *Error {
	return Wrap(TypeParsing, message, cause)
}

// Config creates a configuration error
func Config(message string, cause error) *Error {
	return Wrap(TypeConfig, message, cause)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
