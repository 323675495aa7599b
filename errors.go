package jsonapiengine

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrorSource references the part of the request that caused an error,
// either as a JSON pointer into the document or as a query parameter name.
type ErrorSource struct {
	Pointer   string `json:"pointer,omitempty"`
	Parameter string `json:"parameter,omitempty"`
}

// ErrorObject is a JSON:API wire error.
type ErrorObject struct {
	ID     string       `json:"id,omitempty"`
	Links  Links        `json:"links,omitempty"`
	Status string       `json:"status,omitempty"`
	Code   string       `json:"code,omitempty"`
	Title  string       `json:"title,omitempty"`
	Detail string       `json:"detail,omitempty"`
	Source *ErrorSource `json:"source,omitempty"`
	Meta   Meta         `json:"meta,omitempty"`
}

func (e *ErrorObject) Error() string {
	return fmt.Sprintf("%s: %s. %s", e.Status, e.Title, e.Detail)
}

// Copy returns a copy of the error prototype stamped with a unique ID for
// this particular occurrence.
func (e ErrorObject) Copy() *ErrorObject {
	c := e
	c.ID = uuid.New().String()
	return &c
}

// Error prototypes. Use Copy() before returning one to a client.
var (
	ErrInternalError = ErrorObject{
		Status: "500",
		Title:  "Internal Server Error",
		Detail: "Something went wrong.",
	}
	ErrInvalidInput = ErrorObject{
		Status: "400",
		Title:  "Invalid input",
	}
	ErrInvalidQueryParameter = ErrorObject{
		Status: "400",
		Title:  "Invalid query parameter",
	}
	ErrInvalidJSONDocument = ErrorObject{
		Status: "400",
		Title:  "Invalid JSON document",
	}
	ErrResourceNotFound = ErrorObject{
		Status: "404",
		Title:  "Resource not found",
	}
	ErrResourceAlreadyExists = ErrorObject{
		Status: "409",
		Title:  "Resource already exists",
	}
	ErrInsufficientAccPerm = ErrorObject{
		Status: "403",
		Title:  "Insufficient permissions",
	}
	ErrMethodNotAllowed = ErrorObject{
		Status: "405",
		Title:  "Method not allowed",
	}
	ErrUnsupportedMediaType = ErrorObject{
		Status: "415",
		Title:  "Unsupported media type",
	}
	ErrLanguageNotAcceptable = ErrorObject{
		Status: "400",
		Title:  "Language not acceptable",
	}
)

// ParseError marks malformed client input: relationship payload shape,
// unknown sparse-fieldset field, unknown include, bad query parameter.
type ParseError struct {
	Detail string
	Source *ErrorSource
}

func (e *ParseError) Error() string {
	return e.Detail
}

func newParseError(detail string) *ParseError {
	return &ParseError{Detail: detail}
}

func newParseErrorParam(detail, parameter string) *ParseError {
	return &ParseError{Detail: detail, Source: &ErrorSource{Parameter: parameter}}
}

// DomainError marks a business-rule violation on well-formed input, such as
// mutating a read-only relationship.
type DomainError struct {
	Detail string
	Source *ErrorSource
}

func (e *DomainError) Error() string {
	return e.Detail
}

func newDomainErrorPointer(detail, pointer string) *DomainError {
	return &DomainError{Detail: detail, Source: &ErrorSource{Pointer: pointer}}
}

// WireError maps an engine error onto a wire error object. ParseError and
// DomainError become 400s carrying their source; anything else is an
// internal error.
func WireError(err error) *ErrorObject {
	switch e := err.(type) {
	case *ParseError:
		obj := ErrInvalidInput.Copy()
		obj.Detail = e.Detail
		obj.Source = e.Source
		return obj
	case *DomainError:
		obj := ErrInvalidInput.Copy()
		obj.Detail = e.Detail
		obj.Source = e.Source
		return obj
	case *ErrorObject:
		return e
	default:
		return ErrInternalError.Copy()
	}
}
