package jsonapiengine

import (
	"net/http"
)

type MiddlewareFunc func(next http.Handler) http.Handler

type Endpoint struct {
	// Type is the endpoint type
	Type EndpointType

	Middlewares []MiddlewareFunc

	// GetModifiedResult defines if the result for Patch should be returned.
	GetModifiedResult bool

	// CustomHandlerFunc is a http.HandlerFunc defined for this endpoint
	CustomHandlerFunc http.HandlerFunc
}

func (e *Endpoint) String() string {
	return e.Type.String()
}
