package jsonapiengine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoReverseMatch is returned by URL resolvers when no route is registered
// under the requested name. Link builders treat it as "omit the link".
var ErrNoReverseMatch = errors.New("No reverse match found for the given route name.")

// URLResolver reverses a named route into a URL. Implementations are
// provided by the router adapter; the engine only consumes the interface.
type URLResolver interface {
	Reverse(name string, args ...string) (string, error)
}

// Route-name conventions shared between the router adapters and the link
// builders.
func detailRouteName(collection string) string {
	return collection + "-detail"
}

func relationshipRouteName(collection, relation string) string {
	return fmt.Sprintf("%s-relationships-%s", collection, relation)
}

func relatedRouteName(collection, relation string) string {
	return fmt.Sprintf("%s-related-%s", collection, relation)
}

// RouteSet is a plain named-route table implementing URLResolver. Patterns
// use ':param' placeholders which are substituted positionally on Reverse.
type RouteSet struct {
	base   string
	routes map[string]string
}

// NewRouteSet creates a route table; base is prepended to every reversed
// URL (e.g. "https://api.example.com/v1" or just "/v1").
func NewRouteSet(base string) *RouteSet {
	return &RouteSet{
		base:   strings.TrimSuffix(base, "/"),
		routes: make(map[string]string),
	}
}

// Register adds a named route pattern, e.g.
// Register("books-relationships-authors", "/books/:id/relationships/authors").
func (r *RouteSet) Register(name, pattern string) {
	r.routes[name] = pattern
}

// Reverse substitutes args into the pattern's placeholders left to right.
func (r *RouteSet) Reverse(name string, args ...string) (string, error) {
	pattern, ok := r.routes[name]
	if !ok {
		return "", ErrNoReverseMatch
	}
	var sb strings.Builder
	sb.WriteString(r.base)
	next := 0
	for _, segment := range strings.Split(pattern, "/") {
		if segment == "" {
			continue
		}
		sb.WriteByte('/')
		if strings.HasPrefix(segment, ":") {
			if next >= len(args) {
				return "", fmt.Errorf("Not enough arguments to reverse route '%s'.", name)
			}
			sb.WriteString(args[next])
			next++
			continue
		}
		sb.WriteString(segment)
	}
	return sb.String(), nil
}
