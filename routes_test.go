package jsonapiengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteSetReverse(t *testing.T) {
	routes := NewRouteSet("/api/")
	routes.Register("books-detail", "/books/:id")
	routes.Register("books-relationships-authors", "/books/:id/relationships/authors")

	url, err := routes.Reverse("books-detail", "15")
	assert.NoError(t, err)
	assert.Equal(t, "/api/books/15", url)

	url, err = routes.Reverse("books-relationships-authors", "15")
	assert.NoError(t, err)
	assert.Equal(t, "/api/books/15/relationships/authors", url)
}

func TestRouteSetReverseNoMatch(t *testing.T) {
	routes := NewRouteSet("")

	_, err := routes.Reverse("books-detail", "1")
	assert.Equal(t, ErrNoReverseMatch, err)
}

func TestRouteSetReverseMissingArguments(t *testing.T) {
	routes := NewRouteSet("")
	routes.Register("books-detail", "/books/:id")

	_, err := routes.Reverse("books-detail")
	assert.Error(t, err)
}

func TestRouteNameConventions(t *testing.T) {
	assert.Equal(t, "books-detail", detailRouteName("books"))
	assert.Equal(t, "books-relationships-authors", relationshipRouteName("books", "authors"))
	assert.Equal(t, "books-related-authors", relatedRouteName("books", "authors"))
}
