package jsonapiengine

import (
	"strings"
	"testing"

	"github.com/neuronlabs/uni-db"
	"github.com/stretchr/testify/assert"
)

func TestMarshalErrorsStatus(t *testing.T) {
	h := prepareHandler(defaultLanguages, bookModels...)

	// Case 1:
	// Single error keeps its own status.
	rw, _ := getHttpPair("GET", "/books", nil)
	h.MarshalErrors(rw, ErrResourceNotFound.Copy())
	assert.Equal(t, 404, rw.Result().StatusCode)
	assert.Equal(t, MediaType, rw.Header().Get("Content-Type"))

	// Case 2:
	// Mixed client errors collapse to 400.
	rw, _ = getHttpPair("GET", "/books", nil)
	h.MarshalErrors(rw, ErrResourceNotFound.Copy(), ErrInvalidInput.Copy())
	assert.Equal(t, 400, rw.Result().StatusCode)

	// Case 3:
	// Any server error wins.
	rw, _ = getHttpPair("GET", "/books", nil)
	h.MarshalErrors(rw, ErrInvalidInput.Copy(), ErrInternalError.Copy())
	assert.Equal(t, 500, rw.Result().StatusCode)

	// Case 4:
	// No errors provided.
	rw, _ = getHttpPair("GET", "/books", nil)
	h.MarshalErrors(rw)
	assert.Equal(t, 400, rw.Result().StatusCode)
}

func TestUnmarshalBody(t *testing.T) {
	h := prepareHandler(defaultLanguages, bookModels...)

	rw, req := getHttpPair("POST", "/books", strings.NewReader(`{"data":{"type":"books"}}`))
	payload, ok := h.UnmarshalBody(rw, req)
	assert.True(t, ok)
	assert.Equal(t, map[string]interface{}{"type": "books"}, payload)

	rw, req = getHttpPair("POST", "/books", strings.NewReader(`{"meta":{}}`))
	_, ok = h.UnmarshalBody(rw, req)
	assert.False(t, ok)
	assert.Equal(t, 400, rw.Result().StatusCode)

	rw, req = getHttpPair("POST", "/books", strings.NewReader(`not json`))
	_, ok = h.UnmarshalBody(rw, req)
	assert.False(t, ok)
	assert.Equal(t, 400, rw.Result().StatusCode)
}

func TestManageDBErrorUnrecognized(t *testing.T) {
	h := prepareHandler(defaultLanguages, bookModels...)

	// an error without a known prototype maps to an internal error
	rw, _ := getHttpPair("GET", "/books", nil)
	h.manageDBError(rw, &unidb.Error{Message: "unmapped"})
	assert.Equal(t, 500, rw.Result().StatusCode)
}

func TestParseResourcePath(t *testing.T) {
	id, relation, isRelationship := parseResourcePath("/books/1", "books")
	assert.Equal(t, "1", id)
	assert.Empty(t, relation)
	assert.False(t, isRelationship)

	id, relation, isRelationship = parseResourcePath("/api/v1/books/1/authors", "books")
	assert.Equal(t, "1", id)
	assert.Equal(t, "authors", relation)
	assert.False(t, isRelationship)

	id, relation, isRelationship = parseResourcePath("/books/1/relationships/authors", "books")
	assert.Equal(t, "1", id)
	assert.Equal(t, "authors", relation)
	assert.True(t, isRelationship)

	id, _, _ = parseResourcePath("/books", "books")
	assert.Empty(t, id)
}
