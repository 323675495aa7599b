package jsonapiengine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resourcePayload(t *testing.T, raw string) interface{} {
	var payload interface{}
	assert.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return payload
}

func TestApplyResource(t *testing.T) {
	c := bookController()
	rt := c.MustType(&Book{})

	book := &Book{}
	err := rt.applyResource(book, resourcePayload(t, `{
		"type": "books",
		"id": "4",
		"attributes": {"title": "Maus", "year": 1991},
		"relationships": {
			"publisher": {"data": {"type": "publishers", "id": "2"}},
			"authors": {"data": [{"type": "authors", "id": "7"}]}
		}
	}`))
	assert.NoError(t, err)
	assert.Equal(t, 4, book.ID)
	assert.Equal(t, "Maus", book.Title)
	assert.Equal(t, 1991, book.Year)
	if assert.NotNil(t, book.Publisher) {
		assert.Equal(t, 2, book.Publisher.ID)
	}
	if assert.Len(t, book.Authors, 1) {
		assert.Equal(t, 7, book.Authors[0].ID)
	}
}

func TestApplyResourceTypeMismatch(t *testing.T) {
	c := bookController()
	rt := c.MustType(&Book{})

	err := rt.applyResource(&Book{}, resourcePayload(t, `{"type": "authors", "id": "1"}`))
	if assert.Error(t, err) {
		assert.Equal(t, "Invalid `type`: 'authors' (Did you mean 'books'?)", err.Error())
	}

	err = rt.applyResource(&Book{}, resourcePayload(t, `{"id": "1"}`))
	if assert.Error(t, err) {
		assert.Equal(t, "Missing `type` in resource object", err.Error())
	}

	err = rt.applyResource(&Book{}, resourcePayload(t, `["not", "an", "object"]`))
	assert.Error(t, err)
}

func TestApplyAttributesUnknown(t *testing.T) {
	c := bookController()
	rt := c.MustType(&Book{})

	err := rt.applyAttributes(&Book{}, map[string]interface{}{"weight": 12})
	if assert.Error(t, err) {
		parseErr := err.(*ParseError)
		assert.Equal(t, "Invalid attribute 'weight' for resource 'books'.", parseErr.Detail)
		assert.Equal(t, "/data/attributes/weight", parseErr.Source.Pointer)
	}
}

func TestApplyAttributesBadValue(t *testing.T) {
	c := bookController()
	rt := c.MustType(&Book{})

	err := rt.applyAttributes(&Book{}, map[string]interface{}{"year": "not a number"})
	if assert.Error(t, err) {
		assert.Equal(t, "Invalid value for attribute 'year'.", err.(*ParseError).Detail)
	}
}

func TestApplyResourceUnknownRelationship(t *testing.T) {
	c := bookController()
	rt := c.MustType(&Book{})

	err := rt.applyResource(&Book{}, resourcePayload(t, `{
		"type": "books",
		"relationships": {"editors": {"data": null}}
	}`))
	if assert.Error(t, err) {
		parseErr := err.(*ParseError)
		assert.Equal(t, "Invalid relationship 'editors' for resource 'books'.", parseErr.Detail)
		assert.Equal(t, "/data/relationships/editors", parseErr.Source.Pointer)
	}
}

func TestEntityFromIdentifier(t *testing.T) {
	c := bookController()
	publishers := c.MustType(&Publisher{})

	entity, err := publishers.entityFromIdentifier(map[string]interface{}{"type": "publishers", "id": "3"})
	assert.NoError(t, err)
	assert.Equal(t, 3, entity.(*Publisher).ID)

	_, err = publishers.entityFromIdentifier(map[string]interface{}{"type": "publishers"})
	if assert.Error(t, err) {
		assert.Equal(t, "Missing `id` in resource object", err.Error())
	}

	_, err = publishers.entityFromIdentifier("publishers/3")
	assert.Error(t, err)
}
