package jsonapiengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyFieldset(t *testing.T) {
	c := bookController()
	book := c.MustType(&Book{})

	attrs := book.attributeMap(&Book{ID: 1, Title: "Maus", Year: 1991})
	assert.NoError(t, book.applyFieldset(attrs, []string{"title"}))
	assert.Equal(t, map[string]interface{}{"title": "Maus"}, attrs)
}

func TestApplyFieldsetEmpty(t *testing.T) {
	c := bookController()
	book := c.MustType(&Book{})

	// an empty fieldset keeps no attributes
	attrs := book.attributeMap(&Book{ID: 1, Title: "Maus"})
	assert.NoError(t, book.applyFieldset(attrs, nil))
	assert.Empty(t, attrs)
}

func TestApplyFieldsetInvalid(t *testing.T) {
	c := bookController()
	book := c.MustType(&Book{})

	attrs := book.attributeMap(&Book{ID: 1, Title: "Maus"})
	err := book.applyFieldset(attrs, []string{"title", "weight", "isbn"})
	if assert.Error(t, err) {
		parseErr, ok := err.(*ParseError)
		if assert.True(t, ok) {
			assert.Equal(t, "Invalid field(s) for fields[books]: isbn,weight", parseErr.Detail)
			assert.Equal(t, "fields[books]", parseErr.Source.Parameter)
		}
	}
	// attributes untouched on failure
	assert.Len(t, attrs, 2)
}

func TestValidateTouchedTypes(t *testing.T) {
	fields := Fieldsets{
		"books":   {"title"},
		"authors": {"name"},
	}

	touched := map[string]struct{}{"books": {}, "authors": {}}
	assert.NoError(t, fields.validateTouched(touched))

	fields["spaceships"] = []string{"name"}
	err := fields.validateTouched(touched)
	if assert.Error(t, err) {
		parseErr, ok := err.(*ParseError)
		if assert.True(t, ok) {
			assert.Equal(t, "Invalid resource type(s) for fields: spaceships", parseErr.Detail)
			assert.Equal(t, "fields", parseErr.Source.Parameter)
		}
	}
}
