package jsonapiengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrecomputeModels(t *testing.T) {
	c := bookController()

	book := c.MustType(&Book{})
	assert.Equal(t, "books", book.Name)
	assert.Equal(t, []string{"title", "year"}, book.AttributeNames())
	assert.Equal(t, []string{"authors", "publisher"}, book.RelationshipNames())

	authors := book.Relationship("authors")
	if assert.NotNil(t, authors) {
		assert.True(t, authors.Many)
	}
	publisher := book.Relationship("publisher")
	if assert.NotNil(t, publisher) {
		assert.False(t, publisher.Many)
	}
	assert.Nil(t, book.Relationship("editors"))

	_, ok := c.TypeByCollection("publishers")
	assert.True(t, ok)
	_, ok = c.TypeByCollection("unknown")
	assert.False(t, ok)
}

func TestPrecomputeHiddenFields(t *testing.T) {
	c := prepareController(&Article{}, &Comment{})

	article := c.MustType(&Article{})
	assert.NotContains(t, article.AttributeNames(), "secret")

	comment := c.MustType(&Comment{})
	assert.Empty(t, comment.RelationshipNames())
}

func TestPrecomputeInvalidModels(t *testing.T) {
	c := NewController()

	// non-struct model
	assert.Error(t, c.PrecomputeModels("not a struct"))

	// no primary field
	type NoPrimary struct {
		Name string `jsonapi:"attr,name"`
	}
	assert.Error(t, c.PrecomputeModels(&NoPrimary{}))

	// invalid relationship field type
	type BadRelation struct {
		ID      int    `jsonapi:"primary,bad_relations"`
		Related string `jsonapi:"relation,related"`
	}
	assert.Error(t, c.PrecomputeModels(&BadRelation{}))
}

func TestResourceTypeID(t *testing.T) {
	c := bookController()
	book := c.MustType(&Book{})

	assert.Equal(t, "5", book.ID(&Book{ID: 5}))

	// zero primary yields empty id, so unsaved entities omit it
	assert.Equal(t, "", book.ID(&Book{}))

	entity := &Book{}
	assert.NoError(t, book.SetID(entity, "12"))
	assert.Equal(t, 12, entity.ID)

	err := book.SetID(entity, "not-a-number")
	assert.Error(t, err)
	assert.IsType(t, &ParseError{}, err)
}

func TestResourceTypeIdentifier(t *testing.T) {
	c := bookController()
	publisher := c.MustType(&Publisher{})

	identifier := publisher.Identifier(&Publisher{ID: 3, Name: "Fantagraphics"})
	assert.Equal(t, ResourceIdentifier{Type: "publishers", ID: "3"}, identifier)
}
