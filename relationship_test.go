package jsonapiengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelationshipValidateToMany(t *testing.T) {
	c := bookController()
	authors := c.MustType(&Book{}).Relationship("authors")

	// array payloads pass through
	payload, err := authors.Validate([]interface{}{
		map[string]interface{}{"type": "authors", "id": "1"},
	})
	assert.NoError(t, err)
	assert.NotNil(t, payload)

	payload, err = authors.Validate([]interface{}{})
	assert.NoError(t, err)
	assert.NotNil(t, payload)

	// single object rejected for to-many
	_, err = authors.Validate(map[string]interface{}{"type": "authors", "id": "1"})
	if assert.Error(t, err) {
		assert.Equal(t, `The top-level "data" element must be an array of resource identifiers or an empty array.`, err.Error())
		assert.IsType(t, &ParseError{}, err)
	}
}

func TestRelationshipValidateToOne(t *testing.T) {
	c := bookController()
	publisher := c.MustType(&Book{}).Relationship("publisher")

	payload, err := publisher.Validate(map[string]interface{}{"type": "publishers", "id": "1"})
	assert.NoError(t, err)
	assert.NotNil(t, payload)

	// null clears a to-one
	payload, err = publisher.Validate(nil)
	assert.NoError(t, err)
	assert.Nil(t, payload)

	_, err = publisher.Validate([]interface{}{})
	if assert.Error(t, err) {
		assert.Equal(t, `The top-level "data" element must be a single resource object or null`, err.Error())
	}
}

func TestRelationshipGetRelated(t *testing.T) {
	c := bookController()
	book := c.MustType(&Book{})
	entity := &Book{
		ID:        1,
		Authors:   []*Author{{ID: 1}, {ID: 2}},
		Publisher: &Publisher{ID: 3},
	}

	related, err := book.Relationship("authors").GetRelated(entity, nil)
	assert.NoError(t, err)
	assert.Len(t, related, 2)

	related, err = book.Relationship("publisher").GetRelated(entity, nil)
	assert.NoError(t, err)
	assert.Equal(t, entity.Publisher, related)

	// nil to-one reads as nil, not as a typed nil pointer
	related, err = book.Relationship("publisher").GetRelated(&Book{ID: 2}, nil)
	assert.NoError(t, err)
	assert.Nil(t, related)
}

func TestRelationshipGetRelatedStrategy(t *testing.T) {
	c := bookController()
	authors := c.MustType(&Book{}).Relationship("authors")
	authors.GetRelatedFunc = func(entity interface{}, ctx *RelationContext) (interface{}, error) {
		return []*Author{{ID: 99}}, nil
	}
	defer func() { authors.GetRelatedFunc = nil }()

	related, err := authors.GetRelated(&Book{ID: 1}, nil)
	assert.NoError(t, err)
	assert.Len(t, related, 1)
}

func TestRelationshipMissingCapability(t *testing.T) {
	c := bookController()
	authors := c.MustType(&Book{}).Relationship("authors")
	fieldIndex := authors.fieldIndex
	authors.fieldIndex = -1
	defer func() { authors.fieldIndex = fieldIndex }()

	_, err := authors.GetRelated(&Book{ID: 1}, nil)
	if assert.Error(t, err) {
		capErr, ok := err.(*MissingCapabilityError)
		if assert.True(t, ok) {
			assert.Equal(t, "authors", capErr.Relation)
			assert.Equal(t, "GetRelated", capErr.Capability)
		}
	}
}

func TestRelationshipApplyPagination(t *testing.T) {
	c := bookController()
	book := c.MustType(&Book{})

	entity := &Book{ID: 1}
	for i := 1; i <= 15; i++ {
		entity.Authors = append(entity.Authors, &Author{ID: i})
	}

	paged, meta, err := book.Relationship("authors").ApplyPagination(entity.Authors, 10, 2)
	assert.NoError(t, err)
	assert.Len(t, paged, 5)
	assert.Equal(t, 15, meta.Count)
	assert.True(t, meta.HasPrevious)

	_, _, err = book.Relationship("publisher").ApplyPagination(entity.Publisher, 10, 1)
	assert.Error(t, err)
}

func TestRelationshipSetRelated(t *testing.T) {
	c := bookController()
	book := c.MustType(&Book{})
	entity := &Book{ID: 1}

	// to-one
	assert.NoError(t, book.Relationship("publisher").SetRelated(entity, &Publisher{ID: 7}))
	assert.Equal(t, 7, entity.Publisher.ID)
	assert.NoError(t, book.Relationship("publisher").SetRelated(entity, nil))
	assert.Nil(t, entity.Publisher)

	// to-many accepts a slice or a single entity
	assert.NoError(t, book.Relationship("authors").SetRelated(entity, []interface{}{&Author{ID: 1}, &Author{ID: 2}}))
	assert.Len(t, entity.Authors, 2)
	assert.NoError(t, book.Relationship("authors").SetRelated(entity, &Author{ID: 3}))
	assert.Len(t, entity.Authors, 1)
	assert.Equal(t, 3, entity.Authors[0].ID)
}

func TestRelationshipAddRemoveRelated(t *testing.T) {
	c := bookController()
	authors := c.MustType(&Book{}).Relationship("authors")
	entity := &Book{ID: 1, Authors: []*Author{{ID: 1}}}

	assert.NoError(t, authors.AddRelated(entity, &Author{ID: 2}))
	assert.NoError(t, authors.AddRelated(entity, []interface{}{&Author{ID: 3}, &Author{ID: 4}}))
	assert.Len(t, entity.Authors, 4)

	// removal matches by primary value
	assert.NoError(t, authors.RemoveRelated(entity, &Author{ID: 2}))
	assert.Len(t, entity.Authors, 3)
	assert.NoError(t, authors.RemoveRelated(entity, []interface{}{&Author{ID: 1}, &Author{ID: 4}}))
	assert.Len(t, entity.Authors, 1)
	assert.Equal(t, 3, entity.Authors[0].ID)

	// removing an absent entry is a no-op
	assert.NoError(t, authors.RemoveRelated(entity, &Author{ID: 42}))
	assert.Len(t, entity.Authors, 1)
}

func TestRelationshipReadOnly(t *testing.T) {
	c := bookController()
	authors := c.MustType(&Book{}).Relationship("authors")
	authors.ReadOnly = true
	defer func() { authors.ReadOnly = false }()

	entity := &Book{ID: 1, Authors: []*Author{{ID: 1}}}

	for _, mutate := range []func() error{
		func() error { return authors.SetRelated(entity, []interface{}{&Author{ID: 2}}) },
		func() error { return authors.AddRelated(entity, &Author{ID: 2}) },
		func() error { return authors.RemoveRelated(entity, &Author{ID: 1}) },
	} {
		err := mutate()
		if assert.Error(t, err) {
			domainErr, ok := err.(*DomainError)
			if assert.True(t, ok) {
				assert.Equal(t, "authors is a read-only relationship", domainErr.Detail)
				assert.Equal(t, "data/relationships/authors", domainErr.Source.Pointer)
			}
		}
	}
	// untouched
	assert.Len(t, entity.Authors, 1)
}

func TestRelationshipMutateToOneCardinality(t *testing.T) {
	c := bookController()
	publisher := c.MustType(&Book{}).Relationship("publisher")
	entity := &Book{ID: 1}

	assert.Error(t, publisher.AddRelated(entity, &Publisher{ID: 1}))
	assert.Error(t, publisher.RemoveRelated(entity, &Publisher{ID: 1}))
}

func TestBuildRelationshipLinks(t *testing.T) {
	c := bookController()
	routes := NewRouteSet("/api")
	routes.Register("books-relationships-authors", "/books/:id/relationships/authors")
	routes.Register("books-related-authors", "/books/:id/authors")
	c.Routes = routes

	book := c.MustType(&Book{})
	links := book.Relationship("authors").BuildRelationshipLinks(&Book{ID: 1}, book)
	if assert.NotNil(t, links) {
		assert.Equal(t, "/api/books/1/relationships/authors", links["self"].Href)
		assert.Equal(t, "/api/books/1/authors", links["related"].Href)
	}

	// unregistered routes omit links entirely
	assert.Nil(t, book.Relationship("publisher").BuildRelationshipLinks(&Book{ID: 1}, book))
}
