package jsonapiengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortByAttribute(t *testing.T) {
	c := bookController()
	book := c.MustType(&Book{})

	collection := []*Book{
		{ID: 1, Title: "Watchmen", Year: 1987},
		{ID: 2, Title: "Maus", Year: 1991},
		{ID: 3, Title: "Blankets", Year: 2003},
	}

	sorted, err := book.Sort("title", collection)
	assert.NoError(t, err)
	books := sorted.([]*Book)
	assert.Equal(t, []int{3, 2, 1}, bookIDs(books))

	// input order untouched
	assert.Equal(t, 1, collection[0].ID)
}

func TestSortDescendingAndMultiKey(t *testing.T) {
	c := bookController()
	book := c.MustType(&Book{})

	collection := []*Book{
		{ID: 1, Title: "B", Year: 1991},
		{ID: 2, Title: "A", Year: 1991},
		{ID: 3, Title: "C", Year: 1987},
	}

	sorted, err := book.Sort("-year,title", collection)
	assert.NoError(t, err)
	assert.Equal(t, []int{2, 1, 3}, bookIDs(sorted.([]*Book)))
}

func TestSortByID(t *testing.T) {
	c := bookController()
	book := c.MustType(&Book{})

	collection := []*Book{{ID: 3}, {ID: 1}, {ID: 2}}
	sorted, err := book.Sort("-id", collection)
	assert.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1}, bookIDs(sorted.([]*Book)))
}

func TestSortInvalidFields(t *testing.T) {
	c := bookController()
	book := c.MustType(&Book{})

	_, err := book.Sort("title,-weight,isbn", []*Book{})
	if assert.Error(t, err) {
		parseErr, ok := err.(*ParseError)
		if assert.True(t, ok) {
			assert.Equal(t, "Invalid field(s) for sort: isbn,weight", parseErr.Detail)
			assert.Equal(t, "sort", parseErr.Source.Parameter)
		}
	}
}

func bookIDs(books []*Book) []int {
	ids := make([]int, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	return ids
}
