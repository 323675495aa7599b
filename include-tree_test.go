package jsonapiengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildIncludeTree(t *testing.T) {
	c := bookController()
	book := c.MustType(&Book{})

	tree, err := book.BuildIncludeTree([]string{"authors", "publisher"})
	assert.NoError(t, err)
	assert.True(t, tree.Contains("authors"))
	assert.True(t, tree.Contains("publisher"))
	assert.Empty(t, tree.Branch("authors"))
}

func TestBuildIncludeTreeNested(t *testing.T) {
	c := bookController()
	book := c.MustType(&Book{})

	tree, err := book.BuildIncludeTree([]string{"authors.books", "authors.books.publisher", "publisher"})
	assert.NoError(t, err)
	assert.True(t, tree.Contains("authors"))
	assert.Equal(t, []string{"books", "books.publisher"}, tree.Branch("authors"))
	assert.Empty(t, tree.Branch("publisher"))
}

func TestBuildIncludeTreeInvalid(t *testing.T) {
	c := bookController()
	book := c.MustType(&Book{})

	_, err := book.BuildIncludeTree([]string{"authors", "editors", "reviews"})
	if assert.Error(t, err) {
		parseErr, ok := err.(*ParseError)
		if assert.True(t, ok) {
			// every invalid root reported at once, sorted
			assert.Equal(t, "Invalid relationship(s): editors, reviews", parseErr.Detail)
			assert.Equal(t, "include", parseErr.Source.Parameter)
		}
	}

	// only the first segment is validated at this level
	_, err = book.BuildIncludeTree([]string{"authors.unknowable"})
	assert.NoError(t, err)
}

func TestBuildIncludeTreeEmptyEntries(t *testing.T) {
	c := bookController()
	book := c.MustType(&Book{})

	// trailing comma in client input produces an empty path
	tree, err := book.BuildIncludeTree([]string{"authors", ""})
	assert.NoError(t, err)
	assert.Len(t, tree, 1)

	tree, err = book.BuildIncludeTree(nil)
	assert.NoError(t, err)
	assert.Empty(t, tree)
}
