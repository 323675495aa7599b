package jsonapiengine

import (
	"time"
)

type Book struct {
	ID        int        `jsonapi:"primary,books"`
	Title     string     `jsonapi:"attr,title"`
	Year      int        `jsonapi:"attr,year"`
	Authors   []*Author  `jsonapi:"relation,authors"`
	Publisher *Publisher `jsonapi:"relation,publisher"`
}

type Author struct {
	ID    int     `jsonapi:"primary,authors"`
	Name  string  `jsonapi:"attr,name"`
	Books []*Book `jsonapi:"relation,books"`
}

type Publisher struct {
	ID      int    `jsonapi:"primary,publishers"`
	Name    string `jsonapi:"attr,name"`
	Country string `jsonapi:"attr,country"`
}

type Article struct {
	ID        int        `jsonapi:"primary,articles"`
	Title     string     `jsonapi:"attr,title"`
	CreatedAt time.Time  `jsonapi:"attr,created_at"`
	Secret    string     `jsonapi:"attr,secret,hidden"`
	Comments  []*Comment `jsonapi:"relation,comments"`
}

type Comment struct {
	ID      int      `jsonapi:"primary,comments"`
	Body    string   `jsonapi:"attr,body"`
	Article *Article `jsonapi:"relation,article,hidden"`
}

type Anthology struct {
	ID           int         `jsonapi:"primary,anthologies"`
	Title        string      `jsonapi:"attr,title"`
	Curators     []*Essayist `jsonapi:"relation,curators"`
	Contributors []*Essayist `jsonapi:"relation,contributors"`
}

type Essayist struct {
	ID        int        `jsonapi:"primary,essayists"`
	Name      string     `jsonapi:"attr,name"`
	Publisher *Publisher `jsonapi:"relation,publisher"`
}

func prepareController(models ...interface{}) *Controller {
	c := NewController()
	if err := c.PrecomputeModels(models...); err != nil {
		panic(err)
	}
	return c
}

func bookController() *Controller {
	return prepareController(&Book{}, &Author{}, &Publisher{})
}
