package models

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Book struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty" yaml:"-"`
	Title         string             `json:"title" bson:"title" yaml:"title"`
	Author        string             `json:"author" bson:"author" yaml:"author"`
	Genre         string             `json:"genre" bson:"genre" yaml:"genre"`
	PublishedYear int                `json:"published_year" bson:"published_year" yaml:"published_year"`
	Price         float64            `json:"price" bson:"price" yaml:"price"`
	InStock       bool               `json:"in_stock" bson:"in_stock" yaml:"in_stock"`
}

// BookSummary is the projected form of a Book: title, author and price only.
type BookSummary struct {
	Title  string  `json:"title" bson:"title"`
	Author string  `json:"author" bson:"author"`
	Price  float64 `json:"price" bson:"price"`
}

const (
	BookEntity  = "book"
	IndexEntity = "index"
)

var (
	ErrMissingTitle  = errors.New("title is required")
	ErrMissingAuthor = errors.New("author is required")
	ErrNegativeYear  = errors.New("published_year must not be negative")
	ErrNegativePrice = errors.New("price must not be negative")
)

// Validate checks a record before it is written by the seed command. The store
// itself enforces none of this.
func (b Book) Validate() error {
	switch {
	case b.Title == "":
		return ErrMissingTitle
	case b.Author == "":
		return fmt.Errorf("%q: %w", b.Title, ErrMissingAuthor)
	case b.PublishedYear < 0:
		return fmt.Errorf("%q: %w", b.Title, ErrNegativeYear)
	case b.Price < 0:
		return fmt.Errorf("%q: %w", b.Title, ErrNegativePrice)
	}
	return nil
}

func (b Book) String() string {
	stock := "out of stock"
	if b.InStock {
		stock = "in stock"
	}
	return fmt.Sprintf("%q by %s (%s, %d) $%.2f, %s", b.Title, b.Author, b.Genre, b.PublishedYear, b.Price, stock)
}

func (s BookSummary) String() string {
	return fmt.Sprintf("%q by %s $%.2f", s.Title, s.Author, s.Price)
}
