// Package catalog runs the book queries against a single MongoDB collection.
// Every method is one round trip and decodes replies into the typed records of
// package models; a stored value with the wrong BSON type fails the call.
package catalog

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"plp-bookstore/internal/models"
)

// ExplainVerbosity is the explain mode used for query plan inspection.
const ExplainVerbosity = "executionStats"

type Catalog struct {
	Collection *mongo.Collection
}

func New(coll *mongo.Collection) *Catalog {
	return &Catalog{Collection: coll}
}

func (c *Catalog) FindByGenre(ctx context.Context, genre string) ([]models.Book, error) {
	return c.findBooks(ctx, GenreFilter(genre))
}

func (c *Catalog) FindPublishedAfter(ctx context.Context, year int) ([]models.Book, error) {
	return c.findBooks(ctx, PublishedAfterFilter(year))
}

func (c *Catalog) FindByAuthor(ctx context.Context, author string) ([]models.Book, error) {
	return c.findBooks(ctx, AuthorFilter(author))
}

func (c *Catalog) FindInStockPublishedAfter(ctx context.Context, year int) ([]models.Book, error) {
	return c.findBooks(ctx, InStockPublishedAfterFilter(year))
}

// UpdatePrice sets the price of the first book titled title. No match is not
// an error; the caller can read MatchedCount if it cares.
func (c *Catalog) UpdatePrice(ctx context.Context, title string, price float64) (*mongo.UpdateResult, error) {
	res, err := c.Collection.UpdateOne(ctx, TitleFilter(title), SetPriceUpdate(price))
	if err != nil {
		return nil, fmt.Errorf("update price of %q: %w", title, err)
	}
	return res, nil
}

// DeleteByTitle removes the first book titled title, if there is one.
func (c *Catalog) DeleteByTitle(ctx context.Context, title string) (*mongo.DeleteResult, error) {
	res, err := c.Collection.DeleteOne(ctx, TitleFilter(title))
	if err != nil {
		return nil, fmt.Errorf("delete %q: %w", title, err)
	}
	return res, nil
}

func (c *Catalog) ListSummaries(ctx context.Context) ([]models.BookSummary, error) {
	cursor, err := c.Collection.Find(ctx, bson.D{}, options.Find().SetProjection(SummaryProjection()))
	if err != nil {
		return nil, fmt.Errorf("find summaries: %w", err)
	}
	defer cursor.Close(ctx)

	summaries := []models.BookSummary{}
	if err = cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("decode summaries: %w", err)
	}
	return summaries, nil
}

func (c *Catalog) ListByPrice(ctx context.Context, order SortOrder) ([]models.Book, error) {
	return c.findBooks(ctx, bson.D{}, options.Find().SetSort(PriceSort(order)))
}

// ListPage returns page (1-based) of pageSize books in the collection's
// natural order.
func (c *Catalog) ListPage(ctx context.Context, page, pageSize int) ([]models.Book, error) {
	opts, err := PageOptions(page, pageSize)
	if err != nil {
		return nil, err
	}
	return c.findBooks(ctx, bson.D{}, opts)
}

func (c *Catalog) AveragePriceByGenre(ctx context.Context) ([]models.GenreAveragePrice, error) {
	rows := []models.GenreAveragePrice{}
	if err := c.aggregate(ctx, AveragePriceByGenrePipeline(), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// TopAuthor returns the author with the most books, or nil for an empty
// collection.
func (c *Catalog) TopAuthor(ctx context.Context) (*models.AuthorCount, error) {
	var rows []models.AuthorCount
	if err := c.aggregate(ctx, TopAuthorPipeline(), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Catalog) CountByDecade(ctx context.Context) ([]models.DecadeCount, error) {
	rows := []models.DecadeCount{}
	if err := c.aggregate(ctx, DecadePipeline(), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// EnsureIndexes creates the catalog indexes. The server treats an identical
// index specification as already present, so calling it again is a no-op.
func (c *Catalog) EnsureIndexes(ctx context.Context) ([]string, error) {
	names, err := c.Collection.Indexes().CreateMany(ctx, IndexModels())
	if err != nil {
		return nil, fmt.Errorf("create indexes: %w", err)
	}
	return names, nil
}

// ExplainFindByAuthor asks the server how it would run FindByAuthor.
func (c *Catalog) ExplainFindByAuthor(ctx context.Context, author string) (*models.QueryPlan, error) {
	cmd := bson.D{
		{Key: "explain", Value: bson.D{
			{Key: "find", Value: c.Collection.Name()},
			{Key: "filter", Value: AuthorFilter(author)},
		}},
		{Key: "verbosity", Value: ExplainVerbosity},
	}

	raw, err := c.Collection.Database().RunCommand(ctx, cmd).Raw()
	if err != nil {
		return nil, fmt.Errorf("explain find by author: %w", err)
	}

	var plan models.QueryPlan
	if err := bson.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("decode explain: %w", err)
	}
	plan.Raw = raw
	return &plan, nil
}

// InsertBooks writes books in one batch and returns how many were inserted.
func (c *Catalog) InsertBooks(ctx context.Context, books []models.Book) (int, error) {
	if len(books) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, 0, len(books))
	for _, b := range books {
		docs = append(docs, b)
	}
	res, err := c.Collection.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert books: %w", err)
	}
	return len(res.InsertedIDs), nil
}

// Clear removes every book and returns how many were removed.
func (c *Catalog) Clear(ctx context.Context) (int64, error) {
	res, err := c.Collection.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("clear books: %w", err)
	}
	return res.DeletedCount, nil
}

func (c *Catalog) Count(ctx context.Context) (int64, error) {
	n, err := c.Collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

func (c *Catalog) findBooks(ctx context.Context, filter bson.D, opts ...*options.FindOptions) ([]models.Book, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find books: %w", err)
	}
	defer cursor.Close(ctx)

	books := []models.Book{}
	if err = cursor.All(ctx, &books); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	return books, nil
}

func (c *Catalog) aggregate(ctx context.Context, pipeline mongo.Pipeline, results interface{}) error {
	cursor, err := c.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, results); err != nil {
		return fmt.Errorf("decode aggregate: %w", err)
	}
	return nil
}
