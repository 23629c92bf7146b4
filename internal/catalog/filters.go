package catalog

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SortOrder is the direction value used in sort and index key documents.
type SortOrder int

const (
	Ascending  SortOrder = 1
	Descending SortOrder = -1
)

var ErrInvalidPage = errors.New("page and page size must be at least 1")

func GenreFilter(genre string) bson.D {
	return bson.D{{Key: "genre", Value: genre}}
}

func AuthorFilter(author string) bson.D {
	return bson.D{{Key: "author", Value: author}}
}

func TitleFilter(title string) bson.D {
	return bson.D{{Key: "title", Value: title}}
}

// PublishedAfterFilter matches published_year strictly greater than year.
func PublishedAfterFilter(year int) bson.D {
	return bson.D{{Key: "published_year", Value: bson.D{{Key: "$gt", Value: year}}}}
}

func InStockPublishedAfterFilter(year int) bson.D {
	return bson.D{
		{Key: "in_stock", Value: true},
		{Key: "published_year", Value: bson.D{{Key: "$gt", Value: year}}},
	}
}

func SetPriceUpdate(price float64) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{{Key: "price", Value: price}}}}
}

// SummaryProjection keeps title, author and price and drops _id.
func SummaryProjection() bson.D {
	return bson.D{
		{Key: "title", Value: 1},
		{Key: "author", Value: 1},
		{Key: "price", Value: 1},
		{Key: "_id", Value: 0},
	}
}

func PriceSort(order SortOrder) bson.D {
	return bson.D{{Key: "price", Value: int(order)}}
}

// PageOptions converts a 1-based page number into skip and limit.
func PageOptions(page, pageSize int) (*options.FindOptions, error) {
	if page < 1 || pageSize < 1 {
		return nil, ErrInvalidPage
	}
	return options.Find().
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize)), nil
}

func AveragePriceByGenrePipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$genre"},
			{Key: "avgPrice", Value: bson.D{{Key: "$avg", Value: "$price"}}},
		}}},
	}
}

// TopAuthorPipeline returns the single author with the highest count. Equal
// counts are ordered by the server; which author wins a tie is not defined.
func TopAuthorPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$author"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$limit", Value: 1}},
	}
}

// DecadePipeline groups on floor(published_year / 10) * 10, oldest first.
func DecadePipeline() mongo.Pipeline {
	decade := bson.D{{Key: "$multiply", Value: bson.A{
		bson.D{{Key: "$floor", Value: bson.D{{Key: "$divide", Value: bson.A{"$published_year", 10}}}}},
		10,
	}}}
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: decade},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

// IndexModels are the indexes the catalog relies on: title, and author with
// newest books first.
func IndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "title", Value: int(Ascending)}}},
		{Keys: bson.D{
			{Key: "author", Value: int(Ascending)},
			{Key: "published_year", Value: int(Descending)},
		}},
	}
}
