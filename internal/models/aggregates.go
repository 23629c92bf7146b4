package models

import "fmt"

// GenreAveragePrice is one output row of the average-price-by-genre pipeline.
type GenreAveragePrice struct {
	Genre    string  `json:"genre" bson:"_id"`
	AvgPrice float64 `json:"avg_price" bson:"avgPrice"`
}

type AuthorCount struct {
	Author string `json:"author" bson:"_id"`
	Count  int    `json:"count" bson:"count"`
}

// DecadeCount is keyed by the first year of the decade (1949 -> 1940). The
// server computes the key as a double; whole doubles decode into int.
type DecadeCount struct {
	Decade int `json:"decade" bson:"_id"`
	Count  int `json:"count" bson:"count"`
}

func (g GenreAveragePrice) String() string {
	return fmt.Sprintf("%s: $%.2f", g.Genre, g.AvgPrice)
}

func (a AuthorCount) String() string {
	return fmt.Sprintf("%s: %d books", a.Author, a.Count)
}

func (d DecadeCount) String() string {
	return fmt.Sprintf("%ds: %d books", d.Decade, d.Count)
}
