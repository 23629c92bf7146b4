// Package db owns the lifetime of the MongoDB client. The client is created
// once by the caller and released with Disconnect; there is no package level
// connection.
package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const disconnectTimeout = 10 * time.Second

// Connect opens a client for uri and pings the primary so that an unreachable
// server fails here rather than on the first query. A zero timeout leaves the
// driver defaults in place.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opts.SetServerSelectionTimeout(timeout).SetConnectTimeout(timeout)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mongo uri: %w", err)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}
	return client, nil
}

// Disconnect closes the client. It uses its own context so a cancelled run
// still releases its connections.
func Disconnect(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()

	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	return nil
}

func GetCollection(client *mongo.Client, dbName, name string) *mongo.Collection {
	return client.Database(dbName).Collection(name)
}
