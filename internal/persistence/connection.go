package persistence

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOptions describes the cart database connection.
type MongoOptions struct {
	URI         string
	Database    string
	MaxPoolSize uint64
	MinPoolSize uint64
	// ConnectTimeout also bounds server selection.
	ConnectTimeout time.Duration
}

// DefaultMongoOptions sizes the pool for one storefront instance. Cart
// documents are small and each request touches at most one.
func DefaultMongoOptions(uri, database string) MongoOptions {
	return MongoOptions{
		URI:            uri,
		Database:       database,
		MaxPoolSize:    50,
		MinPoolSize:    2,
		ConnectTimeout: 5 * time.Second,
	}
}

// ConnectMongoDB opens a client for opts and pings it before returning
// the cart database.
func ConnectMongoDB(ctx context.Context, opts MongoOptions) (*mongo.Database, error) {
	if opts.MinPoolSize > opts.MaxPoolSize {
		return nil, fmt.Errorf("mongo pool: min %d exceeds max %d", opts.MinPoolSize, opts.MaxPoolSize)
	}

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetAppName("storefront").
		SetConnectTimeout(opts.ConnectTimeout).
		SetServerSelectionTimeout(opts.ConnectTimeout).
		SetMaxPoolSize(opts.MaxPoolSize).
		SetMinPoolSize(opts.MinPoolSize)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(opts.Database), nil
}
