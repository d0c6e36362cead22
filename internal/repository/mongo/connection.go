package mongo

import (
	"context"
	"fmt"

	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Connection holds a client bound to one database.
type Connection struct {
	client   *mongodriver.Client
	database *mongodriver.Database
}

func NewConnection(ctx context.Context, uri, database string) (*Connection, error) {
	if database == "" {
		return nil, fmt.Errorf("mongo database name is empty")
	}

	client, err := mongodriver.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &Connection{
		client:   client,
		database: client.Database(database),
	}, nil
}

func (c *Connection) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Disconnect(context.Background())
}

func (c *Connection) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("mongo client is nil")
	}
	return c.client.Ping(ctx, readpref.Primary())
}
