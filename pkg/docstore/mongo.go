package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoCollection[T any] struct {
	collection   *mongo.Collection
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewMongoCollection[T any](db *mongo.Database, name string, readTimeout, writeTimeout time.Duration) *MongoCollection[T] {
	return &MongoCollection[T]{
		collection:   db.Collection(name),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

func (c *MongoCollection[T]) Name() string {
	return c.collection.Name()
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// A SessionContext is returned unchanged because wrapping it detaches the
// operation from the session.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if timeout <= 0 {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func (c *MongoCollection[T]) Insert(ctx context.Context, doc *T) error {
	ctx, cancel := withTimeout(ctx, c.writeTimeout)
	defer cancel()

	if _, err := c.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s: %v", ErrDuplicateKey, c.Name(), err)
		}
		return fmt.Errorf("failed to insert into %s: %w", c.Name(), err)
	}
	return nil
}

func (c *MongoCollection[T]) FindOne(ctx context.Context, filter Filter) (*T, error) {
	ctx, cancel := withTimeout(ctx, c.readTimeout)
	defer cancel()

	var doc T
	err := c.collection.FindOne(ctx, toBSON(filter)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find in %s: %w", c.Name(), err)
	}
	return &doc, nil
}

func (c *MongoCollection[T]) Find(ctx context.Context, filter Filter) ([]*T, error) {
	ctx, cancel := withTimeout(ctx, c.readTimeout)
	defer cancel()

	cursor, err := c.collection.Find(ctx, toBSON(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := []*T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", c.Name(), err)
	}
	return docs, nil
}

func (c *MongoCollection[T]) Update(ctx context.Context, filter Filter, fields Fields) (int64, error) {
	if len(fields) == 0 {
		return 0, ErrEmptyUpdate
	}

	ctx, cancel := withTimeout(ctx, c.writeTimeout)
	defer cancel()

	result, err := c.collection.UpdateMany(ctx, toBSON(filter), bson.M{"$set": bson.M(fields)})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, fmt.Errorf("%w: %s: %v", ErrDuplicateKey, c.Name(), err)
		}
		return 0, fmt.Errorf("failed to update %s: %w", c.Name(), err)
	}
	return result.MatchedCount, nil
}

func (c *MongoCollection[T]) Remove(ctx context.Context, filter Filter) (int64, error) {
	ctx, cancel := withTimeout(ctx, c.writeTimeout)
	defer cancel()

	result, err := c.collection.DeleteMany(ctx, toBSON(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to remove from %s: %w", c.Name(), err)
	}
	return result.DeletedCount, nil
}

func (c *MongoCollection[T]) Count(ctx context.Context, filter Filter) (int64, error) {
	ctx, cancel := withTimeout(ctx, c.readTimeout)
	defer cancel()

	n, err := c.collection.CountDocuments(ctx, toBSON(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", c.Name(), err)
	}
	return n, nil
}

func (c *MongoCollection[T]) Ping(ctx context.Context) error {
	return c.collection.Database().Client().Ping(ctx, nil)
}

func toBSON(filter Filter) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return bson.M(filter)
}
