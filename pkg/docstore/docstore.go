// Package docstore is the storage contract used by the booking core: a
// collection of plain records keyed by an opaque string id, queried with
// conjunctive equality filters.
//
// Two implementations are provided. MongoCollection talks to MongoDB and relies
// on server-side unique indexes. MemoryCollection keeps documents in process
// and enforces the same unique indexes itself, which makes it usable for local
// runs and for exercising the services under concurrency in tests.
package docstore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const IDField = "_id"

var (
	ErrNotFound     = errors.New("document not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrMissingID    = errors.New("document has no id")
	ErrEmptyUpdate  = errors.New("update has no fields")
)

// Filter is a conjunctive equality filter keyed by stored field name.
// A nil or empty Filter matches every document.
type Filter map[string]any

// Fields is a set of stored field names and the values to assign to them.
type Fields map[string]any

type Collection[T any] interface {
	Name() string
	Insert(ctx context.Context, doc *T) error
	FindOne(ctx context.Context, filter Filter) (*T, error)
	Find(ctx context.Context, filter Filter) ([]*T, error)
	Update(ctx context.Context, filter Filter, fields Fields) (int64, error)
	Remove(ctx context.Context, filter Filter) (int64, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}

// Transactor runs fn as one unit of work. Stores that cannot provide
// multi-document transactions run fn directly.
type Transactor interface {
	ExecuteTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type NoopTransactor struct{}

func (NoopTransactor) ExecuteTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Index declares a uniqueness constraint over one or more stored fields.
type Index struct {
	Fields []string
	Unique bool
}

func UniqueIndex(fields ...string) Index {
	return Index{Fields: fields, Unique: true}
}

func NewID() string {
	return primitive.NewObjectID().Hex()
}

func ByID(id string) Filter {
	return Filter{IDField: id}
}
