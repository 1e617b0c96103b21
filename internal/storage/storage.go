// Package storage opens the collections the booking core runs on, either in
// MongoDB or in process, according to the configured backend.
package storage

import (
	"context"
	"fmt"

	bookingsrepo "dancebook/internal/bookings/repository"
	catalogrepo "dancebook/internal/catalog/repository"
	identityrepo "dancebook/internal/identity/repository"
	"dancebook/pkg/config"
	mongodb "dancebook/pkg/db/mongo"
	"dancebook/pkg/docstore"
	"dancebook/pkg/model"
)

type Stores struct {
	Accounts   docstore.Collection[model.Account]
	Courses    docstore.Collection[model.Course]
	Classes    docstore.Collection[model.ClassSession]
	Enrolments docstore.Collection[model.Enrolment]

	Transactor docstore.Transactor
	Pinger     docstore.Pinger
	Backend    string
}

// Open builds the stores for cfg.StoreBackend. The Mongo backend expects
// cfg.Client.Mongo to be connected already.
func Open(cfg *config.Config) (*Stores, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		cfg.Log.Warn("Using in-memory store; data is lost on restart")
		return NewMemory(), nil
	case config.StoreMongo:
		if cfg.Client == nil || cfg.Client.Mongo == nil {
			return nil, fmt.Errorf("mongo backend selected but no mongo client is connected")
		}
		return newMongo(cfg), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// NewMemory returns empty in-process stores carrying the same unique indexes
// the Mongo migrations create.
func NewMemory() *Stores {
	accounts := docstore.NewMemoryCollection[model.Account](identityrepo.CollectionName, identityrepo.Indexes()...)
	return &Stores{
		Accounts:   accounts,
		Courses:    docstore.NewMemoryCollection[model.Course](catalogrepo.CoursesCollection),
		Classes:    docstore.NewMemoryCollection[model.ClassSession](catalogrepo.ClassesCollection, catalogrepo.ClassIndexes()...),
		Enrolments: docstore.NewMemoryCollection[model.Enrolment](bookingsrepo.CollectionName, bookingsrepo.Indexes()...),
		Transactor: docstore.NoopTransactor{},
		Pinger:     accounts,
		Backend:    config.StoreMemory,
	}
}

func newMongo(cfg *config.Config) *Stores {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	accounts := docstore.NewMongoCollection[model.Account](db, identityrepo.CollectionName, cfg.ReadTimeout, cfg.WriteTimeout)

	var tx docstore.Transactor = docstore.NoopTransactor{}
	if cfg.MongoTransactions {
		tx = mongodb.NewTransactionManager(cfg.Client.Mongo)
	}

	cfg.Log.Info("Using MongoDB store",
		"database", cfg.MongoDatabaseName,
		"transactions", cfg.MongoTransactions,
	)
	return &Stores{
		Accounts:   accounts,
		Courses:    docstore.NewMongoCollection[model.Course](db, catalogrepo.CoursesCollection, cfg.ReadTimeout, cfg.WriteTimeout),
		Classes:    docstore.NewMongoCollection[model.ClassSession](db, catalogrepo.ClassesCollection, cfg.ReadTimeout, cfg.WriteTimeout),
		Enrolments: docstore.NewMongoCollection[model.Enrolment](db, bookingsrepo.CollectionName, cfg.ReadTimeout, cfg.WriteTimeout),
		Transactor: tx,
		Pinger:     accounts,
		Backend:    config.StoreMongo,
	}
}

func (s *Stores) Ping(ctx context.Context) error {
	return s.Pinger.Ping(ctx)
}
