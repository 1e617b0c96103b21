package mongo

import (
	"context"
	"fmt"
	"strings"

	bookingsrepo "dancebook/internal/bookings/repository"
	catalogrepo "dancebook/internal/catalog/repository"
	identityrepo "dancebook/internal/identity/repository"
	"dancebook/internal/migrations/mongo/validators"
	"dancebook/pkg/docstore"
	"dancebook/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Collection struct {
	Name      string
	Validator bson.M
	Indexes   []docstore.Index
}

// Collections lists every collection the service writes, with the same
// indexes the in-memory store enforces.
func Collections() []Collection {
	return []Collection{
		{Name: identityrepo.CollectionName, Validator: validators.AccountValidator, Indexes: identityrepo.Indexes()},
		{Name: catalogrepo.CoursesCollection, Validator: validators.CourseValidator},
		{Name: catalogrepo.ClassesCollection, Validator: validators.ClassValidator, Indexes: catalogrepo.ClassIndexes()},
		{Name: bookingsrepo.CollectionName, Validator: validators.EnrolmentValidator, Indexes: bookingsrepo.Indexes()},
	}
}

// RunMigration is idempotent: existing collections get their validator
// replaced via collMod and index creation is a no-op for matching indexes.
func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, IndexModels(def.Indexes), log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully", "database", db.Name())
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}

// IndexModels converts store index declarations into ascending Mongo indexes
// with stable names.
func IndexModels(indexes []docstore.Index) []mongo.IndexModel {
	models := make([]mongo.IndexModel, 0, len(indexes))
	for _, idx := range indexes {
		keys := bson.D{}
		for _, field := range idx.Fields {
			keys = append(keys, bson.E{Key: field, Value: 1})
		}
		opts := options.Index().SetName(indexName(idx))
		if idx.Unique {
			opts.SetUnique(true)
		}
		models = append(models, mongo.IndexModel{Keys: keys, Options: opts})
	}
	return models
}

func indexName(idx docstore.Index) string {
	name := strings.Join(idx.Fields, "_")
	if idx.Unique {
		return "uniq_" + name
	}
	return "idx_" + name
}
