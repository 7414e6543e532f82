// Package mongo applies collection validators and indexes for the dormitory
// database and seeds demo data.
package mongo

import (
	"context"
	"fmt"

	bookingsrepo "dormitory/internal/bookings/repository"
	"dormitory/internal/migrations/mongo/validators"
	roomsrepo "dormitory/internal/rooms/repository"
	tenantsrepo "dormitory/internal/tenants/repository"
	"dormitory/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the desired state of one collection.
type Collection struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

var (
	RoomsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "room_no", Value: 1}}, Options: options.Index().SetName("room_no_unique").SetUnique(true)},
		{Keys: bson.D{{Key: "room_name", Value: 1}}, Options: options.Index().SetName("room_name_unique").SetUnique(true)},
	}

	TenantsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "last_name", Value: 1}, {Key: "full_name", Value: 1}}, Options: options.Index().SetName("name")},
	}

	// A room or tenant may back at most one booking at a time.
	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "room_id", Value: 1}}, Options: options.Index().SetName("room_id_unique").SetUnique(true)},
		{Keys: bson.D{{Key: "tenant_id", Value: 1}}, Options: options.Index().SetName("tenant_id_unique").SetUnique(true)},
		{Keys: bson.D{{Key: "start_date", Value: 1}}, Options: options.Index().SetName("start_date")},
	}

	BookingLocksIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetName("expires_at_ttl").SetExpireAfterSeconds(0)},
	}
)

func Collections() []Collection {
	return []Collection{
		{Name: roomsrepo.CollectionName, Indexes: RoomsIndexes, Validator: validators.RoomValidator},
		{Name: tenantsrepo.CollectionName, Indexes: TenantsIndexes, Validator: validators.TenantValidator},
		{Name: bookingsrepo.CollectionName, Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		{Name: bookingsrepo.LockCollectionName, Indexes: BookingLocksIndexes, Validator: validators.BookingLockValidator},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
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

	log.Info("Collection already exists, updating validator", "collection", name)
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
	names, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "indexes", names)
	return nil
}

// CollectionStatus describes what exists in the database for one collection.
type CollectionStatus struct {
	Name           string
	Exists         bool
	Documents      int64
	MissingIndexes []string
}

// Status compares the database against Collections.
func Status(ctx context.Context, db *mongo.Database) ([]CollectionStatus, error) {
	existing, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	present := make(map[string]bool, len(existing))
	for _, name := range existing {
		present[name] = true
	}

	var statuses []CollectionStatus
	for _, def := range Collections() {
		status := CollectionStatus{Name: def.Name, Exists: present[def.Name]}
		if !status.Exists {
			for _, idx := range def.Indexes {
				status.MissingIndexes = append(status.MissingIndexes, indexName(idx))
			}
			statuses = append(statuses, status)
			continue
		}

		coll := db.Collection(def.Name)
		if status.Documents, err = coll.EstimatedDocumentCount(ctx); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", def.Name, err)
		}

		specs, err := coll.Indexes().ListSpecifications(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list indexes for %s: %w", def.Name, err)
		}
		have := make(map[string]bool, len(specs))
		for _, spec := range specs {
			have[spec.Name] = true
		}
		for _, idx := range def.Indexes {
			if name := indexName(idx); !have[name] {
				status.MissingIndexes = append(status.MissingIndexes, name)
			}
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func indexName(idx mongo.IndexModel) string {
	if idx.Options != nil && idx.Options.Name != nil {
		return *idx.Options.Name
	}
	return fmt.Sprint(idx.Keys)
}
