package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	tenantserrors "dormitory/internal/tenants/errors"
	"dormitory/pkg/config"
	mongotx "dormitory/pkg/db/mongo"
	"dormitory/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "tenants"
)

type mongoTenantRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type TenantRepository interface {
	Create(ctx context.Context, tenant *model.Tenant) error
	FindByID(ctx context.Context, id string) (*model.Tenant, error)
	FindAll(ctx context.Context) ([]*model.Tenant, error)
	Update(ctx context.Context, id string, update *model.TenantUpdate) (*model.Tenant, error)
	Delete(ctx context.Context, id string) (*model.Tenant, error)
	Count(ctx context.Context) (int64, error)
}

func NewMongoTenantRepository(db *mongo.Database, cfg *config.Config) TenantRepository {
	return &mongoTenantRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoTenantRepository) Create(ctx context.Context, tenant *model.Tenant) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	tenant.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, tenant)
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		tenant.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTenantRepository) FindByID(ctx context.Context, id string) (*model.Tenant, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", tenantserrors.ErrInvalidID, id)
	}

	var tenant model.Tenant
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&tenant); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, tenantserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find tenant: %w", err)
	}

	return &tenant, nil
}

func (r *mongoTenantRepository) FindAll(ctx context.Context) ([]*model.Tenant, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "last_name", Value: 1},
		{Key: "full_name", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find tenants: %w", err)
	}
	defer cursor.Close(ctx)

	tenants := []*model.Tenant{}
	if err = cursor.All(ctx, &tenants); err != nil {
		return nil, fmt.Errorf("failed to decode tenants: %w", err)
	}

	return tenants, nil
}

func (r *mongoTenantRepository) Update(ctx context.Context, id string, update *model.TenantUpdate) (*model.Tenant, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", tenantserrors.ErrInvalidID, id)
	}

	set := bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)}
	if update.LastName != nil {
		set["last_name"] = *update.LastName
	}
	if update.FullName != nil {
		set["full_name"] = *update.FullName
	}
	if update.Age != nil {
		set["age"] = *update.Age
	}
	if update.ContactNo != nil {
		set["contact_no"] = *update.ContactNo
	}
	if update.Address != nil {
		set["address"] = *update.Address
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var tenant model.Tenant
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&tenant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, tenantserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}

	return &tenant, nil
}

func (r *mongoTenantRepository) Delete(ctx context.Context, id string) (*model.Tenant, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", tenantserrors.ErrInvalidID, id)
	}

	var tenant model.Tenant
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": objectID}).Decode(&tenant); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, tenantserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete tenant: %w", err)
	}

	return &tenant, nil
}

func (r *mongoTenantRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count tenants: %w", err)
	}
	return count, nil
}
