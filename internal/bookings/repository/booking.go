package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "dormitory/internal/bookings/errors"
	roomsrepo "dormitory/internal/rooms/repository"
	tenantsrepo "dormitory/internal/tenants/repository"
	"dormitory/pkg/config"
	mongotx "dormitory/pkg/db/mongo"
	"dormitory/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindDetailsByID(ctx context.Context, id string) (*model.BookingDetails, error)
	FindAll(ctx context.Context) ([]*model.Booking, error)
	FindAllDetails(ctx context.Context) ([]*model.BookingDetails, error)
	FindByRoomOrTenant(ctx context.Context, roomID, tenantID primitive.ObjectID) ([]*model.Booking, error)
	Update(ctx context.Context, id string, booking *model.Booking) error
	Delete(ctx context.Context, id string) (*model.Booking, error)
	Count(ctx context.Context) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(db *mongo.Database, cfg *config.Config) BookingRepository {
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(db.Client()),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.ID = ""
	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrOccupied
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

// FindDetailsByID returns the booking with its room and tenant resolved.
func (r *mongoBookingRepository) FindDetailsByID(ctx context.Context, id string) (*model.BookingDetails, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	details, err := r.aggregateDetails(ctx, bson.D{{Key: "_id", Value: objectID}})
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, bookingserrors.ErrNotFound
	}

	return details[0], nil
}

func (r *mongoBookingRepository) FindAll(ctx context.Context) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

// FindAllDetails lists every booking with room and tenant resolved. A booking
// whose room or tenant was deleted is still listed with that side empty.
func (r *mongoBookingRepository) FindAllDetails(ctx context.Context) ([]*model.BookingDetails, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.aggregateDetails(ctx, nil)
}

// FindByRoomOrTenant returns the bookings that hold either the room or the tenant.
func (r *mongoBookingRepository) FindByRoomOrTenant(ctx context.Context, roomID, tenantID primitive.ObjectID) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"$or": bson.A{
			bson.M{"room_id": roomID},
			bson.M{"tenant_id": tenantID},
		},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings by room or tenant: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

// Update writes the mutable fields of booking.
func (r *mongoBookingRepository) Update(ctx context.Context, id string, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"room_id":      booking.Room,
			"tenant_id":    booking.Tenant,
			"start_date":   booking.StartDate,
			"end_date":     booking.EndDate,
			"total_amount": booking.TotalAmount,
			"updated_at":   now,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrOccupied
		}
		return fmt.Errorf("failed to update booking: %w", err)
	}

	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	booking.UpdatedAt = &now
	return nil
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOneAndDelete(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func (r *mongoBookingRepository) aggregateDetails(ctx context.Context, match bson.D) ([]*model.BookingDetails, error) {
	cursor, err := r.collection.Aggregate(ctx, detailsPipeline(match))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bookings: %w", err)
	}
	defer cursor.Close(ctx)

	details := []*model.BookingDetails{}
	if err = cursor.All(ctx, &details); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return details, nil
}

func detailsPipeline(match bson.D) mongo.Pipeline {
	pipeline := mongo.Pipeline{}
	if match != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}

	return append(pipeline,
		lookupStage(roomsrepo.CollectionName, "room_id", "room"),
		unwindStage("room"),
		lookupStage(tenantsrepo.CollectionName, "tenant_id", "tenant"),
		unwindStage("tenant"),
		bson.D{{Key: "$sort", Value: bson.D{{Key: "start_date", Value: 1}}}},
	)
}

func lookupStage(from, localField, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: as},
	}}}
}

func unwindStage(field string) bson.D {
	return bson.D{{Key: "$unwind", Value: bson.D{
		{Key: "path", Value: "$" + field},
		{Key: "preserveNullAndEmptyArrays", Value: true},
	}}}
}
