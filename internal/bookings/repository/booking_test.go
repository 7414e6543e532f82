package repository

import (
	"context"
	"testing"
	"time"

	bookingserrors "dormitory/internal/bookings/errors"
	"dormitory/pkg/config"
	"dormitory/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const ns = "DormitoryDB.bookings"

var (
	start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end   = start.AddDate(0, 0, 45)
)

func testConfig() *config.Config {
	return &config.Config{ReadTimeout: time.Second, WriteTimeout: time.Second}
}

func bookingDoc(id, room, tenant primitive.ObjectID) bson.D {
	total, _ := primitive.ParseDecimal128("2000")
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "room_id", Value: room},
		{Key: "tenant_id", Value: tenant},
		{Key: "start_date", Value: primitive.NewDateTimeFromTime(start)},
		{Key: "end_date", Value: primitive.NewDateTimeFromTime(end)},
		{Key: "total_amount", Value: total},
		{Key: "created_at", Value: primitive.NewDateTimeFromTime(start)},
	}
}

func detailsDoc(id primitive.ObjectID, room, tenant bson.D) bson.D {
	doc := bson.D{
		{Key: "_id", Value: id},
		{Key: "start_date", Value: primitive.NewDateTimeFromTime(start)},
		{Key: "end_date", Value: primitive.NewDateTimeFromTime(end)},
		{Key: "total_amount", Value: 2000.0},
	}
	if room != nil {
		doc = append(doc, bson.E{Key: "room", Value: room})
	}
	if tenant != nil {
		doc = append(doc, bson.E{Key: "tenant", Value: tenant})
	}
	return doc
}

func TestCreate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assigns id", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		booking := &model.Booking{
			Room:        primitive.NewObjectID(),
			Tenant:      primitive.NewObjectID(),
			StartDate:   model.NewDate(start),
			EndDate:     model.NewDate(end),
			TotalAmount: model.NewMoney(2000),
		}
		require.NoError(mt, repo.Create(context.Background(), booking))

		assert.Len(mt, booking.ID, 24)
		assert.False(mt, booking.CreatedAt.IsZero())
	})

	mt.Run("unique index rejection maps to occupied", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: DormitoryDB.bookings index: room_id_1",
		}))

		err := repo.Create(context.Background(), &model.Booking{Room: primitive.NewObjectID(), Tenant: primitive.NewObjectID()})
		assert.ErrorIs(mt, err, bookingserrors.ErrOccupied)
	})
}

func TestFindByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	id, room, tenant := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	mt.Run("decodes stored references", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bookingDoc(id, room, tenant)))

		booking, err := repo.FindByID(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), booking.ID)
		assert.Equal(mt, room, booking.Room)
		assert.Equal(mt, tenant, booking.Tenant)
		assert.True(mt, booking.StartDate.Equal(start))
		assert.Equal(mt, "2000", booking.TotalAmount.String())
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), id.Hex())
		assert.ErrorIs(mt, err, bookingserrors.ErrNotFound)
	})

	mt.Run("invalid id", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testConfig())

		_, err := repo.FindByID(context.Background(), "xyz")
		assert.ErrorIs(mt, err, bookingserrors.ErrInvalidID)
	})
}

func TestFindDetails(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	id := primitive.NewObjectID()
	room := bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "room_no", Value: int32(101)}, {Key: "room_name", Value: "Sampaguita"}}
	tenant := bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "last_name", Value: "Reyes"}, {Key: "full_name", Value: "Juan Reyes"}}

	mt.Run("resolves room and tenant", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, detailsDoc(id, room, tenant)))

		details, err := repo.FindDetailsByID(context.Background(), id.Hex())
		require.NoError(mt, err)
		require.NotNil(mt, details.Room)
		require.NotNil(mt, details.Tenant)
		assert.Equal(mt, "Sampaguita", details.Room.RoomName)
		assert.Equal(mt, "Juan Reyes", details.Tenant.FullName)
	})

	mt.Run("empty aggregation is not found", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindDetailsByID(context.Background(), id.Hex())
		assert.ErrorIs(mt, err, bookingserrors.ErrNotFound)
	})

	mt.Run("deleted tenant resolves to nil", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			detailsDoc(id, room, tenant),
			detailsDoc(primitive.NewObjectID(), room, nil),
		))

		all, err := repo.FindAllDetails(context.Background())
		require.NoError(mt, err)
		require.Len(mt, all, 2)
		assert.NotNil(mt, all[1].Room)
		assert.Nil(mt, all[1].Tenant)
	})
}

func TestDetailsPipeline(t *testing.T) {
	id := primitive.NewObjectID()

	all := detailsPipeline(nil)
	byID := detailsPipeline(bson.D{{Key: "_id", Value: id}})

	assert.Len(t, all, 5)
	assert.Len(t, byID, 6)
	assert.Equal(t, "$match", byID[0][0].Key)

	lookup := all[0][0].Value.(bson.D)
	assert.Contains(t, lookup, bson.E{Key: "from", Value: "rooms"})
	assert.Contains(t, lookup, bson.E{Key: "localField", Value: "room_id"})

	unwind := all[3][0].Value.(bson.D)
	assert.Contains(t, unwind, bson.E{Key: "preserveNullAndEmptyArrays", Value: true})
}

func TestFindByRoomOrTenant(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	room, tenant := primitive.NewObjectID(), primitive.NewObjectID()

	mt.Run("returns holders of either side", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bookingDoc(primitive.NewObjectID(), room, primitive.NewObjectID()),
			bookingDoc(primitive.NewObjectID(), primitive.NewObjectID(), tenant),
		))

		bookings, err := repo.FindByRoomOrTenant(context.Background(), room, tenant)
		require.NoError(mt, err)
		require.Len(mt, bookings, 2)
		assert.Equal(mt, room, bookings[0].Room)
		assert.Equal(mt, tenant, bookings[1].Tenant)
	})

	mt.Run("nothing holds them", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		bookings, err := repo.FindByRoomOrTenant(context.Background(), room, tenant)
		require.NoError(mt, err)
		assert.Empty(mt, bookings)
	})
}

func TestUpdate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	id := primitive.NewObjectID()

	booking := func() *model.Booking {
		return &model.Booking{
			Room:        primitive.NewObjectID(),
			Tenant:      primitive.NewObjectID(),
			StartDate:   model.NewDate(start),
			EndDate:     model.NewDate(end),
			TotalAmount: model.NewMoney(2000),
		}
	}

	mt.Run("stamps updated time", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testConfig())
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}, {Key: "nModified", Value: 1}})

		b := booking()
		require.NoError(mt, repo.Update(context.Background(), id.Hex(), b))
		assert.NotNil(mt, b.UpdatedAt)
	})

	mt.Run("no match", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testConfig())
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})

		err := repo.Update(context.Background(), id.Hex(), booking())
		assert.ErrorIs(mt, err, bookingserrors.ErrNotFound)
	})

	mt.Run("reassignment onto a held room", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: DormitoryDB.bookings index: room_id_1",
		}))

		err := repo.Update(context.Background(), id.Hex(), booking())
		assert.ErrorIs(mt, err, bookingserrors.ErrOccupied)
	})
}

func TestDelete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	id := primitive.NewObjectID()

	mt.Run("returns the removed booking", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bookingDoc(id, primitive.NewObjectID(), primitive.NewObjectID())}))

		booking, err := repo.Delete(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), booking.ID)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewMongoBookingRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.Delete(context.Background(), id.Hex())
		assert.ErrorIs(mt, err, bookingserrors.ErrNotFound)
	})
}

func TestAcquireLock(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	key := model.RoomLockKey(primitive.NewObjectID().Hex())
	duplicate := mtest.CreateWriteErrorsResponse(mtest.WriteError{
		Index:   0,
		Code:    11000,
		Message: "E11000 duplicate key error collection: DormitoryDB.booking_locks index: _id_",
	})

	mt.Run("free key", func(mt *mtest.T) {
		repo := NewBookingLockRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		lock, err := repo.Acquire(context.Background(), key, 10*time.Second)
		require.NoError(mt, err)
		assert.Equal(mt, key, lock.ID)
		assert.Len(mt, lock.Owner, 36)
		assert.Equal(mt, 10*time.Second, lock.ExpiresAt.Sub(lock.CreatedAt))
	})

	mt.Run("held key", func(mt *mtest.T) {
		repo := NewBookingLockRepository(mt.DB, testConfig())
		mt.AddMockResponses(duplicate, bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}})

		_, err := repo.Acquire(context.Background(), key, 10*time.Second)
		assert.ErrorIs(mt, err, bookingserrors.ErrLockHeld)
	})

	mt.Run("expired key is taken over", func(mt *mtest.T) {
		repo := NewBookingLockRepository(mt.DB, testConfig())
		mt.AddMockResponses(duplicate, bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}}, mtest.CreateSuccessResponse())

		lock, err := repo.Acquire(context.Background(), key, 10*time.Second)
		require.NoError(mt, err)
		assert.Equal(mt, key, lock.ID)
	})

	mt.Run("release is scoped to the owner", func(mt *mtest.T) {
		repo := NewBookingLockRepository(mt.DB, testConfig())
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}})

		lock := &model.BookingLock{ID: key, Owner: "owner-a"}
		require.NoError(mt, repo.Release(context.Background(), lock))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		require.Equal(mt, "delete", started.CommandName)
		assert.Equal(mt, key, started.Command.Lookup("deletes", "0", "q", "_id").StringValue())
		assert.Equal(mt, "owner-a", started.Command.Lookup("deletes", "0", "q", "owner").StringValue())
	})
}
