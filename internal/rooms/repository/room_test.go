package repository

import (
	"context"
	"testing"
	"time"

	roomserrors "dormitory/internal/rooms/errors"
	"dormitory/pkg/config"
	"dormitory/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const ns = "DormitoryDB.rooms"

func testConfig() *config.Config {
	return &config.Config{ReadTimeout: time.Second, WriteTimeout: time.Second}
}

func roomDoc(id primitive.ObjectID, no int32, name string, rate any) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "room_no", Value: no},
		{Key: "room_name", Value: name},
		{Key: "rate_per_month", Value: rate},
	}
}

func decimal(s string) primitive.Decimal128 {
	d, _ := primitive.ParseDecimal128(s)
	return d
}

func TestCreate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assigns id and creation time", func(mt *mtest.T) {
		repo := NewMongoRoomRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		room := &model.Room{RoomNo: 101, RoomName: "Sampaguita", RatePerMonth: model.NewMoney(1500)}
		require.NoError(mt, repo.Create(context.Background(), room))

		assert.Len(mt, room.ID, 24)
		assert.False(mt, room.CreatedAt.IsZero())
	})

	mt.Run("duplicate key", func(mt *mtest.T) {
		repo := NewMongoRoomRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: DormitoryDB.rooms index: room_no_1",
		}))

		err := repo.Create(context.Background(), &model.Room{RoomNo: 101, RoomName: "Sampaguita"})
		assert.ErrorIs(mt, err, roomserrors.ErrDuplicate)
	})
}

func TestFindByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	id := primitive.NewObjectID()

	mt.Run("found", func(mt *mtest.T) {
		repo := NewMongoRoomRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, roomDoc(id, 101, "Sampaguita", decimal("1500"))))

		room, err := repo.FindByID(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), room.ID)
		assert.EqualValues(mt, 101, room.RoomNo)
		assert.Equal(mt, "1500", room.RatePerMonth.String())
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewMongoRoomRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), id.Hex())
		assert.ErrorIs(mt, err, roomserrors.ErrNotFound)
	})

	mt.Run("invalid id never reaches the server", func(mt *mtest.T) {
		repo := NewMongoRoomRepository(mt.DB, testConfig())

		_, err := repo.FindByID(context.Background(), "not-an-id")
		assert.ErrorIs(mt, err, roomserrors.ErrInvalidID)
	})
}

func TestFindAll(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes every room including legacy numeric rates", func(mt *mtest.T) {
		repo := NewMongoRoomRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			roomDoc(primitive.NewObjectID(), 101, "Sampaguita", decimal("1500")),
			roomDoc(primitive.NewObjectID(), 102, "Ilang-Ilang", 1200.5),
		))

		rooms, err := repo.FindAll(context.Background())
		require.NoError(mt, err)
		require.Len(mt, rooms, 2)
		assert.Equal(mt, "Ilang-Ilang", rooms[1].RoomName)
		assert.Equal(mt, "1200.5", rooms[1].RatePerMonth.String())
	})

	mt.Run("empty collection returns an empty slice", func(mt *mtest.T) {
		repo := NewMongoRoomRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		rooms, err := repo.FindAll(context.Background())
		require.NoError(mt, err)
		assert.NotNil(mt, rooms)
		assert.Empty(mt, rooms)
	})
}

func TestFindDuplicates(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns clashing rooms", func(mt *mtest.T) {
		repo := NewMongoRoomRepository(mt.DB, testConfig())
		existing := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, roomDoc(existing, 101, "Other", decimal("1500"))))

		rooms, err := repo.FindDuplicates(context.Background(), 101, "Sampaguita", primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		require.Len(mt, rooms, 1)
		assert.Equal(mt, existing.Hex(), rooms[0].ID)
	})

	mt.Run("invalid exclude id", func(mt *mtest.T) {
		repo := NewMongoRoomRepository(mt.DB, testConfig())

		_, err := repo.FindDuplicates(context.Background(), 101, "Sampaguita", "bad")
		assert.ErrorIs(mt, err, roomserrors.ErrInvalidID)
	})
}

func TestUpdate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	id := primitive.NewObjectID()
	name := "Ilang-Ilang"

	mt.Run("returns the updated document", func(mt *mtest.T) {
		repo := NewMongoRoomRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: roomDoc(id, 101, name, decimal("1500"))}))

		room, err := repo.Update(context.Background(), id.Hex(), &model.RoomUpdate{RoomName: &name})
		require.NoError(mt, err)
		assert.Equal(mt, name, room.RoomName)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewMongoRoomRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.Update(context.Background(), id.Hex(), &model.RoomUpdate{RoomName: &name})
		assert.ErrorIs(mt, err, roomserrors.ErrNotFound)
	})
}

func TestDelete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	id := primitive.NewObjectID()

	mt.Run("returns the removed document", func(mt *mtest.T) {
		repo := NewMongoRoomRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: roomDoc(id, 101, "Sampaguita", decimal("1500"))}))

		room, err := repo.Delete(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), room.ID)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewMongoRoomRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.Delete(context.Background(), id.Hex())
		assert.ErrorIs(mt, err, roomserrors.ErrNotFound)
	})
}

func TestCount(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("counts documents", func(mt *mtest.T) {
		repo := NewMongoRoomRepository(mt.DB, testConfig())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(3)}}))

		count, err := repo.Count(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), count)
	})
}
