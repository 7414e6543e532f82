package mongo

import (
	"context"
	"fmt"
	"time"

	"dormitory/internal/admission"
	bookingsrepo "dormitory/internal/bookings/repository"
	roomsrepo "dormitory/internal/rooms/repository"
	tenantsrepo "dormitory/internal/tenants/repository"
	"dormitory/pkg/config"
	"dormitory/pkg/model"

	"github.com/brianvoe/gofakeit/v7"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type SeedOptions struct {
	Rooms    int
	Tenants  int
	Bookings int
	Seed     uint64
}

type SeedResult struct {
	Rooms    int
	Tenants  int
	Bookings int
}

// Seed inserts demo rooms and tenants, then books the first rooms to the first
// tenants so that occupancy rules hold. Bookings are capped by both counts.
func Seed(ctx context.Context, db *mongo.Database, cfg *config.Config, opts SeedOptions) (SeedResult, error) {
	faker := gofakeit.New(opts.Seed)
	rooms := roomsrepo.NewMongoRoomRepository(db, cfg)
	tenants := tenantsrepo.NewMongoTenantRepository(db, cfg)
	bookings := bookingsrepo.NewMongoBookingRepository(db, cfg)

	var result SeedResult

	seededRooms := make([]*model.Room, 0, opts.Rooms)
	for i := range opts.Rooms {
		room := fakeRoom(faker, i+1)
		if err := rooms.Create(ctx, room); err != nil {
			return result, fmt.Errorf("failed to seed room %d: %w", room.RoomNo, err)
		}
		seededRooms = append(seededRooms, room)
		result.Rooms++
	}

	seededTenants := make([]*model.Tenant, 0, opts.Tenants)
	for range opts.Tenants {
		tenant := fakeTenant(faker)
		if err := tenants.Create(ctx, tenant); err != nil {
			return result, fmt.Errorf("failed to seed tenant %s: %w", tenant.FullName, err)
		}
		seededTenants = append(seededTenants, tenant)
		result.Tenants++
	}

	n := min(opts.Bookings, len(seededRooms), len(seededTenants))
	for i := range n {
		booking, err := fakeBooking(faker, seededRooms[i], seededTenants[i])
		if err != nil {
			return result, err
		}
		if err := bookings.Create(ctx, booking); err != nil {
			return result, fmt.Errorf("failed to seed booking for room %d: %w", seededRooms[i].RoomNo, err)
		}
		result.Bookings++
	}

	cfg.Log.Info("Seeded demo data",
		"rooms", result.Rooms,
		"tenants", result.Tenants,
		"bookings", result.Bookings,
	)
	return result, nil
}

func fakeRoom(faker *gofakeit.Faker, roomNo int) *model.Room {
	return &model.Room{
		RoomNo:       model.FlexInt(roomNo),
		RoomName:     fmt.Sprintf("%s %d", faker.Noun(), roomNo),
		Description:  faker.Sentence(8),
		RatePerMonth: model.NewMoney(int64(faker.IntRange(20, 80) * 100)),
	}
}

func fakeTenant(faker *gofakeit.Faker) *model.Tenant {
	first, last := faker.FirstName(), faker.LastName()
	return &model.Tenant{
		LastName:  last,
		FullName:  first + " " + last,
		Age:       model.FlexInt(faker.IntRange(18, 65)),
		ContactNo: model.Phone("+1" + faker.Numerify("555#######")),
		Address:   faker.Street() + ", " + faker.City(),
	}
}

func fakeBooking(faker *gofakeit.Faker, room *model.Room, tenant *model.Tenant) (*model.Booking, error) {
	roomID, err := primitive.ObjectIDFromHex(room.ID)
	if err != nil {
		return nil, fmt.Errorf("seeded room has no id: %w", err)
	}
	tenantID, err := primitive.ObjectIDFromHex(tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("seeded tenant has no id: %w", err)
	}

	start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -faker.IntRange(0, 60))
	end := start.AddDate(0, 0, faker.IntRange(30, 180))

	return &model.Booking{
		Room:        roomID,
		Tenant:      tenantID,
		StartDate:   model.NewDate(start),
		EndDate:     model.NewDate(end),
		TotalAmount: admission.ComputeTotal(start, end, room.RatePerMonth),
	}, nil
}
