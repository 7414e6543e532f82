package admission

import (
	"errors"
	"testing"
	"time"

	"dormitory/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func days(n int) time.Time {
	return day0.AddDate(0, 0, n)
}

func booking(id string, room, tenant primitive.ObjectID) *model.Booking {
	return &model.Booking{ID: id, Room: room, Tenant: tenant, StartDate: model.NewDate(days(0)), EndDate: model.NewDate(days(30))}
}

func TestComputeTotal(t *testing.T) {
	rate := model.NewMoney(1000)

	tests := []struct {
		name string
		end  time.Time
		want int64
	}{
		{"exactly 30 days is one month", days(30), 1000},
		{"one day is a started month", days(1), 1000},
		{"31 days is two months", days(31), 2000},
		{"45 days is two months", days(45), 2000},
		{"60 days is two months", days(60), 2000},
		{"61 days is three months", days(61), 3000},
		// Same-day bookings are free; creation rejects them separately.
		{"0 days costs nothing", days(0), 0},
		{"inverted span costs nothing", days(-10), 0},
		{"partial day is floored", days(30).Add(23 * time.Hour), 1000},
		{"stay longer than a time.Duration is not capped", days(200000), 6667000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotal(day0, tt.end, rate)
			assert.True(t, got.Equal(model.NewMoney(tt.want)), "got %s, want %d", got, tt.want)
		})
	}
}

func TestDurationDays_LongSpans(t *testing.T) {
	start := time.Date(1000, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(9000, 1, 1, 0, 0, 0, 0, time.UTC)

	// 8000 years is twenty Gregorian 400-year cycles of 146097 days.
	assert.Equal(t, int64(20*146097), DurationDays(start, end))
}

func TestComputeTotal_DecimalRate(t *testing.T) {
	rate, err := model.ParseMoney("1250.75")
	require.NoError(t, err)

	got := ComputeTotal(day0, days(45), rate)
	assert.Equal(t, "2501.5", got.String())
}

func TestMonths(t *testing.T) {
	assert.Equal(t, int64(0), Months(-1))
	assert.Equal(t, int64(0), Months(0))
	assert.Equal(t, int64(1), Months(1))
	assert.Equal(t, int64(1), Months(30))
	assert.Equal(t, int64(2), Months(31))
}

func TestCheckAvailability(t *testing.T) {
	roomA, roomB := primitive.NewObjectID(), primitive.NewObjectID()
	tenantA, tenantB := primitive.NewObjectID(), primitive.NewObjectID()
	existing := []*model.Booking{booking("b1", roomA, tenantA)}

	tests := []struct {
		name        string
		candidate   Candidate
		excludeID   string
		unavailable []string
	}{
		{"both free", Candidate{Room: roomB, Tenant: tenantB}, "", nil},
		{"room taken", Candidate{Room: roomA, Tenant: tenantB}, "", []string{EntityRoom}},
		{"tenant taken", Candidate{Room: roomB, Tenant: tenantA}, "", []string{EntityTenant}},
		{"both taken", Candidate{Room: roomA, Tenant: tenantA}, "", []string{EntityRoom, EntityTenant}},
		{"own booking is excluded", Candidate{Room: roomA, Tenant: tenantA}, "b1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAvailability(tt.candidate, existing, tt.excludeID)
			if tt.unavailable == nil {
				assert.NoError(t, err)
				return
			}

			var conflict *ConflictError
			require.True(t, errors.As(err, &conflict), "expected ConflictError, got %v", err)
			assert.Equal(t, tt.unavailable, conflict.Unavailable)
		})
	}
}

func TestCheckAvailability_IgnoresDates(t *testing.T) {
	room, tenant := primitive.NewObjectID(), primitive.NewObjectID()
	existing := []*model.Booking{booking("b1", room, primitive.NewObjectID())}

	// A stay years after the existing booking is still blocked.
	err := CheckAvailability(Candidate{Room: room, Tenant: tenant, StartDate: days(1000), EndDate: days(1030)}, existing, "")

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{EntityRoom}, conflict.Unavailable)
	assert.Equal(t, "room already booked", conflict.Error())
}

func TestAdmit(t *testing.T) {
	room := &model.Room{ID: primitive.NewObjectID().Hex(), RatePerMonth: model.NewMoney(1000)}
	roomID, _ := primitive.ObjectIDFromHex(room.ID)
	tenant := primitive.NewObjectID()

	t.Run("accepted booking carries the derived total", func(t *testing.T) {
		b, err := Admit(Candidate{Room: roomID, Tenant: tenant, StartDate: days(0), EndDate: days(45)}, nil, room)
		require.NoError(t, err)
		assert.Equal(t, "2000", b.TotalAmount.String())
		assert.Equal(t, roomID, b.Room)
		assert.Equal(t, tenant, b.Tenant)
	})

	t.Run("same-day stay is rejected", func(t *testing.T) {
		_, err := Admit(Candidate{Room: roomID, Tenant: tenant, StartDate: days(0), EndDate: days(0)}, nil, room)
		assert.ErrorIs(t, err, ErrInvalidSchedule)
	})

	t.Run("occupied room is rejected", func(t *testing.T) {
		existing := []*model.Booking{booking("b1", roomID, primitive.NewObjectID())}
		_, err := Admit(Candidate{Room: roomID, Tenant: tenant, StartDate: days(0), EndDate: days(10)}, existing, room)

		var conflict *ConflictError
		assert.ErrorAs(t, err, &conflict)
	})
}

// Book, get rejected for the same room, free it, book again.
func TestAdmit_Scenario(t *testing.T) {
	room := &model.Room{ID: primitive.NewObjectID().Hex(), RatePerMonth: model.NewMoney(1000)}
	roomID, _ := primitive.ObjectIDFromHex(room.ID)
	first, second := primitive.NewObjectID(), primitive.NewObjectID()

	var stored []*model.Booking

	b1, err := Admit(Candidate{Room: roomID, Tenant: first, StartDate: days(0), EndDate: days(45)}, stored, room)
	require.NoError(t, err)
	assert.Equal(t, "2000", b1.TotalAmount.String())
	b1.ID = "b1"
	stored = append(stored, b1)

	_, err = Admit(Candidate{Room: roomID, Tenant: second, StartDate: days(50), EndDate: days(80)}, stored, room)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Unavailable, EntityRoom)

	stored = stored[:0]

	b2, err := Admit(Candidate{Room: roomID, Tenant: second, StartDate: days(50), EndDate: days(80)}, stored, room)
	require.NoError(t, err)
	assert.Equal(t, "1000", b2.TotalAmount.String())
}

func TestAvailableRooms(t *testing.T) {
	r1, r2, r3 := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	rooms := []*model.Room{{ID: r1.Hex()}, {ID: r2.Hex()}, {ID: r3.Hex()}}

	assert.Equal(t, 3, AvailableRooms(rooms, nil))

	bookings := []*model.Booking{
		booking("b1", r1, primitive.NewObjectID()),
		booking("b2", r1, primitive.NewObjectID()),
		booking("b3", r3, primitive.NewObjectID()),
	}
	assert.Equal(t, 1, AvailableRooms(rooms, bookings))
	assert.Equal(t, 0, AvailableRooms(nil, bookings))
}
