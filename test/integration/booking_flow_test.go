//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"dormitory/pkg/model"
	"dormitory/test/integration/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*testutil.MongoHelper, *testutil.Client) {
	t.Helper()
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	t.Cleanup(func() { env.Cleanup(t, mongo) })
	return mongo, client
}

func TestBookingFlow(t *testing.T) {
	_, client := setup(t)

	room := testutil.CreateRoom(t, client, 101, 1000)
	tenant := testutil.CreateTenant(t, client)
	other := testutil.CreateTenant(t, client)

	resp := client.POST(t, "/addBooking", testutil.BookingPayload(room.ID, tenant.ID, "2024-01-01", "2024-02-15"))
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var created model.BookingDetails
	require.NoError(t, resp.UnmarshalJSON(&created))
	assert.Equal(t, "2000", created.TotalAmount.String())
	require.NotNil(t, created.Room)
	assert.Equal(t, room.RoomNo, created.Room.RoomNo)

	t.Run("room already occupied", func(t *testing.T) {
		resp := client.POST(t, "/addBooking", testutil.BookingPayload(room.ID, other.ID, "2024-03-01", "2024-03-10"))
		testutil.AssertStatusCode(t, resp, http.StatusConflict)
		assert.Equal(t, "CONFLICT", resp.ErrorCode())
	})

	t.Run("dashboard reflects occupancy", func(t *testing.T) {
		resp := client.GET(t, "/getDashboard")
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var dashboard model.Dashboard
		require.NoError(t, resp.UnmarshalJSON(&dashboard))
		assert.Equal(t, 1, dashboard.TotalRooms)
		assert.Equal(t, 0, dashboard.AvailableRooms)
		assert.EqualValues(t, 1, dashboard.TotalBookings)
	})

	t.Run("delete frees the room", func(t *testing.T) {
		resp := client.DELETE(t, "/deleteBooking/"+created.ID)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		resp = client.POST(t, "/addBooking", testutil.BookingPayload(room.ID, other.ID, "2024-03-01", "2024-03-10"))
		testutil.AssertStatusCode(t, resp, http.StatusCreated)
	})
}

func TestBookingFlow_UnknownRoom(t *testing.T) {
	_, client := setup(t)

	tenant := testutil.CreateTenant(t, client)
	resp := client.POST(t, "/addBooking", testutil.BookingPayload("65a1b2c3d4e5f60718293a4b", tenant.ID, "2024-01-01", "2024-01-31"))
	testutil.AssertStatusCode(t, resp, http.StatusNotFound)
}

func TestBookingFlow_ConcurrentAdmission(t *testing.T) {
	mongo, client := setup(t)

	room := testutil.CreateRoom(t, client, 202, 1500)
	const attempts = 5
	tenants := make([]model.Tenant, attempts)
	for i := range tenants {
		tenants[i] = testutil.CreateTenant(t, client)
	}

	var wg sync.WaitGroup
	statuses := make([]int, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := client.POST(t, "/addBooking", testutil.BookingPayload(room.ID, tenants[i].ID, "2024-05-01", "2024-06-01"))
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	created := 0
	for i, status := range statuses {
		switch status {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
		default:
			t.Errorf("attempt %d: unexpected status %d", i, status)
		}
	}
	assert.Equal(t, 1, created, fmt.Sprintf("statuses: %v", statuses))
	assert.EqualValues(t, 1, mongo.CountDocuments(t, testutil.BookingsCollection))
}
