//go:build integration

package testutil

import (
	"fmt"
	"testing"

	"dormitory/pkg/model"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
)

var faker = gofakeit.New(0)

func RoomPayload(roomNo int, rate int64) map[string]any {
	return map[string]any{
		"roomNo":       roomNo,
		"roomName":     fmt.Sprintf("%s %d", faker.Noun(), roomNo),
		"description":  faker.Sentence(6),
		"ratePerMonth": rate,
	}
}

func TenantPayload() map[string]any {
	first, last := faker.FirstName(), faker.LastName()
	return map[string]any{
		"lastName":  last,
		"fullName":  first + " " + last,
		"age":       faker.IntRange(18, 60),
		"contactNo": "+1" + faker.Numerify("555#######"),
		"address":   faker.City(),
	}
}

func BookingPayload(roomID, tenantID, start, end string) map[string]any {
	return map[string]any{
		"room":      roomID,
		"tenant":    tenantID,
		"startDate": start,
		"endDate":   end,
	}
}

// CreateRoom posts a room and returns it as stored.
func CreateRoom(t *testing.T, c *Client, roomNo int, rate int64) model.Room {
	t.Helper()
	resp := c.POST(t, "/addRoom", RoomPayload(roomNo, rate))
	AssertStatusCode(t, resp, 201)

	var room model.Room
	require.NoError(t, resp.UnmarshalJSON(&room))
	return room
}

func CreateTenant(t *testing.T, c *Client) model.Tenant {
	t.Helper()
	resp := c.POST(t, "/addTenant", TenantPayload())
	AssertStatusCode(t, resp, 201)

	var tenant model.Tenant
	require.NoError(t, resp.UnmarshalJSON(&tenant))
	return tenant
}
