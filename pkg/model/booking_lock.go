package model

import "time"

// BookingLock is an advisory lock on a room or tenant, held while a booking
// that references it is being admitted. Keys look like "room:<id>". Owner
// identifies the acquiring request; only the owner may release the lock.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func RoomLockKey(roomID string) string {
	return "room:" + roomID
}

func TenantLockKey(tenantID string) string {
	return "tenant:" + tenantID
}
