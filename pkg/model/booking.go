package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking is the stored form: room and tenant are references.
type Booking struct {
	ID          string             `json:"_id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Room        primitive.ObjectID `json:"room" bson:"room_id" validate:"required"`
	Tenant      primitive.ObjectID `json:"tenant" bson:"tenant_id" validate:"required"`
	StartDate   Date               `json:"startDate" bson:"start_date" validate:"required"`
	EndDate     Date               `json:"endDate" bson:"end_date" validate:"required,gtfield=StartDate"`
	TotalAmount Money              `json:"totalAmount" bson:"total_amount"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt   *time.Time         `json:"updatedAt,omitempty" bson:"updated_at,omitempty"`
}

// BookingDetails is a booking with its room and tenant resolved. Room or
// Tenant is nil when the referenced document no longer exists.
type BookingDetails struct {
	ID          string     `json:"_id" bson:"_id"`
	Room        *Room      `json:"room" bson:"room,omitempty"`
	Tenant      *Tenant    `json:"tenant" bson:"tenant,omitempty"`
	StartDate   Date       `json:"startDate" bson:"start_date"`
	EndDate     Date       `json:"endDate" bson:"end_date"`
	TotalAmount Money      `json:"totalAmount" bson:"total_amount"`
	CreatedAt   time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty" bson:"updated_at,omitempty"`
}

// BookingUpdate is the partial edit accepted by the API. It is turned into
// booking mutations before anything is written.
type BookingUpdate struct {
	Room        *primitive.ObjectID `json:"room,omitempty"`
	Tenant      *primitive.ObjectID `json:"tenant,omitempty"`
	StartDate   *Date               `json:"startDate,omitempty"`
	EndDate     *Date               `json:"endDate,omitempty"`
	TotalAmount *Money              `json:"totalAmount,omitempty"`
}

func (u *BookingUpdate) IsEmpty() bool {
	return u.Room == nil && u.Tenant == nil && u.StartDate == nil && u.EndDate == nil && u.TotalAmount == nil
}
