package model

import "time"

type Room struct {
	ID           string     `json:"_id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomNo       FlexInt    `json:"roomNo" bson:"room_no" validate:"required,min=1,max=99999"`
	RoomName     string     `json:"roomName" bson:"room_name" validate:"required,min=1,max=100"`
	Description  string     `json:"description" bson:"description" validate:"max=500"`
	RatePerMonth Money      `json:"ratePerMonth" bson:"rate_per_month" validate:"required,gt=0"`
	CreatedAt    time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty" bson:"updated_at,omitempty"`
}

// RoomUpdate is a partial edit; nil fields are left untouched.
type RoomUpdate struct {
	RoomNo       *FlexInt `json:"roomNo,omitempty" validate:"omitempty,min=1,max=99999"`
	RoomName     *string  `json:"roomName,omitempty" validate:"omitempty,min=1,max=100"`
	Description  *string  `json:"description,omitempty" validate:"omitempty,max=500"`
	RatePerMonth *Money   `json:"ratePerMonth,omitempty" validate:"omitempty,gt=0"`
}

func (u *RoomUpdate) IsEmpty() bool {
	return u.RoomNo == nil && u.RoomName == nil && u.Description == nil && u.RatePerMonth == nil
}

// Apply returns a copy of room with the update merged in.
func (u *RoomUpdate) Apply(room Room) Room {
	if u.RoomNo != nil {
		room.RoomNo = *u.RoomNo
	}
	if u.RoomName != nil {
		room.RoomName = *u.RoomName
	}
	if u.Description != nil {
		room.Description = *u.Description
	}
	if u.RatePerMonth != nil {
		room.RatePerMonth = *u.RatePerMonth
	}
	return room
}
