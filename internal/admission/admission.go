// Package admission decides whether a booking may be accepted and what it costs.
//
// Occupancy is coarse: a room or tenant referenced by any booking is unavailable
// until that booking is deleted, regardless of dates.
package admission

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dormitory/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DaysPerMonth = 30
	day          = 24 * time.Hour
)

const (
	EntityRoom   = "room"
	EntityTenant = "tenant"
)

var ErrInvalidSchedule = errors.New("start date must be before end date")

// Candidate is a booking request awaiting admission.
type Candidate struct {
	Room      primitive.ObjectID
	Tenant    primitive.ObjectID
	StartDate time.Time
	EndDate   time.Time
}

// ConflictError lists every entity that blocks a candidate.
type ConflictError struct {
	Unavailable []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already booked", strings.Join(e.Unavailable, " and "))
}

// CheckAvailability returns a *ConflictError when the candidate's room or tenant
// is referenced by a booking in existing. The booking with id excludeID, if any,
// is ignored so a booking never conflicts with itself.
func CheckAvailability(candidate Candidate, existing []*model.Booking, excludeID string) error {
	roomTaken, tenantTaken := false, false

	for _, b := range existing {
		if b == nil || (excludeID != "" && b.ID == excludeID) {
			continue
		}
		if b.Room == candidate.Room {
			roomTaken = true
		}
		if b.Tenant == candidate.Tenant {
			tenantTaken = true
		}
	}

	var unavailable []string
	if roomTaken {
		unavailable = append(unavailable, EntityRoom)
	}
	if tenantTaken {
		unavailable = append(unavailable, EntityTenant)
	}
	if len(unavailable) > 0 {
		return &ConflictError{Unavailable: unavailable}
	}
	return nil
}

// DurationDays is the number of whole days between start and end; negative
// spans are reported as zero. Millisecond arithmetic keeps spans longer than
// time.Duration can hold exact.
func DurationDays(start, end time.Time) int64 {
	if !end.After(start) {
		return 0
	}
	return (end.UnixMilli() - start.UnixMilli()) / day.Milliseconds()
}

// Months rounds days up to whole 30-day months.
func Months(days int64) int64 {
	if days <= 0 {
		return 0
	}
	return (days + DaysPerMonth - 1) / DaysPerMonth
}

// ComputeTotal charges ratePerMonth for every started month of the stay.
// A same-day or inverted stay costs nothing.
func ComputeTotal(start, end time.Time, ratePerMonth model.Money) model.Money {
	return ratePerMonth.Times(Months(DurationDays(start, end)))
}

// ValidateSchedule rejects stays that do not end after they start.
func ValidateSchedule(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return ErrInvalidSchedule
	}
	return nil
}

// Admit runs the full acceptance path for a new booking: the schedule must be
// valid and both the room and the tenant free. On success the booking is
// returned with its derived total.
func Admit(candidate Candidate, existing []*model.Booking, room *model.Room) (*model.Booking, error) {
	if err := ValidateSchedule(candidate.StartDate, candidate.EndDate); err != nil {
		return nil, err
	}
	if err := CheckAvailability(candidate, existing, ""); err != nil {
		return nil, err
	}

	return &model.Booking{
		Room:        candidate.Room,
		Tenant:      candidate.Tenant,
		StartDate:   model.NewDate(candidate.StartDate),
		EndDate:     model.NewDate(candidate.EndDate),
		TotalAmount: ComputeTotal(candidate.StartDate, candidate.EndDate, room.RatePerMonth),
	}, nil
}

// AvailableRooms counts rooms that no booking references.
func AvailableRooms(rooms []*model.Room, bookings []*model.Booking) int {
	occupied := make(map[string]struct{}, len(bookings))
	for _, b := range bookings {
		if b != nil {
			occupied[b.Room.Hex()] = struct{}{}
		}
	}

	available := 0
	for _, r := range rooms {
		if _, taken := occupied[r.ID]; !taken {
			available++
		}
	}
	return available
}
