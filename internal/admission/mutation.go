package admission

import (
	"errors"
	"time"

	"dormitory/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNoChanges      = errors.New("no fields to update")
	ErrMissingRef     = errors.New("room and tenant references cannot be empty")
	ErrNegativeAmount = errors.New("total amount cannot be negative")
)

// BookingMutation is one edit to an existing booking. The set of variants is
// closed; every edit goes through Plan so that reassignments are re-admitted.
type BookingMutation interface {
	mutate(b *model.Booking)
}

type ReassignRoom struct {
	Room primitive.ObjectID
}

type ReassignTenant struct {
	Tenant primitive.ObjectID
}

// Reschedule moves either or both ends of the stay; a nil end is kept.
type Reschedule struct {
	StartDate *time.Time
	EndDate   *time.Time
}

// SetTotalAmount overrides the stored charge. The amount is not re-derived.
type SetTotalAmount struct {
	Amount model.Money
}

func (m ReassignRoom) mutate(b *model.Booking) { b.Room = m.Room }
func (m ReassignTenant) mutate(b *model.Booking) { b.Tenant = m.Tenant }
func (m SetTotalAmount) mutate(b *model.Booking) { b.TotalAmount = m.Amount }

func (m Reschedule) mutate(b *model.Booking) {
	if m.StartDate != nil {
		b.StartDate = model.NewDate(*m.StartDate)
	}
	if m.EndDate != nil {
		b.EndDate = model.NewDate(*m.EndDate)
	}
}

// MutationsFrom converts a partial API update into mutations.
func MutationsFrom(update *model.BookingUpdate) ([]BookingMutation, error) {
	if update == nil || update.IsEmpty() {
		return nil, ErrNoChanges
	}

	var mutations []BookingMutation

	if update.Room != nil {
		if update.Room.IsZero() {
			return nil, ErrMissingRef
		}
		mutations = append(mutations, ReassignRoom{Room: *update.Room})
	}
	if update.Tenant != nil {
		if update.Tenant.IsZero() {
			return nil, ErrMissingRef
		}
		mutations = append(mutations, ReassignTenant{Tenant: *update.Tenant})
	}
	if update.StartDate != nil || update.EndDate != nil {
		r := Reschedule{}
		if update.StartDate != nil {
			r.StartDate = &update.StartDate.Time
		}
		if update.EndDate != nil {
			r.EndDate = &update.EndDate.Time
		}
		mutations = append(mutations, r)
	}
	if update.TotalAmount != nil {
		if update.TotalAmount.IsNegative() {
			return nil, ErrNegativeAmount
		}
		mutations = append(mutations, SetTotalAmount{Amount: *update.TotalAmount})
	}

	return mutations, nil
}

// Change is the result of planning mutations against a stored booking.
type Change struct {
	Booking       model.Booking
	RoomChanged   bool
	TenantChanged bool
	Rescheduled   bool
}

// NeedsAvailabilityCheck reports whether the edited booking must be re-admitted.
func (c *Change) NeedsAvailabilityCheck() bool {
	return c.RoomChanged || c.TenantChanged
}

func (c *Change) Candidate() Candidate {
	return Candidate{
		Room:      c.Booking.Room,
		Tenant:    c.Booking.Tenant,
		StartDate: c.Booking.StartDate.Time,
		EndDate:   c.Booking.EndDate.Time,
	}
}

// Plan applies mutations to a copy of current. A reschedule must leave the
// stay ending after it starts.
func Plan(current model.Booking, mutations []BookingMutation) (*Change, error) {
	if len(mutations) == 0 {
		return nil, ErrNoChanges
	}

	change := &Change{Booking: current}
	for _, m := range mutations {
		m.mutate(&change.Booking)
		if _, ok := m.(Reschedule); ok {
			change.Rescheduled = true
		}
	}

	change.RoomChanged = change.Booking.Room != current.Room
	change.TenantChanged = change.Booking.Tenant != current.Tenant

	if change.Rescheduled {
		if err := ValidateSchedule(change.Booking.StartDate.Time, change.Booking.EndDate.Time); err != nil {
			return nil, err
		}
	}

	return change, nil
}
