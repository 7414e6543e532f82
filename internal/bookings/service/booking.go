package service

import (
	"context"
	"errors"
	"strings"

	"dormitory/internal/admission"
	bookingserrors "dormitory/internal/bookings/errors"
	"dormitory/internal/bookings/repository"
	"dormitory/internal/bookings/validator"
	roomserrors "dormitory/internal/rooms/errors"
	roomsrepo "dormitory/internal/rooms/repository"
	tenantserrors "dormitory/internal/tenants/errors"
	tenantsrepo "dormitory/internal/tenants/repository"
	"dormitory/pkg/config"
	apperrors "dormitory/pkg/errors"
	"dormitory/pkg/events"
	"dormitory/pkg/metrics"
	"dormitory/pkg/model"
	"dormitory/pkg/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) (*model.BookingDetails, error)
	GetByID(ctx context.Context, id string) (*model.BookingDetails, error)
	GetAll(ctx context.Context) ([]*model.BookingDetails, error)
	Update(ctx context.Context, id string, update *model.BookingUpdate) (*model.BookingDetails, error)
	Delete(ctx context.Context, id string) (*model.Booking, error)
	Recompute(ctx context.Context, id string) (*model.BookingDetails, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	rooms     roomsrepo.RoomRepository
	tenants   tenantsrepo.TenantRepository
	validator *validator.BookingValidator
	events    events.Publisher
	metrics   *metrics.Metrics
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	rooms roomsrepo.RoomRepository,
	tenants tenantsrepo.TenantRepository,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	m *metrics.Metrics,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		rooms:     rooms,
		tenants:   tenants,
		validator: validator,
		events:    publisher,
		metrics:   m,
		cfg:       cfg,
	}
}

// Create admits a new booking. The room and tenant must exist and neither may
// be referenced by another booking; the total is derived from the room's rate.
func (s *bookingService) Create(ctx context.Context, booking *model.Booking) (*model.BookingDetails, error) {
	booking.ID = ""

	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed",
			"room", booking.Room.Hex(),
			"tenant", booking.Tenant.Hex(),
			"error", err,
		)
		s.metrics.ObserveAdmission(metrics.OutcomeInvalid)
		return nil, validationError(err)
	}

	room, tenant, err := s.resolve(ctx, booking.Room, booking.Tenant)
	if err != nil {
		return nil, err
	}

	release, err := s.acquireLocks(ctx, model.RoomLockKey(booking.Room.Hex()), model.TenantLockKey(booking.Tenant.Hex()))
	if err != nil {
		return nil, err
	}
	defer release()

	candidate := admission.Candidate{
		Room:      booking.Room,
		Tenant:    booking.Tenant,
		StartDate: booking.StartDate.Time,
		EndDate:   booking.EndDate.Time,
	}

	var created *model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByRoomOrTenant(sessCtx, candidate.Room, candidate.Tenant)
		if err != nil {
			return apperrors.Internal("Failed to check existing bookings", err)
		}

		admitted, err := admission.Admit(candidate, existing, room)
		if err != nil {
			return s.admissionError(err)
		}

		if err := s.repo.Create(sessCtx, admitted); err != nil {
			return s.writeError(err, "Failed to create booking")
		}
		created = admitted
		return nil
	})
	if err != nil {
		return nil, s.transactionError(err, "Failed to create booking")
	}

	s.metrics.ObserveAdmission(metrics.OutcomeAdmitted)
	s.cfg.Log.Info("Booking created successfully",
		"id", created.ID,
		"room", created.Room.Hex(),
		"tenant", created.Tenant.Hex(),
		"total_amount", created.TotalAmount.String(),
	)
	s.publish(ctx, events.BookingCreated, created)

	*booking = *created
	return details(created, room, tenant), nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.BookingDetails, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindDetailsByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve booking")
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context) ([]*model.BookingDetails, error) {
	bookings, err := s.repo.FindAllDetails(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to get all bookings", "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

// Update applies a partial edit. Moving a booking to another room or tenant is
// re-admitted against every other booking; dates and amount are written as given.
func (s *bookingService) Update(ctx context.Context, id string, update *model.BookingUpdate) (*model.BookingDetails, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return nil, validationError(err)
	}

	mutations, err := admission.MutationsFrom(update)
	if err != nil {
		return nil, mutationError(err)
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to check booking existence")
	}

	change, err := admission.Plan(*current, mutations)
	if err != nil {
		s.cfg.Log.Warn("Booking update rejected", "id", id, "error", err)
		return nil, mutationError(err)
	}

	if change.NeedsAvailabilityCheck() {
		if err := s.reassign(ctx, id, change); err != nil {
			return nil, err
		}
	} else if err := s.repo.Update(ctx, id, &change.Booking); err != nil {
		return nil, s.mapRepoError(err, id, "Failed to update booking")
	}

	s.cfg.Log.Info("Booking updated successfully",
		"id", id,
		"room_changed", change.RoomChanged,
		"tenant_changed", change.TenantChanged,
		"rescheduled", change.Rescheduled,
	)
	s.publish(ctx, events.BookingUpdated, &change.Booking)

	return s.GetByID(ctx, id)
}

// reassign re-runs admission for a booking whose room or tenant changed.
func (s *bookingService) reassign(ctx context.Context, id string, change *admission.Change) error {
	var roomID, tenantID primitive.ObjectID
	if change.RoomChanged {
		roomID = change.Booking.Room
	}
	if change.TenantChanged {
		tenantID = change.Booking.Tenant
	}
	if _, _, err := s.resolve(ctx, roomID, tenantID); err != nil {
		return err
	}

	var keys []string
	if change.RoomChanged {
		keys = append(keys, model.RoomLockKey(change.Booking.Room.Hex()))
	}
	if change.TenantChanged {
		keys = append(keys, model.TenantLockKey(change.Booking.Tenant.Hex()))
	}
	release, err := s.acquireLocks(ctx, keys...)
	if err != nil {
		return err
	}
	defer release()

	candidate := change.Candidate()
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByRoomOrTenant(sessCtx, candidate.Room, candidate.Tenant)
		if err != nil {
			return apperrors.Internal("Failed to check existing bookings", err)
		}

		if err := admission.CheckAvailability(candidate, existing, id); err != nil {
			return s.admissionError(err)
		}

		if err := s.repo.Update(sessCtx, id, &change.Booking); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return s.writeError(err, "Failed to update booking")
		}
		return nil
	})
	if err != nil {
		return s.transactionError(err, "Failed to update booking")
	}

	s.metrics.ObserveAdmission(metrics.OutcomeAdmitted)
	return nil
}

// Delete removes the booking, freeing its room and tenant.
func (s *bookingService) Delete(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to delete booking")
	}

	s.cfg.Log.Info("Booking deleted successfully",
		"id", id,
		"room", booking.Room.Hex(),
		"tenant", booking.Tenant.Hex(),
	)
	s.publish(ctx, events.BookingDeleted, booking)

	return booking, nil
}

// Recompute re-derives the total from the booking's dates and the room's
// current rate.
func (s *bookingService) Recompute(ctx context.Context, id string) (*model.BookingDetails, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve booking")
	}

	room, err := s.rooms.FindByID(ctx, booking.Room.Hex())
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Room", booking.Room.Hex())
		}
		s.cfg.Log.Error("Failed to load booking room", "id", id, "room", booking.Room.Hex(), "error", err)
		return nil, apperrors.Internal("Failed to load booking room", err)
	}

	previous := booking.TotalAmount
	booking.TotalAmount = admission.ComputeTotal(booking.StartDate.Time, booking.EndDate.Time, room.RatePerMonth)

	if err := s.repo.Update(ctx, id, booking); err != nil {
		return nil, s.mapRepoError(err, id, "Failed to update booking")
	}

	s.cfg.Log.Info("Booking total recomputed",
		"id", id,
		"previous_amount", previous.String(),
		"total_amount", booking.TotalAmount.String(),
	)
	s.publish(ctx, events.BookingUpdated, booking)

	return s.GetByID(ctx, id)
}

// resolve loads the referenced room and tenant. A zero id is skipped. Every
// missing reference is reported in a single NotFound error.
func (s *bookingService) resolve(ctx context.Context, roomID, tenantID primitive.ObjectID) (*model.Room, *model.Tenant, error) {
	var (
		room    *model.Room
		tenant  *model.Tenant
		missing []string
		err     error
	)

	if !roomID.IsZero() {
		room, err = s.rooms.FindByID(ctx, roomID.Hex())
		if errors.Is(err, roomserrors.ErrNotFound) {
			missing = append(missing, admission.EntityRoom)
		} else if err != nil {
			s.cfg.Log.Error("Failed to load room", "room", roomID.Hex(), "error", err)
			return nil, nil, apperrors.Internal("Failed to check room existence", err)
		}
	}

	if !tenantID.IsZero() {
		tenant, err = s.tenants.FindByID(ctx, tenantID.Hex())
		if errors.Is(err, tenantserrors.ErrNotFound) {
			missing = append(missing, admission.EntityTenant)
		} else if err != nil {
			s.cfg.Log.Error("Failed to load tenant", "tenant", tenantID.Hex(), "error", err)
			return nil, nil, apperrors.Internal("Failed to check tenant existence", err)
		}
	}

	if len(missing) > 0 {
		s.cfg.Log.Warn("Booking references unknown records",
			"room", roomID.Hex(),
			"tenant", tenantID.Hex(),
			"missing", missing,
		)
		s.metrics.ObserveAdmission(metrics.OutcomeNotFound)
		return nil, nil, apperrors.NotFound(capitalize(strings.Join(missing, " and "))).
			WithDetails(map[string]any{"missing": missing})
	}

	return room, tenant, nil
}

// acquireLocks takes every key or none. The returned func releases them and
// survives cancellation of ctx.
func (s *bookingService) acquireLocks(ctx context.Context, keys ...string) (func(), error) {
	var held []*model.BookingLock
	release := func() {
		releaseCtx := context.WithoutCancel(ctx)
		for _, lock := range held {
			if err := s.lockRepo.Release(releaseCtx, lock); err != nil {
				s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lock.ID, "error", err)
			}
		}
	}

	for _, key := range keys {
		lock, err := s.lockRepo.Acquire(ctx, key, s.cfg.BookingLockTTL)
		if err != nil {
			release()
			if errors.Is(err, bookingserrors.ErrLockHeld) {
				s.cfg.Log.Warn("Booking lock is held", "lock_id", key)
				s.metrics.ObserveAdmission(metrics.OutcomeLockHeld)
				return nil, apperrors.Conflict("This room or tenant is currently being booked by another request. Please try again.")
			}
			s.cfg.Log.Error("Failed to acquire booking lock", "lock_id", key, "error", err)
			return nil, apperrors.Internal("Failed to acquire booking lock", err)
		}
		held = append(held, lock)
	}

	return release, nil
}

func (s *bookingService) admissionError(err error) error {
	var conflict *admission.ConflictError
	if errors.As(err, &conflict) {
		s.cfg.Log.Warn("Booking rejected", "unavailable", conflict.Unavailable)
		s.metrics.ObserveAdmission(metrics.OutcomeConflict)
		return apperrors.Conflict(capitalize(conflict.Error())).
			WithDetails(map[string]any{"unavailable": conflict.Unavailable})
	}
	if errors.Is(err, admission.ErrInvalidSchedule) {
		s.metrics.ObserveAdmission(metrics.OutcomeInvalid)
		return validationError(validation.Field("endDate", err.Error()))
	}
	return apperrors.Internal("Failed to admit booking", err)
}

// writeError maps a store write failure inside a transaction.
func (s *bookingService) writeError(err error, message string) error {
	if errors.Is(err, bookingserrors.ErrOccupied) {
		s.metrics.ObserveAdmission(metrics.OutcomeConflict)
		return apperrors.Conflict("Room or tenant already booked")
	}
	return apperrors.Internal(message, err)
}

func (s *bookingService) transactionError(err error, message string) error {
	if apperrors.IsAppError(err) {
		if apperrors.HasCode(err, apperrors.CodeInternal) {
			s.cfg.Log.Error(message, "error", err)
			s.metrics.ObserveAdmission(metrics.OutcomeStoreError)
		}
		return err
	}
	s.cfg.Log.Error(message, "error", err)
	s.metrics.ObserveAdmission(metrics.OutcomeStoreError)
	return apperrors.Internal(message, err)
}

func (s *bookingService) publish(ctx context.Context, eventType events.Type, booking *model.Booking) {
	if err := s.events.PublishBooking(ctx, eventType, booking); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"id", booking.ID,
			"event_type", eventType,
			"error", err,
		)
	}
}

func (s *bookingService) mapRepoError(err error, id, message string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	if errors.Is(err, bookingserrors.ErrOccupied) {
		return apperrors.Conflict("Room or tenant already booked")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func validationError(err error) error {
	var validationErrs validation.ValidationErrors
	if errors.As(err, &validationErrs) {
		return apperrors.Validation("Booking validation failed", validationErrs.Details())
	}
	return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
}

func mutationError(err error) error {
	switch {
	case errors.Is(err, admission.ErrNoChanges):
		return apperrors.InvalidInput("No fields to update")
	case errors.Is(err, admission.ErrMissingRef):
		return validationError(validation.Field("room", err.Error()))
	case errors.Is(err, admission.ErrNegativeAmount):
		return validationError(validation.Field("totalAmount", err.Error()))
	case errors.Is(err, admission.ErrInvalidSchedule):
		return validationError(validation.Field("endDate", err.Error()))
	}
	return apperrors.Internal("Failed to apply booking update", err)
}

func details(booking *model.Booking, room *model.Room, tenant *model.Tenant) *model.BookingDetails {
	return &model.BookingDetails{
		ID:          booking.ID,
		Room:        room,
		Tenant:      tenant,
		StartDate:   booking.StartDate,
		EndDate:     booking.EndDate,
		TotalAmount: booking.TotalAmount,
		CreatedAt:   booking.CreatedAt,
		UpdatedAt:   booking.UpdatedAt,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
