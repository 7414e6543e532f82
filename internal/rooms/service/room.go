package service

import (
	"context"
	"errors"
	"fmt"

	roomserrors "dormitory/internal/rooms/errors"
	"dormitory/internal/rooms/repository"
	"dormitory/internal/rooms/validator"
	"dormitory/pkg/config"
	apperrors "dormitory/pkg/errors"
	"dormitory/pkg/model"
	"dormitory/pkg/sanitizer"
	"dormitory/pkg/validation"
)

type RoomService interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetAll(ctx context.Context) ([]*model.Room, error)
	Update(ctx context.Context, id string, update *model.RoomUpdate) (*model.Room, error)
	Delete(ctx context.Context, id string) (*model.Room, error)
}

type roomService struct {
	repo      repository.RoomRepository
	validator *validator.RoomValidator
	cfg       *config.Config
}

func NewRoomService(
	repo repository.RoomRepository,
	validator *validator.RoomValidator,
	cfg *config.Config,
) RoomService {
	return &roomService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *roomService) Create(ctx context.Context, room *model.Room) error {
	room.ID = ""
	s.sanitize(room)

	if err := s.validator.Validate(room); err != nil {
		s.cfg.Log.Warn("Room validation failed",
			"room_no", room.RoomNo,
			"room_name", room.RoomName,
			"error", err,
		)
		return validationError(err)
	}

	if err := s.ensureUnique(ctx, int(room.RoomNo), room.RoomName, ""); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, room); err != nil {
		if errors.Is(err, roomserrors.ErrDuplicate) {
			return duplicateError(int(room.RoomNo), room.RoomName, nil)
		}
		s.cfg.Log.Error("Failed to create room",
			"room_no", room.RoomNo,
			"room_name", room.RoomName,
			"error", err,
		)
		return apperrors.Internal("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created successfully",
		"id", room.ID,
		"room_no", room.RoomNo,
		"room_name", room.RoomName,
		"rate_per_month", room.RatePerMonth.String(),
	)

	return nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve room")
	}

	return room, nil
}

func (s *roomService) GetAll(ctx context.Context) ([]*model.Room, error) {
	rooms, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to get all rooms", "error", err)
		return nil, apperrors.Internal("Failed to retrieve rooms", err)
	}
	return rooms, nil
}

func (s *roomService) Update(ctx context.Context, id string, update *model.RoomUpdate) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}
	if update.IsEmpty() {
		return nil, apperrors.InvalidInput("No fields to update")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to check room existence")
	}

	s.sanitizeUpdate(update)
	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("Room update validation failed", "id", id, "error", err)
		return nil, validationError(err)
	}

	merged := update.Apply(*existing)
	if update.RoomNo != nil || update.RoomName != nil {
		if err := s.ensureUnique(ctx, int(merged.RoomNo), merged.RoomName, id); err != nil {
			return nil, err
		}
	}

	room, err := s.repo.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, roomserrors.ErrDuplicate) {
			return nil, duplicateError(int(merged.RoomNo), merged.RoomName, nil)
		}
		return nil, s.mapRepoError(err, id, "Failed to update room")
	}

	s.cfg.Log.Info("Room updated successfully",
		"id", id,
		"room_no", room.RoomNo,
		"room_name", room.RoomName,
	)

	return room, nil
}

// Delete removes the room. Bookings that reference it are kept and resolve
// to a missing room.
func (s *roomService) Delete(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to delete room")
	}

	s.cfg.Log.Info("Room deleted successfully", "id", id, "room_no", room.RoomNo)
	return room, nil
}

// ensureUnique rejects a room number or name already used by another room.
func (s *roomService) ensureUnique(ctx context.Context, roomNo int, roomName, excludeID string) error {
	existing, err := s.repo.FindDuplicates(ctx, roomNo, roomName, excludeID)
	if err != nil {
		s.cfg.Log.Error("Failed to check room duplicates",
			"room_no", roomNo,
			"room_name", roomName,
			"error", err,
		)
		return apperrors.Internal("Failed to check room duplicates", err)
	}
	if len(existing) == 0 {
		return nil
	}

	s.cfg.Log.Warn("Duplicate room rejected",
		"room_no", roomNo,
		"room_name", roomName,
		"existing_id", existing[0].ID,
	)
	return duplicateError(roomNo, roomName, existing)
}

func duplicateError(roomNo int, roomName string, existing []*model.Room) error {
	var errs validation.ValidationErrors
	for _, r := range existing {
		if int(r.RoomNo) == roomNo {
			errs = append(errs, validation.ValidationError{
				Field:   "roomNo",
				Message: fmt.Sprintf("room number %d already exists", roomNo),
			})
		}
		if r.RoomName == roomName {
			errs = append(errs, validation.ValidationError{
				Field:   "roomName",
				Message: fmt.Sprintf("room name %q already exists", roomName),
			})
		}
	}
	if len(errs) == 0 {
		errs = validation.Field("room", "room number or name already exists")
	}
	return apperrors.Validation("Room already exists", errs.Details())
}

func validationError(err error) error {
	var validationErrs validation.ValidationErrors
	if errors.As(err, &validationErrs) {
		return apperrors.Validation("Room validation failed", validationErrs.Details())
	}
	return apperrors.Validation("Room validation failed", map[string]any{"error": err.Error()})
}

func (s *roomService) mapRepoError(err error, id, message string) error {
	if errors.Is(err, roomserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Room", id)
	}
	if errors.Is(err, roomserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid room ID format")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func (s *roomService) sanitize(room *model.Room) {
	room.RoomName = sanitizer.NormalizeName(room.RoomName)
	room.Description = sanitizer.NormalizeDescription(room.Description)
}

func (s *roomService) sanitizeUpdate(update *model.RoomUpdate) {
	if update.RoomName != nil {
		name := sanitizer.NormalizeName(*update.RoomName)
		update.RoomName = &name
	}
	if update.Description != nil {
		description := sanitizer.NormalizeDescription(*update.Description)
		update.Description = &description
	}
}
