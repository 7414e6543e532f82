package service

import (
	"context"

	"dormitory/internal/admission"
	bookingsrepo "dormitory/internal/bookings/repository"
	roomsrepo "dormitory/internal/rooms/repository"
	"dormitory/pkg/config"
	apperrors "dormitory/pkg/errors"
	"dormitory/pkg/model"
)

type DashboardService interface {
	Get(ctx context.Context) (*model.Dashboard, error)
}

type dashboardService struct {
	rooms    roomsrepo.RoomRepository
	bookings bookingsrepo.BookingRepository
	cfg      *config.Config
}

func NewDashboardService(rooms roomsrepo.RoomRepository, bookings bookingsrepo.BookingRepository, cfg *config.Config) DashboardService {
	return &dashboardService{
		rooms:    rooms,
		bookings: bookings,
		cfg:      cfg,
	}
}

// Get counts rooms and bookings. A room is occupied while any booking
// references it.
func (s *dashboardService) Get(ctx context.Context) (*model.Dashboard, error) {
	rooms, err := s.rooms.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load rooms for dashboard", "error", err)
		return nil, apperrors.Internal("Failed to load dashboard", err)
	}

	bookings, err := s.bookings.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load bookings for dashboard", "error", err)
		return nil, apperrors.Internal("Failed to load dashboard", err)
	}

	available := admission.AvailableRooms(rooms, bookings)
	return &model.Dashboard{
		TotalRooms:     len(rooms),
		AvailableRooms: available,
		OccupiedRooms:  len(rooms) - available,
		TotalBookings:  int64(len(bookings)),
	}, nil
}
