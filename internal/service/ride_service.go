package service

import (
	"context"
	"errors"
	"fmt"

	"yideshare/internal/domain"

	"github.com/google/uuid"
)

// RideService handles ride listings and bookmarks for authenticated users.
type RideService struct {
	rides     domain.RideRepository
	bookmarks domain.BookmarkRepository
}

func NewRideService(rides domain.RideRepository, bookmarks domain.BookmarkRepository) *RideService {
	return &RideService{
		rides:     rides,
		bookmarks: bookmarks,
	}
}

func (s *RideService) Search(ctx context.Context, filter domain.RideFilter) ([]*domain.Ride, error) {
	return s.rides.Search(ctx, filter)
}

func (s *RideService) Create(ctx context.Context, netid string, ride *domain.Ride) (*domain.Ride, error) {
	if ride.Driver.Name == "" || ride.From == "" || ride.To == "" || ride.Date == "" || ride.Time == "" {
		return nil, domain.ErrInvalidInput
	}
	if ride.Seats <= 0 {
		ride.Seats = 1
	}

	ride.ID = uuid.New().String()
	ride.OwnerNetID = netid

	if err := s.rides.Create(ctx, ride); err != nil {
		return nil, fmt.Errorf("failed to create ride: %w", err)
	}
	return ride, nil
}

func (s *RideService) ListByOwner(ctx context.Context, netid string) ([]*domain.Ride, error) {
	return s.rides.ListByOwner(ctx, netid)
}

// Update modifies a ride. Only the owner may update their listing.
func (s *RideService) Update(ctx context.Context, netid string, ride *domain.Ride) (*domain.Ride, error) {
	existing, err := s.rides.GetByID(ctx, ride.ID)
	if err != nil {
		return nil, err
	}
	if existing.OwnerNetID != netid {
		return nil, domain.ErrNotRideOwner
	}

	ride.OwnerNetID = existing.OwnerNetID
	ride.CreatedAt = existing.CreatedAt
	if err := s.rides.Update(ctx, ride); err != nil {
		return nil, fmt.Errorf("failed to update ride: %w", err)
	}
	return ride, nil
}

// Delete removes a ride. Only the owner may delete their listing.
func (s *RideService) Delete(ctx context.Context, netid, rideID string) error {
	existing, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return err
	}
	if existing.OwnerNetID != netid {
		return domain.ErrNotRideOwner
	}
	return s.rides.Delete(ctx, rideID)
}

// ToggleBookmark flips the bookmark on an existing ride and reports the new
// state.
func (s *RideService) ToggleBookmark(ctx context.Context, netid, rideID string) (bool, error) {
	if _, err := s.rides.GetByID(ctx, rideID); err != nil {
		if errors.Is(err, domain.ErrRideNotFound) {
			return false, err
		}
		return false, fmt.Errorf("failed to look up ride: %w", err)
	}
	return s.bookmarks.Toggle(ctx, netid, rideID)
}

func (s *RideService) ListBookmarks(ctx context.Context, netid string) ([]*domain.Ride, error) {
	return s.bookmarks.ListRides(ctx, netid)
}

func (s *RideService) IsBookmarked(ctx context.Context, netid, rideID string) (bool, error) {
	return s.bookmarks.IsBookmarked(ctx, netid, rideID)
}
