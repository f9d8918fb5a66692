package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrRideNotFound = errors.New("ride not found")
	ErrNotRideOwner = errors.New("ride does not belong to user")
	ErrInvalidInput = errors.New("invalid input")
)

// Driver is the contact card shown on a ride listing.
type Driver struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Initials string `json:"initials"`
}

// Ride is a flat rideshare listing. OwnerNetID ties the record to the
// authenticated user who posted it.
type Ride struct {
	ID         string    `json:"id"`
	OwnerNetID string    `json:"owner_netid"`
	Driver     Driver    `json:"driver"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Seats      int       `json:"seats"`
	Note       string    `json:"note"`
	CreatedAt  time.Time `json:"created_at"`
}

// RideFilter narrows a ride search. Empty fields match everything.
type RideFilter struct {
	From string
	To   string
	Date string
}

// RideRepository defines the interface for ride data access.
type RideRepository interface {
	Create(ctx context.Context, ride *Ride) error
	GetByID(ctx context.Context, id string) (*Ride, error)
	Search(ctx context.Context, filter RideFilter) ([]*Ride, error)
	ListByOwner(ctx context.Context, netid string) ([]*Ride, error)
	Update(ctx context.Context, ride *Ride) error
	Delete(ctx context.Context, id string) error
}

// BookmarkRepository defines the interface for ride bookmarks, keyed by the
// bookmarking user's netid.
type BookmarkRepository interface {
	// Toggle flips the bookmark for (netid, rideID) and reports the new state.
	Toggle(ctx context.Context, netid, rideID string) (bookmarked bool, err error)

	// ListRides returns the rides the user has bookmarked.
	ListRides(ctx context.Context, netid string) ([]*Ride, error)

	// IsBookmarked reports whether the user has bookmarked the ride.
	IsBookmarked(ctx context.Context, netid, rideID string) (bool, error)
}
