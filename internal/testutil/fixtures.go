package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"yideshare/internal/domain"
)

// Counter for generating unique IDs
var idCounter atomic.Int64

// nextID generates a unique ID for test fixtures
func nextID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, idCounter.Add(1))
}

// UserOptions allows customizing user fixture creation
type UserOptions struct {
	NetID   string
	Profile *domain.Profile
}

// NewTestUser creates a test user with sensible defaults.
// Pass options to override specific fields.
func NewTestUser(opts ...func(*UserOptions)) *domain.User {
	o := &UserOptions{
		NetID: nextID("netid"),
	}

	for _, opt := range opts {
		opt(o)
	}

	return &domain.User{
		NetID:   o.NetID,
		Profile: o.Profile,
	}
}

// WithNetID sets the user's netid
func WithNetID(netid string) func(*UserOptions) {
	return func(o *UserOptions) {
		o.NetID = netid
	}
}

// WithProfile attaches a directory profile to the user
func WithProfile(profile *domain.Profile) func(*UserOptions) {
	return func(o *UserOptions) {
		o.Profile = profile
	}
}

// NewTestProfile creates a directory profile with sensible defaults
func NewTestProfile(netid string) *domain.Profile {
	return &domain.Profile{
		FirstName: "Jamie",
		LastName:  "Smith",
		Email:     netid + "@yale.edu",
		College:   "Branford",
		Year:      "2027",
		Major:     "Computer Science",
	}
}

// RideOptions allows customizing ride fixture creation
type RideOptions struct {
	ID         string
	OwnerNetID string
	Driver     domain.Driver
	From       string
	To         string
	Date       string
	Time       string
	Seats      int
	Note       string
	CreatedAt  time.Time
}

// NewTestRide creates a test ride with sensible defaults.
// Pass options to override specific fields.
func NewTestRide(opts ...func(*RideOptions)) *domain.Ride {
	o := &RideOptions{
		ID:         nextID("ride"),
		OwnerNetID: "ab123",
		Driver: domain.Driver{
			Name:     "Jamie Smith",
			Email:    "jamie.smith@yale.edu",
			Phone:    "203-555-0101",
			Initials: "JS",
		},
		From:      "Yale Campus",
		To:        "Union Station",
		Date:      "2026-09-05",
		Time:      "14:30",
		Seats:     3,
		CreatedAt: time.Now(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return &domain.Ride{
		ID:         o.ID,
		OwnerNetID: o.OwnerNetID,
		Driver:     o.Driver,
		From:       o.From,
		To:         o.To,
		Date:       o.Date,
		Time:       o.Time,
		Seats:      o.Seats,
		Note:       o.Note,
		CreatedAt:  o.CreatedAt,
	}
}

// WithRideID sets the ride's ID
func WithRideID(id string) func(*RideOptions) {
	return func(o *RideOptions) {
		o.ID = id
	}
}

// WithOwner sets the ride's owner netid
func WithOwner(netid string) func(*RideOptions) {
	return func(o *RideOptions) {
		o.OwnerNetID = netid
	}
}

// WithRoute sets the ride's origin and destination
func WithRoute(from, to string) func(*RideOptions) {
	return func(o *RideOptions) {
		o.From = from
		o.To = to
	}
}

// WithDate sets the ride's departure date
func WithDate(date string) func(*RideOptions) {
	return func(o *RideOptions) {
		o.Date = date
	}
}
