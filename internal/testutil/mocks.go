// Package testutil provides shared test utilities, mocks, and fixtures
// for testing the yideshare application.
package testutil

import (
	"context"
	"errors"
	"sync"

	"yideshare/internal/domain"
)

// Common test errors
var (
	ErrMockNotImplemented = errors.New("mock function not implemented")
	ErrMockNotFound       = errors.New("mock: not found")
)

// MockRideRepository implements domain.RideRepository for testing
type MockRideRepository struct {
	mu sync.RWMutex

	// Function overrides - set these to customize behavior
	CreateFunc      func(ctx context.Context, ride *domain.Ride) error
	GetByIDFunc     func(ctx context.Context, id string) (*domain.Ride, error)
	SearchFunc      func(ctx context.Context, filter domain.RideFilter) ([]*domain.Ride, error)
	ListByOwnerFunc func(ctx context.Context, netid string) ([]*domain.Ride, error)
	UpdateFunc      func(ctx context.Context, ride *domain.Ride) error
	DeleteFunc      func(ctx context.Context, id string) error

	// In-memory storage for simple tests
	Rides map[string]*domain.Ride
}

// NewMockRideRepository creates a new MockRideRepository with initialized maps
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		Rides: make(map[string]*domain.Ride),
	}
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ride)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Rides == nil {
		m.Rides = make(map[string]*domain.Ride)
	}
	m.Rides[ride.ID] = ride
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	ride, ok := m.Rides[id]
	if !ok {
		return nil, domain.ErrRideNotFound
	}
	return ride, nil
}

func (m *MockRideRepository) Search(ctx context.Context, filter domain.RideFilter) ([]*domain.Ride, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rides := make([]*domain.Ride, 0)
	for _, ride := range m.Rides {
		if filter.From != "" && ride.From != filter.From {
			continue
		}
		if filter.To != "" && ride.To != filter.To {
			continue
		}
		if filter.Date != "" && ride.Date != filter.Date {
			continue
		}
		rides = append(rides, ride)
	}
	return rides, nil
}

func (m *MockRideRepository) ListByOwner(ctx context.Context, netid string) ([]*domain.Ride, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, netid)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rides := make([]*domain.Ride, 0)
	for _, ride := range m.Rides {
		if ride.OwnerNetID == netid {
			rides = append(rides, ride)
		}
	}
	return rides, nil
}

func (m *MockRideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, ride)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Rides[ride.ID]; !ok {
		return domain.ErrRideNotFound
	}
	m.Rides[ride.ID] = ride
	return nil
}

func (m *MockRideRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Rides[id]; !ok {
		return domain.ErrRideNotFound
	}
	delete(m.Rides, id)
	return nil
}

// MockBookmarkRepository implements domain.BookmarkRepository for testing
type MockBookmarkRepository struct {
	mu sync.RWMutex

	// Function overrides - set these to customize behavior
	ToggleFunc       func(ctx context.Context, netid, rideID string) (bool, error)
	ListRidesFunc    func(ctx context.Context, netid string) ([]*domain.Ride, error)
	IsBookmarkedFunc func(ctx context.Context, netid, rideID string) (bool, error)

	// In-memory storage for simple tests. Keyed by netid, each value is the
	// set of bookmarked ride IDs. Rides resolves bookmarks for ListRides.
	Bookmarks map[string]map[string]bool
	Rides     *MockRideRepository
}

// NewMockBookmarkRepository creates a new MockBookmarkRepository backed by
// the given ride repository
func NewMockBookmarkRepository(rides *MockRideRepository) *MockBookmarkRepository {
	return &MockBookmarkRepository{
		Bookmarks: make(map[string]map[string]bool),
		Rides:     rides,
	}
}

func (m *MockBookmarkRepository) Toggle(ctx context.Context, netid, rideID string) (bool, error) {
	if m.ToggleFunc != nil {
		return m.ToggleFunc(ctx, netid, rideID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Bookmarks[netid] == nil {
		m.Bookmarks[netid] = make(map[string]bool)
	}
	if m.Bookmarks[netid][rideID] {
		delete(m.Bookmarks[netid], rideID)
		return false, nil
	}
	m.Bookmarks[netid][rideID] = true
	return true, nil
}

func (m *MockBookmarkRepository) ListRides(ctx context.Context, netid string) ([]*domain.Ride, error) {
	if m.ListRidesFunc != nil {
		return m.ListRidesFunc(ctx, netid)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rides := make([]*domain.Ride, 0)
	for rideID := range m.Bookmarks[netid] {
		if m.Rides == nil {
			continue
		}
		ride, err := m.Rides.GetByID(ctx, rideID)
		if err != nil {
			continue
		}
		rides = append(rides, ride)
	}
	return rides, nil
}

func (m *MockBookmarkRepository) IsBookmarked(ctx context.Context, netid, rideID string) (bool, error) {
	if m.IsBookmarkedFunc != nil {
		return m.IsBookmarkedFunc(ctx, netid, rideID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.Bookmarks[netid][rideID], nil
}

// MockLookup implements directory.Lookup for testing
type MockLookup struct {
	PersonByNetIDFunc func(ctx context.Context, netid string) (*domain.Profile, error)

	// Profiles keyed by netid for simple tests
	Profiles map[string]*domain.Profile
}

// NewMockLookup creates a new MockLookup with initialized maps
func NewMockLookup() *MockLookup {
	return &MockLookup{
		Profiles: make(map[string]*domain.Profile),
	}
}

func (m *MockLookup) PersonByNetID(ctx context.Context, netid string) (*domain.Profile, error) {
	if m.PersonByNetIDFunc != nil {
		return m.PersonByNetIDFunc(ctx, netid)
	}
	profile, ok := m.Profiles[netid]
	if !ok {
		return nil, ErrMockNotFound
	}
	return profile, nil
}
