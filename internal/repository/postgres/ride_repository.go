package postgres

import (
	"context"
	"database/sql"

	"yideshare/internal/domain"
)

// RideRepository implements domain.RideRepository for PostgreSQL
type RideRepository struct {
	db *sql.DB
}

// NewRideRepository creates a new PostgreSQL ride repository
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{db: db}
}

const rideColumns = `id, owner_netid, driver_name, driver_email, driver_phone, driver_initials,
		from_location, to_location, ride_date, ride_time, seats, note, created_at`

func scanRide(row interface{ Scan(...interface{}) error }) (*domain.Ride, error) {
	ride := &domain.Ride{}
	err := row.Scan(
		&ride.ID,
		&ride.OwnerNetID,
		&ride.Driver.Name,
		&ride.Driver.Email,
		&ride.Driver.Phone,
		&ride.Driver.Initials,
		&ride.From,
		&ride.To,
		&ride.Date,
		&ride.Time,
		&ride.Seats,
		&ride.Note,
		&ride.CreatedAt,
	)
	return ride, err
}

// Create inserts a new ride
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (id, owner_netid, driver_name, driver_email, driver_phone, driver_initials,
			from_location, to_location, ride_date, ride_time, seats, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`
	return r.db.QueryRowContext(ctx, query,
		ride.ID,
		ride.OwnerNetID,
		ride.Driver.Name,
		ride.Driver.Email,
		ride.Driver.Phone,
		ride.Driver.Initials,
		ride.From,
		ride.To,
		ride.Date,
		ride.Time,
		ride.Seats,
		ride.Note,
	).Scan(&ride.CreatedAt)
}

// GetByID retrieves a ride by ID
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrRideNotFound
	}
	if err != nil {
		return nil, err
	}
	return ride, nil
}

// Search retrieves rides matching the filter, newest first. Empty filter
// fields match everything.
func (r *RideRepository) Search(ctx context.Context, filter domain.RideFilter) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides
		WHERE ($1 = '' OR from_location ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR to_location ILIKE '%' || $2 || '%')
		  AND ($3 = '' OR ride_date = $3)
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, filter.From, filter.To, filter.Date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRides(rows)
}

// ListByOwner retrieves all rides posted by a user
func (r *RideRepository) ListByOwner(ctx context.Context, netid string) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE owner_netid = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, netid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRides(rows)
}

// Update modifies an existing ride
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	query := `
		UPDATE rides
		SET driver_name = $2, driver_email = $3, driver_phone = $4, driver_initials = $5,
			from_location = $6, to_location = $7, ride_date = $8, ride_time = $9, seats = $10, note = $11
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		ride.ID,
		ride.Driver.Name,
		ride.Driver.Email,
		ride.Driver.Phone,
		ride.Driver.Initials,
		ride.From,
		ride.To,
		ride.Date,
		ride.Time,
		ride.Seats,
		ride.Note,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrRideNotFound
	}
	return nil
}

// Delete removes a ride and its bookmarks
func (r *RideRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rides WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrRideNotFound
	}
	return nil
}

func collectRides(rows *sql.Rows) ([]*domain.Ride, error) {
	rides := make([]*domain.Ride, 0)
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}
