package postgres

import (
	"context"
	"database/sql"

	"yideshare/internal/domain"
)

// BookmarkRepository implements domain.BookmarkRepository for PostgreSQL
type BookmarkRepository struct {
	db *sql.DB
}

// NewBookmarkRepository creates a new PostgreSQL bookmark repository
func NewBookmarkRepository(db *sql.DB) *BookmarkRepository {
	return &BookmarkRepository{db: db}
}

// Toggle flips the bookmark for (netid, rideID): removes it if present,
// inserts it otherwise. Returns the resulting state.
func (r *BookmarkRepository) Toggle(ctx context.Context, netid, rideID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE netid = $1 AND ride_id = $2`, netid, rideID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return false, nil
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO bookmarks (netid, ride_id) VALUES ($1, $2)`,
		netid, rideID)
	if err != nil {
		// A concurrent toggle won the insert between our delete and insert;
		// either way the bookmark now exists.
		if IsUniqueViolation(err, "bookmarks_netid_ride_id_key") {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// ListRides retrieves the rides a user has bookmarked, newest bookmark first
func (r *BookmarkRepository) ListRides(ctx context.Context, netid string) ([]*domain.Ride, error) {
	query := `
		SELECT r.id, r.owner_netid, r.driver_name, r.driver_email, r.driver_phone, r.driver_initials,
			r.from_location, r.to_location, r.ride_date, r.ride_time, r.seats, r.note, r.created_at
		FROM bookmarks b
		JOIN rides r ON r.id = b.ride_id
		WHERE b.netid = $1
		ORDER BY b.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, netid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRides(rows)
}

// IsBookmarked reports whether the user has bookmarked the ride
func (r *BookmarkRepository) IsBookmarked(ctx context.Context, netid, rideID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM bookmarks WHERE netid = $1 AND ride_id = $2)`,
		netid, rideID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return exists, err
}
