package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookmarkRepository_Toggle(t *testing.T) {
	t.Run("adds_when_absent", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewBookmarkRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM bookmarks WHERE netid = $1 AND ride_id = $2`)).
			WithArgs("ab123", "ride-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bookmarks (netid, ride_id)`)).
			WithArgs("ab123", "ride-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		bookmarked, err := repo.Toggle(context.Background(), "ab123", "ride-1")
		require.NoError(t, err)
		assert.True(t, bookmarked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("removes_when_present", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewBookmarkRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM bookmarks WHERE netid = $1 AND ride_id = $2`)).
			WithArgs("ab123", "ride-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		bookmarked, err := repo.Toggle(context.Background(), "ab123", "ride-1")
		require.NoError(t, err)
		assert.False(t, bookmarked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent_insert_wins_race", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewBookmarkRepository(db)

		// another request inserts between our delete and insert; the duplicate
		// key still means the bookmark is on
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM bookmarks WHERE netid = $1 AND ride_id = $2`)).
			WithArgs("ab123", "ride-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bookmarks (netid, ride_id)`)).
			WithArgs("ab123", "ride-1").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "bookmarks_netid_ride_id_key"})

		bookmarked, err := repo.Toggle(context.Background(), "ab123", "ride-1")
		require.NoError(t, err)
		assert.True(t, bookmarked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unrelated_constraint_violation_surfaces", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewBookmarkRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM bookmarks WHERE netid = $1 AND ride_id = $2`)).
			WithArgs("ab123", "ride-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bookmarks (netid, ride_id)`)).
			WithArgs("ab123", "ride-1").
			WillReturnError(&pq.Error{Code: "23503", Constraint: "bookmarks_ride_id_fkey"})

		_, err = repo.Toggle(context.Background(), "ab123", "ride-1")
		assert.Error(t, err)
	})

	t.Run("database_error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewBookmarkRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM bookmarks`)).
			WillReturnError(errors.New("connection lost"))

		_, err = repo.Toggle(context.Background(), "ab123", "ride-1")
		assert.Error(t, err)
	})
}

func TestBookmarkRepository_ListRides(t *testing.T) {
	t.Run("returns_joined_rides", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewBookmarkRepository(db)
		createdAt := time.Now()

		rows := sqlmock.NewRows(rideRowColumns)
		addSampleRide(rows, "ride-1", "cd456", createdAt)
		addSampleRide(rows, "ride-2", "ef789", createdAt.Add(-time.Hour))

		mock.ExpectQuery(`JOIN rides r ON r\.id = b\.ride_id`).
			WithArgs("ab123").
			WillReturnRows(rows)

		rides, err := repo.ListRides(context.Background(), "ab123")
		require.NoError(t, err)
		require.Len(t, rides, 2)
		assert.Equal(t, "ride-1", rides[0].ID)
		assert.Equal(t, "cd456", rides[0].OwnerNetID)
	})

	t.Run("no_bookmarks_returns_empty_slice", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewBookmarkRepository(db)

		mock.ExpectQuery(`JOIN rides r ON r\.id = b\.ride_id`).
			WithArgs("ab123").
			WillReturnRows(sqlmock.NewRows(rideRowColumns))

		rides, err := repo.ListRides(context.Background(), "ab123")
		require.NoError(t, err)
		assert.NotNil(t, rides)
		assert.Empty(t, rides)
	})
}

func TestBookmarkRepository_IsBookmarked(t *testing.T) {
	t.Run("bookmarked", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewBookmarkRepository(db)

		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("ab123", "ride-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		bookmarked, err := repo.IsBookmarked(context.Background(), "ab123", "ride-1")
		require.NoError(t, err)
		assert.True(t, bookmarked)
	})

	t.Run("not_bookmarked", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewBookmarkRepository(db)

		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("ab123", "ride-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		bookmarked, err := repo.IsBookmarked(context.Background(), "ab123", "ride-1")
		require.NoError(t, err)
		assert.False(t, bookmarked)
	})
}
