package postgres_adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T) (*PostgresWishlistRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	repo, err := NewPostgresWishlistRepository(mock)
	require.NoError(t, err)
	return repo, mock
}

func TestEnsureSchema(t *testing.T) {
	repo, mock := newFixture(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS wishlist").WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_NormalizesEmail(t *testing.T) {
	repo, mock := newFixture(t)
	mock.ExpectExec("INSERT INTO wishlist").
		WithArgs("alice@example.com", int64(7), "Villa").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Add(context.Background(), " Alice@Example.com ", 7, "Villa"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_DuplicateIsNotAnError(t *testing.T) {
	repo, mock := newFixture(t)
	mock.ExpectExec("INSERT INTO wishlist").
		WithArgs("alice@example.com", int64(7), "Villa").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	assert.NoError(t, repo.Add(context.Background(), "alice@example.com", 7, "Villa"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_OtherErrorsPropagate(t *testing.T) {
	repo, mock := newFixture(t)
	mock.ExpectExec("INSERT INTO wishlist").
		WithArgs("alice@example.com", int64(7), "Villa").
		WillReturnError(errors.New("connection reset"))

	assert.Error(t, repo.Add(context.Background(), "alice@example.com", 7, "Villa"))
}

func TestRemove(t *testing.T) {
	repo, mock := newFixture(t)
	mock.ExpectExec("DELETE FROM wishlist WHERE email").
		WithArgs("alice@example.com", int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.Remove(context.Background(), "alice@example.com", 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUser(t *testing.T) {
	repo, mock := newFixture(t)
	rows := pgxmock.NewRows([]string{"id", "email", "property_id", "property_title"}).
		AddRow(int64(1), "alice@example.com", int64(3), "Plot").
		AddRow(int64(2), "alice@example.com", int64(9), "Lake View Plot")
	mock.ExpectQuery("SELECT id, email, property_id, property_title FROM wishlist").
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	items, err := repo.ListByUser(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(9), items[1].PropertyID)
	assert.Equal(t, "Lake View Plot", items[1].PropertyTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUser_Empty(t *testing.T) {
	repo, mock := newFixture(t)
	mock.ExpectQuery("SELECT id, email").
		WithArgs("nobody@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "property_id", "property_title"}))

	items, err := repo.ListByUser(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestDeleteUser(t *testing.T) {
	repo, mock := newFixture(t)
	mock.ExpectExec("DELETE FROM wishlist WHERE email").
		WithArgs("alice@example.com").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	assert.NoError(t, repo.DeleteUser(context.Background(), "alice@example.com"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
