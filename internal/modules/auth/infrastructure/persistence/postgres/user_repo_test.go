package postgres_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workhive/notify/internal/modules/auth/domain"
	"github.com/workhive/notify/internal/modules/auth/infrastructure/persistence/postgres"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(sqlDB, "sqlmock"), mock, func() { _ = sqlDB.Close() }
}

func TestPgUserRepository_CreateAndGets(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := postgres.NewPgUserRepository(db)
	ctx := context.Background()

	u := &domain.User{ID: uuid.New(), Email: "taro@example.com", PasswordHash: "hash", DisplayName: "Taro"}

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(ctx, u))

	mock.ExpectExec("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505"})
	assert.ErrorIs(t, repo.Create(ctx, u), domain.ErrUserAlreadyExists)

	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "display_name", "created_at", "updated_at"}).
		AddRow(u.ID, u.Email, u.PasswordHash, u.DisplayName, u.CreatedAt, u.UpdatedAt)
	mock.ExpectQuery(`SELECT \* FROM users WHERE email = \$1`).WithArgs(u.Email).WillReturnRows(rows)
	got, err := repo.GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	mock.ExpectQuery(`SELECT \* FROM users WHERE email = \$1`).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	idRows := sqlmock.NewRows([]string{"id", "email", "password_hash", "display_name", "created_at", "updated_at"}).
		AddRow(u.ID, u.Email, u.PasswordHash, u.DisplayName, u.CreatedAt, u.UpdatedAt)
	mock.ExpectQuery(`SELECT \* FROM users WHERE id = \$1`).WithArgs(u.ID).WillReturnRows(idRows)
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	missing := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM users WHERE id = \$1`).WithArgs(missing).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
