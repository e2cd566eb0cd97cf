package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarttech/storefront/internal/apierror"
	"github.com/smarttech/storefront/model"
)

func TestCreateAdmin(t *testing.T) {
	ds, mock := newMockDatasource(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO admins").
		WithArgs("root", "root@example.com", "$2a$hash", true, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, now))

	a, err := ds.CreateAdmin(context.Background(), model.Admin{
		Username: "root", Email: "root@example.com", HashedPassword: "$2a$hash", IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAdmin_Duplicate(t *testing.T) {
	ds, mock := newMockDatasource(t)
	mock.ExpectQuery("INSERT INTO admins").WillReturnError(&pq.Error{Code: "23505"})

	_, err := ds.CreateAdmin(context.Background(), model.Admin{Username: "root"})
	assert.Equal(t, apierror.ErrConflict, apierror.CodeOf(err))
}

func TestGetAdminByUsername(t *testing.T) {
	ds, mock := newMockDatasource(t)
	now := time.Now()

	mock.ExpectQuery("FROM admins WHERE username = \\$1").
		WithArgs("root").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "hashed_password", "is_active", "is_superuser", "created_at"}).
			AddRow(1, "root", "root@example.com", "$2a$hash", true, true, now))

	a, err := ds.GetAdminByUsername(context.Background(), "root")
	require.NoError(t, err)
	assert.Equal(t, "$2a$hash", a.HashedPassword)
	assert.True(t, a.IsSuperuser)

	mock.ExpectQuery("FROM admins").WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	_, err = ds.GetAdminByUsername(context.Background(), "ghost")
	assert.Equal(t, apierror.ErrNotFound, apierror.CodeOf(err))
}

func TestAdminTaken(t *testing.T) {
	ds, mock := newMockDatasource(t)

	mock.ExpectQuery("SELECT\\s+EXISTS").
		WithArgs("root", "new@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"u", "e"}).AddRow(true, false))

	userTaken, emailTaken, err := ds.AdminTaken(context.Background(), "root", "new@example.com")
	require.NoError(t, err)
	assert.True(t, userTaken)
	assert.False(t, emailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
