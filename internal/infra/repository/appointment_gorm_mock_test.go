package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestAppointmentGormRepository_PractitionerExists(t *testing.T) {
	t.Run("active practitioner", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "practitioners" WHERE id = \$1 AND status = \$2`).
			WithArgs("p-1", "ACTIVE").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		ok, err := NewAppointmentGormRepository(db).PractitionerExists(context.Background(), "p-1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "practitioners"`).
			WillReturnError(errors.New("connection reset"))

		ok, err := NewAppointmentGormRepository(db).PractitionerExists(context.Background(), "p-1")
		assert.Error(t, err)
		assert.False(t, ok)
	})
}

func TestAppointmentGormRepository_Update(t *testing.T) {
	t.Run("updates mutable columns", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "appointments" SET .*"status"=.* WHERE id = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewAppointmentGormRepository(db).Update(context.Background(), &models.Appointment{
			Base:   models.Base{ID: "ap-1"},
			Status: "COMPLETED",
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "appointments"`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewAppointmentGormRepository(db).Update(context.Background(), &models.Appointment{
			Base:   models.Base{ID: "missing"},
			Status: "CANCELLED",
		})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestDashboardGormRepository_CountByStatus(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "appointments" WHERE status = \$1`).
		WithArgs("PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := NewDashboardGormRepository(db).CountByStatus(context.Background(), "PENDING")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
