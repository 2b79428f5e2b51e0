package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/testutil"
)

func TestDashboardGormRepository(t *testing.T) {
	db := testutil.NewDB(t)
	c := testutil.SeedCatalog(t, db)
	apps := NewAppointmentGormRepository(db)
	repo := NewDashboardGormRepository(db)
	ctx := context.Background()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	email := "asha@example.com"

	first := newAppointment(c, "Asha", "9876543210", today, "COMPLETED")
	first.PatientEmail = &email
	completedAt := time.Now().UTC()
	first.CompletedAt = &completedAt

	second := newAppointment(c, "Asha again", "9876543210", today, "COMPLETED")
	second.PatientEmail = &email
	second.ProgramID = c.Extended.ID
	second.CompletedAt = &completedAt

	third := newAppointment(c, "Vikram", "9123456780", today.AddDate(0, 0, 10), "PENDING")
	third.ServiceID = c.BodyService.ID

	for _, ap := range []*models.Appointment{first, second, third} {
		require.NoError(t, apps.Create(ctx, ap))
	}

	n, err := repo.CountAppointmentsOn(ctx, today, today.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rev, err := repo.CompletedRevenueSince(ctx, today.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, "5500", rev.String())

	patients, err := repo.CountPatients(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), patients)

	active, err := repo.CountActivePractitioners(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), active)

	pending, err := repo.CountByStatus(ctx, "PENDING")
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	done, err := repo.CountCompletedSince(ctx, today.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), done)

	popular, err := repo.PopularServices(ctx, 5)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, c.MindService.ID, popular[0].ServiceID)
	assert.Equal(t, "Meditation", popular[0].Title)
	assert.Equal(t, int64(2), popular[0].Count)

	recent, err := repo.RecentAppointments(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}
