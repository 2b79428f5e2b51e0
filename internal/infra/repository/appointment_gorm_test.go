package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/testutil"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newAppointment(c testutil.Catalog, name, mobile string, date time.Time, status string) *models.Appointment {
	return &models.Appointment{
		PatientName:      name,
		PatientAge:       30,
		PatientGender:    "female",
		PatientMobile:    mobile,
		ConsultationType: "ONLINE",
		ServiceID:        c.MindService.ID,
		PractitionerID:   c.Practitioner.ID,
		ProgramID:        c.Basic.ID,
		AppointmentDate:  date,
		SessionDates:     []models.SessionDate{{Date: date, Time: "09:30 AM"}},
		Status:           status,
	}
}

func TestAppointmentGormRepository_LoadCatalog(t *testing.T) {
	db := testutil.NewDB(t)
	c := testutil.SeedCatalog(t, db)

	unknown := models.Program{Name: "Retreat", Slug: "retreat", Type: "WEEKEND", Status: models.StatusActive}
	require.NoError(t, db.Create(&unknown).Error)
	require.NoError(t, db.Model(&c.BodyService).Update("status", models.StatusInactive).Error)

	cat, err := NewAppointmentGormRepository(db).LoadCatalog(context.Background())
	require.NoError(t, err)

	got, ok := cat.ServiceCategory(c.MindService.ID)
	assert.True(t, ok)
	assert.Equal(t, booking.CategoryMind, got)

	_, ok = cat.ServiceCategory(c.BodyService.ID)
	assert.False(t, ok, "inactive services are not bookable")

	plan, ok := cat.ProgramPlan(c.Extended.ID)
	require.True(t, ok)
	assert.Equal(t, booking.PlanExtended, plan.Kind())
	assert.Equal(t, 3, plan.Sessions())

	plan, ok = cat.ProgramPlan(c.Residential.ID)
	require.True(t, ok)
	assert.Equal(t, booking.PlanResidential, plan.Kind())

	_, ok = cat.ProgramPlan(unknown.ID)
	assert.False(t, ok)
}

func TestAppointmentGormRepository_CreateGetList(t *testing.T) {
	db := testutil.NewDB(t)
	c := testutil.SeedCatalog(t, db)
	repo := NewAppointmentGormRepository(db)
	ctx := context.Background()

	a := newAppointment(c, "Asha Rao", "9876543210", day(2025, 1, 15), "CONFIRMED")
	b := newAppointment(c, "Vikram Shah", "9123456780", day(2025, 1, 20), "PENDING")
	d := newAppointment(c, "Asha Menon", "9000000000", day(2025, 2, 3), "CONFIRMED")
	for _, ap := range []*models.Appointment{a, b, d} {
		require.NoError(t, repo.Create(ctx, ap))
	}

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Service)
	assert.Equal(t, "Meditation", got.Service.Title)
	require.NotNil(t, got.Program)
	require.Len(t, got.SessionDates, 1)
	assert.Equal(t, "09:30 AM", got.SessionDates[0].Time)

	_, err = repo.Get(ctx, "missing")
	assert.True(t, httperr.IsNotFound(err))

	all, total, err := repo.List(ctx, domain.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, all, 3)
	assert.Equal(t, d.ID, all[0].ID, "newest appointment date first")

	byName, _, err := repo.List(ctx, domain.Filter{Search: "asha"})
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	byMobile, _, err := repo.List(ctx, domain.Filter{Search: "91234"})
	require.NoError(t, err)
	require.Len(t, byMobile, 1)
	assert.Equal(t, b.ID, byMobile[0].ID)

	from, to := day(2025, 1, 1), day(2025, 1, 31)
	january, total, err := repo.List(ctx, domain.Filter{DateStart: &from, DateEnd: &to, Status: domain.StatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, a.ID, january[0].ID)

	page, total, err := repo.List(ctx, domain.Filter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 1)
	assert.Equal(t, b.ID, page[0].ID)
}

func TestAppointmentGormRepository_Update_SQLite(t *testing.T) {
	db := testutil.NewDB(t)
	c := testutil.SeedCatalog(t, db)
	repo := NewAppointmentGormRepository(db)
	ctx := context.Background()

	ap := newAppointment(c, "Asha", "9876543210", day(2025, 1, 15), "CONFIRMED")
	require.NoError(t, repo.Create(ctx, ap))

	now := time.Now().UTC()
	require.NoError(t, domain.Complete(ap, now))
	ap.AdminNotes = "attended"
	require.NoError(t, repo.Update(ctx, ap))

	got, err := repo.Get(ctx, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", got.Status)
	assert.Equal(t, "attended", got.AdminNotes)
	assert.NotNil(t, got.CompletedAt)
}
