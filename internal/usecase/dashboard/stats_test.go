package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/dashboard"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type fakeRepo struct {
	mu    sync.Mutex
	calls map[string][]time.Time

	revenueErr error
}

func (f *fakeRepo) record(name string, ts ...time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string][]time.Time{}
	}
	f.calls[name] = ts
}

func (f *fakeRepo) CountAppointmentsOn(_ context.Context, from, to time.Time) (int64, error) {
	f.record("today", from, to)
	return 3, nil
}

func (f *fakeRepo) CompletedRevenueSince(_ context.Context, from time.Time) (decimal.Decimal, error) {
	f.record("revenue", from)
	return decimal.NewFromInt(5500), f.revenueErr
}

func (f *fakeRepo) CountPatients(context.Context) (int64, error)            { return 12, nil }
func (f *fakeRepo) CountActivePractitioners(context.Context) (int64, error) { return 4, nil }

func (f *fakeRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	if status == "PENDING" {
		return 2, nil
	}
	return 0, nil
}

func (f *fakeRepo) CountCompletedSince(_ context.Context, from time.Time) (int64, error) {
	f.record("month", from)
	return 7, nil
}

func (f *fakeRepo) PopularServices(_ context.Context, limit int) ([]dashboard.ServiceCount, error) {
	return []dashboard.ServiceCount{{ServiceID: "s1", Title: "Detox", Count: 9}}, nil
}

func (f *fakeRepo) RecentAppointments(_ context.Context, limit int) ([]models.Appointment, error) {
	return []models.Appointment{
		{Base: models.Base{ID: "a1"}, PatientName: "Asha", Service: &models.Service{Title: "Detox"}, Status: "CONFIRMED"},
	}, nil
}

func TestGetStats(t *testing.T) {
	repo := &fakeRepo{}
	ist := time.FixedZone("IST", 5*3600+1800)
	uc := NewGetStats(repo, ist)
	// Wednesday 15 Jan 2025, 22:00 UTC is already Thursday 16 Jan in IST.
	uc.now = func() time.Time { return time.Date(2025, 1, 15, 22, 0, 0, 0, time.UTC) }

	out, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), out.TodayAppointments)
	assert.True(t, decimal.NewFromInt(5500).Equal(out.WeeklyRevenue))
	assert.Equal(t, int64(12), out.TotalPatients)
	assert.Equal(t, int64(4), out.ActiveSpecialists)
	assert.Equal(t, int64(2), out.PendingAppointments)
	assert.Equal(t, int64(7), out.CompletedThisMonth)
	require.Len(t, out.PopularServices, 1)
	require.Len(t, out.RecentAppointments, 1)
	assert.Equal(t, "Detox", out.RecentAppointments[0].ServiceTitle)

	today := repo.calls["today"]
	assert.Equal(t, time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC), today[0])
	assert.Equal(t, time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC), today[1])

	assert.True(t, time.Date(2025, 1, 12, 0, 0, 0, 0, ist).Equal(repo.calls["revenue"][0]))
	assert.True(t, time.Date(2025, 1, 1, 0, 0, 0, 0, ist).Equal(repo.calls["month"][0]))
}

func TestGetStats_PropagatesErrors(t *testing.T) {
	repo := &fakeRepo{revenueErr: errors.New("db down")}
	uc := NewGetStats(repo, time.UTC)

	out, err := uc.Execute(context.Background())
	assert.Nil(t, out)
	assert.EqualError(t, err, "db down")
}
