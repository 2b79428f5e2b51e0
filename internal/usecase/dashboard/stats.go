package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/dashboard"
	"github.com/BruksfildServices01/clinic-scheduler/internal/dto"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

const (
	popularServicesLimit    = 5
	recentAppointmentsLimit = 10
)

type GetStats struct {
	repo dashboard.Repository
	loc  *time.Location

	now func() time.Time
}

func NewGetStats(repo dashboard.Repository, loc *time.Location) *GetStats {
	return &GetStats{repo: repo, loc: loc, now: time.Now}
}

// Execute runs the dashboard queries concurrently. The figures are not a
// consistent snapshot; each query sees the table as it is when it runs.
func (uc *GetStats) Execute(ctx context.Context) (*dto.DashboardStatsDTO, error) {
	w := timezone.WindowsAt(uc.now().In(uc.loc))
	// Appointment dates are stored as UTC midnights of the clinic calendar day.
	dayStart := time.Date(w.DayStart.Year(), w.DayStart.Month(), w.DayStart.Day(), 0, 0, 0, 0, time.UTC)

	out := &dto.DashboardStatsDTO{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.TodayAppointments, err = uc.repo.CountAppointmentsOn(ctx, dayStart, dayStart.AddDate(0, 0, 1))
		return err
	})
	g.Go(func() (err error) {
		out.WeeklyRevenue, err = uc.repo.CompletedRevenueSince(ctx, w.WeekStart)
		return err
	})
	g.Go(func() (err error) {
		out.TotalPatients, err = uc.repo.CountPatients(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.ActiveSpecialists, err = uc.repo.CountActivePractitioners(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.PendingAppointments, err = uc.repo.CountByStatus(ctx, string(domain.StatusPending))
		return err
	})
	g.Go(func() (err error) {
		out.CompletedThisMonth, err = uc.repo.CountCompletedSince(ctx, w.MonthStart)
		return err
	})
	g.Go(func() (err error) {
		out.PopularServices, err = uc.repo.PopularServices(ctx, popularServicesLimit)
		return err
	})
	g.Go(func() error {
		recent, err := uc.repo.RecentAppointments(ctx, recentAppointmentsLimit)
		if err != nil {
			return err
		}
		out.RecentAppointments = make([]dto.AppointmentListDTO, 0, len(recent))
		for _, ap := range recent {
			out.RecentAppointments = append(out.RecentAppointments, dto.NewAppointmentListDTO(ap))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if out.PopularServices == nil {
		out.PopularServices = []dashboard.ServiceCount{}
	}
	return out, nil
}
