package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type ServiceCount struct {
	ServiceID string `json:"serviceId"`
	Title     string `json:"serviceName"`
	Count     int64  `json:"count"`
}

// Repository answers the independent questions behind the admin dashboard.
// Time bounds are half-open: [from, to).
type Repository interface {
	CountAppointmentsOn(ctx context.Context, from, to time.Time) (int64, error)
	CompletedRevenueSince(ctx context.Context, from time.Time) (decimal.Decimal, error)
	CountPatients(ctx context.Context) (int64, error)
	CountActivePractitioners(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountCompletedSince(ctx context.Context, from time.Time) (int64, error)
	PopularServices(ctx context.Context, limit int) ([]ServiceCount, error)
	RecentAppointments(ctx context.Context, limit int) ([]models.Appointment, error)
}
