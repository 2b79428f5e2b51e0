package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type ListAppointmentsInput struct {
	Status         string
	ServiceID      string
	PractitionerID string
	Search         string
	DateStart      string
	DateEnd        string
	Limit          int
	Offset         int
}

type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

// Execute applies the date range only when both ends are given.
func (uc *ListAppointments) Execute(
	ctx context.Context,
	in ListAppointmentsInput,
) ([]models.Appointment, int64, error) {

	f := domain.Filter{
		ServiceID:      in.ServiceID,
		PractitionerID: in.PractitionerID,
		Search:         in.Search,
		Limit:          in.Limit,
		Offset:         in.Offset,
	}

	if in.Status != "" {
		st, ok := domain.ParseStatus(in.Status)
		if !ok {
			return nil, 0, httperr.ErrBusinessMsg("invalid_status", "Unknown appointment status")
		}
		f.Status = st
	}

	if in.DateStart != "" && in.DateEnd != "" {
		start, err := booking.ParseDate(in.DateStart)
		if err != nil {
			return nil, 0, httperr.ErrBusinessMsg("invalid_date", "dateStart must be YYYY-MM-DD")
		}
		end, err := booking.ParseDate(in.DateEnd)
		if err != nil {
			return nil, 0, httperr.ErrBusinessMsg("invalid_date", "dateEnd must be YYYY-MM-DD")
		}
		start, end = booking.Day(start), booking.Day(end).Add(24*time.Hour-time.Nanosecond)
		f.DateStart, f.DateEnd = &start, &end
	}

	return uc.repo.List(ctx, f)
}
