package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type UpdateStatusInput struct {
	AppointmentID string
	Status        string
	AdminNotes    *string
	ActorID       string
}

type UpdateAppointmentStatus struct {
	repo  domain.Repository
	audit *audit.Dispatcher

	now func() time.Time
}

func NewUpdateAppointmentStatus(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *UpdateAppointmentStatus {
	return &UpdateAppointmentStatus{
		repo:  repo,
		audit: audit,
		now:   time.Now,
	}
}

func (uc *UpdateAppointmentStatus) Execute(
	ctx context.Context,
	in UpdateStatusInput,
) (*models.Appointment, error) {

	to, ok := domain.ParseStatus(in.Status)
	if !ok {
		return nil, httperr.ErrBusinessMsg("invalid_status", "Unknown appointment status")
	}

	ap, err := uc.repo.Get(ctx, in.AppointmentID)
	if err != nil {
		if httperr.IsNotFound(err) {
			return nil, errAppointmentNotFound
		}
		return nil, err
	}

	from := ap.Status
	if err := domain.Transition(ap, to, uc.now().UTC()); err != nil {
		return nil, err
	}
	if in.AdminNotes != nil {
		ap.AdminNotes = *in.AdminNotes
	}

	if err := uc.repo.Update(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  audit.Ptr(in.ActorID),
		Action:   "appointment_status_changed",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]string{"from": from, "to": ap.Status},
	})

	return ap, nil
}
