package appointment

import (
	"context"
	"net/http"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

var errAppointmentNotFound = httperr.ErrStatus(http.StatusNotFound, "appointment_not_found", "Appointment not found")

type GetAppointment struct {
	repo domain.Repository
}

func NewGetAppointment(repo domain.Repository) *GetAppointment {
	return &GetAppointment{repo: repo}
}

func (uc *GetAppointment) Execute(ctx context.Context, id string) (*models.Appointment, error) {
	ap, err := uc.repo.Get(ctx, id)
	if err != nil {
		if httperr.IsNotFound(err) {
			return nil, errAppointmentNotFound
		}
		return nil, err
	}
	return ap, nil
}
