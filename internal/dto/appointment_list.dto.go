package dto

import (
	"strings"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type AppointmentListDTO struct {
	ID              string    `json:"id"`
	PatientName     string    `json:"patientName"`
	PatientMobile   string    `json:"patientMobile"`
	ServiceTitle    string    `json:"serviceTitle"`
	Practitioner    string    `json:"practitioner"`
	ProgramName     string    `json:"programName"`
	AppointmentDate time.Time `json:"appointmentDate"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

func NewAppointmentListDTO(ap models.Appointment) AppointmentListDTO {
	out := AppointmentListDTO{
		ID:              ap.ID,
		PatientName:     ap.PatientName,
		PatientMobile:   ap.PatientMobile,
		AppointmentDate: ap.AppointmentDate,
		Status:          ap.Status,
		CreatedAt:       ap.CreatedAt,
	}
	if ap.Service != nil {
		out.ServiceTitle = ap.Service.Title
	}
	if ap.Practitioner != nil {
		out.Practitioner = strings.TrimSpace(ap.Practitioner.Title + " " + ap.Practitioner.Name)
	}
	if ap.Program != nil {
		out.ProgramName = ap.Program.Name
	}
	return out
}
