package models

import "time"

type SessionDate struct {
	Date time.Time `json:"date"`
	Time string    `json:"time"`
}

type Appointment struct {
	Base

	PatientName   string  `gorm:"size:100;not null" json:"patientName"`
	PatientAge    int     `json:"patientAge"`
	PatientGender string  `gorm:"size:20" json:"patientGender"`
	PatientMobile string  `gorm:"size:20;index" json:"patientMobile"`
	PatientEmail  *string `gorm:"size:100;index" json:"patientEmail"`

	ConsultationType string `gorm:"size:10" json:"consultationType"`

	ServiceID      string        `gorm:"type:varchar(36);index;not null" json:"serviceId"`
	Service        *Service      `json:"service,omitempty"`
	PractitionerID string        `gorm:"type:varchar(36);index;not null" json:"practitionerId"`
	Practitioner   *Practitioner `json:"practitioner,omitempty"`
	ProgramID      string        `gorm:"type:varchar(36);index;not null" json:"programId"`
	Program        *Program      `json:"program,omitempty"`

	AppointmentDate  time.Time     `gorm:"index" json:"appointmentDate"`
	SessionDates     []SessionDate `gorm:"type:text;serializer:json" json:"sessionDates"`
	ResidentialMonth *int          `json:"residentialMonth"`
	ResidentialYear  *int          `json:"residentialYear"`
	MedicalReportURL *string       `gorm:"size:255" json:"medicalReportUrl"`

	Status      string     `gorm:"size:20;default:'CONFIRMED';index" json:"status"`
	AdminNotes  string     `gorm:"type:text" json:"adminNotes"`
	CancelledAt *time.Time `json:"cancelledAt"`
	CompletedAt *time.Time `json:"completedAt"`
}
