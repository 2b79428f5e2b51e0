package models

import "time"

type InquiryType string

const (
	InquiryGeneral      InquiryType = "GENERAL"
	InquiryAppointment  InquiryType = "APPOINTMENT"
	InquiryConsultation InquiryType = "CONSULTATION"
	InquiryComplaint    InquiryType = "COMPLAINT"
)

type InquiryStatus string

const (
	InquiryPending    InquiryStatus = "PENDING"
	InquiryRead       InquiryStatus = "READ"
	InquiryInProgress InquiryStatus = "IN_PROGRESS"
	InquiryResolved   InquiryStatus = "RESOLVED"
	InquiryClosed     InquiryStatus = "CLOSED"
)

func (s InquiryStatus) Valid() bool {
	switch s {
	case InquiryPending, InquiryRead, InquiryInProgress, InquiryResolved, InquiryClosed:
		return true
	}
	return false
}

type ContactInquiry struct {
	Base

	Name             string        `gorm:"size:100;not null" json:"name"`
	Email            string        `gorm:"size:100;not null;index" json:"email"`
	Phone            string        `gorm:"size:20" json:"phone"`
	Subject          string        `gorm:"size:200" json:"subject"`
	Message          string        `gorm:"type:text;not null" json:"message"`
	Type             InquiryType   `gorm:"size:20;default:'GENERAL';index" json:"type"`
	PreferredContact string        `gorm:"size:10;default:'EMAIL'" json:"preferredContact"`
	Status           InquiryStatus `gorm:"size:20;default:'PENDING';index" json:"status"`
	AdminNotes       string        `gorm:"type:text" json:"adminNotes"`
	RepliedAt        *time.Time    `json:"repliedAt"`
	RepliedBy        *string       `gorm:"type:varchar(36)" json:"repliedBy"`
}
