package models

import "time"

type NotificationType string

const (
	NotificationInfo        NotificationType = "INFO"
	NotificationSuccess     NotificationType = "SUCCESS"
	NotificationWarning     NotificationType = "WARNING"
	NotificationError       NotificationType = "ERROR"
	NotificationAppointment NotificationType = "APPOINTMENT"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationSuccess, NotificationWarning, NotificationError, NotificationAppointment:
		return true
	}
	return false
}

type Notification struct {
	Base

	UserID      string           `gorm:"type:varchar(36);not null;index" json:"userId"`
	Title       string           `gorm:"size:200;not null" json:"title"`
	Message     string           `gorm:"type:text;not null" json:"message"`
	Type        NotificationType `gorm:"size:20;default:'INFO'" json:"type"`
	Read        bool             `gorm:"default:false;index" json:"read"`
	ReadAt      *time.Time       `json:"readAt"`
	RelatedID   *string          `gorm:"type:varchar(36)" json:"relatedId"`
	RelatedType *string          `gorm:"size:30" json:"relatedType"`
}
