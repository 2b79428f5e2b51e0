package models

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&Admin{},
		&Service{},
		&Practitioner{},
		&Program{},
		&Testimonial{},
		&Appointment{},
		&ContactInquiry{},
		&Notification{},
		&AuditLog{},
	}
}
