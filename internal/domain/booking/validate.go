package booking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

// FieldErrors maps a field name to a human-readable reason.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + fe[k]
	}
	return "booking: invalid fields: " + strings.Join(parts, "; ")
}

func (fe FieldErrors) add(field, reason string) {
	if _, exists := fe[field]; !exists {
		fe[field] = reason
	}
}

// Validate checks only the fields owned by step. It returns nil when they are all valid.
func Validate(step Step, f Form, env Env) FieldErrors {
	fe := FieldErrors{}

	switch step {
	case StepServiceSelection:
		validateService(f.Service, env, fe)
	case StepProgramSelection:
		validateProgram(f.Program, env, fe)
	case StepScheduling:
		validateSchedule(f, env, fe)
	case StepPersonalDetails:
		validatePatient(f.Patient, fe)
	}

	if len(fe) == 0 {
		return nil
	}
	return fe
}

// ValidateAll checks every input step, as the server does on submission.
func ValidateAll(f Form, env Env) FieldErrors {
	all := FieldErrors{}
	for step := StepServiceSelection; step < StepSubmitted; step++ {
		for k, v := range Validate(step, f, env) {
			all.add(k, v)
		}
	}
	if len(all) == 0 {
		return nil
	}
	return all
}

func validateService(s ServiceStep, env Env, fe FieldErrors) {
	cat, hasCat := s.Category.Get()
	switch {
	case !hasCat:
		fe.add("category", "Please select a category")
	case !cat.Valid():
		fe.add("category", "Category must be MIND or BODY")
	}

	mode, hasMode := s.Mode.Get()
	switch {
	case !hasMode:
		fe.add("consultationType", "Please select a consultation type")
	case !mode.Valid():
		fe.add("consultationType", "Consultation type must be ONLINE or OFFLINE")
	}

	if s.ServiceID == "" {
		fe.add("serviceId", "Please select a service")
	} else if env.Catalog != nil {
		svcCat, known := env.Catalog.ServiceCategory(s.ServiceID)
		switch {
		case !known:
			fe.add("serviceId", "Selected service is not available")
		case hasCat && svcCat != cat:
			fe.add("serviceId", "Selected service does not belong to the chosen category")
		}
	}

	if s.PractitionerID == "" {
		fe.add("practitionerId", "Please select a specialist")
	}
}

func validateProgram(p ProgramStep, env Env, fe FieldErrors) {
	if p.ProgramID == "" {
		fe.add("programId", "Please select a program")
		return
	}
	if env.Catalog != nil {
		if _, ok := env.Catalog.ProgramPlan(p.ProgramID); !ok {
			fe.add("programId", "Selected program is not available")
		}
	}
}

func validateSchedule(f Form, env Env, fe FieldErrors) {
	plan, ok := planOf(f, env)
	if !ok {
		fe.add("programId", "Please select a program first")
		return
	}

	if plan.Kind() == PlanResidential {
		validateResidential(f.Schedule, env, fe)
		return
	}

	sessions := f.Schedule.Sessions
	want := plan.Sessions()
	if len(sessions) > want {
		fe.add("sessions", fmt.Sprintf("Exactly %d session(s) are required", want))
	}

	for k := 0; k < want; k++ {
		var slot SessionSlot
		if k < len(sessions) {
			slot = sessions[k]
		}
		dateKey := fmt.Sprintf("sessions[%d].date", k)
		timeKey := fmt.Sprintf("sessions[%d].time", k)

		date, hasDate := slot.Date.Get()
		if !hasDate {
			fe.add(dateKey, fmt.Sprintf("Please select a date for session %d", k+1))
		} else if k > 0 {
			prev, hasPrev := sessions[k-1].Date.Get()
			if !hasPrev {
				fe.add(dateKey, fmt.Sprintf("Select session %d's date first", k))
			} else if w := WindowAfter(prev); !w.Contains(date) {
				fe.add(dateKey, fmt.Sprintf(
					"Session %d must be between %s and %s",
					k+1, w.From.Format(DateLayout), w.To.Format(DateLayout),
				))
			}
		}

		tm, hasTime := slot.Time.Get()
		switch {
		case !hasTime:
			fe.add(timeKey, fmt.Sprintf("Please select a time for session %d", k+1))
		case !isTimeSlot(tm):
			fe.add(timeKey, "Please select one of the offered time slots")
		}
	}
}

func validateResidential(s ScheduleStep, env Env, fe FieldErrors) {
	month, hasMonth := s.ResidentialMonth.Get()
	switch {
	case !hasMonth:
		fe.add("residentialMonth", "Please select a month")
	case month < 1 || month > 12:
		fe.add("residentialMonth", "Month must be between 1 and 12")
	}

	year, hasYear := s.ResidentialYear.Get()
	first := env.Today.Year()
	last := first + ResidentialYearSpan - 1
	switch {
	case !hasYear:
		fe.add("residentialYear", "Please select a year")
	case year < first || year > last:
		fe.add("residentialYear", fmt.Sprintf("Year must be between %d and %d", first, last))
	}
}

func validatePatient(p PatientStep, fe FieldErrors) {
	if len([]rune(strings.TrimSpace(p.Name))) < 2 {
		fe.add("patientName", "Name must be at least 2 characters")
	}

	age, hasAge := p.Age.Get()
	switch {
	case !hasAge:
		fe.add("patientAge", "Please enter age")
	case age < 1 || age > 120:
		fe.add("patientAge", "Age must be between 1 and 120")
	}

	if strings.TrimSpace(p.Gender) == "" {
		fe.add("patientGender", "Please select gender")
	}

	if !validators.IsPhone(p.Mobile) {
		fe.add("patientMobile", "Please enter a valid mobile number")
	}

	if email, ok := p.Email.Get(); ok && !validators.IsEmail(email) {
		fe.add("patientEmail", "Please enter a valid email")
	}

	if report, ok := p.MedicalReport.Get(); ok {
		switch {
		case !isReportType(report.ContentType):
			fe.add("medicalReport", "Medical report must be a PDF, JPEG or PNG file")
		case len(report.Data) > MaxReportSize:
			fe.add("medicalReport", "Medical report must be 10MB or smaller")
		}
	}
}

func planOf(f Form, env Env) (Plan, bool) {
	if f.Program.ProgramID == "" || env.Catalog == nil {
		return Plan{}, false
	}
	return env.Catalog.ProgramPlan(f.Program.ProgramID)
}

// Fields exposes the errors as a plain map for transport layers.
func (fe FieldErrors) Fields() map[string]string {
	return fe
}
