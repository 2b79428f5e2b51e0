package booking

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Session is one dated sitting in a submitted booking.
type Session struct {
	Date time.Time
	Time string
}

type sessionWire struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Submission is the payload sent when the patient confirms the booking.
type Submission struct {
	Category         Category
	ConsultationType ConsultationMode
	ServiceID        string
	PractitionerID   string
	ProgramID        string
	Plan             Plan

	Sessions         []Session
	ResidentialMonth Optional[int]
	ResidentialYear  Optional[int]

	PatientName   string
	PatientAge    int
	PatientGender string
	PatientMobile string
	PatientEmail  Optional[string]
	MedicalReport Optional[Attachment]
}

// Assemble validates every step and builds the submission.
func Assemble(f Form, env Env) (Submission, error) {
	if fe := ValidateAll(f, env); fe != nil {
		return Submission{}, fe
	}

	plan, _ := planOf(f, env)
	cat, _ := f.Service.Category.Get()
	mode, _ := f.Service.Mode.Get()

	s := Submission{
		Category:         cat,
		ConsultationType: mode,
		ServiceID:        f.Service.ServiceID,
		PractitionerID:   f.Service.PractitionerID,
		ProgramID:        f.Program.ProgramID,
		Plan:             plan,
		PatientName:      strings.TrimSpace(f.Patient.Name),
		PatientAge:       f.Patient.Age.OrZero(),
		PatientGender:    f.Patient.Gender,
		PatientMobile:    strings.TrimSpace(f.Patient.Mobile),
		PatientEmail:     f.Patient.Email,
		MedicalReport:    f.Patient.MedicalReport,
	}

	if plan.Kind() == PlanResidential {
		s.ResidentialMonth = f.Schedule.ResidentialMonth
		s.ResidentialYear = f.Schedule.ResidentialYear
		return s, nil
	}

	s.Sessions = make([]Session, plan.Sessions())
	for k := range s.Sessions {
		slot := f.Schedule.Sessions[k]
		s.Sessions[k] = Session{Date: slot.Date.OrZero(), Time: slot.Time.OrZero()}
	}
	return s, nil
}

// Fields renders the text parts of the multipart booking request.
func (s Submission) Fields() (map[string]string, error) {
	sessions, err := EncodeSessions(s.Sessions)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{
		"category":         string(s.Category),
		"consultationType": string(s.ConsultationType),
		"serviceId":        s.ServiceID,
		"practitionerId":   s.PractitionerID,
		"programId":        s.ProgramID,
		"sessions":         sessions,
		"patientName":      s.PatientName,
		"patientAge":       strconv.Itoa(s.PatientAge),
		"patientGender":    s.PatientGender,
		"patientMobile":    s.PatientMobile,
	}
	if email, ok := s.PatientEmail.Get(); ok {
		fields["patientEmail"] = email
	}
	if m, ok := s.ResidentialMonth.Get(); ok {
		fields["residentialMonth"] = strconv.Itoa(m)
	}
	if y, ok := s.ResidentialYear.Get(); ok {
		fields["residentialYear"] = strconv.Itoa(y)
	}
	return fields, nil
}

func EncodeSessions(sessions []Session) (string, error) {
	wire := make([]sessionWire, len(sessions))
	for i, s := range sessions {
		wire[i] = sessionWire{Date: Day(s.Date).Format(DateLayout), Time: s.Time}
	}
	b, err := json.Marshal(wire)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeSessions parses the sessions field. Dates may be plain dates or RFC 3339 timestamps.
func DecodeSessions(raw string) ([]Session, error) {
	slots, err := decodeSlots(raw)
	if err != nil {
		return nil, err
	}
	out := make([]Session, len(slots))
	for i, slot := range slots {
		d, ok := slot.Date.Get()
		if !ok {
			return nil, fmt.Errorf("booking: session %d has no date", i+1)
		}
		out[i] = Session{Date: d, Time: slot.Time.OrZero()}
	}
	return out, nil
}

func decodeSlots(raw string) ([]SessionSlot, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var wire []sessionWire
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, fmt.Errorf("booking: sessions: %w", err)
	}

	slots := make([]SessionSlot, len(wire))
	for i, w := range wire {
		if w.Date != "" {
			d, err := ParseDate(w.Date)
			if err != nil {
				return nil, fmt.Errorf("booking: session %d date: %w", i+1, err)
			}
			slots[i].Date = Some(d)
		}
		if w.Time != "" {
			slots[i].Time = Some(w.Time)
		}
	}
	return slots, nil
}

// FormFromFields rebuilds a Form from the multipart fields of a booking request.
// Malformed values are reported per field; absent ones are left for Validate.
func FormFromFields(fields map[string]string, report Optional[Attachment]) (Form, FieldErrors) {
	fe := FieldErrors{}
	get := func(k string) string { return strings.TrimSpace(fields[k]) }

	var f Form

	if v := get("category"); v != "" {
		f.Service.Category = Some(Category(strings.ToUpper(v)))
	}
	if v := get("consultationType"); v != "" {
		f.Service.Mode = Some(ConsultationMode(strings.ToUpper(v)))
	}
	f.Service.ServiceID = get("serviceId")
	f.Service.PractitionerID = get("practitionerId")
	f.Program.ProgramID = get("programId")

	slots, err := decodeSlots(fields["sessions"])
	if err != nil {
		fe.add("sessions", "Sessions must be a JSON list of {date, time}")
	}
	f.Schedule.Sessions = slots

	f.Schedule.ResidentialMonth = intField(get("residentialMonth"), "residentialMonth", fe)
	f.Schedule.ResidentialYear = intField(get("residentialYear"), "residentialYear", fe)

	f.Patient.Name = get("patientName")
	f.Patient.Age = intField(get("patientAge"), "patientAge", fe)
	f.Patient.Gender = get("patientGender")
	f.Patient.Mobile = get("patientMobile")
	if v := get("patientEmail"); v != "" {
		f.Patient.Email = Some(v)
	}
	f.Patient.MedicalReport = report

	if len(fe) == 0 {
		return f, nil
	}
	return f, fe
}

func intField(v, field string, fe FieldErrors) Optional[int] {
	if v == "" {
		return None[int]()
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		fe.add(field, "Must be a whole number")
		return None[int]()
	}
	return Some(n)
}
