package booking

import "time"

const DateLayout = "2006-01-02"

// TimeSlots are the sitting times offered for every session.
var TimeSlots = []string{
	"09:30 AM",
	"10:30 AM",
	"11:30 AM",
	"02:30 PM",
	"03:30 PM",
	"04:30 PM",
}

const (
	ResidentialYearSpan = 5
	MaxReportSize       = 10 << 20
)

var ReportContentTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
}

type ServiceStep struct {
	Category       Optional[Category]
	Mode           Optional[ConsultationMode]
	ServiceID      string
	PractitionerID string
}

type ProgramStep struct {
	ProgramID string
}

type SessionSlot struct {
	Date Optional[time.Time]
	Time Optional[string]
}

type ScheduleStep struct {
	Sessions         []SessionSlot
	ResidentialMonth Optional[int]
	ResidentialYear  Optional[int]
}

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type PatientStep struct {
	Name          string
	Age           Optional[int]
	Gender        string
	Mobile        string
	Email         Optional[string]
	MedicalReport Optional[Attachment]
}

// Form holds one record per input step.
type Form struct {
	Service  ServiceStep
	Program  ProgramStep
	Schedule ScheduleStep
	Patient  PatientStep
}

// Env is what validation needs from outside the form.
type Env struct {
	Catalog Catalog
	Today   time.Time
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err == nil {
		return t, nil
	}
	if t, rerr := time.Parse(time.RFC3339, s); rerr == nil {
		return Day(t), nil
	}
	return time.Time{}, err
}

// Window is an inclusive range of selectable dates.
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) Contains(d time.Time) bool {
	d = Day(d)
	return !d.Before(w.From) && !d.After(w.To)
}

// WindowAfter is the date range open to the session following one on prev:
// from one week to two weeks after it.
func WindowAfter(prev time.Time) Window {
	prev = Day(prev)
	return Window{
		From: prev.AddDate(0, 0, 7),
		To:   prev.AddDate(0, 0, 14),
	}
}

// SessionWindow returns the selectable range for session k. It reports false
// for session 0, which is unbounded, and for sessions whose predecessor has no date.
func SessionWindow(f Form, k int) (Window, bool) {
	if k <= 0 || k >= len(f.Schedule.Sessions) {
		return Window{}, false
	}
	prev, ok := f.Schedule.Sessions[k-1].Date.Get()
	if !ok {
		return Window{}, false
	}
	return WindowAfter(prev), true
}

// ResidentialYears lists the years offered for a residential stay.
func ResidentialYears(today time.Time) []int {
	years := make([]int, ResidentialYearSpan)
	for i := range years {
		years[i] = today.Year() + i
	}
	return years
}

func isTimeSlot(s string) bool {
	for _, slot := range TimeSlots {
		if slot == s {
			return true
		}
	}
	return false
}

func isReportType(ct string) bool {
	for _, t := range ReportContentTypes {
		if t == ct {
			return true
		}
	}
	return false
}
