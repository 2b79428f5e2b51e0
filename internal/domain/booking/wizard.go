package booking

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrSubmitted            = errors.New("booking: wizard already submitted")
	ErrSessionIndex         = errors.New("booking: no such session")
	ErrPreviousSessionUnset = errors.New("booking: previous session has no date")
	ErrUnknownTimeSlot      = errors.New("booking: time slot is not offered")
)

// OutsideWindowError rejects a date the picker would not offer.
type OutsideWindowError struct {
	Session int
	Window  Window
}

func (e *OutsideWindowError) Error() string {
	return fmt.Sprintf(
		"booking: session %d must be between %s and %s",
		e.Session+1, e.Window.From.Format(DateLayout), e.Window.To.Format(DateLayout),
	)
}

// Wizard is a mutable holder around State.
type Wizard struct {
	state  State
	env    Env
	errors FieldErrors
}

func NewWizard(env Env) *Wizard {
	return &Wizard{state: NewState(), env: env}
}

func (w *Wizard) State() State {
	s := w.state
	s.Form.Schedule.Sessions = append([]SessionSlot(nil), w.state.Form.Schedule.Sessions...)
	return s
}

func (w *Wizard) Step() Step {
	return w.state.Step
}

func (w *Wizard) Form() Form {
	return w.State().Form
}

// Errors returns the field errors of the last rejected Advance or Submit.
func (w *Wizard) Errors() FieldErrors {
	return w.errors
}

func (w *Wizard) SubmitError() (string, bool) {
	return w.state.SubmitError.Get()
}

func (w *Wizard) DismissError() {
	w.state.SubmitError = None[string]()
}

// -------- Service selection --------

func (w *Wizard) SelectCategory(c Category) {
	if w.done() {
		return
	}
	svc := &w.state.Form.Service
	svc.Category = Some(c)
	if svc.ServiceID != "" && w.env.Catalog != nil {
		if cat, ok := w.env.Catalog.ServiceCategory(svc.ServiceID); ok && cat != c {
			svc.ServiceID = ""
		}
	}
}

func (w *Wizard) SelectConsultationMode(m ConsultationMode) {
	if w.done() {
		return
	}
	w.state.Form.Service.Mode = Some(m)
}

func (w *Wizard) SelectService(id string) {
	if w.done() {
		return
	}
	w.state.Form.Service.ServiceID = id
}

func (w *Wizard) SelectPractitioner(id string) {
	if w.done() {
		return
	}
	w.state.Form.Service.PractitionerID = id
}

// -------- Program selection --------

// SelectProgram stores the program and sizes the session list to its plan,
// keeping already entered sessions that still fit.
func (w *Wizard) SelectProgram(id string) {
	if w.done() {
		return
	}
	w.state.Form.Program.ProgramID = id

	plan, ok := planOf(w.state.Form, w.env)
	if !ok || plan.Kind() == PlanResidential {
		w.state.Form.Schedule.Sessions = nil
		return
	}

	sessions := w.state.Form.Schedule.Sessions
	if len(sessions) > plan.Sessions() {
		sessions = sessions[:plan.Sessions()]
	}
	for len(sessions) < plan.Sessions() {
		sessions = append(sessions, SessionSlot{})
	}
	w.state.Form.Schedule.Sessions = sessions
}

// -------- Scheduling --------

// SetSessionDate applies the date picker's rules: session k>0 needs session
// k-1's date and must fall inside the window that date opens.
func (w *Wizard) SetSessionDate(k int, date time.Time) error {
	if w.done() {
		return ErrSubmitted
	}
	sessions := w.state.Form.Schedule.Sessions
	if k < 0 || k >= len(sessions) {
		return ErrSessionIndex
	}

	date = Day(date)
	if k > 0 {
		win, ok := SessionWindow(w.state.Form, k)
		if !ok {
			return ErrPreviousSessionUnset
		}
		if !win.Contains(date) {
			return &OutsideWindowError{Session: k, Window: win}
		}
	}

	sessions[k].Date = Some(date)
	return nil
}

func (w *Wizard) SetSessionTime(k int, slot string) error {
	if w.done() {
		return ErrSubmitted
	}
	sessions := w.state.Form.Schedule.Sessions
	if k < 0 || k >= len(sessions) {
		return ErrSessionIndex
	}
	if !isTimeSlot(slot) {
		return ErrUnknownTimeSlot
	}
	sessions[k].Time = Some(slot)
	return nil
}

func (w *Wizard) SetResidential(month, year int) {
	if w.done() {
		return
	}
	w.state.Form.Schedule.ResidentialMonth = Some(month)
	w.state.Form.Schedule.ResidentialYear = Some(year)
}

// -------- Personal details --------

func (w *Wizard) UpdatePatient(fn func(p *PatientStep)) {
	if w.done() {
		return
	}
	fn(&w.state.Form.Patient)
}

// -------- Transitions --------

// Advance returns nil when the wizard moved forward.
func (w *Wizard) Advance() FieldErrors {
	next, fe := Advance(w.state, w.env)
	w.state = next
	w.errors = fe
	return fe
}

func (w *Wizard) Retreat() {
	w.state = Retreat(w.state)
	w.errors = nil
}

func (w *Wizard) Submit(ctx context.Context, sub Submitter) error {
	next, err := Submit(ctx, w.state, w.env, sub)
	w.state = next

	var fe FieldErrors
	if errors.As(err, &fe) {
		w.errors = fe
	} else {
		w.errors = nil
	}
	return err
}

func (w *Wizard) done() bool {
	return w.state.Step == StepSubmitted
}
