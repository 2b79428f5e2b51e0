package booking

import (
	"context"
	"errors"
)

// State is the whole wizard: the current step, every step's fields, and the
// last submit failure, if any.
type State struct {
	Step        Step
	Form        Form
	SubmitError Optional[string]
}

func NewState() State {
	return State{Step: StepServiceSelection}
}

// Submitter delivers an assembled booking.
type Submitter interface {
	Submit(ctx context.Context, s Submission) error
}

// UserFacing errors carry a message meant to be shown to the patient verbatim.
type UserFacing interface {
	UserMessage() string
}

const GenericSubmitError = "We could not book your appointment. Please try again."

var ErrNotReady = errors.New("booking: submit is only possible from PersonalDetails")

// CanAdvance validates the fields of the current step.
func CanAdvance(s State, env Env) FieldErrors {
	return Validate(s.Step, s.Form, env)
}

// Advance moves to the next input step when the current one is valid. Leaving
// PersonalDetails requires Submit, so Advance leaves that step and Submitted unchanged.
func Advance(s State, env Env) (State, FieldErrors) {
	if s.Step >= StepPersonalDetails {
		return s, nil
	}
	if fe := CanAdvance(s, env); fe != nil {
		return s, fe
	}
	s.Step++
	return s, nil
}

// Retreat moves one step back without touching any field. ServiceSelection and
// Submitted are fixed points.
func Retreat(s State) State {
	if s.Step > StepServiceSelection && s.Step < StepSubmitted {
		s.Step--
	}
	return s
}

// Submit assembles the form and hands it to sub. On success the returned state
// is Submitted with every field cleared; on failure the form is kept and the
// error message is recorded for display.
func Submit(ctx context.Context, s State, env Env, sub Submitter) (State, error) {
	if s.Step != StepPersonalDetails {
		return s, ErrNotReady
	}

	payload, err := Assemble(s.Form, env)
	if err != nil {
		return s, err
	}

	if err := sub.Submit(ctx, payload); err != nil {
		s.SubmitError = Some(SubmitErrorMessage(err))
		return s, err
	}

	return State{Step: StepSubmitted}, nil
}

// SubmitErrorMessage picks the text shown after a failed submit.
func SubmitErrorMessage(err error) string {
	var uf UserFacing
	if errors.As(err, &uf) {
		if msg := uf.UserMessage(); msg != "" {
			return msg
		}
	}
	return GenericSubmitError
}
