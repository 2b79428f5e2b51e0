package booking

import (
	"errors"
	"fmt"
	"strings"
)

type PlanKind int

const (
	PlanBasic PlanKind = iota + 1
	PlanExtended
	PlanResidential
)

func (k PlanKind) String() string {
	switch k {
	case PlanBasic:
		return "BASIC"
	case PlanExtended:
		return "EXTENDED"
	case PlanResidential:
		return "RESIDENTIAL"
	}
	return "UNKNOWN"
}

// Plan is the scheduling shape of a program: one sitting, N sittings, or a residential stay.
// The zero value is invalid.
type Plan struct {
	kind     PlanKind
	sessions int
}

var (
	ErrUnknownProgramType = errors.New("booking: unknown program type")
	ErrInvalidSessions    = errors.New("booking: extended programs need at least two sessions")
)

func BasicPlan() Plan {
	return Plan{kind: PlanBasic, sessions: 1}
}

func ExtendedPlan(sessions int) (Plan, error) {
	if sessions < 2 {
		return Plan{}, fmt.Errorf("%w: got %d", ErrInvalidSessions, sessions)
	}
	return Plan{kind: PlanExtended, sessions: sessions}, nil
}

func ResidentialPlan() Plan {
	return Plan{kind: PlanResidential}
}

// PlanFor maps a stored program type and session count to a Plan.
func PlanFor(programType string, sessionCount int) (Plan, error) {
	switch strings.ToUpper(strings.TrimSpace(programType)) {
	case "BASIC":
		return BasicPlan(), nil
	case "EXTENDED":
		return ExtendedPlan(sessionCount)
	case "RESIDENTIAL":
		return ResidentialPlan(), nil
	}
	return Plan{}, fmt.Errorf("%w: %q", ErrUnknownProgramType, programType)
}

func (p Plan) Kind() PlanKind {
	return p.kind
}

// Sessions is the number of dated sittings the plan requires (0 for residential).
func (p Plan) Sessions() int {
	return p.sessions
}

func (p Plan) Valid() bool {
	switch p.kind {
	case PlanBasic:
		return p.sessions == 1
	case PlanExtended:
		return p.sessions >= 2
	case PlanResidential:
		return p.sessions == 0
	}
	return false
}

func (p Plan) String() string {
	if p.kind == PlanExtended {
		return fmt.Sprintf("EXTENDED(%d)", p.sessions)
	}
	return p.kind.String()
}

// Catalog resolves the services and programs a form refers to.
type Catalog interface {
	ServiceCategory(serviceID string) (Category, bool)
	ProgramPlan(programID string) (Plan, bool)
}

type StaticCatalog struct {
	Services map[string]Category
	Programs map[string]Plan
}

func (c StaticCatalog) ServiceCategory(id string) (Category, bool) {
	cat, ok := c.Services[id]
	return cat, ok
}

func (c StaticCatalog) ProgramPlan(id string) (Plan, bool) {
	p, ok := c.Programs[id]
	return p, ok && p.Valid()
}
