package booking

type Step int

const (
	StepServiceSelection Step = iota
	StepProgramSelection
	StepScheduling
	StepPersonalDetails
	StepSubmitted
)

func (s Step) String() string {
	switch s {
	case StepServiceSelection:
		return "ServiceSelection"
	case StepProgramSelection:
		return "ProgramSelection"
	case StepScheduling:
		return "Scheduling"
	case StepPersonalDetails:
		return "PersonalDetails"
	case StepSubmitted:
		return "Submitted"
	}
	return "Unknown"
}

type Category string

const (
	CategoryMind Category = "MIND"
	CategoryBody Category = "BODY"
)

func (c Category) Valid() bool {
	return c == CategoryMind || c == CategoryBody
}

type ConsultationMode string

const (
	ModeOnline  ConsultationMode = "ONLINE"
	ModeOffline ConsultationMode = "OFFLINE"
)

func (m ConsultationMode) Valid() bool {
	return m == ModeOnline || m == ModeOffline
}
