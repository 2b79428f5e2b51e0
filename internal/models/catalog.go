package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryMind Category = "MIND"
	CategoryBody Category = "BODY"
)

type ProgramType string

const (
	ProgramBasic       ProgramType = "BASIC"
	ProgramExtended    ProgramType = "EXTENDED"
	ProgramResidential ProgramType = "RESIDENTIAL"
)

type Service struct {
	Base

	Title         string              `gorm:"size:150;not null" json:"title"`
	Slug          string              `gorm:"size:170;uniqueIndex;not null" json:"slug"`
	Description   string              `gorm:"type:text" json:"description"`
	Category      Category            `gorm:"size:10;not null;index" json:"category"`
	Price         decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"price"`
	DurationDays  *int                `json:"duration"`
	Featured      bool                `gorm:"default:false" json:"featured"`
	Status        Status              `gorm:"size:20;default:'ACTIVE';index" json:"status"`
	ImageURL      string              `gorm:"size:255" json:"imageUrl"`
	Benefits      []string            `gorm:"type:text;serializer:json" json:"benefits"`
	Prerequisites []string            `gorm:"type:text;serializer:json" json:"prerequisites"`

	Practitioners []Practitioner `gorm:"many2many:practitioner_services" json:"practitioners,omitempty"`
	Programs      []Program      `gorm:"foreignKey:ServiceID" json:"programs,omitempty"`
}

type Practitioner struct {
	Base

	Name              string   `gorm:"size:100;not null" json:"name"`
	Slug              string   `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Title             string   `gorm:"size:100" json:"title"`
	Email             string   `gorm:"size:100" json:"email"`
	Phone             string   `gorm:"size:20" json:"phone"`
	Specialization    string   `gorm:"size:150" json:"specialization"`
	Bio               string   `gorm:"type:text" json:"bio"`
	ExperienceInYears int      `json:"experienceInYears"`
	Languages         []string `gorm:"type:text;serializer:json" json:"languages"`
	Certifications    []string `gorm:"type:text;serializer:json" json:"certifications"`
	PhotoURL          string   `gorm:"size:255" json:"photoUrl"`
	Status            Status   `gorm:"size:20;default:'ACTIVE';index" json:"status"`

	Services []Service `gorm:"many2many:practitioner_services" json:"services,omitempty"`
}

type Program struct {
	Base

	Name            string          `gorm:"size:150;not null" json:"name"`
	Slug            string          `gorm:"size:170;uniqueIndex;not null" json:"slug"`
	Description     string          `gorm:"type:text" json:"description"`
	Type            ProgramType     `gorm:"size:20;not null" json:"type"`
	SessionCount    int             `json:"sessionCount"`
	Duration        string          `gorm:"size:50" json:"duration"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	MaxParticipants *int            `json:"maxParticipants"`
	Featured        bool            `gorm:"default:false" json:"featured"`
	Status          Status          `gorm:"size:20;default:'ACTIVE';index" json:"status"`
	ImageURL        string          `gorm:"size:255" json:"imageUrl"`
	Inclusions      []string        `gorm:"type:text;serializer:json" json:"inclusions"`
	Requirements    []string        `gorm:"type:text;serializer:json" json:"requirements"`
	Schedule        string          `gorm:"type:text" json:"schedule"`

	ServiceID *string  `gorm:"type:varchar(36);index" json:"serviceId"`
	Service   *Service `gorm:"constraint:OnDelete:SET NULL;" json:"service,omitempty"`

	EnrollmentCount int64 `gorm:"-" json:"enrollmentCount"`
}

type Testimonial struct {
	Base

	PatientName   string     `gorm:"size:100;not null" json:"patientName"`
	Age           *int       `json:"age"`
	Location      string     `gorm:"size:100" json:"location"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	Rating        int        `gorm:"not null" json:"rating"`
	Featured      bool       `gorm:"default:false" json:"featured"`
	Status        Status     `gorm:"size:20;default:'ACTIVE';index" json:"status"`
	PhotoURL      string     `gorm:"size:255" json:"photoUrl"`
	TreatmentDate *time.Time `json:"treatmentDate"`

	ServiceID *string  `gorm:"type:varchar(36);index" json:"serviceId"`
	Service   *Service `gorm:"constraint:OnDelete:SET NULL;" json:"service,omitempty"`
	ProgramID *string  `gorm:"type:varchar(36);index" json:"programId"`
	Program   *Program `gorm:"constraint:OnDelete:SET NULL;" json:"program,omitempty"`
}
