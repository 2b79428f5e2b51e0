package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// Filter narrows the admin appointment list. Zero values match everything.
type Filter struct {
	Status         Status
	ServiceID      string
	PractitionerID string
	Search         string
	DateStart      *time.Time
	DateEnd        *time.Time
	Limit          int
	Offset         int
}

type Repository interface {
	// -------- Catalog --------
	LoadCatalog(ctx context.Context) (booking.Catalog, error)

	PractitionerExists(ctx context.Context, id string) (bool, error)

	GetProgram(ctx context.Context, id string) (*models.Program, error)

	// -------- Appointment --------
	Create(ctx context.Context, ap *models.Appointment) error

	Get(ctx context.Context, id string) (*models.Appointment, error)

	Update(ctx context.Context, ap *models.Appointment) error

	List(ctx context.Context, f Filter) ([]models.Appointment, int64, error)
}
