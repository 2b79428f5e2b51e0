package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

// LoadCatalog snapshots the active services and programs. Programs whose
// type does not map to a plan are left out and so cannot be booked.
func (r *AppointmentGormRepository) LoadCatalog(ctx context.Context) (booking.Catalog, error) {
	var services []models.Service
	if err := r.db.WithContext(ctx).
		Select("id", "category").
		Where("status = ?", models.StatusActive).
		Find(&services).Error; err != nil {
		return nil, err
	}

	var programs []models.Program
	if err := r.db.WithContext(ctx).
		Select("id", "type", "session_count").
		Where("status = ?", models.StatusActive).
		Find(&programs).Error; err != nil {
		return nil, err
	}

	cat := booking.StaticCatalog{
		Services: make(map[string]booking.Category, len(services)),
		Programs: make(map[string]booking.Plan, len(programs)),
	}
	for _, s := range services {
		cat.Services[s.ID] = booking.Category(s.Category)
	}
	for _, p := range programs {
		plan, err := booking.PlanFor(string(p.Type), p.SessionCount)
		if err != nil {
			continue
		}
		cat.Programs[p.ID] = plan
	}
	return cat, nil
}

func (r *AppointmentGormRepository) PractitionerExists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Practitioner{}).
		Where("id = ? AND status = ?", id, models.StatusActive).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AppointmentGormRepository) GetProgram(ctx context.Context, id string) (*models.Program, error) {
	var p models.Program
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *AppointmentGormRepository) Create(ctx context.Context, ap *models.Appointment) error {
	return r.db.WithContext(ctx).Create(ap).Error
}

func (r *AppointmentGormRepository) Get(ctx context.Context, id string) (*models.Appointment, error) {
	var ap models.Appointment
	if err := r.withRelations(ctx).First(&ap, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) Update(ctx context.Context, ap *models.Appointment) error {
	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", ap.ID).
		Updates(map[string]any{
			"status":       ap.Status,
			"admin_notes":  ap.AdminNotes,
			"cancelled_at": ap.CancelledAt,
			"completed_at": ap.CompletedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *AppointmentGormRepository) List(ctx context.Context, f domain.Filter) ([]models.Appointment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Appointment{})

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ServiceID != "" {
		q = q.Where("service_id = ?", f.ServiceID)
	}
	if f.PractitionerID != "" {
		q = q.Where("practitioner_id = ?", f.PractitionerID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(patient_name) LIKE ? OR patient_mobile LIKE ?", like, like)
	}
	if f.DateStart != nil && f.DateEnd != nil {
		q = q.Where("appointment_date >= ? AND appointment_date <= ?", f.DateStart.UTC(), f.DateEnd.UTC())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Preload("Service").Preload("Practitioner").Preload("Program").
		Order("appointment_date DESC, created_at DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var apps []models.Appointment
	if err := q.Find(&apps).Error; err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *AppointmentGormRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Service").
		Preload("Practitioner").
		Preload("Program")
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
