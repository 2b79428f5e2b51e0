package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/dashboard"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type DashboardGormRepository struct {
	db *gorm.DB
}

func NewDashboardGormRepository(db *gorm.DB) *DashboardGormRepository {
	return &DashboardGormRepository{db: db}
}

func (r *DashboardGormRepository) appointments(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Appointment{})
}

func (r *DashboardGormRepository) CountAppointmentsOn(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.appointments(ctx).
		Where("appointment_date >= ? AND appointment_date < ?", from.UTC(), to.UTC()).
		Count(&n).Error
	return n, err
}

func (r *DashboardGormRepository) CompletedRevenueSince(ctx context.Context, from time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Table("appointments").
		Select("COALESCE(SUM(programs.price), 0)").
		Joins("JOIN programs ON programs.id = appointments.program_id").
		Where("appointments.status = ? AND appointments.created_at >= ?", string(appointment.StatusCompleted), from.UTC()).
		Row().
		Scan(&total)
	return total, err
}

// CountPatients counts distinct patient e-mails; bookings without one are not counted.
func (r *DashboardGormRepository) CountPatients(ctx context.Context) (int64, error) {
	var n int64
	err := r.appointments(ctx).
		Where("patient_email IS NOT NULL AND patient_email <> ''").
		Distinct("patient_email").
		Count(&n).Error
	return n, err
}

func (r *DashboardGormRepository) CountActivePractitioners(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Practitioner{}).
		Where("status = ?", models.StatusActive).
		Count(&n).Error
	return n, err
}

func (r *DashboardGormRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.appointments(ctx).Where("status = ?", status).Count(&n).Error
	return n, err
}

func (r *DashboardGormRepository) CountCompletedSince(ctx context.Context, from time.Time) (int64, error) {
	var n int64
	err := r.appointments(ctx).
		Where("status = ? AND completed_at >= ?", string(appointment.StatusCompleted), from.UTC()).
		Count(&n).Error
	return n, err
}

func (r *DashboardGormRepository) PopularServices(ctx context.Context, limit int) ([]domain.ServiceCount, error) {
	var rows []domain.ServiceCount
	err := r.db.WithContext(ctx).
		Table("appointments").
		Select("services.id AS service_id, services.title AS title, COUNT(appointments.id) AS count").
		Joins("JOIN services ON services.id = appointments.service_id").
		Group("services.id, services.title").
		Order("count DESC, services.title ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *DashboardGormRepository) RecentAppointments(ctx context.Context, limit int) ([]models.Appointment, error) {
	var apps []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Service").
		Preload("Practitioner").
		Preload("Program").
		Order("created_at DESC").
		Limit(limit).
		Find(&apps).Error
	return apps, err
}

var _ domain.Repository = (*DashboardGormRepository)(nil)
