package appointment

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/notify"
	"github.com/BruksfildServices01/clinic-scheduler/internal/storage"
	"github.com/BruksfildServices01/clinic-scheduler/internal/testutil"
)

type fixture struct {
	db       *gorm.DB
	catalog  testutil.Catalog
	repo     *repository.AppointmentGormRepository
	store    *storage.LocalStore
	dispatch *audit.Dispatcher
	create   *CreateAppointment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	log := zaptest.NewLogger(t)

	store, err := storage.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	admin := models.Admin{Name: "Admin", Email: "admin@clinic.com", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)

	f := &fixture{
		db:       db,
		catalog:  testutil.SeedCatalog(t, db),
		repo:     repository.NewAppointmentGormRepository(db),
		store:    store,
		dispatch: audit.NewDispatcher(audit.New(db), log),
	}
	f.create = NewCreateAppointment(
		f.repo,
		storage.NewUploader(store, log),
		notify.New(db, log),
		f.dispatch,
		log,
		time.UTC,
	)
	f.create.now = func() time.Time { return time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) fields(program models.Program, sessions string) map[string]string {
	return map[string]string{
		"category":         "MIND",
		"consultationType": "ONLINE",
		"serviceId":        f.catalog.MindService.ID,
		"practitionerId":   f.catalog.Practitioner.ID,
		"programId":        program.ID,
		"sessions":         sessions,
		"patientName":      "Asha Rao",
		"patientAge":       "34",
		"patientGender":    "female",
		"patientMobile":    "+91 98765 43210",
		"patientEmail":     "asha@example.com",
	}
}

func TestCreateAppointment_Extended(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sessions := `[{"date":"2025-01-15","time":"09:30 AM"},{"date":"2025-01-22","time":"10:30 AM"},{"date":"2025-02-01","time":"02:30 PM"}]`
	ap, err := f.create.Execute(ctx, CreateAppointmentInput{Fields: f.fields(f.catalog.Extended, sessions)})
	require.NoError(t, err)

	assert.NotEmpty(t, ap.ID)
	assert.Equal(t, "CONFIRMED", ap.Status)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), ap.AppointmentDate)
	require.Len(t, ap.SessionDates, 3)
	assert.Equal(t, "02:30 PM", ap.SessionDates[2].Time)
	assert.Nil(t, ap.ResidentialMonth)
	require.NotNil(t, ap.PatientEmail)

	f.dispatch.Close()

	var notes []models.Notification
	require.NoError(t, f.db.Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationAppointment, notes[0].Type)
	assert.Equal(t, "Asha Rao booked Extended", notes[0].Message)

	var logs []models.AuditLog
	require.NoError(t, f.db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "appointment_created", logs[0].Action)
}

func TestCreateAppointment_DerivesCategoryFromService(t *testing.T) {
	f := newFixture(t)
	defer f.dispatch.Close()

	fields := f.fields(f.catalog.Basic, `[{"date":"2025-01-15","time":"11:30 AM"}]`)
	delete(fields, "category")

	ap, err := f.create.Execute(context.Background(), CreateAppointmentInput{Fields: fields})
	require.NoError(t, err)
	assert.Len(t, ap.SessionDates, 1)
}

func TestCreateAppointment_ResidentialWithReport(t *testing.T) {
	f := newFixture(t)
	defer f.dispatch.Close()

	fields := f.fields(f.catalog.Residential, "")
	fields["residentialMonth"] = "3"
	fields["residentialYear"] = "2025"

	report := &storage.Upload{
		Filename:    "report.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"),
	}

	ap, err := f.create.Execute(context.Background(), CreateAppointmentInput{Fields: fields, Report: report})
	require.NoError(t, err)

	assert.Empty(t, ap.SessionDates)
	require.NotNil(t, ap.ResidentialMonth)
	assert.Equal(t, 3, *ap.ResidentialMonth)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), ap.AppointmentDate)

	require.NotNil(t, ap.MedicalReportURL)
	key, ok := storage.KeyFromURL(*ap.MedicalReportURL)
	require.True(t, ok)
	assert.Contains(t, key, "documents/")
	_, err = os.Stat(filepath.Join(f.store.Root(), filepath.FromSlash(key)))
	assert.NoError(t, err)
}

func TestCreateAppointment_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	defer f.dispatch.Close()

	tests := []struct {
		name   string
		mutate func(map[string]string)
		field  string
	}{
		{"session outside window", func(m map[string]string) {
			m["programId"] = f.catalog.Extended.ID
			m["sessions"] = `[{"date":"2025-01-15","time":"09:30 AM"},{"date":"2025-01-20","time":"09:30 AM"},{"date":"2025-01-28","time":"09:30 AM"}]`
		}, "sessions[1].date"},
		{"unknown time slot", func(m map[string]string) {
			m["sessions"] = `[{"date":"2025-01-15","time":"08:00 AM"}]`
		}, "sessions[0].time"},
		{"category mismatch", func(m map[string]string) { m["category"] = "BODY" }, "serviceId"},
		{"bad mobile", func(m map[string]string) { m["patientMobile"] = "12345" }, "patientMobile"},
		{"age not a number", func(m map[string]string) { m["patientAge"] = "thirty" }, "patientAge"},
		{"unknown practitioner", func(m map[string]string) { m["practitionerId"] = "nobody" }, "practitionerId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := f.fields(f.catalog.Basic, `[{"date":"2025-01-15","time":"09:30 AM"}]`)
			tt.mutate(fields)

			_, err := f.create.Execute(context.Background(), CreateAppointmentInput{Fields: fields})
			require.Error(t, err)

			var fe booking.FieldErrors
			require.ErrorAs(t, err, &fe)
			assert.Contains(t, fe.Fields(), tt.field)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Appointment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateAppointmentStatus(t *testing.T) {
	f := newFixture(t)
	defer f.dispatch.Close()
	ctx := context.Background()

	ap, err := f.create.Execute(ctx, CreateAppointmentInput{
		Fields: f.fields(f.catalog.Basic, `[{"date":"2025-01-15","time":"09:30 AM"}]`),
	})
	require.NoError(t, err)

	uc := NewUpdateAppointmentStatus(f.repo, f.dispatch)
	notes := "Attended on time"

	done, err := uc.Execute(ctx, UpdateStatusInput{AppointmentID: ap.ID, Status: "completed", AdminNotes: &notes, ActorID: "admin-1"})
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", done.Status)
	assert.NotNil(t, done.CompletedAt)

	_, err = uc.Execute(ctx, UpdateStatusInput{AppointmentID: ap.ID, Status: "CANCELLED"})
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))

	_, err = uc.Execute(ctx, UpdateStatusInput{AppointmentID: ap.ID, Status: "ARCHIVED"})
	assert.True(t, httperr.IsBusiness(err, "invalid_status"))

	_, err = uc.Execute(ctx, UpdateStatusInput{AppointmentID: "missing", Status: "CANCELLED"})
	assert.True(t, httperr.IsBusiness(err, "appointment_not_found"))

	got, err := NewGetAppointment(f.repo).Execute(ctx, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, notes, got.AdminNotes)
}

func TestListAppointments(t *testing.T) {
	f := newFixture(t)
	defer f.dispatch.Close()
	ctx := context.Background()

	for _, date := range []string{"2025-01-15", "2025-02-20"} {
		_, err := f.create.Execute(ctx, CreateAppointmentInput{
			Fields: f.fields(f.catalog.Basic, `[{"date":"`+date+`","time":"09:30 AM"}]`),
		})
		require.NoError(t, err)
	}

	uc := NewListAppointments(f.repo)

	apps, total, err := uc.Execute(ctx, ListAppointmentsInput{DateStart: "2025-01-01", DateEnd: "2025-01-15"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, apps, 1)

	_, total, err = uc.Execute(ctx, ListAppointmentsInput{DateStart: "2025-01-01"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total, "a half-open range is ignored")

	_, _, err = uc.Execute(ctx, ListAppointmentsInput{Status: "lost"})
	assert.True(t, httperr.IsBusiness(err, "invalid_status"))

	_, _, err = uc.Execute(ctx, ListAppointmentsInput{DateStart: "yesterday", DateEnd: "2025-01-02"})
	assert.True(t, httperr.IsBusiness(err, "invalid_date"))
}
