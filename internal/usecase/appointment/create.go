package appointment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/notify"
	"github.com/BruksfildServices01/clinic-scheduler/internal/storage"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	// Fields are the multipart form values of the booking request.
	Fields map[string]string
	Report *storage.Upload
}

// AdminNotifier fans a notice out to every admin account.
type AdminNotifier interface {
	NotifyAllAdmins(ctx context.Context, notice notify.Notice) (int, error)
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo     domain.Repository
	uploader *storage.Uploader
	notifier AdminNotifier
	audit    *audit.Dispatcher
	log      *zap.Logger
	loc      *time.Location

	now func() time.Time
}

func NewCreateAppointment(
	repo domain.Repository,
	uploader *storage.Uploader,
	notifier AdminNotifier,
	audit *audit.Dispatcher,
	log *zap.Logger,
	loc *time.Location,
) *CreateAppointment {
	return &CreateAppointment{
		repo:     repo,
		uploader: uploader,
		notifier: notifier,
		audit:    audit,
		log:      log,
		loc:      loc,
		now:      time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// Rebuild the wizard form from the request
	// --------------------------------------------------
	report := booking.None[booking.Attachment]()
	if in.Report != nil {
		report = booking.Some(booking.Attachment{
			Filename:    in.Report.Filename,
			ContentType: storage.ContentType(*in.Report),
			Data:        in.Report.Data,
		})
	}

	form, fe := booking.FormFromFields(in.Fields, report)
	if fe != nil {
		return nil, fe
	}

	catalog, err := uc.repo.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	// Older clients omit the category; it is implied by the service.
	if !form.Service.Category.IsSet() && form.Service.ServiceID != "" {
		if cat, ok := catalog.ServiceCategory(form.Service.ServiceID); ok {
			form.Service.Category = booking.Some(cat)
		}
	}

	// --------------------------------------------------
	// Same rules the wizard enforces step by step
	// --------------------------------------------------
	env := booking.Env{
		Catalog: catalog,
		Today:   booking.Day(uc.now().In(uc.loc)),
	}
	sub, err := booking.Assemble(form, env)
	if err != nil {
		return nil, err
	}

	ok, err := uc.repo.PractitionerExists(ctx, sub.PractitionerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, booking.FieldErrors{"practitionerId": "Practitioner not found"}
	}

	// --------------------------------------------------
	// Medical report
	// --------------------------------------------------
	var reportURL *string
	if att, ok := sub.MedicalReport.Get(); ok {
		obj, err := uc.uploader.SaveRaw(ctx, "documents", storage.Upload{
			Filename:    att.Filename,
			ContentType: att.ContentType,
			Data:        att.Data,
		})
		if err != nil {
			return nil, fmt.Errorf("store medical report: %w", err)
		}
		reportURL = &obj.URL
	}

	// --------------------------------------------------
	// Persist
	// --------------------------------------------------
	ap := fromSubmission(sub)
	ap.MedicalReportURL = reportURL

	if err := uc.repo.Create(ctx, ap); err != nil {
		if reportURL != nil {
			uc.uploader.Remove(ctx, *reportURL)
		}
		return nil, err
	}

	// --------------------------------------------------
	// Admin notification + audit
	// --------------------------------------------------
	uc.notifyAdmins(ctx, ap)

	uc.audit.Dispatch(audit.Event{
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{
			"programId": ap.ProgramID,
			"plan":      sub.Plan.String(),
		},
	})

	return ap, nil
}

func (uc *CreateAppointment) notifyAdmins(ctx context.Context, ap *models.Appointment) {
	programName := ap.ProgramID
	if p, err := uc.repo.GetProgram(ctx, ap.ProgramID); err == nil {
		programName = p.Name
	}

	_, err := uc.notifier.NotifyAllAdmins(ctx, notify.Notice{
		Title:       "New Appointment",
		Message:     fmt.Sprintf("%s booked %s", ap.PatientName, programName),
		Type:        models.NotificationAppointment,
		RelatedID:   ap.ID,
		RelatedType: "appointment",
	})
	if err != nil {
		uc.log.Warn("appointment notification failed",
			zap.String("appointment_id", ap.ID),
			zap.Error(err),
		)
	}
}

func fromSubmission(sub booking.Submission) *models.Appointment {
	ap := &models.Appointment{
		PatientName:      sub.PatientName,
		PatientAge:       sub.PatientAge,
		PatientGender:    sub.PatientGender,
		PatientMobile:    sub.PatientMobile,
		PatientEmail:     sub.PatientEmail.Ptr(),
		ConsultationType: string(sub.ConsultationType),
		ServiceID:        sub.ServiceID,
		PractitionerID:   sub.PractitionerID,
		ProgramID:        sub.ProgramID,
		ResidentialMonth: sub.ResidentialMonth.Ptr(),
		ResidentialYear:  sub.ResidentialYear.Ptr(),
		Status:           string(domain.InitialStatus()),
		SessionDates:     []models.SessionDate{},
	}

	for _, s := range sub.Sessions {
		ap.SessionDates = append(ap.SessionDates, models.SessionDate{Date: s.Date, Time: s.Time})
	}

	switch {
	case len(sub.Sessions) > 0:
		ap.AppointmentDate = sub.Sessions[0].Date
	case sub.ResidentialMonth.IsSet() && sub.ResidentialYear.IsSet():
		ap.AppointmentDate = time.Date(
			sub.ResidentialYear.OrZero(),
			time.Month(sub.ResidentialMonth.OrZero()),
			1, 0, 0, 0, 0, time.UTC,
		)
	}
	return ap
}
