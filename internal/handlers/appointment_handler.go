package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	"github.com/BruksfildServices01/clinic-scheduler/internal/usecase/appointment"
)

const (
	multipartMemory = 32 << 20
	// bookingBodyLimit leaves room for the text fields around the report.
	bookingBodyLimit = booking.MaxReportSize + 1<<20
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	createUC *appointment.CreateAppointment
	listUC   *appointment.ListAppointments
	getUC    *appointment.GetAppointment
	statusUC *appointment.UpdateAppointmentStatus
}

func NewAppointmentHandler(
	createUC *appointment.CreateAppointment,
	listUC *appointment.ListAppointments,
	getUC *appointment.GetAppointment,
	statusUC *appointment.UpdateAppointmentStatus,
) *AppointmentHandler {
	return &AppointmentHandler{
		createUC: createUC,
		listUC:   listUC,
		getUC:    getUC,
		statusUC: statusUC,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type UpdateAppointmentStatusRequest struct {
	Status     string  `json:"status" binding:"required"`
	AdminNotes *string `json:"adminNotes"`
}

// ======================================================
// CREATE (public booking wizard submission)
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, bookingBodyLimit)

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			httperr.TooLarge(c, "file_too_large", "Medical report must be 10MB or smaller")
			return
		}
		httperr.BadRequest(c, "invalid_request", "Invalid form data")
		return
	}

	report, err := formFile(c, "medicalReport", 0)
	if err != nil {
		httperr.BadRequest(c, "invalid_request", "Could not read medical report")
		return
	}

	ap, err := h.createUC.Execute(c.Request.Context(), appointment.CreateAppointmentInput{
		Fields: formFields(c),
		Report: report,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	httpresp.Created(c, ap)
}

// ======================================================
// ADMIN
// ======================================================

func (h *AppointmentHandler) List(c *gin.Context) {
	limit, offset := pagination(c)

	apps, total, err := h.listUC.Execute(c.Request.Context(), appointment.ListAppointmentsInput{
		Status:         c.Query("status"),
		ServiceID:      c.Query("serviceId"),
		PractitionerID: c.Query("practitionerId"),
		Search:         c.Query("searchQuery"),
		DateStart:      c.Query("dateStart"),
		DateEnd:        c.Query("dateEnd"),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	httpresp.Page(c, apps, total, limit, offset)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	ap, err := h.getUC.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	var req UpdateAppointmentStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.statusUC.Execute(c.Request.Context(), appointment.UpdateStatusInput{
		AppointmentID: c.Param("id"),
		Status:        req.Status,
		AdminNotes:    req.AdminNotes,
		ActorID:       middleware.UserID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	httpresp.OK(c, ap)
}
