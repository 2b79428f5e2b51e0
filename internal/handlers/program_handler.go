package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/storage"
)

type ProgramHandler struct {
	db       *gorm.DB
	uploader *storage.Uploader
	audit    *audit.Dispatcher
}

func NewProgramHandler(db *gorm.DB, uploader *storage.Uploader, audit *audit.Dispatcher) *ProgramHandler {
	return &ProgramHandler{db: db, uploader: uploader, audit: audit}
}

// --------------------------------------------------
// Public
// --------------------------------------------------

func (h *ProgramHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context())

	status := c.DefaultQuery("status", string(models.StatusActive))
	if status != "" && !strings.EqualFold(status, "all") {
		q = q.Where("status = ?", strings.ToUpper(status))
	}
	if featured, ok := queryBool(c, "featured"); ok {
		q = q.Where("featured = ?", featured)
	}
	if t := c.Query("type"); t != "" {
		q = q.Where("type = ?", strings.ToUpper(t))
	}
	if serviceID := c.Query("serviceId"); serviceID != "" {
		q = q.Where("service_id = ?", serviceID)
	}

	var list []models.Program
	if err := q.
		Preload("Service").
		Order("featured DESC, created_at DESC").
		Find(&list).Error; err != nil {
		httperr.Internal(c, "program_list_failed", "Failed to fetch programs", err)
		return
	}
	if err := h.fillEnrollment(c, list); err != nil {
		httperr.Internal(c, "program_list_failed", "Failed to fetch programs", err)
		return
	}
	httpresp.OK(c, nonNil(list))
}

func (h *ProgramHandler) Get(c *gin.Context) {
	var p models.Program
	err := byIdentifier(h.db.WithContext(c.Request.Context()), c.Param("identifier")).
		Preload("Service").
		First(&p).Error
	if err != nil {
		if httperr.IsNotFound(err) {
			httperr.NotFound(c, "program_not_found", "Program not found")
			return
		}
		respondError(c, err)
		return
	}

	one := []models.Program{p}
	if err := h.fillEnrollment(c, one); err != nil {
		respondError(c, err)
		return
	}
	httpresp.OK(c, one[0])
}

// --------------------------------------------------
// Admin
// --------------------------------------------------

func (h *ProgramHandler) Create(c *gin.Context) {
	form, ok := parseForm(c)
	if !ok {
		return
	}

	p := models.Program{Status: models.StatusActive}
	if !h.apply(c, form, &p) {
		return
	}

	fe := map[string]string{}
	if p.Name == "" {
		fe["name"] = "Name is required"
	}
	if p.Description == "" {
		fe["description"] = "Description is required"
	}
	if p.Type == "" {
		fe["type"] = "Type is required"
	}
	if p.ServiceID == nil {
		fe["serviceId"] = "Service is required"
	}
	if len(fe) > 0 {
		httperr.Validation(c, fe)
		return
	}

	image, ok := saveFormImage(c, h.uploader, "image", "programs", storage.MaxImageSize)
	if !ok {
		return
	}
	p.ImageURL = image

	if err := h.db.WithContext(c.Request.Context()).Omit("Service").Create(&p).Error; err != nil {
		h.uploader.Remove(c.Request.Context(), image)
		respondError(c, err)
		return
	}

	h.dispatch(c, "program_created", p.ID)
	httpresp.Created(c, p)
}

func (h *ProgramHandler) Update(c *gin.Context) {
	p, ok := h.find(c)
	if !ok {
		return
	}

	form, ok := parseForm(c)
	if !ok {
		return
	}
	if !h.apply(c, form, p) {
		return
	}

	image, ok := saveFormImage(c, h.uploader, "image", "programs", storage.MaxImageSize)
	if !ok {
		return
	}
	oldImage := p.ImageURL
	if image != "" {
		p.ImageURL = image
	}

	if err := h.db.WithContext(c.Request.Context()).Omit("Service").Save(p).Error; err != nil {
		h.uploader.Remove(c.Request.Context(), image)
		respondError(c, err)
		return
	}
	if image != "" && oldImage != "" {
		h.uploader.Remove(c.Request.Context(), oldImage)
	}

	h.dispatch(c, "program_updated", p.ID)
	httpresp.OK(c, p)
}

func (h *ProgramHandler) ToggleStatus(c *gin.Context) {
	p, ok := h.find(c)
	if !ok {
		return
	}

	next := models.StatusActive
	if p.Status == models.StatusActive {
		next = models.StatusInactive
	}
	if err := h.db.WithContext(c.Request.Context()).Model(p).Update("status", next).Error; err != nil {
		respondError(c, err)
		return
	}
	p.Status = next

	h.dispatch(c, "program_status_toggled", p.ID)
	httpresp.OK(c, p)
}

// Delete refuses while any appointment references the program.
func (h *ProgramHandler) Delete(c *gin.Context) {
	p, ok := h.find(c)
	if !ok {
		return
	}

	var booked int64
	if err := h.db.WithContext(c.Request.Context()).
		Model(&models.Appointment{}).
		Where("program_id = ?", p.ID).
		Count(&booked).Error; err != nil {
		respondError(c, err)
		return
	}
	if booked > 0 {
		httperr.BadRequest(c, "program_has_appointments",
			"Cannot delete program with existing appointments. Please cancel all appointments first.")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Delete(p).Error; err != nil {
		respondError(c, err)
		return
	}
	h.uploader.Remove(c.Request.Context(), p.ImageURL)

	h.dispatch(c, "program_deleted", p.ID)
	httpresp.NoContent(c)
}

// --------------------------------------------------
// helpers
// --------------------------------------------------

func (h *ProgramHandler) find(c *gin.Context) (*models.Program, bool) {
	var p models.Program
	if err := h.db.WithContext(c.Request.Context()).First(&p, "id = ?", c.Param("id")).Error; err != nil {
		if httperr.IsNotFound(err) {
			httperr.NotFound(c, "program_not_found", "Program not found")
			return nil, false
		}
		respondError(c, err)
		return nil, false
	}
	return &p, true
}

func (h *ProgramHandler) fillEnrollment(c *gin.Context, list []models.Program) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	for i, p := range list {
		ids[i] = p.ID
	}

	var rows []struct {
		ProgramID string
		Count     int64
	}
	if err := h.db.WithContext(c.Request.Context()).
		Model(&models.Appointment{}).
		Select("program_id, COUNT(*) AS count").
		Where("program_id IN ?", ids).
		Group("program_id").
		Scan(&rows).Error; err != nil {
		return err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.ProgramID] = r.Count
	}
	for i := range list {
		list[i].EnrollmentCount = counts[list[i].ID]
	}
	return nil
}

// apply copies submitted fields onto p and checks the result still maps to a
// bookable plan.
func (h *ProgramHandler) apply(c *gin.Context, form formData, p *models.Program) bool {
	fe := map[string]string{}

	if form.has("name") {
		p.Name = form.get("name")
		p.Slug = slugify(p.Name)
	}
	if form.has("description") {
		p.Description = form.get("description")
	}
	if form.has("type") {
		p.Type = models.ProgramType(strings.ToUpper(form.get("type")))
	}
	if form.has("sessionCount") {
		if n := form.intPtr("sessionCount", fe); n != nil {
			p.SessionCount = *n
		}
	}
	if form.has("duration") {
		p.Duration = form.get("duration")
	}
	if form.has("price") {
		if price := form.price("price", fe); price.Valid {
			p.Price = price.Decimal
		}
	}
	if form.has("maxParticipants") {
		p.MaxParticipants = form.intPtr("maxParticipants", fe)
	}
	if form.has("featured") {
		p.Featured = form.boolean("featured")
	}
	if form.has("status") {
		p.Status = models.Status(strings.ToUpper(form.get("status")))
		if !p.Status.Valid() {
			fe["status"] = "Status must be ACTIVE, INACTIVE or BLOCKED"
		}
	}
	if form.has("inclusions") {
		p.Inclusions = form.list("inclusions")
	}
	if form.has("requirements") {
		p.Requirements = form.list("requirements")
	}
	if form.has("schedule") {
		p.Schedule = form.get("schedule")
	}
	if form.has("serviceId") {
		id := form.get("serviceId")
		p.ServiceID = nil
		if id != "" {
			var n int64
			if err := h.db.WithContext(c.Request.Context()).Model(&models.Service{}).Where("id = ?", id).Count(&n).Error; err != nil {
				respondError(c, err)
				return false
			}
			if n == 0 {
				fe["serviceId"] = "Invalid service ID"
			}
			p.ServiceID = &id
		}
	}

	if p.Type != "" {
		switch p.Type {
		case models.ProgramBasic:
			p.SessionCount = 1
		case models.ProgramResidential:
			p.SessionCount = 0
		}
		if _, err := booking.PlanFor(string(p.Type), p.SessionCount); err != nil {
			if p.Type == models.ProgramExtended {
				fe["sessionCount"] = "Extended programs need at least 2 sessions"
			} else {
				fe["type"] = "Type must be BASIC, EXTENDED or RESIDENTIAL"
			}
		}
	}

	if len(fe) > 0 {
		httperr.Validation(c, fe)
		return false
	}
	return true
}

func (h *ProgramHandler) dispatch(c *gin.Context, action, id string) {
	h.audit.Dispatch(audit.Event{
		ActorID:  audit.Ptr(middleware.UserID(c)),
		Action:   action,
		Entity:   "program",
		EntityID: &id,
	})
}
