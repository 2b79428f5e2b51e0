package handlers

import (
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/storage"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

type PractitionerHandler struct {
	db       *gorm.DB
	uploader *storage.Uploader
	audit    *audit.Dispatcher
}

func NewPractitionerHandler(db *gorm.DB, uploader *storage.Uploader, audit *audit.Dispatcher) *PractitionerHandler {
	return &PractitionerHandler{db: db, uploader: uploader, audit: audit}
}

// PublicList serves the active practitioners the booking wizard offers,
// optionally only those attached to serviceId.
func (h *PractitionerHandler) PublicList(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).
		Where("practitioners.status = ?", models.StatusActive)

	if serviceID := c.Query("serviceId"); serviceID != "" {
		q = q.Where("practitioners.id IN (?)",
			h.db.Table("practitioner_services").Select("practitioner_id").Where("service_id = ?", serviceID))
	}

	var list []models.Practitioner
	if err := q.
		Preload("Services", "status = ?", models.StatusActive).
		Order("practitioners.name ASC").
		Find(&list).Error; err != nil {
		httperr.Internal(c, "practitioner_list_failed", "Failed to fetch practitioners", err)
		return
	}
	httpresp.OK(c, nonNil(list))
}

func (h *PractitionerHandler) List(c *gin.Context) {
	var list []models.Practitioner
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Services").
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		httperr.Internal(c, "practitioner_list_failed", "Failed to fetch practitioners", err)
		return
	}
	httpresp.OK(c, nonNil(list))
}

func (h *PractitionerHandler) Create(c *gin.Context) {
	form, ok := parseForm(c)
	if !ok {
		return
	}

	p := models.Practitioner{Status: models.StatusActive}
	serviceIDs, ok := h.apply(c, form, &p)
	if !ok {
		return
	}
	if p.Name == "" {
		httperr.Validation(c, map[string]string{"name": "Name is required"})
		return
	}

	photo, ok := saveFormImage(c, h.uploader, "photo", "practitioners", storage.MaxImageSize)
	if !ok {
		return
	}
	p.PhotoURL = photo

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Services").Create(&p).Error; err != nil {
			return err
		}
		return h.attachServices(tx, &p, serviceIDs)
	})
	if err != nil {
		h.uploader.Remove(c.Request.Context(), photo)
		respondError(c, err)
		return
	}

	h.dispatch(c, "practitioner_created", p.ID)
	httpresp.Created(c, p)
}

func (h *PractitionerHandler) Update(c *gin.Context) {
	p, ok := h.find(c)
	if !ok {
		return
	}

	form, ok := parseForm(c)
	if !ok {
		return
	}
	serviceIDs, ok := h.apply(c, form, p)
	if !ok {
		return
	}

	photo, ok := saveFormImage(c, h.uploader, "photo", "practitioners", storage.MaxImageSize)
	if !ok {
		return
	}
	oldPhoto := p.PhotoURL
	if photo != "" {
		p.PhotoURL = photo
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Services").Save(p).Error; err != nil {
			return err
		}
		if serviceIDs == nil {
			return nil
		}
		return h.attachServices(tx, p, serviceIDs)
	})
	if err != nil {
		h.uploader.Remove(c.Request.Context(), photo)
		respondError(c, err)
		return
	}
	if photo != "" && oldPhoto != "" {
		h.uploader.Remove(c.Request.Context(), oldPhoto)
	}

	h.dispatch(c, "practitioner_updated", p.ID)
	httpresp.OK(c, p)
}

// ToggleStatus flips between ACTIVE and BLOCKED.
func (h *PractitionerHandler) ToggleStatus(c *gin.Context) {
	p, ok := h.find(c)
	if !ok {
		return
	}

	next := models.StatusActive
	if p.Status == models.StatusActive {
		next = models.StatusBlocked
	}
	if err := h.db.WithContext(c.Request.Context()).Model(p).Update("status", next).Error; err != nil {
		respondError(c, err)
		return
	}
	p.Status = next

	h.dispatch(c, "practitioner_status_toggled", p.ID)
	httpresp.OK(c, p)
}

func (h *PractitionerHandler) Delete(c *gin.Context) {
	p, ok := h.find(c)
	if !ok {
		return
	}

	var booked int64
	if err := h.db.WithContext(c.Request.Context()).
		Model(&models.Appointment{}).
		Where("practitioner_id = ?", p.ID).
		Count(&booked).Error; err != nil {
		respondError(c, err)
		return
	}
	if booked > 0 {
		httperr.BadRequest(c, "practitioner_has_appointments", "Cannot delete a practitioner with existing appointments. Block them instead.")
		return
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(p).Association("Services").Clear(); err != nil {
			return err
		}
		return tx.Delete(p).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.uploader.Remove(c.Request.Context(), p.PhotoURL)

	h.dispatch(c, "practitioner_deleted", p.ID)
	httpresp.NoContent(c)
}

// --------------------------------------------------
// helpers
// --------------------------------------------------

func (h *PractitionerHandler) find(c *gin.Context) (*models.Practitioner, bool) {
	var p models.Practitioner
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Services").
		First(&p, "id = ?", c.Param("id")).Error; err != nil {
		if httperr.IsNotFound(err) {
			httperr.NotFound(c, "practitioner_not_found", "Practitioner not found")
			return nil, false
		}
		respondError(c, err)
		return nil, false
	}
	return &p, true
}

// apply copies the submitted fields onto p. The returned service ids are nil
// when the form did not mention services.
func (h *PractitionerHandler) apply(c *gin.Context, form formData, p *models.Practitioner) ([]string, bool) {
	fe := map[string]string{}

	if form.has("name") {
		p.Name = form.get("name")
		p.Slug = slugify(p.Name)
	}
	for k, dst := range map[string]*string{
		"title":          &p.Title,
		"phone":          &p.Phone,
		"specialization": &p.Specialization,
		"bio":            &p.Bio,
	} {
		if form.has(k) {
			*dst = form.get(k)
		}
	}
	if form.has("email") {
		p.Email = validators.NormalizeEmail(form.get("email"))
		if p.Email != "" && !validators.IsEmail(p.Email) {
			fe["email"] = "Please enter a valid email"
		}
	}
	if form.has("experienceInYears") {
		if n := form.intPtr("experienceInYears", fe); n != nil {
			p.ExperienceInYears = *n
		}
	}
	if form.has("languages") {
		p.Languages = form.list("languages")
	}
	if form.has("certifications") {
		p.Certifications = form.list("certifications")
	}
	if form.has("status") {
		st := models.Status(strings.ToUpper(form.get("status")))
		if !st.Valid() {
			fe["status"] = "Status must be ACTIVE, INACTIVE or BLOCKED"
		}
		p.Status = st
	}

	var serviceIDs []string
	if form.has("services") {
		serviceIDs = []string{}
		if raw := form.get("services"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &serviceIDs); err != nil {
				fe["services"] = "Services must be a JSON list of ids"
			}
		}
	}

	if len(fe) > 0 {
		httperr.Validation(c, fe)
		return nil, false
	}
	return serviceIDs, true
}

func (h *PractitionerHandler) attachServices(tx *gorm.DB, p *models.Practitioner, ids []string) error {
	ids = dedupe(ids)
	var services []models.Service
	if len(ids) > 0 {
		if err := tx.Where("id IN ?", ids).Find(&services).Error; err != nil {
			return err
		}
		if len(services) != len(ids) {
			return httperr.ErrBusinessMsg("service_not_found", "One or more services do not exist")
		}
	}
	if err := tx.Model(p).Association("Services").Replace(services); err != nil {
		return err
	}
	p.Services = services
	return nil
}

func (h *PractitionerHandler) dispatch(c *gin.Context, action, id string) {
	h.audit.Dispatch(audit.Event{
		ActorID:  audit.Ptr(middleware.UserID(c)),
		Action:   action,
		Entity:   "practitioner",
		EntityID: &id,
	})
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
