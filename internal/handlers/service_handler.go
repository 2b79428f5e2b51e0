package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/storage"
)

type ServiceHandler struct {
	db       *gorm.DB
	uploader *storage.Uploader
	audit    *audit.Dispatcher
}

func NewServiceHandler(db *gorm.DB, uploader *storage.Uploader, audit *audit.Dispatcher) *ServiceHandler {
	return &ServiceHandler{db: db, uploader: uploader, audit: audit}
}

// byIdentifier matches a UUID against the id and anything else against the slug.
func byIdentifier(q *gorm.DB, identifier string) *gorm.DB {
	if _, err := uuid.Parse(identifier); err == nil {
		return q.Where("id = ?", identifier)
	}
	return q.Where("slug = ?", strings.ToLower(identifier))
}

// --------------------------------------------------
// Public
// --------------------------------------------------

func (h *ServiceHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context())

	status := c.DefaultQuery("status", string(models.StatusActive))
	if status != "" && !strings.EqualFold(status, "all") {
		q = q.Where("status = ?", strings.ToUpper(status))
	}
	if featured, ok := queryBool(c, "featured"); ok {
		q = q.Where("featured = ?", featured)
	}
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", strings.ToUpper(category))
	}

	var list []models.Service
	if err := q.
		Preload("Practitioners", "status = ?", models.StatusActive).
		Order("featured DESC, created_at DESC").
		Find(&list).Error; err != nil {
		httperr.Internal(c, "service_list_failed", "Failed to fetch services", err)
		return
	}
	httpresp.OK(c, nonNil(list))
}

func (h *ServiceHandler) Get(c *gin.Context) {
	var s models.Service
	err := byIdentifier(h.db.WithContext(c.Request.Context()), c.Param("identifier")).
		Preload("Practitioners", "status = ?", models.StatusActive).
		Preload("Programs", "status = ?", models.StatusActive).
		First(&s).Error
	if err != nil {
		if httperr.IsNotFound(err) {
			httperr.NotFound(c, "service_not_found", "Service not found")
			return
		}
		respondError(c, err)
		return
	}
	httpresp.OK(c, s)
}

// --------------------------------------------------
// Admin
// --------------------------------------------------

func (h *ServiceHandler) Create(c *gin.Context) {
	form, ok := parseForm(c)
	if !ok {
		return
	}

	s := models.Service{Status: models.StatusActive}
	if !h.apply(c, form, &s) {
		return
	}

	fe := map[string]string{}
	if s.Title == "" {
		fe["title"] = "Title is required"
	}
	if s.Description == "" {
		fe["description"] = "Description is required"
	}
	if s.Category == "" {
		fe["category"] = "Category is required"
	}
	if len(fe) > 0 {
		httperr.Validation(c, fe)
		return
	}

	image, ok := saveFormImage(c, h.uploader, "image", "services", storage.MaxImageSize)
	if !ok {
		return
	}
	s.ImageURL = image

	if err := h.db.WithContext(c.Request.Context()).Create(&s).Error; err != nil {
		h.uploader.Remove(c.Request.Context(), image)
		respondError(c, err)
		return
	}

	h.dispatch(c, "service_created", s.ID)
	httpresp.Created(c, s)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	s, ok := h.find(c)
	if !ok {
		return
	}

	form, ok := parseForm(c)
	if !ok {
		return
	}
	if !h.apply(c, form, s) {
		return
	}

	image, ok := saveFormImage(c, h.uploader, "image", "services", storage.MaxImageSize)
	if !ok {
		return
	}
	oldImage := s.ImageURL
	if image != "" {
		s.ImageURL = image
	}

	if err := h.db.WithContext(c.Request.Context()).Save(s).Error; err != nil {
		h.uploader.Remove(c.Request.Context(), image)
		respondError(c, err)
		return
	}
	if image != "" && oldImage != "" {
		h.uploader.Remove(c.Request.Context(), oldImage)
	}

	h.dispatch(c, "service_updated", s.ID)
	httpresp.OK(c, s)
}

// ToggleStatus flips between ACTIVE and INACTIVE.
func (h *ServiceHandler) ToggleStatus(c *gin.Context) {
	s, ok := h.find(c)
	if !ok {
		return
	}

	next := models.StatusActive
	if s.Status == models.StatusActive {
		next = models.StatusInactive
	}
	if err := h.db.WithContext(c.Request.Context()).Model(s).Update("status", next).Error; err != nil {
		respondError(c, err)
		return
	}
	s.Status = next

	h.dispatch(c, "service_status_toggled", s.ID)
	httpresp.OK(c, s)
}

func (h *ServiceHandler) Delete(c *gin.Context) {
	s, ok := h.find(c)
	if !ok {
		return
	}

	var booked int64
	if err := h.db.WithContext(c.Request.Context()).
		Model(&models.Appointment{}).
		Where("service_id = ?", s.ID).
		Count(&booked).Error; err != nil {
		respondError(c, err)
		return
	}
	if booked > 0 {
		httperr.BadRequest(c, "service_has_appointments", "Cannot delete a service with existing appointments. Deactivate it instead.")
		return
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(s).Association("Practitioners").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&models.Program{}).Where("service_id = ?", s.ID).Update("service_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(s).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.uploader.Remove(c.Request.Context(), s.ImageURL)

	h.dispatch(c, "service_deleted", s.ID)
	httpresp.NoContent(c)
}

func (h *ServiceHandler) find(c *gin.Context) (*models.Service, bool) {
	var s models.Service
	if err := h.db.WithContext(c.Request.Context()).First(&s, "id = ?", c.Param("id")).Error; err != nil {
		if httperr.IsNotFound(err) {
			httperr.NotFound(c, "service_not_found", "Service not found")
			return nil, false
		}
		respondError(c, err)
		return nil, false
	}
	return &s, true
}

func (h *ServiceHandler) apply(c *gin.Context, form formData, s *models.Service) bool {
	fe := map[string]string{}

	if form.has("title") {
		s.Title = form.get("title")
		s.Slug = slugify(s.Title)
	}
	if form.has("description") {
		s.Description = form.get("description")
	}
	if form.has("category") {
		s.Category = models.Category(strings.ToUpper(form.get("category")))
		if s.Category != models.CategoryMind && s.Category != models.CategoryBody {
			fe["category"] = "Category must be MIND or BODY"
		}
	}
	if form.has("price") {
		s.Price = form.price("price", fe)
	}
	if form.has("duration") {
		s.DurationDays = form.intPtr("duration", fe)
	}
	if form.has("featured") {
		s.Featured = form.boolean("featured")
	}
	if form.has("status") {
		s.Status = models.Status(strings.ToUpper(form.get("status")))
		if !s.Status.Valid() {
			fe["status"] = "Status must be ACTIVE, INACTIVE or BLOCKED"
		}
	}
	if form.has("benefits") {
		s.Benefits = form.list("benefits")
	}
	if form.has("prerequisites") {
		s.Prerequisites = form.list("prerequisites")
	}

	if len(fe) > 0 {
		httperr.Validation(c, fe)
		return false
	}
	return true
}

func (h *ServiceHandler) dispatch(c *gin.Context, action, id string) {
	h.audit.Dispatch(audit.Event{
		ActorID:  audit.Ptr(middleware.UserID(c)),
		Action:   action,
		Entity:   "service",
		EntityID: &id,
	})
}
