package handlers

import (
	"strconv"
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

const maxTestimonialPhoto = 2 << 20

type TestimonialHandler struct {
	db       *gorm.DB
	uploader *storage.Uploader
	audit    *audit.Dispatcher
}

func NewTestimonialHandler(db *gorm.DB, uploader *storage.Uploader, audit *audit.Dispatcher) *TestimonialHandler {
	return &TestimonialHandler{db: db, uploader: uploader, audit: audit}
}

type RatingCount struct {
	Rating int   `json:"rating"`
	Count  int64 `json:"count"`
}

type TestimonialStats struct {
	TotalTestimonials  int64         `json:"totalTestimonials"`
	AverageRating      float64       `json:"averageRating"`
	RatingDistribution []RatingCount `json:"ratingDistribution"`
}

// --------------------------------------------------
// Public
// --------------------------------------------------

func (h *TestimonialHandler) List(c *gin.Context) {
	q := h.filtered(c, c.DefaultQuery("status", string(models.StatusActive)))
	if featured, ok := queryBool(c, "featured"); ok {
		q = q.Where("featured = ?", featured)
	}

	var list []models.Testimonial
	if err := h.paged(c, q).
		Order("featured DESC, rating DESC, created_at DESC").
		Find(&list).Error; err != nil {
		httperr.Internal(c, "testimonial_list_failed", "Failed to fetch testimonials", err)
		return
	}
	httpresp.OK(c, nonNil(list))
}

func (h *TestimonialHandler) Stats(c *gin.Context) {
	active := func() *gorm.DB {
		return h.db.WithContext(c.Request.Context()).
			Model(&models.Testimonial{}).
			Where("status = ?", models.StatusActive)
	}

	var out TestimonialStats
	if err := active().Count(&out.TotalTestimonials).Error; err != nil {
		httperr.Internal(c, "testimonial_stats_failed", "Failed to fetch testimonial statistics", err)
		return
	}
	if err := active().Select("COALESCE(AVG(rating), 0)").Row().Scan(&out.AverageRating); err != nil {
		httperr.Internal(c, "testimonial_stats_failed", "Failed to fetch testimonial statistics", err)
		return
	}
	if err := active().
		Select("rating, COUNT(*) AS count").
		Group("rating").
		Order("rating DESC").
		Scan(&out.RatingDistribution).Error; err != nil {
		httperr.Internal(c, "testimonial_stats_failed", "Failed to fetch testimonial statistics", err)
		return
	}
	out.RatingDistribution = nonNil(out.RatingDistribution)

	httpresp.OK(c, out)
}

// --------------------------------------------------
// Admin
// --------------------------------------------------

func (h *TestimonialHandler) AdminList(c *gin.Context) {
	q := h.filtered(c, c.Query("status"))
	if s := strings.TrimSpace(c.Query("searchQuery")); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(patient_name) LIKE ? OR LOWER(content) LIKE ?", like, like)
	}

	var list []models.Testimonial
	if err := h.paged(c, q).Order("created_at DESC").Find(&list).Error; err != nil {
		httperr.Internal(c, "testimonial_list_failed", "Failed to fetch testimonials", err)
		return
	}
	httpresp.OK(c, nonNil(list))
}

func (h *TestimonialHandler) Create(c *gin.Context) {
	form, ok := parseForm(c)
	if !ok {
		return
	}

	t := models.Testimonial{Status: models.StatusActive}
	if !h.apply(c, form, &t) {
		return
	}

	fe := map[string]string{}
	if t.PatientName == "" {
		fe["patientName"] = "Patient name is required"
	}
	if t.Content == "" {
		fe["content"] = "Content is required"
	}
	if t.Rating == 0 {
		fe["rating"] = "Rating must be between 1 and 5"
	}
	if len(fe) > 0 {
		httperr.Validation(c, fe)
		return
	}

	photo, ok := saveFormImage(c, h.uploader, "photo", "testimonials", maxTestimonialPhoto)
	if !ok {
		return
	}
	t.PhotoURL = photo

	if err := h.db.WithContext(c.Request.Context()).Omit("Service", "Program").Create(&t).Error; err != nil {
		h.uploader.Remove(c.Request.Context(), photo)
		respondError(c, err)
		return
	}

	h.dispatch(c, "testimonial_created", t.ID)
	httpresp.Created(c, t)
}

func (h *TestimonialHandler) Update(c *gin.Context) {
	t, ok := h.find(c)
	if !ok {
		return
	}

	form, ok := parseForm(c)
	if !ok {
		return
	}
	if !h.apply(c, form, t) {
		return
	}

	photo, ok := saveFormImage(c, h.uploader, "photo", "testimonials", maxTestimonialPhoto)
	if !ok {
		return
	}
	oldPhoto := t.PhotoURL
	if photo != "" {
		t.PhotoURL = photo
	}

	if err := h.db.WithContext(c.Request.Context()).Omit("Service", "Program").Save(t).Error; err != nil {
		h.uploader.Remove(c.Request.Context(), photo)
		respondError(c, err)
		return
	}
	if photo != "" && oldPhoto != "" {
		h.uploader.Remove(c.Request.Context(), oldPhoto)
	}

	h.dispatch(c, "testimonial_updated", t.ID)
	httpresp.OK(c, t)
}

func (h *TestimonialHandler) ToggleStatus(c *gin.Context) {
	t, ok := h.find(c)
	if !ok {
		return
	}

	next := models.StatusActive
	if t.Status == models.StatusActive {
		next = models.StatusInactive
	}
	if err := h.db.WithContext(c.Request.Context()).Model(t).Update("status", next).Error; err != nil {
		respondError(c, err)
		return
	}
	t.Status = next

	h.dispatch(c, "testimonial_status_toggled", t.ID)
	httpresp.OK(c, t)
}

func (h *TestimonialHandler) ToggleFeatured(c *gin.Context) {
	t, ok := h.find(c)
	if !ok {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Model(t).Update("featured", !t.Featured).Error; err != nil {
		respondError(c, err)
		return
	}
	t.Featured = !t.Featured

	h.dispatch(c, "testimonial_featured_toggled", t.ID)
	httpresp.OK(c, t)
}

func (h *TestimonialHandler) Delete(c *gin.Context) {
	t, ok := h.find(c)
	if !ok {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Delete(t).Error; err != nil {
		respondError(c, err)
		return
	}
	h.uploader.Remove(c.Request.Context(), t.PhotoURL)

	h.dispatch(c, "testimonial_deleted", t.ID)
	httpresp.NoContent(c)
}

// --------------------------------------------------
// helpers
// --------------------------------------------------

func (h *TestimonialHandler) filtered(c *gin.Context, status string) *gorm.DB {
	q := h.db.WithContext(c.Request.Context()).
		Preload("Service").
		Preload("Program")

	if status != "" && !strings.EqualFold(status, "all") {
		q = q.Where("status = ?", strings.ToUpper(status))
	}
	if serviceID := c.Query("serviceId"); serviceID != "" {
		q = q.Where("service_id = ?", serviceID)
	}
	if rating, err := strconv.Atoi(c.Query("rating")); err == nil {
		q = q.Where("rating >= ?", rating)
	}
	return q
}

func (h *TestimonialHandler) paged(c *gin.Context, q *gorm.DB) *gorm.DB {
	if c.Query("limit") == "" {
		return q
	}
	limit, offset := pagination(c)
	return q.Limit(limit).Offset(offset)
}

func (h *TestimonialHandler) find(c *gin.Context) (*models.Testimonial, bool) {
	var t models.Testimonial
	if err := h.db.WithContext(c.Request.Context()).First(&t, "id = ?", c.Param("id")).Error; err != nil {
		if httperr.IsNotFound(err) {
			httperr.NotFound(c, "testimonial_not_found", "Testimonial not found")
			return nil, false
		}
		respondError(c, err)
		return nil, false
	}
	return &t, true
}

func (h *TestimonialHandler) apply(c *gin.Context, form formData, t *models.Testimonial) bool {
	fe := map[string]string{}

	if form.has("patientName") {
		t.PatientName = form.get("patientName")
	}
	if form.has("age") {
		t.Age = form.intPtr("age", fe)
	}
	if form.has("location") {
		t.Location = form.get("location")
	}
	if form.has("content") {
		t.Content = form.get("content")
	}
	if form.has("rating") {
		if n := form.intPtr("rating", fe); n != nil {
			if *n < 1 || *n > 5 {
				fe["rating"] = "Rating must be between 1 and 5"
			}
			t.Rating = *n
		}
	}
	if form.has("featured") {
		t.Featured = form.boolean("featured")
	}
	if form.has("status") {
		t.Status = models.Status(strings.ToUpper(form.get("status")))
		if !t.Status.Valid() {
			fe["status"] = "Status must be ACTIVE, INACTIVE or BLOCKED"
		}
	}
	if form.has("treatmentDate") {
		t.TreatmentDate = nil
		if raw := form.get("treatmentDate"); raw != "" {
			d, err := booking.ParseDate(raw)
			if err != nil {
				fe["treatmentDate"] = "Must be a date (YYYY-MM-DD)"
			} else {
				t.TreatmentDate = &d
			}
		}
	}

	var ok bool
	if t.ServiceID, ok = h.reference(c, form, "serviceId", &models.Service{}, t.ServiceID, fe); !ok {
		return false
	}
	if t.ProgramID, ok = h.reference(c, form, "programId", &models.Program{}, t.ProgramID, fe); !ok {
		return false
	}
	t.Service, t.Program = nil, nil

	if len(fe) > 0 {
		httperr.Validation(c, fe)
		return false
	}
	return true
}

// reference resolves an optional foreign key field. An absent field keeps
// current, an empty one clears it.
func (h *TestimonialHandler) reference(c *gin.Context, form formData, field string, model any, current *string, fe map[string]string) (*string, bool) {
	if !form.has(field) {
		return current, true
	}

	id := form.get(field)
	if id == "" {
		return nil, true
	}

	var n int64
	if err := h.db.WithContext(c.Request.Context()).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		respondError(c, err)
		return nil, false
	}
	if n == 0 {
		fe[field] = "Referenced record does not exist"
	}
	return &id, true
}

func (h *TestimonialHandler) dispatch(c *gin.Context, action, id string) {
	h.audit.Dispatch(audit.Event{
		ActorID:  audit.Ptr(middleware.UserID(c)),
		Action:   action,
		Entity:   "testimonial",
		EntityID: &id,
	})
}
