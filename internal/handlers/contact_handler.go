package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/config"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/mailer"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/notify"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

const defaultInquiryLimit = 50

type ContactHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	mail     mailer.Sender
	notifier *notify.Notifier
	audit    *audit.Dispatcher
	log      *zap.Logger
	loc      *time.Location

	// domainCheck is swapped in tests to avoid DNS lookups.
	domainCheck func(email string) bool
	now         func() time.Time
}

func NewContactHandler(
	db *gorm.DB,
	cfg *config.Config,
	mail mailer.Sender,
	notifier *notify.Notifier,
	audit *audit.Dispatcher,
	log *zap.Logger,
) *ContactHandler {
	return &ContactHandler{
		db:          db,
		cfg:         cfg,
		mail:        mail,
		notifier:    notifier,
		audit:       audit,
		log:         log,
		loc:         timezone.Location(cfg.ClinicTimezone),
		domainCheck: validators.IsEmailDomainValid,
		now:         time.Now,
	}
}

type contactRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Subject          string `json:"subject"`
	Message          string `json:"message"`
	Type             string `json:"type"`
	PreferredContact string `json:"preferredContact"`
}

type inquiryStatusRequest struct {
	Status     string  `json:"status"`
	AdminNotes *string `json:"adminNotes"`
}

type inquiryReplyRequest struct {
	Message   string `json:"message"`
	SendEmail bool   `json:"sendEmail"`
}

type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type InquiryStats struct {
	TotalInquiries    int64         `json:"totalInquiries"`
	PendingInquiries  int64         `json:"pendingInquiries"`
	TodayInquiries    int64         `json:"todayInquiries"`
	WeeklyInquiries   int64         `json:"weeklyInquiries"`
	MonthlyInquiries  int64         `json:"monthlyInquiries"`
	InquiriesByType   []TypeCount   `json:"inquiriesByType"`
	InquiriesByStatus []StatusCount `json:"inquiriesByStatus"`
}

// --------------------------------------------------
// Public
// --------------------------------------------------

func (h *ContactHandler) Submit(c *gin.Context) {
	var req contactRequest
	if !bindJSON(c, &req) {
		return
	}

	inq := models.ContactInquiry{
		Name:             strings.TrimSpace(req.Name),
		Email:            validators.NormalizeEmail(req.Email),
		Phone:            strings.TrimSpace(req.Phone),
		Subject:          strings.TrimSpace(req.Subject),
		Message:          strings.TrimSpace(req.Message),
		Type:             models.InquiryType(strings.ToUpper(strings.TrimSpace(req.Type))),
		PreferredContact: strings.ToUpper(strings.TrimSpace(req.PreferredContact)),
		Status:           models.InquiryPending,
	}
	if inq.Type == "" {
		inq.Type = models.InquiryGeneral
	}
	if inq.PreferredContact == "" {
		inq.PreferredContact = "EMAIL"
	}

	if fe := h.validate(inq); len(fe) > 0 {
		httperr.Validation(c, fe)
		return
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Create(&inq).Error; err != nil {
		httperr.Internal(c, "inquiry_create_failed", "Failed to submit inquiry. Please try again.", err)
		return
	}

	h.sendSubmissionMail(ctx, inq)

	if _, err := h.notifier.NotifyAllAdmins(ctx, notify.Notice{
		Title:       "New contact inquiry",
		Message:     inq.Name + ": " + firstNonEmpty(inq.Subject, string(inq.Type)),
		Type:        models.NotificationInfo,
		RelatedID:   inq.ID,
		RelatedType: "contact_inquiry",
	}); err != nil {
		h.log.Warn("inquiry notification failed", zap.String("inquiry_id", inq.ID), zap.Error(err))
	}

	httpresp.Created(c, gin.H{
		"message": "Your inquiry has been submitted successfully. We will contact you soon.",
		"inquiry": gin.H{
			"id":        inq.ID,
			"name":      inq.Name,
			"email":     inq.Email,
			"subject":   inq.Subject,
			"type":      inq.Type,
			"status":    inq.Status,
			"createdAt": inq.CreatedAt,
		},
	})
}

func (h *ContactHandler) Info(c *gin.Context) {
	httpresp.OK(c, h.cfg.Clinic)
}

// --------------------------------------------------
// Admin
// --------------------------------------------------

func (h *ContactHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.ContactInquiry{})

	if s := c.Query("status"); s != "" {
		q = q.Where("status = ?", strings.ToUpper(s))
	}
	if t := c.Query("type"); t != "" {
		q = q.Where("type = ?", strings.ToUpper(t))
	}
	if start, end := c.Query("dateStart"), c.Query("dateEnd"); start != "" && end != "" {
		from, err1 := time.Parse(time.RFC3339, start)
		to, err2 := time.Parse(time.RFC3339, end)
		if err1 != nil || err2 != nil {
			from, err1 = time.ParseInLocation("2006-01-02", start, h.loc)
			to, err2 = time.ParseInLocation("2006-01-02", end, h.loc)
			to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		if err1 != nil || err2 != nil {
			httperr.BadRequest(c, "invalid_date", "dateStart and dateEnd must be dates")
			return
		}
		q = q.Where("created_at BETWEEN ? AND ?", from.UTC(), to.UTC())
	}
	if s := strings.TrimSpace(c.Query("searchQuery")); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(subject) LIKE ? OR LOWER(message) LIKE ?",
			like, like, like, like,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "inquiry_list_failed", "Failed to fetch inquiries", err)
		return
	}

	limit, offset := pagination(c)
	if c.Query("limit") == "" {
		limit = defaultInquiryLimit
	}

	var list []models.ContactInquiry
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error; err != nil {
		httperr.Internal(c, "inquiry_list_failed", "Failed to fetch inquiries", err)
		return
	}
	httpresp.Page(c, list, total, limit, offset)
}

func (h *ContactHandler) Get(c *gin.Context) {
	inq, ok := h.find(c)
	if !ok {
		return
	}

	if inq.Status == models.InquiryPending {
		if err := h.db.WithContext(c.Request.Context()).
			Model(inq).
			Update("status", models.InquiryRead).Error; err != nil {
			respondError(c, err)
			return
		}
		inq.Status = models.InquiryRead
	}
	httpresp.OK(c, inq)
}

func (h *ContactHandler) UpdateStatus(c *gin.Context) {
	var req inquiryStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	status := models.InquiryStatus(strings.ToUpper(req.Status))
	if !status.Valid() {
		httperr.BadRequest(c, "invalid_status", "Invalid status")
		return
	}

	inq, ok := h.find(c)
	if !ok {
		return
	}

	updates := map[string]any{"status": status}
	if req.AdminNotes != nil {
		updates["admin_notes"] = *req.AdminNotes
	}
	if err := h.db.WithContext(c.Request.Context()).Model(inq).Updates(updates).Error; err != nil {
		respondError(c, err)
		return
	}
	from := inq.Status
	inq.Status = status
	if req.AdminNotes != nil {
		inq.AdminNotes = *req.AdminNotes
	}

	h.dispatch(c, "inquiry_status_changed", inq.ID, map[string]any{"from": from, "to": status})
	httpresp.OK(c, inq)
}

func (h *ContactHandler) Reply(c *gin.Context) {
	var req inquiryReplyRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		httperr.Validation(c, map[string]string{"message": "Reply message is required"})
		return
	}

	inq, ok := h.find(c)
	if !ok {
		return
	}

	now := h.now().UTC()
	actor := middleware.UserID(c)
	if err := h.db.WithContext(c.Request.Context()).Model(inq).Updates(map[string]any{
		"status":      models.InquiryResolved,
		"admin_notes": req.Message,
		"replied_at":  now,
		"replied_by":  actor,
	}).Error; err != nil {
		respondError(c, err)
		return
	}
	inq.Status = models.InquiryResolved
	inq.AdminNotes = req.Message
	inq.RepliedAt = &now
	inq.RepliedBy = &actor

	h.dispatch(c, "inquiry_replied", inq.ID, map[string]any{"emailed": req.SendEmail})

	if req.SendEmail && h.cfg.MailEnabled() {
		msg, err := mailer.InquiryReply(mailer.Inquiry{
			Name:    inq.Name,
			Email:   inq.Email,
			Subject: inq.Subject,
			Message: inq.Message,
			Reply:   req.Message,
		})
		if err == nil {
			err = h.mail.Send(c.Request.Context(), msg)
		}
		if err != nil {
			httperr.Internal(c, "reply_email_failed", "Reply saved but failed to send email", err)
			return
		}
	}

	httpresp.OK(c, gin.H{"message": "Reply sent successfully", "inquiry": inq})
}

func (h *ContactHandler) Delete(c *gin.Context) {
	inq, ok := h.find(c)
	if !ok {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(inq).Error; err != nil {
		respondError(c, err)
		return
	}

	h.dispatch(c, "inquiry_deleted", inq.ID, nil)
	httpresp.NoContent(c)
}

func (h *ContactHandler) Stats(c *gin.Context) {
	w := timezone.WindowsAt(h.now().In(h.loc))

	var out InquiryStats
	g, ctx := errgroup.WithContext(c.Request.Context())

	count := func(dst *int64, scope func(*gorm.DB) *gorm.DB) {
		g.Go(func() error {
			return scope(h.db.WithContext(ctx).Model(&models.ContactInquiry{})).Count(dst).Error
		})
	}
	since := func(t time.Time) func(*gorm.DB) *gorm.DB {
		return func(q *gorm.DB) *gorm.DB { return q.Where("created_at >= ?", t.UTC()) }
	}

	count(&out.TotalInquiries, func(q *gorm.DB) *gorm.DB { return q })
	count(&out.PendingInquiries, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", models.InquiryPending) })
	count(&out.TodayInquiries, since(w.DayStart))
	count(&out.WeeklyInquiries, since(w.WeekStart))
	count(&out.MonthlyInquiries, since(w.MonthStart))

	g.Go(func() error {
		return h.db.WithContext(ctx).
			Model(&models.ContactInquiry{}).
			Select("type, COUNT(*) AS count").
			Group("type").
			Order("count DESC").
			Scan(&out.InquiriesByType).Error
	})
	g.Go(func() error {
		return h.db.WithContext(ctx).
			Model(&models.ContactInquiry{}).
			Select("status, COUNT(*) AS count").
			Group("status").
			Scan(&out.InquiriesByStatus).Error
	})

	if err := g.Wait(); err != nil {
		httperr.Internal(c, "inquiry_stats_failed", "Failed to fetch inquiry statistics", err)
		return
	}
	out.InquiriesByType = nonNil(out.InquiriesByType)
	out.InquiriesByStatus = nonNil(out.InquiriesByStatus)

	httpresp.OK(c, out)
}

// --------------------------------------------------
// helpers
// --------------------------------------------------

func (h *ContactHandler) validate(inq models.ContactInquiry) map[string]string {
	fe := map[string]string{}
	if inq.Name == "" {
		fe["name"] = "Name is required"
	}
	if inq.Message == "" {
		fe["message"] = "Message is required"
	}
	switch {
	case inq.Email == "":
		fe["email"] = "Email is required"
	case !validators.IsEmail(inq.Email):
		fe["email"] = "Please provide a valid email address"
	case h.cfg.ContactVerifyDomain && !h.domainCheck(inq.Email):
		fe["email"] = "Email domain does not accept mail"
	}
	switch inq.Type {
	case models.InquiryGeneral, models.InquiryAppointment, models.InquiryConsultation, models.InquiryComplaint:
	default:
		fe["type"] = "Type must be GENERAL, APPOINTMENT, CONSULTATION or COMPLAINT"
	}
	switch inq.PreferredContact {
	case "EMAIL", "PHONE":
	default:
		fe["preferredContact"] = "Preferred contact must be EMAIL or PHONE"
	}
	return fe
}

// sendSubmissionMail is best effort; the inquiry is already stored.
func (h *ContactHandler) sendSubmissionMail(ctx context.Context, inq models.ContactInquiry) {
	if !h.cfg.MailEnabled() {
		return
	}

	data := mailer.Inquiry{
		Name:             inq.Name,
		Email:            inq.Email,
		Phone:            inq.Phone,
		Subject:          inq.Subject,
		Message:          inq.Message,
		Type:             string(inq.Type),
		PreferredContact: inq.PreferredContact,
	}

	var msgs []mailer.Message
	if h.cfg.AdminEmail != "" {
		if m, err := mailer.InquiryNotice(h.cfg.AdminEmail, data); err == nil {
			msgs = append(msgs, m)
		}
	}
	if m, err := mailer.AutoReply(data); err == nil {
		msgs = append(msgs, m)
	}

	for _, m := range msgs {
		if err := h.mail.Send(ctx, m); err != nil {
			h.log.Warn("inquiry mail failed",
				zap.String("inquiry_id", inq.ID),
				zap.String("subject", m.Subject),
				zap.Error(err),
			)
		}
	}
}

func (h *ContactHandler) find(c *gin.Context) (*models.ContactInquiry, bool) {
	var inq models.ContactInquiry
	if err := h.db.WithContext(c.Request.Context()).First(&inq, "id = ?", c.Param("id")).Error; err != nil {
		if httperr.IsNotFound(err) {
			httperr.NotFound(c, "inquiry_not_found", "Inquiry not found")
			return nil, false
		}
		respondError(c, err)
		return nil, false
	}
	return &inq, true
}

func (h *ContactHandler) dispatch(c *gin.Context, action, id string, meta any) {
	h.audit.Dispatch(audit.Event{
		ActorID:  audit.Ptr(middleware.UserID(c)),
		Action:   action,
		Entity:   "contact_inquiry",
		EntityID: &id,
		Metadata: meta,
	})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
