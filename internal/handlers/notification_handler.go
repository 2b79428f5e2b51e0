package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/notify"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

type NotificationHandler struct {
	db       *gorm.DB
	notifier *notify.Notifier
	loc      *time.Location

	now func() time.Time
}

func NewNotificationHandler(db *gorm.DB, notifier *notify.Notifier, loc *time.Location) *NotificationHandler {
	return &NotificationHandler{db: db, notifier: notifier, loc: loc, now: time.Now}
}

type NotificationList struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unreadCount"`
	HasMore       bool                  `json:"hasMore"`
}

type NotificationStats struct {
	TotalNotifications   int64       `json:"totalNotifications"`
	UnreadNotifications  int64       `json:"unreadNotifications"`
	TodayNotifications   int64       `json:"todayNotifications"`
	WeeklyNotifications  int64       `json:"weeklyNotifications"`
	MonthlyNotifications int64       `json:"monthlyNotifications"`
	NotificationsByType  []TypeCount `json:"notificationsByType"`
}

type systemNotificationRequest struct {
	Title         string   `json:"title"`
	Message       string   `json:"message"`
	Type          string   `json:"type"`
	TargetUserIDs []string `json:"targetUserIds"`
	SendToAll     bool     `json:"sendToAll"`
}

// --------------------------------------------------
// Owner
// --------------------------------------------------

func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	limit, offset := pagination(c)
	unreadOnly, _ := queryBool(c, "unreadOnly")

	var out NotificationList
	g, ctx := errgroup.WithContext(c.Request.Context())

	g.Go(func() error {
		q := h.owned(ctx, userID)
		if unreadOnly {
			q = q.Where("read = ?", false)
		}
		return q.Order("created_at DESC").Limit(limit + 1).Offset(offset).Find(&out.Notifications).Error
	})
	g.Go(func() error {
		return h.owned(ctx, userID).Where("read = ?", false).Count(&out.UnreadCount).Error
	})

	if err := g.Wait(); err != nil {
		httperr.Internal(c, "notification_list_failed", "Failed to fetch notifications", err)
		return
	}

	if len(out.Notifications) > limit {
		out.Notifications = out.Notifications[:limit]
		out.HasMore = true
	}
	out.Notifications = nonNil(out.Notifications)

	httpresp.OK(c, out)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	var n int64
	if err := h.owned(c.Request.Context(), middleware.UserID(c)).
		Where("read = ?", false).
		Count(&n).Error; err != nil {
		httperr.Internal(c, "notification_count_failed", "Failed to fetch unread count", err)
		return
	}
	httpresp.OK(c, gin.H{"count": n})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	n, ok := h.find(c)
	if !ok {
		return
	}

	if !n.Read {
		now := h.now().UTC()
		if err := h.db.WithContext(c.Request.Context()).Model(n).Updates(map[string]any{
			"read":    true,
			"read_at": now,
		}).Error; err != nil {
			respondError(c, err)
			return
		}
		n.Read = true
		n.ReadAt = &now
	}
	httpresp.OK(c, n)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	res := h.owned(c.Request.Context(), middleware.UserID(c)).
		Where("read = ?", false).
		Updates(map[string]any{"read": true, "read_at": h.now().UTC()})
	if res.Error != nil {
		httperr.Internal(c, "notification_update_failed", "Failed to mark all notifications as read", res.Error)
		return
	}
	httpresp.OK(c, gin.H{"message": "All notifications marked as read", "updated": res.RowsAffected})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	n, ok := h.find(c)
	if !ok {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(n).Error; err != nil {
		respondError(c, err)
		return
	}
	httpresp.NoContent(c)
}

func (h *NotificationHandler) ClearRead(c *gin.Context) {
	res := h.db.WithContext(c.Request.Context()).
		Where("user_id = ? AND read = ?", middleware.UserID(c), true).
		Delete(&models.Notification{})
	if res.Error != nil {
		httperr.Internal(c, "notification_delete_failed", "Failed to clear read notifications", res.Error)
		return
	}
	httpresp.OK(c, gin.H{"message": "All read notifications cleared", "deleted": res.RowsAffected})
}

// --------------------------------------------------
// Admin
// --------------------------------------------------

func (h *NotificationHandler) System(c *gin.Context) {
	var req systemNotificationRequest
	if !bindJSON(c, &req) {
		return
	}

	notice := notify.Notice{
		Title:   strings.TrimSpace(req.Title),
		Message: strings.TrimSpace(req.Message),
		Type:    models.NotificationType(strings.ToUpper(req.Type)),
	}
	if notice.Title == "" || notice.Message == "" {
		httperr.BadRequest(c, "missing_fields", "Title and message are required")
		return
	}

	ctx := c.Request.Context()
	var (
		sent int
		err  error
	)
	switch {
	case req.SendToAll:
		sent, err = h.notifier.NotifyAllAdmins(ctx, notice)
	case len(req.TargetUserIDs) > 0:
		ids, lerr := h.existingAdmins(c, req.TargetUserIDs)
		if lerr != nil {
			respondError(c, lerr)
			return
		}
		if len(ids) == 0 {
			httperr.BadRequest(c, "unknown_users", "None of the target users exist")
			return
		}
		sent, err = h.notifier.NotifyUsers(ctx, ids, notice)
	default:
		httperr.BadRequest(c, "missing_target", "Must specify target users or send to all")
		return
	}
	if err != nil {
		httperr.Internal(c, "notification_create_failed", "Failed to create system notification", err)
		return
	}

	httpresp.Created(c, gin.H{"notificationCount": sent})
}

func (h *NotificationHandler) Stats(c *gin.Context) {
	w := timezone.WindowsAt(h.now().In(h.loc))

	var out NotificationStats
	g, ctx := errgroup.WithContext(c.Request.Context())

	count := func(dst *int64, query string, args ...any) {
		g.Go(func() error {
			q := h.db.WithContext(ctx).Model(&models.Notification{})
			if query != "" {
				q = q.Where(query, args...)
			}
			return q.Count(dst).Error
		})
	}

	count(&out.TotalNotifications, "")
	count(&out.UnreadNotifications, "read = ?", false)
	count(&out.TodayNotifications, "created_at >= ?", w.DayStart.UTC())
	count(&out.WeeklyNotifications, "created_at >= ?", w.WeekStart.UTC())
	count(&out.MonthlyNotifications, "created_at >= ?", w.MonthStart.UTC())

	g.Go(func() error {
		return h.db.WithContext(ctx).
			Model(&models.Notification{}).
			Select("type, COUNT(*) AS count").
			Group("type").
			Order("count DESC").
			Scan(&out.NotificationsByType).Error
	})

	if err := g.Wait(); err != nil {
		httperr.Internal(c, "notification_stats_failed", "Failed to fetch notification statistics", err)
		return
	}
	out.NotificationsByType = nonNil(out.NotificationsByType)

	httpresp.OK(c, out)
}

// --------------------------------------------------
// helpers
// --------------------------------------------------

func (h *NotificationHandler) owned(ctx context.Context, userID string) *gorm.DB {
	return h.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
}

// find loads a notification owned by the caller. Other users' rows are 403.
func (h *NotificationHandler) find(c *gin.Context) (*models.Notification, bool) {
	var n models.Notification
	if err := h.db.WithContext(c.Request.Context()).First(&n, "id = ?", c.Param("id")).Error; err != nil {
		if httperr.IsNotFound(err) {
			httperr.NotFound(c, "notification_not_found", "Notification not found")
			return nil, false
		}
		respondError(c, err)
		return nil, false
	}
	if n.UserID != middleware.UserID(c) {
		httperr.Forbidden(c, "not_owner", "Not authorized to modify this notification")
		return nil, false
	}
	return &n, true
}

func (h *NotificationHandler) existingAdmins(c *gin.Context, ids []string) ([]string, error) {
	var found []string
	err := h.db.WithContext(c.Request.Context()).
		Model(&models.Admin{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error
	return found, err
}
