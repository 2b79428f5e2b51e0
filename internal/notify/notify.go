package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// Notice is the content of a notification before it is addressed.
type Notice struct {
	Title       string
	Message     string
	Type        models.NotificationType
	RelatedID   string
	RelatedType string
}

// Notifier appends notification rows for admin users.
type Notifier struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(db *gorm.DB, log *zap.Logger) *Notifier {
	return &Notifier{db: db, log: log}
}

func (n *Notifier) Notify(ctx context.Context, userID string, notice Notice) (*models.Notification, error) {
	rows := n.rows([]string{userID}, notice)
	if err := n.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("notify: %w", err)
	}
	return &rows[0], nil
}

// NotifyUsers writes one row per recipient and returns how many were written.
func (n *Notifier) NotifyUsers(ctx context.Context, userIDs []string, notice Notice) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	rows := n.rows(userIDs, notice)
	if err := n.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return 0, fmt.Errorf("notify: %w", err)
	}
	return len(rows), nil
}

func (n *Notifier) NotifyAllAdmins(ctx context.Context, notice Notice) (int, error) {
	var ids []string
	if err := n.db.WithContext(ctx).
		Model(&models.Admin{}).
		Where("role IN ?", []models.Role{models.RoleAdmin, models.RoleSuperAdmin}).
		Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("notify: list admins: %w", err)
	}
	count, err := n.NotifyUsers(ctx, ids, notice)
	if err == nil {
		n.log.Debug("admins notified", zap.String("title", notice.Title), zap.Int("count", count))
	}
	return count, err
}

func (n *Notifier) rows(userIDs []string, notice Notice) []models.Notification {
	typ := notice.Type
	if !typ.Valid() {
		typ = models.NotificationInfo
	}

	rows := make([]models.Notification, len(userIDs))
	for i, id := range userIDs {
		rows[i] = models.Notification{
			UserID:  id,
			Title:   notice.Title,
			Message: notice.Message,
			Type:    typ,
		}
		if notice.RelatedID != "" {
			rid := notice.RelatedID
			rows[i].RelatedID = &rid
		}
		if notice.RelatedType != "" {
			rt := notice.RelatedType
			rows[i].RelatedType = &rt
		}
	}
	return rows
}
