package repository

import (
	"context"
	"time"

	"reservehub/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts the notification. A repeated ReminderKey fails with ErrConflict.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.UserID == 0 || n.Type == "" {
		return validationError("notification user and type are required")
	}
	return translate("create notification", r.db.WithContext(ctx).Omit("User").Create(n).Error)
}

func (r *NotificationRepository) ListByUserID(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	var list []models.Notification
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, translate("list notifications", err)
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, translate("count unread notifications", err)
}

// MarkRead flags one of the user's notifications as read. ErrNotFound if it is not theirs.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uint) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"is_read": true, "read_at": time.Now().UTC()})
	if res.Error != nil {
		return translate("mark notification read", res.Error)
	}
	if res.RowsAffected == 0 {
		return translate("mark notification read", gorm.ErrRecordNotFound)
	}
	return nil
}

// MarkAllRead flags every unread notification of the user and returns how many changed.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": time.Now().UTC()})
	return res.RowsAffected, translate("mark all notifications read", res.Error)
}

// ExistingReminderKeys returns which of keys already have a notification row.
func (r *NotificationRepository) ExistingReminderKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	found := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return found, nil
	}
	const chunk = 500
	for start := 0; start < len(keys); start += chunk {
		end := min(start+chunk, len(keys))
		var hits []string
		err := r.db.WithContext(ctx).Model(&models.Notification{}).
			Where("reminder_key IN ?", keys[start:end]).
			Pluck("reminder_key", &hits).Error
		if err != nil {
			return nil, translate("lookup reminder keys", err)
		}
		for _, k := range hits {
			found[k] = true
		}
	}
	return found, nil
}
