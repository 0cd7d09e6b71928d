package service

import (
	"context"
	"errors"
	"fmt"

	"reservehub/internal/domain"
	"reservehub/internal/models"
	"reservehub/internal/notify"
	"reservehub/internal/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const pushTitle = "Reserve Hub"

// Pusher delivers a notification to a device token. *FCMService implements it.
type Pusher interface {
	SendToUser(ctx context.Context, fcmToken, notifType, title, body string, data map[string]any) error
}

// LiveSender fans a payload out to a user's open connections. *ws.Hub implements it.
type LiveSender interface {
	SendToUser(userID uint, payload any) int
}

// Message is one notification to render and deliver.
type Message struct {
	UserID uint
	Type   string
	Data   map[string]any
	URL    string
	// ReminderKey is set for reminders only; a repeat fails with repository.ErrConflict.
	ReminderKey string
}

// Announcement targets active users by role and/or explicit id.
type Announcement struct {
	Message string
	URL     string
	Roles   []string
	UserIDs []uint
}

type NotificationService struct {
	repo  *repository.NotificationRepository
	users *repository.UserRepository
	live  LiveSender
	push  Pusher
	log   *zap.Logger
}

// NewNotificationService wires the store with optional live and push delivery; either may be nil.
func NewNotificationService(repo *repository.NotificationRepository, users *repository.UserRepository, live LiveSender, push Pusher, log *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, users: users, live: live, push: push, log: log.Named("notify")}
}

// Send renders the message, stores it, then delivers over websocket and push.
// Delivery failures are logged; only the store write decides the error.
func (s *NotificationService) Send(ctx context.Context, m Message) (*models.Notification, error) {
	n := &models.Notification{
		UserID:  m.UserID,
		Type:    m.Type,
		Message: notify.Render(m.Type, m.Data),
		URL:     m.URL,
	}
	if len(m.Data) > 0 {
		n.Data = datatypes.JSONMap(m.Data)
	}
	if m.ReminderKey != "" {
		key := m.ReminderKey
		n.ReminderKey = &key
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	s.deliver(ctx, n, m.Data)
	return n, nil
}

func (s *NotificationService) deliver(ctx context.Context, n *models.Notification, data map[string]any) {
	if s.live != nil {
		s.live.SendToUser(n.UserID, map[string]any{"event": "notification", "notification": n})
	}
	if s.push == nil || s.users == nil {
		return
	}
	u, err := s.users.GetByID(ctx, n.UserID)
	if err != nil || u.FCMToken == "" {
		return
	}
	if err := s.push.SendToUser(ctx, u.FCMToken, n.Type, pushTitle, n.Message, data); err != nil {
		s.log.Debug("push delivery failed", zap.Uint("user_id", n.UserID), zap.Error(err))
	}
}

// NotifyMany sends the same message to each distinct user. It keeps going past failures
// and returns how many were stored along with the joined errors.
func (s *NotificationService) NotifyMany(ctx context.Context, userIDs []uint, notifType string, data map[string]any, url string) (int, error) {
	var errs []error
	sent := 0
	for _, id := range notify.UniqueIDs(userIDs) {
		if _, err := s.Send(ctx, Message{UserID: id, Type: notifType, Data: data, URL: url}); err != nil {
			errs = append(errs, err)
			continue
		}
		sent++
	}
	if len(errs) > 0 {
		s.log.Warn("bulk notify partially failed",
			zap.String("type", notifType), zap.Int("sent", sent), zap.Int("failed", len(errs)))
	}
	return sent, errors.Join(errs...)
}

// Announce broadcasts an admin announcement. Each active recipient gets it once even when
// they match a role and are also listed by id.
func (s *NotificationService) Announce(ctx context.Context, a Announcement) (int, error) {
	if a.Message == "" {
		return 0, fmt.Errorf("%w: announcement message is required", repository.ErrValidation)
	}
	var recipients []uint
	if len(a.Roles) > 0 {
		ids, err := s.users.ListActiveIDs(ctx, a.Roles...)
		if err != nil {
			return 0, err
		}
		recipients = append(recipients, ids...)
	}
	if len(a.UserIDs) > 0 {
		ids, err := s.users.FilterActiveIDs(ctx, a.UserIDs)
		if err != nil {
			return 0, err
		}
		recipients = append(recipients, ids...)
	}
	return s.NotifyMany(ctx, recipients, domain.NotifAnnouncement, map[string]any{"message": a.Message}, a.URL)
}

func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	return s.repo.ListByUserID(ctx, userID, unreadOnly, limit, offset)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// ExistingReminderKeys lets the reminder processor skip occurrences already delivered.
func (s *NotificationService) ExistingReminderKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	return s.repo.ExistingReminderKeys(ctx, keys)
}
