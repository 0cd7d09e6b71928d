package service

import (
	"context"
	"fmt"
	"time"

	"reservehub/internal/domain"
	"reservehub/internal/models"
	"reservehub/internal/repository"

	"go.uber.org/zap"
)

// EventUpdate carries optional changes; nil fields are left alone.
type EventUpdate struct {
	Title       *string
	Description *string
	Location    *string
	StartsAt    *time.Time
	EndsAt      *time.Time
	Capacity    *int
}

type EventService struct {
	events   *repository.EventRepository
	signups  *repository.EventAssignmentRepository
	users    *repository.UserRepository
	notifier *NotificationService
	log      *zap.Logger
	now      func() time.Time
}

func NewEventService(events *repository.EventRepository, signups *repository.EventAssignmentRepository, users *repository.UserRepository, notifier *NotificationService, log *zap.Logger) *EventService {
	return &EventService{events: events, signups: signups, users: users, notifier: notifier, log: log.Named("events"), now: time.Now}
}

func eventData(e *models.Event) map[string]any {
	return map[string]any{"eventName": e.Title, "eventDate": e.StartsAt, "location": e.Location}
}

func eventURL(id uint) string { return fmt.Sprintf("/events/%d", id) }

func validateSchedule(title string, starts, ends time.Time) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", repository.ErrValidation)
	}
	if starts.IsZero() {
		return fmt.Errorf("%w: start time is required", repository.ErrValidation)
	}
	if !ends.IsZero() && ends.Before(starts) {
		return fmt.Errorf("%w: end time is before start time", repository.ErrValidation)
	}
	return nil
}

// Create schedules the event and announces it to active members.
func (s *EventService) Create(ctx context.Context, e *models.Event) error {
	if err := validateSchedule(e.Title, e.StartsAt, e.EndsAt); err != nil {
		return err
	}
	if e.Capacity < 0 {
		return fmt.Errorf("%w: capacity cannot be negative", repository.ErrValidation)
	}
	e.Status = domain.EventScheduled
	if err := s.events.Create(ctx, e); err != nil {
		return err
	}
	members, err := s.users.ListActiveIDs(ctx, domain.RoleMember, domain.RoleAdmin)
	if err != nil {
		s.log.Warn("event created but member lookup failed", zap.Uint("event_id", e.ID), zap.Error(err))
		return nil
	}
	_, _ = s.notifier.NotifyMany(ctx, members, domain.NotifEventCreated, eventData(e), eventURL(e.ID))
	return nil
}

func (s *EventService) Get(ctx context.Context, id uint) (*models.Event, error) {
	return s.events.GetByID(ctx, id)
}

// List returns events; upcomingOnly hides those that already started.
func (s *EventService) List(ctx context.Context, upcomingOnly bool, status string, page, limit int) ([]models.Event, int64, error) {
	var since *time.Time
	if upcomingOnly {
		now := s.now().UTC()
		since = &now
	}
	return s.events.List(ctx, since, status, page, limit)
}

// Update applies changes and tells everyone still signed up.
func (s *EventService) Update(ctx context.Context, id uint, u EventUpdate) (*models.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status == domain.EventCancelled {
		return nil, fmt.Errorf("%w: cancelled events cannot be edited", repository.ErrValidation)
	}
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.Location != nil {
		e.Location = *u.Location
	}
	if u.StartsAt != nil {
		e.StartsAt = u.StartsAt.UTC()
	}
	if u.EndsAt != nil {
		e.EndsAt = u.EndsAt.UTC()
	}
	if u.Capacity != nil {
		if *u.Capacity < 0 {
			return nil, fmt.Errorf("%w: capacity cannot be negative", repository.ErrValidation)
		}
		e.Capacity = *u.Capacity
	}
	if err := validateSchedule(e.Title, e.StartsAt, e.EndsAt); err != nil {
		return nil, err
	}
	if err := s.events.Update(ctx, e); err != nil {
		return nil, err
	}
	s.notifySignups(ctx, e, domain.NotifEventUpdated)
	return e, nil
}

// Cancel marks the event cancelled. Cancelled events get no further reminders.
func (s *EventService) Cancel(ctx context.Context, id uint) (*models.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status == domain.EventCancelled {
		return e, nil
	}
	e.Status = domain.EventCancelled
	if err := s.events.Update(ctx, e); err != nil {
		return nil, err
	}
	s.notifySignups(ctx, e, domain.NotifEventCancelled)
	return e, nil
}

// Delete removes the event and its signups.
func (s *EventService) Delete(ctx context.Context, id uint) error {
	return s.events.Delete(ctx, id)
}

func (s *EventService) notifySignups(ctx context.Context, e *models.Event, notifType string) {
	rows, err := s.signups.ListForEntity(ctx, e.ID)
	if err != nil {
		s.log.Warn("signup lookup failed", zap.Uint("event_id", e.ID), zap.Error(err))
		return
	}
	ids := userIDsOf(rows, pending[models.EventAssignment])
	_, _ = s.notifier.NotifyMany(ctx, ids, notifType, eventData(e), eventURL(e.ID))
}

// Signup registers the user for a scheduled, future event with room left.
func (s *EventService) Signup(ctx context.Context, eventID, userID uint) (*models.EventAssignment, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.Status != domain.EventScheduled || !e.StartsAt.After(s.now()) {
		return nil, ErrEventClosed
	}
	if e.Capacity > 0 {
		taken, err := s.signups.CountForEntity(ctx, eventID, domain.StatusPending, domain.StatusCompleted)
		if err != nil {
			return nil, err
		}
		if taken >= int64(e.Capacity) {
			return nil, ErrEventFull
		}
	}
	row := &models.EventAssignment{EventID: eventID, UserID: userID, CompletionStatus: domain.StatusPending}
	if err := s.signups.Create(ctx, row); err != nil {
		return nil, err
	}
	if _, err := s.notifier.Send(ctx, Message{UserID: userID, Type: domain.NotifEventSignup, Data: eventData(e), URL: eventURL(eventID)}); err != nil {
		s.log.Warn("signup confirmation not stored", zap.Uint("event_id", eventID), zap.Error(err))
	}
	row.Event = *e
	return row, nil
}

// Withdraw removes the user's signup.
func (s *EventService) Withdraw(ctx context.Context, eventID, userID uint) error {
	_, err := s.signups.Delete(ctx, eventID, userID)
	return err
}

func (s *EventService) Signups(ctx context.Context, eventID uint) ([]models.EventAssignment, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.signups.ListForEntity(ctx, eventID)
}

func (s *EventService) MySignups(ctx context.Context, userID uint) ([]models.EventAssignment, error) {
	return s.signups.ListForUser(ctx, userID)
}

// MarkAttendance records attendance (completed) or an excused absence.
func (s *EventService) MarkAttendance(ctx context.Context, eventID, userID uint, status, notes string) (*models.EventAssignment, error) {
	return s.signups.UpdateStatus(ctx, eventID, userID, status, notes)
}
