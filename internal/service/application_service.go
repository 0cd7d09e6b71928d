package service

import (
	"context"
	"fmt"

	"reservehub/internal/domain"
	"reservehub/internal/models"
	"reservehub/internal/repository"

	"go.uber.org/zap"
)

type ApplicationService struct {
	apps     *repository.ApplicationRepository
	users    *repository.UserRepository
	notifier *NotificationService
	log      *zap.Logger
}

func NewApplicationService(apps *repository.ApplicationRepository, users *repository.UserRepository, notifier *NotificationService, log *zap.Logger) *ApplicationService {
	return &ApplicationService{apps: apps, users: users, notifier: notifier, log: log.Named("applications")}
}

// Submit files a membership application for a guest.
func (s *ApplicationService) Submit(ctx context.Context, userID uint, a *models.Application) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.Role != domain.RoleGuest {
		return fmt.Errorf("%w: already a member", repository.ErrConflict)
	}
	a.ID = 0
	a.UserID = userID
	a.Status = domain.ApplicationPending
	a.ReviewerID, a.ReviewedAt, a.ReviewNotes = nil, nil, ""
	if err := s.apps.Create(ctx, a); err != nil {
		return err
	}
	_, _ = s.notifier.Send(ctx, Message{UserID: userID, Type: domain.NotifApplicationSubmitted, URL: "/applications"})
	return nil
}

func (s *ApplicationService) Get(ctx context.Context, id uint) (*models.Application, error) {
	return s.apps.GetByID(ctx, id)
}

func (s *ApplicationService) Mine(ctx context.Context, userID uint) ([]models.Application, error) {
	return s.apps.ListByUserID(ctx, userID)
}

func (s *ApplicationService) List(ctx context.Context, status string, page, limit int) ([]models.Application, int64, error) {
	return s.apps.List(ctx, status, page, limit)
}

// Review approves or rejects a pending application and tells the applicant.
func (s *ApplicationService) Review(ctx context.Context, id, reviewerID uint, approve bool, notes string) (*models.Application, error) {
	status, notifType := domain.ApplicationRejected, domain.NotifApplicationRejected
	if approve {
		status, notifType = domain.ApplicationApproved, domain.NotifApplicationApproved
	}
	a, err := s.apps.Review(ctx, id, reviewerID, status, notes)
	if err != nil {
		return nil, err
	}
	s.log.Info("application reviewed",
		zap.Uint("application_id", id), zap.Uint("reviewer_id", reviewerID), zap.String("status", status))
	data := map[string]any{"name": a.FullName, "notes": notes}
	_, _ = s.notifier.Send(ctx, Message{UserID: a.UserID, Type: notifType, Data: data, URL: "/applications"})
	return a, nil
}
