package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reservehub/internal/domain"
	"reservehub/internal/models"
	"reservehub/internal/notify"
	"reservehub/internal/repository"

	"go.uber.org/zap"
)

type TrainingUpdate struct {
	Title       *string
	Description *string
	Location    *string
	StartsAt    *time.Time
	EndsAt      *time.Time
	Required    *bool
}

type TrainingService struct {
	trainings   *repository.TrainingRepository
	assignments *repository.TrainingAssignmentRepository
	users       *repository.UserRepository
	notifier    *NotificationService
	log         *zap.Logger
	now         func() time.Time
}

func NewTrainingService(trainings *repository.TrainingRepository, assignments *repository.TrainingAssignmentRepository, users *repository.UserRepository, notifier *NotificationService, log *zap.Logger) *TrainingService {
	return &TrainingService{trainings: trainings, assignments: assignments, users: users, notifier: notifier, log: log.Named("trainings"), now: time.Now}
}

func trainingData(t *models.Training) map[string]any {
	return map[string]any{"trainingName": t.Title, "trainingDate": t.StartsAt, "location": t.Location}
}

func trainingURL(id uint) string { return fmt.Sprintf("/trainings/%d", id) }

func (s *TrainingService) Create(ctx context.Context, t *models.Training) error {
	if err := validateSchedule(t.Title, t.StartsAt, t.EndsAt); err != nil {
		return err
	}
	return s.trainings.Create(ctx, t)
}

func (s *TrainingService) Get(ctx context.Context, id uint) (*models.Training, error) {
	return s.trainings.GetByID(ctx, id)
}

func (s *TrainingService) List(ctx context.Context, upcomingOnly bool, page, limit int) ([]models.Training, int64, error) {
	var since *time.Time
	if upcomingOnly {
		now := s.now().UTC()
		since = &now
	}
	return s.trainings.List(ctx, since, page, limit)
}

// Update applies changes and notifies assignees who have not completed it.
func (s *TrainingService) Update(ctx context.Context, id uint, u TrainingUpdate) (*models.Training, error) {
	t, err := s.trainings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Location != nil {
		t.Location = *u.Location
	}
	if u.StartsAt != nil {
		t.StartsAt = u.StartsAt.UTC()
	}
	if u.EndsAt != nil {
		t.EndsAt = u.EndsAt.UTC()
	}
	if u.Required != nil {
		t.Required = *u.Required
	}
	if err := validateSchedule(t.Title, t.StartsAt, t.EndsAt); err != nil {
		return nil, err
	}
	if err := s.trainings.Update(ctx, t); err != nil {
		return nil, err
	}
	rows, err := s.assignments.ListForEntity(ctx, id)
	if err != nil {
		s.log.Warn("assignee lookup failed", zap.Uint("training_id", id), zap.Error(err))
		return t, nil
	}
	_, _ = s.notifier.NotifyMany(ctx, userIDsOf(rows, pending[models.TrainingAssignment]), domain.NotifTrainingUpdated, trainingData(t), trainingURL(id))
	return t, nil
}

func (s *TrainingService) Delete(ctx context.Context, id uint) error {
	return s.trainings.Delete(ctx, id)
}

// Assign gives the training to each distinct active user. Users already holding it are reported,
// not treated as errors.
func (s *TrainingService) Assign(ctx context.Context, trainingID uint, userIDs []uint) (*AssignResult, error) {
	t, err := s.trainings.GetByID(ctx, trainingID)
	if err != nil {
		return nil, err
	}
	requested := notify.UniqueIDs(userIDs)
	if len(requested) == 0 {
		return nil, fmt.Errorf("%w: at least one user is required", repository.ErrValidation)
	}
	active, err := s.users.FilterActiveIDs(ctx, requested)
	if err != nil {
		return nil, err
	}
	res := &AssignResult{Assigned: []uint{}, AlreadyAssigned: []uint{}, Skipped: missingFrom(requested, active)}
	for _, uid := range active {
		err := s.assignments.Create(ctx, &models.TrainingAssignment{TrainingID: trainingID, UserID: uid, CompletionStatus: domain.StatusPending})
		switch {
		case err == nil:
			res.Assigned = append(res.Assigned, uid)
		case errors.Is(err, repository.ErrConflict):
			res.AlreadyAssigned = append(res.AlreadyAssigned, uid)
		default:
			return res, err
		}
	}
	_, _ = s.notifier.NotifyMany(ctx, res.Assigned, domain.NotifTrainingAssigned, trainingData(t), trainingURL(trainingID))
	return res, nil
}

// Unassign removes the user's assignment.
func (s *TrainingService) Unassign(ctx context.Context, trainingID, userID uint) error {
	_, err := s.assignments.Delete(ctx, trainingID, userID)
	return err
}

// Complete marks the user's training done.
func (s *TrainingService) Complete(ctx context.Context, trainingID, userID uint, notes string) (*models.TrainingAssignment, error) {
	row, err := s.assignments.UpdateStatus(ctx, trainingID, userID, domain.StatusCompleted, notes)
	if err != nil {
		return nil, err
	}
	if t, err := s.trainings.GetByID(ctx, trainingID); err == nil {
		row.Training = *t
		_, _ = s.notifier.Send(ctx, Message{UserID: userID, Type: domain.NotifTrainingCompleted, Data: trainingData(t), URL: trainingURL(trainingID)})
	}
	return row, nil
}

// Excuse releases the user from the training.
func (s *TrainingService) Excuse(ctx context.Context, trainingID, userID uint, notes string) (*models.TrainingAssignment, error) {
	return s.assignments.UpdateStatus(ctx, trainingID, userID, domain.StatusExcused, notes)
}

func (s *TrainingService) Assignees(ctx context.Context, trainingID uint) ([]models.TrainingAssignment, error) {
	if _, err := s.trainings.GetByID(ctx, trainingID); err != nil {
		return nil, err
	}
	return s.assignments.ListForEntity(ctx, trainingID)
}

func (s *TrainingService) MyTrainings(ctx context.Context, userID uint) ([]models.TrainingAssignment, error) {
	return s.assignments.ListForUser(ctx, userID)
}

// missingFrom returns ids in all that are not in kept, preserving order.
func missingFrom(all, kept []uint) []uint {
	in := make(map[uint]bool, len(kept))
	for _, id := range kept {
		in[id] = true
	}
	out := []uint{}
	for _, id := range all {
		if !in[id] {
			out = append(out, id)
		}
	}
	return out
}
