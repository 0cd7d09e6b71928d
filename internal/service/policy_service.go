package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reservehub/internal/domain"
	"reservehub/internal/models"
	"reservehub/internal/repository"

	"go.uber.org/zap"
)

type PolicyUpdate struct {
	Title         *string
	Body          *string
	EffectiveDate *time.Time
	AcknowledgeBy *time.Time
}

type PolicyService struct {
	policies    *repository.PolicyRepository
	assignments *repository.PolicyAssignmentRepository
	users       *repository.UserRepository
	notifier    *NotificationService
	log         *zap.Logger
	now         func() time.Time
}

func NewPolicyService(policies *repository.PolicyRepository, assignments *repository.PolicyAssignmentRepository, users *repository.UserRepository, notifier *NotificationService, log *zap.Logger) *PolicyService {
	return &PolicyService{policies: policies, assignments: assignments, users: users, notifier: notifier, log: log.Named("policies"), now: time.Now}
}

func policyData(p *models.Policy) map[string]any {
	data := map[string]any{"policyName": p.Title, "version": p.Version}
	if p.AcknowledgeBy != nil {
		data["dueDate"] = *p.AcknowledgeBy
	}
	return data
}

func policyURL(id uint) string { return fmt.Sprintf("/policies/%d", id) }

// Create stores a draft policy. Members see it after Publish.
func (s *PolicyService) Create(ctx context.Context, p *models.Policy) error {
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", repository.ErrValidation)
	}
	p.Version = 1
	p.PublishedAt = nil
	if p.EffectiveDate.IsZero() {
		p.EffectiveDate = s.now().UTC()
	}
	return s.policies.Create(ctx, p)
}

func (s *PolicyService) Get(ctx context.Context, id uint) (*models.Policy, error) {
	return s.policies.GetByID(ctx, id)
}

func (s *PolicyService) List(ctx context.Context, publishedOnly bool, page, limit int) ([]models.Policy, int64, error) {
	return s.policies.List(ctx, publishedOnly, page, limit)
}

// Update edits the policy. Editing a published policy bumps its version, reopens completed
// acknowledgements and asks every assignee to acknowledge the new version.
func (s *PolicyService) Update(ctx context.Context, id uint, u PolicyUpdate) (*models.Policy, error) {
	p, err := s.policies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Body != nil {
		p.Body = *u.Body
	}
	if u.EffectiveDate != nil {
		p.EffectiveDate = u.EffectiveDate.UTC()
	}
	if u.AcknowledgeBy != nil {
		due := u.AcknowledgeBy.UTC()
		p.AcknowledgeBy = &due
	}
	if p.Title == "" {
		return nil, fmt.Errorf("%w: title is required", repository.ErrValidation)
	}
	if p.PublishedAt == nil {
		if err := s.policies.Update(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	}
	p.Version++
	reopened, err := s.policies.Revise(ctx, p)
	if err != nil {
		return nil, err
	}
	s.log.Info("policy revised", zap.Uint("policy_id", id), zap.Int("version", p.Version), zap.Int64("reopened", reopened))
	rows, err := s.assignments.ListForEntity(ctx, id)
	if err != nil {
		s.log.Warn("assignee lookup failed", zap.Uint("policy_id", id), zap.Error(err))
		return p, nil
	}
	_, _ = s.notifier.NotifyMany(ctx, userIDsOf(rows, pending[models.PolicyAssignment]), domain.NotifPolicyUpdated, policyData(p), policyURL(id))
	return p, nil
}

func (s *PolicyService) Delete(ctx context.Context, id uint) error {
	return s.policies.Delete(ctx, id)
}

// Publish makes the policy visible and asks every active member to acknowledge it.
// Publishing again only reaches members who joined since.
func (s *PolicyService) Publish(ctx context.Context, id uint) (*AssignResult, error) {
	p, err := s.policies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.PublishedAt == nil {
		now := s.now().UTC()
		p.PublishedAt = &now
		if err := s.policies.Update(ctx, p); err != nil {
			return nil, err
		}
	}
	members, err := s.users.ListActiveIDs(ctx, domain.RoleMember, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	res := &AssignResult{Assigned: []uint{}, AlreadyAssigned: []uint{}, Skipped: []uint{}}
	for _, uid := range members {
		err := s.assignments.Create(ctx, &models.PolicyAssignment{PolicyID: id, UserID: uid, CompletionStatus: domain.StatusPending})
		switch {
		case err == nil:
			res.Assigned = append(res.Assigned, uid)
		case errors.Is(err, repository.ErrConflict):
			res.AlreadyAssigned = append(res.AlreadyAssigned, uid)
		default:
			return res, err
		}
	}
	_, _ = s.notifier.NotifyMany(ctx, res.Assigned, domain.NotifPolicyPublished, policyData(p), policyURL(id))
	return res, nil
}

// Acknowledge records the user's acknowledgement of a published policy.
func (s *PolicyService) Acknowledge(ctx context.Context, policyID, userID uint) (*models.PolicyAssignment, error) {
	p, err := s.policies.GetByID(ctx, policyID)
	if err != nil {
		return nil, err
	}
	if p.PublishedAt == nil {
		return nil, ErrPolicyNotPublished
	}
	row, err := s.assignments.UpdateStatus(ctx, policyID, userID, domain.StatusCompleted, fmt.Sprintf("version %d", p.Version))
	if err != nil {
		return nil, err
	}
	row.Policy = *p
	_, _ = s.notifier.Send(ctx, Message{UserID: userID, Type: domain.NotifPolicyAcknowledged, Data: policyData(p), URL: policyURL(policyID)})
	return row, nil
}

func (s *PolicyService) Acknowledgements(ctx context.Context, policyID uint) ([]models.PolicyAssignment, error) {
	if _, err := s.policies.GetByID(ctx, policyID); err != nil {
		return nil, err
	}
	return s.assignments.ListForEntity(ctx, policyID)
}

func (s *PolicyService) MyPolicies(ctx context.Context, userID uint) ([]models.PolicyAssignment, error) {
	return s.assignments.ListForUser(ctx, userID)
}
