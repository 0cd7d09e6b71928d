package service

import (
	"fmt"

	"reservehub/internal/domain"
	"reservehub/internal/models"
	"reservehub/internal/repository"

	"gorm.io/gorm"
)

// Service-level refusals. They wrap the store taxonomy so handlers map them the same way.
var (
	ErrEventClosed          = fmt.Errorf("%w: event is not open for signup", repository.ErrValidation)
	ErrEventFull            = fmt.Errorf("%w: event is full", repository.ErrConflict)
	ErrEquipmentUnavailable = fmt.Errorf("%w: equipment is not available", repository.ErrConflict)
	ErrPolicyNotPublished   = fmt.Errorf("%w: policy is not published", repository.ErrValidation)
)

// Assignments bundles the four assignment repositories.
type Assignments struct {
	Events    *repository.EventAssignmentRepository
	Trainings *repository.TrainingAssignmentRepository
	Equipment *repository.EquipmentAssignmentRepository
	Policies  *repository.PolicyAssignmentRepository
}

func NewAssignments(db *gorm.DB) Assignments {
	return Assignments{
		Events:    repository.NewAssignmentRepository[models.EventAssignment](db),
		Trainings: repository.NewAssignmentRepository[models.TrainingAssignment](db),
		Equipment: repository.NewAssignmentRepository[models.EquipmentAssignment](db),
		Policies:  repository.NewAssignmentRepository[models.PolicyAssignment](db),
	}
}

// Sources returns the reminder sources in processing order.
func (a Assignments) Sources() []ReminderSource {
	return []ReminderSource{a.Events, a.Trainings, a.Equipment, a.Policies}
}

// AssignResult reports a bulk assignment.
type AssignResult struct {
	Assigned        []uint `json:"assigned"`
	AlreadyAssigned []uint `json:"already_assigned"`
	Skipped         []uint `json:"skipped"` // unknown or inactive users
}

func userIDsOf[T models.Assignment](rows []T, keep func(T) bool) []uint {
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		if keep == nil || keep(r) {
			ids = append(ids, r.UserRef())
		}
	}
	return ids
}

func pending[T models.Assignment](r T) bool { return r.Status() == domain.StatusPending }
