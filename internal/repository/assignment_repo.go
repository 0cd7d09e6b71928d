package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reservehub/internal/domain"
	"reservehub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// assignmentRow is satisfied by the four assignment tables.
type assignmentRow interface {
	models.EventAssignment | models.TrainingAssignment | models.EquipmentAssignment | models.PolicyAssignment
	models.Assignment
	TableName() string
	EntityColumn() string
	ParentPreload() string
	DueScope(from, to time.Time) func(*gorm.DB) *gorm.DB
	Reminder() models.ReminderSubject
}

// AssignmentRepository is the CRUD surface over one assignment table, keyed by (entity id, user id).
type AssignmentRepository[T assignmentRow] struct {
	db *gorm.DB
}

func NewAssignmentRepository[T assignmentRow](db *gorm.DB) *AssignmentRepository[T] {
	return &AssignmentRepository[T]{db: db}
}

type (
	EventAssignmentRepository     = AssignmentRepository[models.EventAssignment]
	TrainingAssignmentRepository  = AssignmentRepository[models.TrainingAssignment]
	EquipmentAssignmentRepository = AssignmentRepository[models.EquipmentAssignment]
	PolicyAssignmentRepository    = AssignmentRepository[models.PolicyAssignment]
)

// Kind returns the domain this repository serves.
func (r *AssignmentRepository[T]) Kind() domain.Kind {
	var zero T
	return zero.Kind()
}

func (r *AssignmentRepository[T]) op(name string) string {
	return fmt.Sprintf("%s assignment %s", r.Kind(), name)
}

func (r *AssignmentRepository[T]) pairWhere() string {
	var zero T
	return zero.EntityColumn() + " = ? AND user_id = ?"
}

// ListForEntity returns every assignment for the entity. No rows is not an error.
func (r *AssignmentRepository[T]) ListForEntity(ctx context.Context, entityID uint) ([]T, error) {
	var zero T
	var list []T
	err := r.db.WithContext(ctx).
		Where(zero.EntityColumn()+" = ?", entityID).
		Preload("User").
		Order("created_at ASC").
		Find(&list).Error
	return list, translate(r.op("list for entity"), err)
}

// ListForUser returns every assignment of this kind held by the user, newest first.
func (r *AssignmentRepository[T]) ListForUser(ctx context.Context, userID uint) ([]T, error) {
	var zero T
	var list []T
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload(zero.ParentPreload()).
		Order("created_at DESC").
		Find(&list).Error
	return list, translate(r.op("list for user"), err)
}

// CountForEntity counts assignments of the entity, optionally restricted to statuses.
func (r *AssignmentRepository[T]) CountForEntity(ctx context.Context, entityID uint, statuses ...string) (int64, error) {
	var zero T
	q := r.db.WithContext(ctx).Model(new(T)).Where(zero.EntityColumn()+" = ?", entityID)
	if len(statuses) > 0 {
		q = q.Where("completion_status IN ?", statuses)
	}
	var n int64
	err := q.Count(&n).Error
	return n, translate(r.op("count"), err)
}

// Get returns the assignment for the pair.
func (r *AssignmentRepository[T]) Get(ctx context.Context, entityID, userID uint) (*T, error) {
	var row T
	err := r.db.WithContext(ctx).Where(r.pairWhere(), entityID, userID).First(&row).Error
	if err != nil {
		return nil, translate(r.op("get"), err)
	}
	return &row, nil
}

// Create inserts one row. A second row for the same pair fails with ErrConflict.
func (r *AssignmentRepository[T]) Create(ctx context.Context, row *T) error {
	if row == nil {
		return validationError("%s: nil row", r.op("create"))
	}
	if (*row).EntityRef() == 0 || (*row).UserRef() == 0 {
		return validationError("%s: entity id and user id are required", r.op("create"))
	}
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error
	return translate(r.op("create"), err)
}

// Delete removes the row for the pair and returns it. ErrNotFound leaves the store unchanged.
func (r *AssignmentRepository[T]) Delete(ctx context.Context, entityID, userID uint) (*T, error) {
	var row T
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(r.pairWhere(), entityID, userID).First(&row).Error; err != nil {
			return err
		}
		return tx.Delete(&row).Error
	})
	if err != nil {
		return nil, translate(r.op("delete"), err)
	}
	return &row, nil
}

// UpdateStatus moves the pair's completion status, enforcing the domain state machine.
// A concurrent change between read and write surfaces as ErrConflict.
func (r *AssignmentRepository[T]) UpdateStatus(ctx context.Context, entityID, userID uint, status, notes string) (*T, error) {
	var row T
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(r.pairWhere(), entityID, userID).First(&row).Error; err != nil {
			return err
		}
		current := row.Status()
		if err := domain.CheckTransition(row.Kind(), current, status); err != nil {
			return fmt.Errorf("%w: %w: %s -> %s", ErrValidation, err, current, status)
		}
		updates := map[string]any{
			"completion_status": status,
			"completion_notes":  notes,
			"completed_at":      time.Now().UTC(),
		}
		res := tx.Model(new(T)).
			Where(r.pairWhere(), entityID, userID).
			Where("completion_status = ?", current).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		return tx.Where(r.pairWhere(), entityID, userID).First(&row).Error
	})
	if err != nil {
		return nil, translate(r.op("update status"), err)
	}
	return &row, nil
}

// DueReminders returns one reminder subject per outstanding assignment of an active user
// whose occurrence falls in (from, to].
func (r *AssignmentRepository[T]) DueReminders(ctx context.Context, from, to time.Time) ([]models.ReminderSubject, error) {
	var zero T
	tbl := zero.TableName()
	var rows []T
	err := r.db.WithContext(ctx).
		Model(new(T)).
		Scopes(zero.DueScope(from, to)).
		Joins("JOIN users ON users.id = "+tbl+".user_id").
		Where("users.status = ?", domain.UserStatusActive).
		Where(tbl+".completion_status NOT IN ?", domain.TerminalStatuses).
		Preload(zero.ParentPreload()).
		Find(&rows).Error
	if err != nil {
		return nil, translate(r.op("due reminders"), err)
	}
	out := make([]models.ReminderSubject, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Reminder())
	}
	return out, nil
}

// IsNotFound is a convenience for handlers.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
