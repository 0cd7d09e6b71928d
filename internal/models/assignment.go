package models

import (
	"fmt"
	"time"

	"reservehub/internal/domain"

	"gorm.io/gorm"
)

// Assignment is the read surface shared by the four assignment tables.
type Assignment interface {
	Kind() domain.Kind
	EntityRef() uint
	UserRef() uint
	Status() string
}

// ReminderSubject describes one reminder a due assignment should produce.
type ReminderSubject struct {
	Type     string
	EntityID uint
	UserID   uint
	OccursAt time.Time
	URL      string
	Data     map[string]any
}

// EventAssignment is a member's signup for an event.
type EventAssignment struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	EventID          uint       `gorm:"not null;index:idx_event_assignment_pair,unique" json:"event_id"`
	UserID           uint       `gorm:"not null;index:idx_event_assignment_pair,unique;index" json:"user_id"`
	CompletionStatus string     `gorm:"size:20;not null;index;default:'pending'" json:"completion_status"`
	CompletionNotes  string     `gorm:"type:text" json:"completion_notes"`
	CompletedAt      *time.Time `json:"completed_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Event Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
	User  User  `gorm:"foreignKey:UserID" json:"-"`
}

func (EventAssignment) TableName() string     { return "event_assignments" }
func (EventAssignment) EntityColumn() string  { return "event_id" }
func (EventAssignment) Kind() domain.Kind     { return domain.KindEvent }
func (a EventAssignment) EntityRef() uint     { return a.EventID }
func (a EventAssignment) UserRef() uint       { return a.UserID }
func (a EventAssignment) Status() string      { return a.CompletionStatus }
func (EventAssignment) ParentTable() string   { return "events" }
func (EventAssignment) ParentPreload() string { return "Event" }

// DueScope selects signups for scheduled events starting in (from, to].
func (EventAssignment) DueScope(from, to time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN events ON events.id = event_assignments.event_id").
			Where("events.starts_at > ? AND events.starts_at <= ?", from, to).
			Where("events.status = ?", domain.EventScheduled)
	}
}

func (a EventAssignment) Reminder() ReminderSubject {
	return ReminderSubject{
		Type:     domain.NotifEventReminder,
		EntityID: a.EventID,
		UserID:   a.UserID,
		OccursAt: a.Event.StartsAt,
		URL:      fmt.Sprintf("/events/%d", a.EventID),
		Data: map[string]any{
			"eventName": a.Event.Title,
			"eventDate": a.Event.StartsAt,
			"location":  a.Event.Location,
		},
	}
}

// TrainingAssignment tracks a member's required or optional training.
type TrainingAssignment struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	TrainingID       uint       `gorm:"not null;index:idx_training_assignment_pair,unique" json:"training_id"`
	UserID           uint       `gorm:"not null;index:idx_training_assignment_pair,unique;index" json:"user_id"`
	CompletionStatus string     `gorm:"size:20;not null;index;default:'pending'" json:"completion_status"`
	CompletionNotes  string     `gorm:"type:text" json:"completion_notes"`
	CompletedAt      *time.Time `json:"completed_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Training Training `gorm:"foreignKey:TrainingID" json:"training,omitempty"`
	User     User     `gorm:"foreignKey:UserID" json:"-"`
}

func (TrainingAssignment) TableName() string     { return "training_assignments" }
func (TrainingAssignment) EntityColumn() string  { return "training_id" }
func (TrainingAssignment) Kind() domain.Kind     { return domain.KindTraining }
func (a TrainingAssignment) EntityRef() uint     { return a.TrainingID }
func (a TrainingAssignment) UserRef() uint       { return a.UserID }
func (a TrainingAssignment) Status() string      { return a.CompletionStatus }
func (TrainingAssignment) ParentTable() string   { return "trainings" }
func (TrainingAssignment) ParentPreload() string { return "Training" }

func (TrainingAssignment) DueScope(from, to time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN trainings ON trainings.id = training_assignments.training_id").
			Where("trainings.starts_at > ? AND trainings.starts_at <= ?", from, to)
	}
}

func (a TrainingAssignment) Reminder() ReminderSubject {
	return ReminderSubject{
		Type:     domain.NotifTrainingReminder,
		EntityID: a.TrainingID,
		UserID:   a.UserID,
		OccursAt: a.Training.StartsAt,
		URL:      fmt.Sprintf("/trainings/%d", a.TrainingID),
		Data: map[string]any{
			"trainingName": a.Training.Title,
			"trainingDate": a.Training.StartsAt,
			"location":     a.Training.Location,
		},
	}
}

// EquipmentAssignment records a piece of equipment checked out to a member.
// Pending means checked out; completed means returned.
type EquipmentAssignment struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	EquipmentID      uint       `gorm:"not null;index:idx_equipment_assignment_pair,unique" json:"equipment_id"`
	UserID           uint       `gorm:"not null;index:idx_equipment_assignment_pair,unique;index" json:"user_id"`
	ReturnDueAt      *time.Time `gorm:"index" json:"return_due_at"`
	CompletionStatus string     `gorm:"size:20;not null;index;default:'pending'" json:"completion_status"`
	CompletionNotes  string     `gorm:"type:text" json:"completion_notes"`
	CompletedAt      *time.Time `json:"completed_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Equipment Equipment `gorm:"foreignKey:EquipmentID" json:"equipment,omitempty"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
}

func (EquipmentAssignment) TableName() string     { return "equipment_assignments" }
func (EquipmentAssignment) EntityColumn() string  { return "equipment_id" }
func (EquipmentAssignment) Kind() domain.Kind     { return domain.KindEquipment }
func (a EquipmentAssignment) EntityRef() uint     { return a.EquipmentID }
func (a EquipmentAssignment) UserRef() uint       { return a.UserID }
func (a EquipmentAssignment) Status() string      { return a.CompletionStatus }
func (EquipmentAssignment) ParentTable() string   { return "equipment" }
func (EquipmentAssignment) ParentPreload() string { return "Equipment" }

// DueScope selects checkouts whose return date falls in (from, to].
func (EquipmentAssignment) DueScope(from, to time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("equipment_assignments.return_due_at > ? AND equipment_assignments.return_due_at <= ?", from, to)
	}
}

func (a EquipmentAssignment) Reminder() ReminderSubject {
	var due time.Time
	if a.ReturnDueAt != nil {
		due = *a.ReturnDueAt
	}
	return ReminderSubject{
		Type:     domain.NotifEquipmentReturnReminder,
		EntityID: a.EquipmentID,
		UserID:   a.UserID,
		OccursAt: due,
		URL:      fmt.Sprintf("/equipment/%d", a.EquipmentID),
		Data: map[string]any{
			"equipmentName": a.Equipment.Name,
			"dueDate":       due,
		},
	}
}

// PolicyAssignment is a member's pending or completed policy acknowledgement.
type PolicyAssignment struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	PolicyID         uint       `gorm:"not null;index:idx_policy_assignment_pair,unique" json:"policy_id"`
	UserID           uint       `gorm:"not null;index:idx_policy_assignment_pair,unique;index" json:"user_id"`
	CompletionStatus string     `gorm:"size:20;not null;index;default:'pending'" json:"completion_status"`
	CompletionNotes  string     `gorm:"type:text" json:"completion_notes"`
	CompletedAt      *time.Time `json:"completed_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Policy Policy `gorm:"foreignKey:PolicyID" json:"policy,omitempty"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`
}

func (PolicyAssignment) TableName() string     { return "policy_assignments" }
func (PolicyAssignment) EntityColumn() string  { return "policy_id" }
func (PolicyAssignment) Kind() domain.Kind     { return domain.KindPolicy }
func (a PolicyAssignment) EntityRef() uint     { return a.PolicyID }
func (a PolicyAssignment) UserRef() uint       { return a.UserID }
func (a PolicyAssignment) Status() string      { return a.CompletionStatus }
func (PolicyAssignment) ParentTable() string   { return "policies" }
func (PolicyAssignment) ParentPreload() string { return "Policy" }

// DueScope selects acknowledgements whose deadline falls in (from, to].
func (PolicyAssignment) DueScope(from, to time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN policies ON policies.id = policy_assignments.policy_id").
			Where("policies.acknowledge_by > ? AND policies.acknowledge_by <= ?", from, to)
	}
}

func (a PolicyAssignment) Reminder() ReminderSubject {
	var due time.Time
	if a.Policy.AcknowledgeBy != nil {
		due = *a.Policy.AcknowledgeBy
	}
	return ReminderSubject{
		Type:     domain.NotifPolicyAcknowledgeReminder,
		EntityID: a.PolicyID,
		UserID:   a.UserID,
		OccursAt: due,
		URL:      fmt.Sprintf("/policies/%d", a.PolicyID),
		Data: map[string]any{
			"policyName": a.Policy.Title,
			"dueDate":    due,
		},
	}
}
