package repository

import (
	"context"
	"time"

	"reservehub/internal/models"

	"gorm.io/gorm"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	if e.Title == "" || e.StartsAt.IsZero() {
		return validationError("event title and start time are required")
	}
	return translate("create event", r.db.WithContext(ctx).Create(e).Error)
}

func (r *EventRepository) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	var e models.Event
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, translate("get event", err)
	}
	return &e, nil
}

func (r *EventRepository) Update(ctx context.Context, e *models.Event) error {
	return translate("update event", r.db.WithContext(ctx).Save(e).Error)
}

// List returns events, optionally only those starting at or after since.
func (r *EventRepository) List(ctx context.Context, since *time.Time, status string, page, limit int) ([]models.Event, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Event{})
	if since != nil {
		q = q.Where("starts_at >= ?", *since)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate("count events", err)
	}
	var list []models.Event
	err := q.Order("starts_at ASC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, translate("list events", err)
}

// Delete removes the event and its signups in one transaction.
func (r *EventRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Event{}, id).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&models.EventAssignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Event{}, id).Error
	})
	return translate("delete event", err)
}

type TrainingRepository struct {
	db *gorm.DB
}

func NewTrainingRepository(db *gorm.DB) *TrainingRepository {
	return &TrainingRepository{db: db}
}

func (r *TrainingRepository) Create(ctx context.Context, t *models.Training) error {
	if t.Title == "" || t.StartsAt.IsZero() {
		return validationError("training title and start time are required")
	}
	return translate("create training", r.db.WithContext(ctx).Create(t).Error)
}

func (r *TrainingRepository) GetByID(ctx context.Context, id uint) (*models.Training, error) {
	var t models.Training
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, translate("get training", err)
	}
	return &t, nil
}

func (r *TrainingRepository) Update(ctx context.Context, t *models.Training) error {
	return translate("update training", r.db.WithContext(ctx).Save(t).Error)
}

func (r *TrainingRepository) List(ctx context.Context, since *time.Time, page, limit int) ([]models.Training, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Training{})
	if since != nil {
		q = q.Where("starts_at >= ?", *since)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate("count trainings", err)
	}
	var list []models.Training
	err := q.Order("starts_at ASC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, translate("list trainings", err)
}

// Delete removes the training and its assignments in one transaction.
func (r *TrainingRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Training{}, id).Error; err != nil {
			return err
		}
		if err := tx.Where("training_id = ?", id).Delete(&models.TrainingAssignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Training{}, id).Error
	})
	return translate("delete training", err)
}
