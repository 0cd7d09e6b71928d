package repository

import (
	"context"
	"time"

	"reservehub/internal/domain"
	"reservehub/internal/models"

	"gorm.io/gorm"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create stores a new application; a user may only hold one pending application.
func (r *ApplicationRepository) Create(ctx context.Context, a *models.Application) error {
	if a.UserID == 0 || a.FullName == "" {
		return validationError("application user and full name are required")
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending int64
		if err := tx.Model(&models.Application{}).
			Where("user_id = ? AND status = ?", a.UserID, domain.ApplicationPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return ErrConflict
		}
		return tx.Omit("User").Create(a).Error
	})
	return translate("create application", err)
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	var a models.Application
	if err := r.db.WithContext(ctx).Preload("User").First(&a, id).Error; err != nil {
		return nil, translate("get application", err)
	}
	return &a, nil
}

func (r *ApplicationRepository) ListByUserID(ctx context.Context, userID uint) ([]models.Application, error) {
	var list []models.Application
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error
	return list, translate("list applications for user", err)
}

func (r *ApplicationRepository) List(ctx context.Context, status string, page, limit int) ([]models.Application, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Application{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate("count applications", err)
	}
	var list []models.Application
	err := q.Preload("User").Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, translate("list applications", err)
}

// Review moves a pending application to approved/rejected and, on approval, promotes the applicant
// from guest to member, all in one transaction.
func (r *ApplicationRepository) Review(ctx context.Context, id, reviewerID uint, status, notes string) (*models.Application, error) {
	if status != domain.ApplicationApproved && status != domain.ApplicationRejected {
		return nil, validationError("review status must be approved or rejected")
	}
	var a models.Application
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&a, id).Error; err != nil {
			return err
		}
		if a.Status != domain.ApplicationPending {
			return ErrConflict
		}
		res := tx.Model(&models.Application{}).
			Where("id = ? AND status = ?", id, domain.ApplicationPending).
			Updates(map[string]any{
				"status":       status,
				"reviewer_id":  reviewerID,
				"review_notes": notes,
				"reviewed_at":  time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		if status == domain.ApplicationApproved {
			if err := tx.Model(&models.User{}).
				Where("id = ? AND role = ?", a.UserID, domain.RoleGuest).
				Update("role", domain.RoleMember).Error; err != nil {
				return err
			}
		}
		return tx.Preload("User").First(&a, id).Error
	})
	if err != nil {
		return nil, translate("review application", err)
	}
	return &a, nil
}
