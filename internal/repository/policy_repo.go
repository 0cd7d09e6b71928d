package repository

import (
	"context"

	"reservehub/internal/domain"
	"reservehub/internal/models"

	"gorm.io/gorm"
)

type PolicyRepository struct {
	db *gorm.DB
}

func NewPolicyRepository(db *gorm.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

func (r *PolicyRepository) Create(ctx context.Context, p *models.Policy) error {
	if p.Title == "" {
		return validationError("policy title is required")
	}
	return translate("create policy", r.db.WithContext(ctx).Create(p).Error)
}

func (r *PolicyRepository) GetByID(ctx context.Context, id uint) (*models.Policy, error) {
	var p models.Policy
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate("get policy", err)
	}
	return &p, nil
}

func (r *PolicyRepository) Update(ctx context.Context, p *models.Policy) error {
	return translate("update policy", r.db.WithContext(ctx).Save(p).Error)
}

// Revise saves an edit to a published policy and reopens every completed acknowledgement,
// in one transaction, so members acknowledge the new version. It returns the reopened count.
func (r *PolicyRepository) Revise(ctx context.Context, p *models.Policy) (int64, error) {
	var reopened int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		res := tx.Model(&models.PolicyAssignment{}).
			Where("policy_id = ? AND completion_status = ?", p.ID, domain.StatusCompleted).
			Updates(map[string]any{
				"completion_status": domain.StatusPending,
				"completion_notes":  "",
				"completed_at":      nil,
			})
		reopened = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, translate("revise policy", err)
	}
	return reopened, nil
}

func (r *PolicyRepository) List(ctx context.Context, publishedOnly bool, page, limit int) ([]models.Policy, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Policy{})
	if publishedOnly {
		q = q.Where("published_at IS NOT NULL")
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate("count policies", err)
	}
	var list []models.Policy
	err := q.Order("effective_date DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, translate("list policies", err)
}

// Delete removes the policy and its acknowledgements in one transaction.
func (r *PolicyRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Policy{}, id).Error; err != nil {
			return err
		}
		if err := tx.Where("policy_id = ?", id).Delete(&models.PolicyAssignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Policy{}, id).Error
	})
	return translate("delete policy", err)
}
