package repository

import (
	"context"

	"reservehub/internal/domain"
	"reservehub/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u.Email == "" {
		return validationError("user email is required")
	}
	return translate("create user", r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate("get user", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate("get user by email", err)
	}
	return &u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	return translate("update user", r.db.WithContext(ctx).Save(u).Error)
}

// UpdateFields applies a partial update; ErrNotFound when no row matched.
func (r *UserRepository) UpdateFields(ctx context.Context, id uint, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return translate("update user fields", res.Error)
	}
	if res.RowsAffected == 0 {
		return translate("update user fields", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *UserRepository) SetFCMToken(ctx context.Context, id uint, token string) error {
	return r.UpdateFields(ctx, id, map[string]any{"fcm_token": token})
}

// ListActiveIDs returns ids of active users holding any of the roles.
func (r *UserRepository) ListActiveIDs(ctx context.Context, roles ...string) ([]uint, error) {
	var ids []uint
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("status = ?", domain.UserStatusActive)
	if len(roles) > 0 {
		q = q.Where("role IN ?", roles)
	}
	err := q.Order("id ASC").Pluck("id", &ids).Error
	return ids, translate("list active user ids", err)
}

// FilterActiveIDs keeps the ids that belong to existing active users, in input order.
func (r *UserRepository) FilterActiveIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id IN ? AND status = ?", ids, domain.UserStatusActive).
		Pluck("id", &found).Error
	if err != nil {
		return nil, translate("filter active user ids", err)
	}
	ok := make(map[uint]bool, len(found))
	for _, id := range found {
		ok[id] = true
	}
	out := make([]uint, 0, len(found))
	for _, id := range ids {
		if ok[id] {
			out = append(out, id)
		}
	}
	return out, nil
}
