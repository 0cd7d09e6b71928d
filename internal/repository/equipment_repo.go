package repository

import (
	"context"

	"reservehub/internal/domain"
	"reservehub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

// Create inserts an item; a repeated serial number fails with ErrConflict.
func (r *EquipmentRepository) Create(ctx context.Context, e *models.Equipment) error {
	if e.Name == "" || e.SerialNumber == "" {
		return validationError("equipment name and serial number are required")
	}
	return translate("create equipment", r.db.WithContext(ctx).Create(e).Error)
}

func (r *EquipmentRepository) GetByID(ctx context.Context, id uint) (*models.Equipment, error) {
	var e models.Equipment
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, translate("get equipment", err)
	}
	return &e, nil
}

func (r *EquipmentRepository) Update(ctx context.Context, e *models.Equipment) error {
	return translate("update equipment", r.db.WithContext(ctx).Save(e).Error)
}

// Checkout claims an available item and records the pending checkout in one transaction.
// A returned checkout by the same user is replaced. ErrConflict when the item is not
// available; nothing is written on any failure.
func (r *EquipmentRepository) Checkout(ctx context.Context, row *models.EquipmentAssignment) error {
	if row.EquipmentID == 0 || row.UserID == 0 {
		return validationError("checkout: equipment id and user id are required")
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Equipment{}).
			Where("id = ? AND status = ?", row.EquipmentID, domain.EquipmentAvailable).
			Update("status", domain.EquipmentAssigned)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Select("id").First(&models.Equipment{}, row.EquipmentID).Error; err != nil {
				return err
			}
			return ErrConflict
		}
		if err := tx.Where("equipment_id = ? AND user_id = ? AND completion_status IN ?", row.EquipmentID, row.UserID, domain.TerminalStatuses).
			Delete(&models.EquipmentAssignment{}).Error; err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(row).Error
	})
	return translate("checkout equipment", err)
}

// Checkin completes the user's checkout and releases the item in one transaction.
func (r *EquipmentRepository) Checkin(ctx context.Context, equipmentID, userID uint, notes string) (*models.EquipmentAssignment, error) {
	var row *models.EquipmentAssignment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		row, err = NewAssignmentRepository[models.EquipmentAssignment](tx).UpdateStatus(ctx, equipmentID, userID, domain.StatusCompleted, notes)
		if err != nil {
			return err
		}
		return tx.Model(&models.Equipment{}).Where("id = ?", equipmentID).Update("status", domain.EquipmentAvailable).Error
	})
	if err != nil {
		return nil, translate("checkin equipment", err)
	}
	return row, nil
}

func (r *EquipmentRepository) SetPhotoURL(ctx context.Context, id uint, url string) error {
	err := r.db.WithContext(ctx).Model(&models.Equipment{}).Where("id = ?", id).Update("photo_url", url).Error
	return translate("set equipment photo", err)
}

func (r *EquipmentRepository) List(ctx context.Context, search, status, category string, page, limit int) ([]models.Equipment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Equipment{})
	if search != "" {
		q = q.Where("name LIKE ? OR serial_number LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate("count equipment", err)
	}
	var list []models.Equipment
	err := q.Order("name ASC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, translate("list equipment", err)
}

// Delete removes the item and its returned checkouts. An outstanding checkout fails with ErrConflict.
func (r *EquipmentRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Equipment{}, id).Error; err != nil {
			return err
		}
		var outstanding int64
		if err := tx.Model(&models.EquipmentAssignment{}).
			Where("equipment_id = ? AND completion_status = ?", id, domain.StatusPending).
			Count(&outstanding).Error; err != nil {
			return err
		}
		if outstanding > 0 {
			return ErrConflict
		}
		if err := tx.Where("equipment_id = ?", id).Delete(&models.EquipmentAssignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Equipment{}, id).Error
	})
	return translate("delete equipment", err)
}
