package database

import (
	"errors"
	"fmt"

	"reservehub/config"
	"reservehub/internal/domain"
	"reservehub/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens the MySQL connection pool. The caller owns the handle and must Close it.
func NewDB(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := Open(mysql.Open(cfg.DSN), log)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// Open wraps gorm.Open with the settings every store handle uses.
// TranslateError maps driver duplicate-key errors to gorm.ErrDuplicatedKey. A nil log discards
// query logging.
func Open(dialector gorm.Dialector, log *zap.Logger) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(log).LogMode(logger.Warn),
		TranslateError: true,
	})
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate runs gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Application{},
		&models.Event{},
		&models.Training{},
		&models.Equipment{},
		&models.Policy{},
		&models.EventAssignment{},
		&models.TrainingAssignment{},
		&models.EquipmentAssignment{},
		&models.PolicyAssignment{},
		&models.Notification{},
		&models.AuditLog{},
	)
}

// SeedAdmin creates the bootstrap admin account when none exists.
func SeedAdmin(db *gorm.DB, cfg *config.AdminSeedConfig, log *zap.Logger) error {
	if cfg.Email == "" || cfg.Password == "" {
		log.Debug("admin seed skipped: ADMIN_EMAIL/ADMIN_PASSWORD not set")
		return nil
	}
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	var existing models.User
	err := db.Where("email = ?", cfg.Email).First(&existing).Error
	if err == nil {
		log.Info("promoting existing user to admin", zap.String("email", cfg.Email))
		return db.Model(&existing).Update("role", domain.RoleAdmin).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := &models.User{
		Email:        cfg.Email,
		Name:         "Administrator",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		Status:       domain.UserStatusActive,
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}
	log.Info("seeded admin user", zap.String("email", cfg.Email))
	return nil
}
