package repository

import (
	"context"
	"time"

	"reservehub/internal/domain"
	"reservehub/internal/models"

	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalUsers           int64 `json:"total_users"`
	ActiveMembers        int64 `json:"active_members"`
	Guests               int64 `json:"guests"`
	PendingApplications  int64 `json:"pending_applications"`
	UpcomingEvents       int64 `json:"upcoming_events"`
	UpcomingTrainings    int64 `json:"upcoming_trainings"`
	EquipmentCheckedOut  int64 `json:"equipment_checked_out"`
	PendingPolicyAcks    int64 `json:"pending_policy_acknowledgements"`
	OutstandingTrainings int64 `json:"outstanding_trainings"`
}

type TimeSeriesPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var s DashboardStats
	now := time.Now().UTC()
	db := r.db.WithContext(ctx)
	counts := []struct {
		dst *int64
		q   *gorm.DB
	}{
		{&s.TotalUsers, db.Model(&models.User{})},
		{&s.ActiveMembers, db.Model(&models.User{}).Where("role IN ? AND status = ?", []string{domain.RoleMember, domain.RoleAdmin}, domain.UserStatusActive)},
		{&s.Guests, db.Model(&models.User{}).Where("role = ?", domain.RoleGuest)},
		{&s.PendingApplications, db.Model(&models.Application{}).Where("status = ?", domain.ApplicationPending)},
		{&s.UpcomingEvents, db.Model(&models.Event{}).Where("starts_at >= ? AND status = ?", now, domain.EventScheduled)},
		{&s.UpcomingTrainings, db.Model(&models.Training{}).Where("starts_at >= ?", now)},
		{&s.EquipmentCheckedOut, db.Model(&models.EquipmentAssignment{}).Where("completion_status = ?", domain.StatusPending)},
		{&s.PendingPolicyAcks, db.Model(&models.PolicyAssignment{}).Where("completion_status = ?", domain.StatusPending)},
		{&s.OutstandingTrainings, db.Model(&models.TrainingAssignment{}).Where("completion_status = ?", domain.StatusPending)},
	}
	for _, c := range counts {
		if err := c.q.Count(c.dst).Error; err != nil {
			return nil, translate("dashboard stats", err)
		}
	}
	return &s, nil
}

// ListUsers returns users with search, role and status filters, and pagination.
func (r *AdminRepository) ListUsers(ctx context.Context, search, role, status string, page, limit int) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if search != "" {
		q = q.Where("name LIKE ? OR email LIKE ? OR badge_number LIKE ?", "%"+search+"%", "%"+search+"%", "%"+search+"%")
	}
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate("count users", err)
	}
	var users []models.User
	err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&users).Error
	return users, total, translate("list users", err)
}

// UserSignupsByDay returns daily registration counts for the last N days.
func (r *AdminRepository) UserSignupsByDay(ctx context.Context, days int) ([]TimeSeriesPoint, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	var points []TimeSeriesPoint
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&points).Error
	return points, translate("signups by day", err)
}
