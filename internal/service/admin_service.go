package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"reservehub/internal/domain"
	"reservehub/internal/models"
	"reservehub/internal/repository"

	"go.uber.org/zap"
)

// UserPatch is an admin change to a user's standing.
type UserPatch struct {
	Role        *string
	Status      *string
	BadgeNumber *string
}

type AdminService struct {
	admin *repository.AdminRepository
	users *repository.UserRepository
	audit *repository.AuditLogRepository
	log   *zap.Logger
}

func NewAdminService(admin *repository.AdminRepository, users *repository.UserRepository, audit *repository.AuditLogRepository, log *zap.Logger) *AdminService {
	return &AdminService{admin: admin, users: users, audit: audit, log: log.Named("admin")}
}

func (s *AdminService) Dashboard(ctx context.Context) (*repository.DashboardStats, error) {
	return s.admin.GetDashboardStats(ctx)
}

func (s *AdminService) Signups(ctx context.Context, days int) ([]repository.TimeSeriesPoint, error) {
	return s.admin.UserSignupsByDay(ctx, days)
}

func (s *AdminService) ListUsers(ctx context.Context, search, role, status string, page, limit int) ([]models.User, int64, error) {
	return s.admin.ListUsers(ctx, search, role, status, page, limit)
}

// UpdateUser changes role, status or badge. Admins cannot demote or deactivate themselves.
func (s *AdminService) UpdateUser(ctx context.Context, actorID, userID uint, p UserPatch) (*models.User, error) {
	updates := map[string]any{}
	if p.Role != nil {
		switch *p.Role {
		case domain.RoleAdmin, domain.RoleMember, domain.RoleGuest:
		default:
			return nil, fmt.Errorf("%w: unknown role %q", repository.ErrValidation, *p.Role)
		}
		if actorID == userID && *p.Role != domain.RoleAdmin {
			return nil, fmt.Errorf("%w: cannot change your own role", repository.ErrValidation)
		}
		updates["role"] = *p.Role
	}
	if p.Status != nil {
		if *p.Status != domain.UserStatusActive && *p.Status != domain.UserStatusInactive {
			return nil, fmt.Errorf("%w: unknown status %q", repository.ErrValidation, *p.Status)
		}
		if actorID == userID && *p.Status != domain.UserStatusActive {
			return nil, fmt.Errorf("%w: cannot deactivate yourself", repository.ErrValidation)
		}
		updates["status"] = *p.Status
	}
	if p.BadgeNumber != nil {
		if *p.BadgeNumber == "" {
			updates["badge_number"] = nil
		} else {
			updates["badge_number"] = *p.BadgeNumber
		}
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", repository.ErrValidation)
	}
	if err := s.users.UpdateFields(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// Record writes an audit entry. Failures are logged and never block the admin action.
func (s *AdminService) Record(ctx context.Context, actorID uint, action, resource string, resourceID uint, ip string, meta map[string]any) {
	entry := &models.AuditLog{
		Action:     action,
		Resource:   resource,
		ResourceID: strconv.FormatUint(uint64(resourceID), 10),
		IP:         ip,
	}
	if actorID != 0 {
		entry.ActorID = &actorID
	}
	if len(meta) > 0 {
		b, _ := json.Marshal(meta)
		entry.Metadata = string(b)
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.log.Warn("audit write failed", zap.String("action", action), zap.Error(err))
	}
}

func (s *AdminService) AuditLog(ctx context.Context, resource string, page, limit int) ([]models.AuditLog, int64, error) {
	return s.audit.List(ctx, resource, page, limit)
}
