package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"reservehub/internal/domain"
	"reservehub/internal/models"
	"reservehub/internal/repository"
	"reservehub/pkg/cloudinary"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrUploadsDisabled = errors.New("photo uploads are not configured")

type EquipmentUpdate struct {
	Name      *string
	Category  *string
	Condition *string
	Status    *string
}

type EquipmentService struct {
	items       *repository.EquipmentRepository
	assignments *repository.EquipmentAssignmentRepository
	users       *repository.UserRepository
	notifier    *NotificationService
	photos      cloudinary.Client
	folder      string
	log         *zap.Logger
}

// NewEquipmentService wires equipment tracking. photos may be nil when uploads are not configured.
func NewEquipmentService(items *repository.EquipmentRepository, assignments *repository.EquipmentAssignmentRepository, users *repository.UserRepository, notifier *NotificationService, photos cloudinary.Client, folder string, log *zap.Logger) *EquipmentService {
	return &EquipmentService{
		items:       items,
		assignments: assignments,
		users:       users,
		notifier:    notifier,
		photos:      photos,
		folder:      folder,
		log:         log.Named("equipment"),
	}
}

func equipmentData(e *models.Equipment, due *time.Time) map[string]any {
	data := map[string]any{"equipmentName": e.Name}
	if due != nil {
		data["dueDate"] = *due
	}
	return data
}

func equipmentURL(id uint) string { return fmt.Sprintf("/equipment/%d", id) }

var equipmentStatuses = map[string]bool{
	domain.EquipmentAvailable:   true,
	domain.EquipmentAssigned:    true,
	domain.EquipmentMaintenance: true,
	domain.EquipmentRetired:     true,
}

func (s *EquipmentService) Create(ctx context.Context, e *models.Equipment) error {
	if e.Status == "" {
		e.Status = domain.EquipmentAvailable
	}
	if e.Status == domain.EquipmentAssigned || !equipmentStatuses[e.Status] {
		return fmt.Errorf("%w: invalid initial status %q", repository.ErrValidation, e.Status)
	}
	return s.items.Create(ctx, e)
}

func (s *EquipmentService) Get(ctx context.Context, id uint) (*models.Equipment, error) {
	return s.items.GetByID(ctx, id)
}

func (s *EquipmentService) List(ctx context.Context, search, status, category string, page, limit int) ([]models.Equipment, int64, error) {
	return s.items.List(ctx, search, status, category, page, limit)
}

// Update edits item details. The assigned status is owned by Assign and Return.
func (s *EquipmentService) Update(ctx context.Context, id uint, u EquipmentUpdate) (*models.Equipment, error) {
	e, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Name != nil {
		e.Name = *u.Name
	}
	if u.Category != nil {
		e.Category = *u.Category
	}
	if u.Condition != nil {
		e.Condition = *u.Condition
	}
	if u.Status != nil && *u.Status != e.Status {
		if !equipmentStatuses[*u.Status] || *u.Status == domain.EquipmentAssigned || e.Status == domain.EquipmentAssigned {
			return nil, fmt.Errorf("%w: status %q cannot be set directly", repository.ErrValidation, *u.Status)
		}
		e.Status = *u.Status
	}
	if e.Name == "" {
		return nil, fmt.Errorf("%w: name is required", repository.ErrValidation)
	}
	if err := s.items.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes the item. It fails with ErrConflict while checked out.
func (s *EquipmentService) Delete(ctx context.Context, id uint) error {
	e, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}
	if e.PhotoURL != "" && s.photos != nil {
		if err := s.photos.DeleteByURL(ctx, e.PhotoURL); err != nil {
			s.log.Warn("photo cleanup failed", zap.Uint("equipment_id", id), zap.Error(err))
		}
	}
	return nil
}

// UploadPhoto stores a new photo and replaces the old one.
func (s *EquipmentService) UploadPhoto(ctx context.Context, id uint, file io.Reader) (*models.Equipment, error) {
	if s.photos == nil {
		return nil, ErrUploadsDisabled
	}
	e, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	publicID := fmt.Sprintf("eq_%d_%s", id, strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	res, err := s.photos.UploadImage(ctx, file, s.folder+"/equipment", publicID)
	if err != nil {
		return nil, fmt.Errorf("upload equipment photo: %w", err)
	}
	if err := s.items.SetPhotoURL(ctx, id, res.URL); err != nil {
		return nil, err
	}
	if old := e.PhotoURL; old != "" {
		if err := s.photos.DeleteByURL(ctx, old); err != nil {
			s.log.Warn("old photo cleanup failed", zap.Uint("equipment_id", id), zap.Error(err))
		}
	}
	e.PhotoURL = res.URL
	return e, nil
}

// Assign checks the item out to an active user. A previous, returned checkout of the same
// item by the same user is replaced.
func (s *EquipmentService) Assign(ctx context.Context, equipmentID, userID uint, returnDue *time.Time) (*models.EquipmentAssignment, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive() {
		return nil, fmt.Errorf("%w: user is inactive", repository.ErrValidation)
	}
	if returnDue != nil {
		due := returnDue.UTC()
		returnDue = &due
	}
	row := &models.EquipmentAssignment{EquipmentID: equipmentID, UserID: userID, ReturnDueAt: returnDue, CompletionStatus: domain.StatusPending}
	if err := s.items.Checkout(ctx, row); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEquipmentUnavailable
		}
		return nil, err
	}
	e, err := s.items.GetByID(ctx, equipmentID)
	if err != nil {
		return nil, err
	}
	row.Equipment = *e
	_, _ = s.notifier.Send(ctx, Message{UserID: userID, Type: domain.NotifEquipmentAssigned, Data: equipmentData(e, returnDue), URL: equipmentURL(equipmentID)})
	return row, nil
}

// Return closes the checkout and makes the item available again.
func (s *EquipmentService) Return(ctx context.Context, equipmentID, userID uint, notes string) (*models.EquipmentAssignment, error) {
	row, err := s.items.Checkin(ctx, equipmentID, userID, notes)
	if err != nil {
		return nil, err
	}
	if e, err := s.items.GetByID(ctx, equipmentID); err == nil {
		row.Equipment = *e
		_, _ = s.notifier.Send(ctx, Message{UserID: userID, Type: domain.NotifEquipmentReturned, Data: equipmentData(e, nil), URL: equipmentURL(equipmentID)})
	}
	return row, nil
}

func (s *EquipmentService) History(ctx context.Context, equipmentID uint) ([]models.EquipmentAssignment, error) {
	if _, err := s.items.GetByID(ctx, equipmentID); err != nil {
		return nil, err
	}
	return s.assignments.ListForEntity(ctx, equipmentID)
}

func (s *EquipmentService) MyEquipment(ctx context.Context, userID uint) ([]models.EquipmentAssignment, error) {
	return s.assignments.ListForUser(ctx, userID)
}
