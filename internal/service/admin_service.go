package service

import (
	"errors"

	"medlink/internal/domain"
	"medlink/internal/models"
	"medlink/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AdminService struct {
	admin    *repository.AdminRepository
	users    *repository.UserRepository
	audit    *repository.AuditLogRepository
	notifier Notifier
	log      *zap.Logger
}

func NewAdminService(admin *repository.AdminRepository, users *repository.UserRepository, audit *repository.AuditLogRepository, notifier Notifier, log *zap.Logger) *AdminService {
	return &AdminService{admin: admin, users: users, audit: audit, notifier: notifier, log: log}
}

func (s *AdminService) Dashboard() (*repository.DashboardStats, error) {
	return s.admin.GetDashboardStats()
}

func (s *AdminService) ListUsers(f repository.UserFilter) ([]models.User, int64, error) {
	return s.admin.ListUsers(f)
}

func (s *AdminService) GetUser(id uint) (*models.User, error) {
	u, err := s.users.GetWithProfile(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// SetVerification approves or rejects a provider and tells them.
func (s *AdminService) SetVerification(id uint, status string) (*models.User, error) {
	switch status {
	case domain.VerificationPending, domain.VerificationVerified, domain.VerificationRejected:
	default:
		return nil, ErrInvalidInput
	}
	if err := s.admin.UpdateVerification(id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	notify(s.notifier, s.log, id, domain.NotificationVerificationUpdate, "Verification update",
		"Your account verification status is now "+status, map[string]interface{}{"status": status})
	return s.GetUser(id)
}

func (s *AdminService) DeleteUser(actor domain.Principal, id uint) error {
	if actor.ID == id {
		return ErrSelfDelete
	}
	err := s.admin.DeleteUser(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *AdminService) AuditLogs(action string, page, limit int) ([]models.AuditLog, int64, error) {
	return s.audit.List(action, page, limit)
}
