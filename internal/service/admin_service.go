package service

import (
	"strings"

	"hubln/internal/apperr"
	"hubln/internal/domain"
	"hubln/internal/models"
	"hubln/internal/repository"
)

type AdminService struct {
	admin    *repository.AdminRepository
	users    *repository.UserRepository
	settings *repository.SettingRepository
}

func NewAdminService(admin *repository.AdminRepository, users *repository.UserRepository, settings *repository.SettingRepository) *AdminService {
	return &AdminService{admin: admin, users: users, settings: settings}
}

func (s *AdminService) Dashboard() (*repository.DashboardStats, error) {
	stats, err := s.admin.GetDashboardStats()
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return stats, nil
}

func (s *AdminService) ListUsers(search, role string, page, limit int) ([]models.User, int64, error) {
	list, total, err := s.admin.ListUsers(strings.TrimSpace(search), role, page, limit)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return list, total, nil
}

func (s *AdminService) GetUser(id uint) (*models.User, error) {
	u, err := s.users.GetByID(id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return u, nil
}

func (s *AdminService) UpdateUserRole(actorID, id uint, role string) (*models.User, error) {
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, apperr.Invalid("role must be USER or ADMIN")
	}
	if actorID == id && role != domain.RoleAdmin {
		return nil, apperr.Invalid("you cannot remove your own admin role")
	}
	return s.updateUser(id, map[string]interface{}{"role": role})
}

func (s *AdminService) SetUserActive(actorID, id uint, active bool) (*models.User, error) {
	if actorID == id && !active {
		return nil, apperr.Invalid("you cannot deactivate your own account")
	}
	return s.updateUser(id, map[string]interface{}{"is_active": active})
}

func (s *AdminService) updateUser(id uint, fields map[string]interface{}) (*models.User, error) {
	if _, err := s.users.GetByID(id); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if err := s.users.UpdateFields(id, fields); err != nil {
		return nil, apperr.Internal(err)
	}
	return s.GetUser(id)
}

func (s *AdminService) Settings() ([]models.SystemSetting, error) {
	list, err := s.settings.GetAll()
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}

func (s *AdminService) SetSetting(actorID uint, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return apperr.Invalid("key is required")
	}
	if err := s.settings.Set(key, value, &actorID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
