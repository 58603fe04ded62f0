package service

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"hubln/internal/apperr"
	"hubln/internal/models"
	"hubln/internal/repository"

	"gorm.io/datatypes"
)

// Actor identifies who performed an admin action.
type Actor struct {
	ID        uint
	IP        string
	UserAgent string
}

type AuditService struct {
	repo *repository.AuditLogRepository
}

func NewAuditService(repo *repository.AuditLogRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Record writes an audit row. Failures are logged, never returned.
func (s *AuditService) Record(actor Actor, action, resource string, resourceID interface{}, meta map[string]interface{}) {
	entry := &models.AuditLog{
		Action:     action,
		Resource:   resource,
		ResourceID: fmt.Sprint(resourceID),
		IP:         actor.IP,
		UserAgent:  actor.UserAgent,
	}
	if actor.ID != 0 {
		id := actor.ID
		entry.ActorID = &id
	}
	if meta != nil {
		if b, err := json.Marshal(meta); err == nil {
			entry.Metadata = datatypes.JSON(b)
		}
	}
	if err := s.repo.Create(entry); err != nil {
		slog.Error("audit log write failed", "action", action, "resource", resource, "error", err)
	}
}

func (s *AuditService) List(resource string, page, limit int) ([]models.AuditLog, int64, error) {
	list, total, err := s.repo.List(resource, page, limit)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return list, total, nil
}
