package service

import (
	"encoding/json"
	"log/slog"
	"time"

	"hubln/internal/apperr"
	"hubln/internal/models"
	"hubln/internal/repository"

	"gorm.io/datatypes"
)

// Notifier is what domain services use to tell a user something happened.
type Notifier interface {
	Notify(userID uint, notifType, title, body string, data map[string]interface{}) error
}

// Pusher delivers a payload to a user's live connections.
type Pusher interface {
	PushToUser(userID uint, payload interface{})
}

type NotificationService struct {
	repo   *repository.NotificationRepository
	pusher Pusher
}

func NewNotificationService(repo *repository.NotificationRepository, pusher Pusher) *NotificationService {
	return &NotificationService{repo: repo, pusher: pusher}
}

// Notify persists the notification and pushes it to any open websocket.
func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	n := &models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
	}
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return apperr.Internal(err)
		}
		n.Data = datatypes.JSON(b)
	}
	if err := s.repo.Create(n); err != nil {
		return apperr.Internal(err)
	}
	if s.pusher != nil {
		s.pusher.PushToUser(userID, map[string]interface{}{"type": "notification", "notification": n})
	}
	slog.Debug("notification sent", "user_id", userID, "type", notifType)
	return nil
}

func (s *NotificationService) List(userID uint, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	list, err := s.repo.ListByUserID(userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}

func (s *NotificationService) MarkRead(id, userID uint) error {
	n, err := s.repo.MarkRead(id, userID, time.Now())
	if err != nil {
		return apperr.Internal(err)
	}
	if n == 0 {
		return apperr.New(apperr.NotFound, "NotificationNotFound", "notification not found or already read")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(userID uint) error {
	if err := s.repo.MarkAllRead(userID, time.Now()); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
