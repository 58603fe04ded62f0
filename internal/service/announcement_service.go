package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"hubln/internal/apperr"
	"hubln/internal/models"
	"hubln/internal/repository"
	"hubln/pkg/cloudinary"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	announcementsCacheKey = "announcements:visible"
	announcementsCacheTTL = 60 * time.Second
)

// AnnouncementService manages admin announcements. The visible list is
// cached in Redis when a client is configured.
type AnnouncementService struct {
	repo   *repository.AnnouncementRepository
	images cloudinary.Client
	folder string
	rdb    *redis.Client
	now    func() time.Time
}

func NewAnnouncementService(repo *repository.AnnouncementRepository, images cloudinary.Client, folder string, rdb *redis.Client) *AnnouncementService {
	if folder == "" {
		folder = "hubln/announcements"
	}
	return &AnnouncementService{repo: repo, images: images, folder: folder, rdb: rdb, now: time.Now}
}

type AnnouncementInput struct {
	Title     *string
	Content   *string
	IsActive  *bool
	Priority  *int
	ExpiresAt *time.Time
	// ClearExpiry removes an existing expiry on update.
	ClearExpiry bool
}

// Image is an optional uploaded file.
type Image struct {
	Reader io.Reader
	Name   string
}

func (s *AnnouncementService) ListVisible(ctx context.Context) ([]models.Announcement, error) {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, announcementsCacheKey).Bytes(); err == nil {
			var cached []models.Announcement
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			slog.Warn("announcement cache read", "error", err)
		}
	}
	list, err := s.repo.ListVisible(s.now())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if s.rdb != nil {
		if b, err := json.Marshal(list); err == nil {
			if err := s.rdb.Set(ctx, announcementsCacheKey, b, announcementsCacheTTL).Err(); err != nil {
				slog.Warn("announcement cache write", "error", err)
			}
		}
	}
	return list, nil
}

func (s *AnnouncementService) ListAll() ([]models.Announcement, error) {
	list, err := s.repo.ListAll()
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}

func (s *AnnouncementService) invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, announcementsCacheKey).Err(); err != nil {
		slog.Warn("announcement cache invalidate", "error", err)
	}
}

func (s *AnnouncementService) upload(ctx context.Context, img *Image) (*cloudinary.UploadResult, error) {
	if img == nil || img.Reader == nil {
		return nil, nil
	}
	if s.images == nil {
		return nil, apperr.New(apperr.ExternalServiceError, "ImageUploadUnavailable", "image upload is not configured")
	}
	res, err := s.images.UploadImage(ctx, img.Reader, s.folder, "ann_"+uuid.NewString())
	if err != nil {
		return nil, apperr.External("image upload failed", err)
	}
	return res, nil
}

func (s *AnnouncementService) Create(ctx context.Context, adminID uint, in AnnouncementInput, img *Image) (*models.Announcement, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, apperr.Invalid("title is required")
	}
	a := &models.Announcement{
		Title:     strings.TrimSpace(*in.Title),
		IsActive:  true,
		CreatedBy: adminID,
		ExpiresAt: in.ExpiresAt,
	}
	if in.Content != nil {
		a.Content = strings.TrimSpace(*in.Content)
	}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
	if in.Priority != nil {
		a.Priority = *in.Priority
	}
	up, err := s.upload(ctx, img)
	if err != nil {
		return nil, err
	}
	if up != nil {
		a.ImageURL, a.ImagePublicID = up.URL, up.PublicID
	}
	if err := s.repo.Create(a); err != nil {
		return nil, apperr.Internal(err)
	}
	s.invalidate(ctx)
	return a, nil
}

func (s *AnnouncementService) Update(ctx context.Context, id uint, in AnnouncementInput, img *Image) (*models.Announcement, error) {
	a, err := s.repo.GetByID(id)
	if err != nil {
		return nil, notFound(err, ErrAnnouncementNotFound)
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperr.Invalid("title is required")
		}
		a.Title = title
	}
	if in.Content != nil {
		a.Content = strings.TrimSpace(*in.Content)
	}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
	if in.Priority != nil {
		a.Priority = *in.Priority
	}
	if in.ExpiresAt != nil {
		a.ExpiresAt = in.ExpiresAt
	} else if in.ClearExpiry {
		a.ExpiresAt = nil
	}
	up, err := s.upload(ctx, img)
	if err != nil {
		return nil, err
	}
	oldPublicID := ""
	if up != nil {
		oldPublicID = a.ImagePublicID
		a.ImageURL, a.ImagePublicID = up.URL, up.PublicID
	}
	if err := s.repo.Update(a); err != nil {
		return nil, apperr.Internal(err)
	}
	s.destroy(ctx, oldPublicID)
	s.invalidate(ctx)
	return a, nil
}

func (s *AnnouncementService) Delete(ctx context.Context, id uint) error {
	a, err := s.repo.GetByID(id)
	if err != nil {
		return notFound(err, ErrAnnouncementNotFound)
	}
	if err := s.repo.Delete(id); err != nil {
		return apperr.Internal(err)
	}
	s.destroy(ctx, a.ImagePublicID)
	s.invalidate(ctx)
	return nil
}

func (s *AnnouncementService) destroy(ctx context.Context, publicID string) {
	if publicID == "" || s.images == nil {
		return
	}
	if err := s.images.Destroy(ctx, publicID); err != nil {
		slog.Warn("cloudinary destroy", "public_id", publicID, "error", err)
	}
}
