package service

import (
	"time"

	"hubln/internal/apperr"
	"hubln/internal/domain"
	"hubln/internal/repository"

	"gorm.io/gorm"
)

// CalculateStatus derives a submission status from its clients' statuses.
// No clients is pending; otherwise the most frequent status wins and ties go
// to the earlier entry in domain.StatusPriority.
func CalculateStatus(statuses []string) string {
	if len(statuses) == 0 {
		return domain.StatusPending
	}
	counts := make(map[string]int, len(domain.StatusPriority))
	for _, st := range statuses {
		counts[st]++
	}
	if len(counts) == 1 {
		return statuses[0]
	}
	best, bestCount := domain.StatusPending, 0
	for _, st := range domain.StatusPriority {
		if counts[st] > bestCount {
			best, bestCount = st, counts[st]
		}
	}
	return best
}

type StatusService struct {
	submissions *repository.SubmissionRepository
	now         func() time.Time
}

func NewStatusService(submissions *repository.SubmissionRepository) *StatusService {
	return &StatusService{submissions: submissions, now: time.Now}
}

func (s *StatusService) WithTx(tx *gorm.DB) *StatusService {
	return &StatusService{submissions: s.submissions.WithTx(tx), now: s.now}
}

func (s *StatusService) CalculateSubmissionStatus(submissionID uint) (string, error) {
	if _, err := s.submissions.GetByID(submissionID); err != nil {
		return "", notFound(err, ErrSubmissionNotFound)
	}
	statuses, err := s.submissions.ClientStatuses(submissionID)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return CalculateStatus(statuses), nil
}

// UpdateSubmissionStatus persists the derived status and bumps updated_at.
func (s *StatusService) UpdateSubmissionStatus(submissionID uint) (string, error) {
	status, err := s.CalculateSubmissionStatus(submissionID)
	if err != nil {
		return "", err
	}
	err = s.submissions.UpdateFields(submissionID, map[string]interface{}{
		"status":     status,
		"updated_at": s.now(),
	})
	if err != nil {
		return "", apperr.Internal(err)
	}
	return status, nil
}
