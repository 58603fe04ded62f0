package repository

import (
	"time"

	"hubln/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionFilter struct {
	UserID uint
	Status string
	IsPaid *bool
	Search string
}

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) WithTx(tx *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: tx}
}

func (r *SubmissionRepository) Create(s *models.Submission) error {
	return r.db.Omit("Clients").Create(s).Error
}

func (r *SubmissionRepository) CreateClients(clients []models.SubmissionClient) error {
	if len(clients) == 0 {
		return nil
	}
	return r.db.CreateInBatches(clients, 200).Error
}

func (r *SubmissionRepository) GetByID(id uint) (*models.Submission, error) {
	var s models.Submission
	if err := r.db.First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// LockByID loads the submission with FOR UPDATE where the dialect supports it,
// so a concurrent MarkPaid waits for the caller's transaction.
func (r *SubmissionRepository) LockByID(id uint) (*models.Submission, error) {
	var s models.Submission
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubmissionRepository) LockByIDs(ids []uint) ([]models.Submission, error) {
	var list []models.Submission
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *SubmissionRepository) GetWithClients(id uint) (*models.Submission, error) {
	var s models.Submission
	err := r.db.Preload("Clients", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Product").
		First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubmissionRepository) GetByPaymentID(paymentID string) (*models.Submission, error) {
	var s models.Submission
	if err := r.db.Where("payment_id = ?", paymentID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubmissionRepository) List(f SubmissionFilter, page, limit int) ([]models.Submission, int64, error) {
	q := r.db.Model(&models.Submission{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.IsPaid != nil {
		q = q.Where("is_paid = ?", *f.IsPaid)
	}
	if f.Search != "" {
		q = q.Where("title LIKE ?", "%"+f.Search+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Submission
	err := q.Preload("Product").Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}

func (r *SubmissionRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	return r.db.Model(&models.Submission{}).Where("id = ?", id).Updates(fields).Error
}

// MarkPaid flips is_paid only if it is still false; the returned count tells
// the caller whether this call performed the transition.
func (r *SubmissionRepository) MarkPaid(id uint, paymentStatus string, at time.Time) (int64, error) {
	res := r.db.Model(&models.Submission{}).
		Where("id = ? AND is_paid = ?", id, false).
		Updates(map[string]interface{}{"is_paid": true, "payment_status": paymentStatus, "paid_at": at})
	return res.RowsAffected, res.Error
}

// DeleteWithClients removes the clients and soft-deletes the submissions.
func (r *SubmissionRepository) DeleteWithClients(ids []uint) error {
	if err := r.db.Where("submission_id IN ?", ids).Delete(&models.SubmissionClient{}).Error; err != nil {
		return err
	}
	return r.db.Where("id IN ?", ids).Delete(&models.Submission{}).Error
}

func (r *SubmissionRepository) GetClient(id uint) (*models.SubmissionClient, error) {
	var c models.SubmissionClient
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *SubmissionRepository) GetClientsByIDs(ids []uint) ([]models.SubmissionClient, error) {
	var list []models.SubmissionClient
	err := r.db.Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *SubmissionRepository) DeleteClient(id uint) error {
	return r.db.Delete(&models.SubmissionClient{}, id).Error
}

func (r *SubmissionRepository) CountClients(submissionID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.SubmissionClient{}).Where("submission_id = ?", submissionID).Count(&n).Error
	return n, err
}

func (r *SubmissionRepository) ClientStatuses(submissionID uint) ([]string, error) {
	var statuses []string
	err := r.db.Model(&models.SubmissionClient{}).Where("submission_id = ?", submissionID).Pluck("status", &statuses).Error
	return statuses, err
}

func (r *SubmissionRepository) UpdateClientsStatus(ids []uint, status string, notes *string) error {
	fields := map[string]interface{}{"status": status}
	if notes != nil {
		fields["notes"] = *notes
	}
	return r.db.Model(&models.SubmissionClient{}).Where("id IN ?", ids).Updates(fields).Error
}

// ListClients returns client rows across submissions for the admin client view.
func (r *SubmissionRepository) ListClients(status, search string, page, limit int) ([]models.SubmissionClient, int64, error) {
	q := r.db.Model(&models.SubmissionClient{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if search != "" {
		q = q.Where("name LIKE ? OR document LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.SubmissionClient
	err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}
