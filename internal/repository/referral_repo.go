package repository

import (
	"time"

	"medlink/internal/domain"
	"medlink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

func (r *ReferralRepository) WithTx(tx *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: tx}
}

func (r *ReferralRepository) Create(ref *models.Referral) error {
	return r.db.Omit(clause.Associations).Create(ref).Error
}

func (r *ReferralRepository) GetByID(id uint) (*models.Referral, error) {
	var ref models.Referral
	err := r.db.Preload("Referrer").Preload("Referred").First(&ref, id).Error
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// MarkCompleted moves a PENDING referral to COMPLETED. It reports false when the
// referral was not pending, so a second completion changes nothing.
func (r *ReferralRepository) MarkCompleted(id uint, at time.Time) (bool, error) {
	res := r.db.Model(&models.Referral{}).
		Where("id = ? AND status = ?", id, domain.ReferralStatusPending).
		Updates(map[string]interface{}{
			"status":       domain.ReferralStatusCompleted,
			"completed_at": at,
		})
	return res.RowsAffected == 1, res.Error
}

// ListForUser returns referrals the user made or received.
func (r *ReferralRepository) ListForUser(userID uint) ([]models.Referral, error) {
	var list []models.Referral
	err := r.db.Where("referrer_id = ? OR referred_id = ?", userID, userID).
		Preload("Referrer").Preload("Referred").
		Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *ReferralRepository) List(status string, page, limit int) ([]models.Referral, int64, error) {
	q := r.db.Model(&models.Referral{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []models.Referral
	total, err := listPage(q, page, limit, "created_at DESC", &list, "Referrer", "Referred")
	return list, total, err
}

// SetPointsAwarded records the amount actually credited to the referrer.
func (r *ReferralRepository) SetPointsAwarded(id uint, points int64) error {
	return r.db.Model(&models.Referral{}).Where("id = ?", id).Update("points_awarded", points).Error
}
