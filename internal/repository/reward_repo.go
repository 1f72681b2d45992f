package repository

import (
	"medlink/internal/models"

	"gorm.io/gorm"
)

type RewardRepository struct {
	db *gorm.DB
}

func NewRewardRepository(db *gorm.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

func (r *RewardRepository) WithTx(tx *gorm.DB) *RewardRepository {
	return &RewardRepository{db: tx}
}

// Award writes the ledger row and moves users.reward_points by the same amount.
// Call it inside a transaction; a missing user returns gorm.ErrRecordNotFound.
func (r *RewardRepository) Award(txn *models.RewardTransaction) error {
	if err := r.db.Create(txn).Error; err != nil {
		return err
	}
	res := r.db.Model(&models.User{}).Where("id = ?", txn.UserID).
		UpdateColumn("reward_points", gorm.Expr("reward_points + ?", txn.Points))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *RewardRepository) ListTransactions(userID uint, page, limit int) ([]models.RewardTransaction, int64, error) {
	q := r.db.Model(&models.RewardTransaction{}).Where("user_id = ?", userID)
	var list []models.RewardTransaction
	total, err := listPage(q, page, limit, "created_at DESC, id DESC", &list)
	return list, total, err
}

// SumForUser is the ledger total for a user; it always equals users.reward_points.
func (r *RewardRepository) SumForUser(userID uint) (int64, error) {
	var total struct{ Total int64 }
	err := r.db.Model(&models.RewardTransaction{}).
		Select("COALESCE(SUM(points), 0) AS total").Where("user_id = ?", userID).Scan(&total).Error
	return total.Total, err
}

