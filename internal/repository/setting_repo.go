package repository

import (
	"medlink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository stores the reward point amounts keyed by name.
type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) WithTx(tx *gorm.DB) *SettingRepository {
	return &SettingRepository{db: tx}
}

func (r *SettingRepository) Get(key string) (*models.RewardSetting, error) {
	var s models.RewardSetting
	if err := r.db.Where(&models.RewardSetting{Key: key}).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// GetOrCreate inserts key with def unless it exists, then reads the stored value.
// Concurrent first callers all end up reading the same row.
func (r *SettingRepository) GetOrCreate(key string, def int64, description string) (int64, error) {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&models.RewardSetting{Key: key, Value: def, Description: description}).Error
	if err != nil {
		return 0, err
	}
	s, err := r.Get(key)
	if err != nil {
		return 0, err
	}
	return s.Value, nil
}

func (r *SettingRepository) Set(key string, value int64) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&models.RewardSetting{Key: key, Value: value}).Error
}

func (r *SettingRepository) GetAll() ([]models.RewardSetting, error) {
	var list []models.RewardSetting
	err := r.db.Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Find(&list).Error
	return list, err
}
