package repository

import (
	"strings"

	"medlink/internal/models"

	"gorm.io/gorm"
)

// MedicineRepository is the admin-curated global medicine catalog.
type MedicineRepository struct {
	db *gorm.DB
}

func NewMedicineRepository(db *gorm.DB) *MedicineRepository {
	return &MedicineRepository{db: db}
}

func (r *MedicineRepository) List(search string, page, limit int) ([]models.GlobalMedicine, int64, error) {
	q := r.db.Model(&models.GlobalMedicine{})
	if s := strings.ToLower(strings.TrimSpace(search)); s != "" {
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(generic_name) LIKE ?)", likePattern(s), likePattern(s))
	}
	var list []models.GlobalMedicine
	total, err := listPage(q, page, limit, "name ASC", &list)
	return list, total, err
}

func (r *MedicineRepository) GetByID(id uint) (*models.GlobalMedicine, error) {
	var m models.GlobalMedicine
	if err := r.db.First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MedicineRepository) Create(m *models.GlobalMedicine) error {
	return r.db.Create(m).Error
}

func (r *MedicineRepository) Update(m *models.GlobalMedicine) error {
	return r.db.Save(m).Error
}

func (r *MedicineRepository) Delete(id uint) (int64, error) {
	res := r.db.Delete(&models.GlobalMedicine{}, id)
	return res.RowsAffected, res.Error
}
