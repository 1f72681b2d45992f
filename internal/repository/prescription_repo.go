package repository

import (
	"medlink/internal/domain"
	"medlink/internal/models"

	"gorm.io/gorm"
)

type PrescriptionRepository struct {
	db *gorm.DB
}

func NewPrescriptionRepository(db *gorm.DB) *PrescriptionRepository {
	return &PrescriptionRepository{db: db}
}

// Create inserts the prescription and its items.
func (r *PrescriptionRepository) Create(p *models.Prescription) error {
	return r.db.Omit("Doctor", "Patient").Create(p).Error
}

func (r *PrescriptionRepository) GetByID(id uint) (*models.Prescription, error) {
	var p models.Prescription
	err := r.db.Preload("Items").Preload("Doctor").Preload("Patient").First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListFor returns prescriptions written by a doctor or received by a patient.
func (r *PrescriptionRepository) ListFor(p domain.Principal, page, limit int) ([]models.Prescription, int64, error) {
	q := r.db.Model(&models.Prescription{})
	if p.Role == domain.RoleDoctor {
		q = q.Where("doctor_id = ?", p.ID)
	} else {
		q = q.Where("patient_id = ?", p.ID)
	}
	var list []models.Prescription
	total, err := listPage(q, page, limit, "created_at DESC", &list, "Items", "Doctor", "Patient")
	return list, total, err
}
