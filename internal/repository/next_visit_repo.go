package repository

import (
	"medlink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NextVisitRepository struct {
	db *gorm.DB
}

func NewNextVisitRepository(db *gorm.DB) *NextVisitRepository {
	return &NextVisitRepository{db: db}
}

// Upsert writes the provider's next visit for the patient in a single
// INSERT ... ON CONFLICT (provider_id, patient_id) DO UPDATE statement.
func (r *NextVisitRepository) Upsert(nv *models.NextVisit) (*models.NextVisit, error) {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_id"}, {Name: "patient_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"provider_role", "visit_date", "notes", "updated_at"}),
	}).Create(nv).Error
	if err != nil {
		return nil, err
	}
	return r.Get(nv.ProviderID, nv.PatientID)
}

func (r *NextVisitRepository) Get(providerID, patientID uint) (*models.NextVisit, error) {
	var nv models.NextVisit
	err := r.db.Where("provider_id = ? AND patient_id = ?", providerID, patientID).First(&nv).Error
	if err != nil {
		return nil, err
	}
	return &nv, nil
}

func (r *NextVisitRepository) ListByProvider(providerID uint) ([]models.NextVisit, error) {
	var list []models.NextVisit
	err := r.db.Where("provider_id = ?", providerID).Preload("Patient").Order("visit_date ASC").Find(&list).Error
	return list, err
}

func (r *NextVisitRepository) ListByPatient(patientID uint) ([]models.NextVisit, error) {
	var list []models.NextVisit
	err := r.db.Where("patient_id = ?", patientID).Preload("Provider").Order("visit_date ASC").Find(&list).Error
	return list, err
}

func (r *NextVisitRepository) CountForPair(providerID, patientID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.NextVisit{}).Where("provider_id = ? AND patient_id = ?", providerID, patientID).Count(&n).Error
	return n, err
}
