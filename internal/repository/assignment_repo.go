package repository

import (
	"errors"
	"strings"

	"medlink/internal/domain"
	"medlink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrDoctorHasClinic = errors.New("doctor is already connected to another clinic")

// AssignmentRepository manages provider-patient links, hospital affiliations and the
// clinic-doctor connection.
type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) WithTx(tx *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: tx}
}

// Assign links patientID to the provider. Assigning twice is a no-op.
func (r *AssignmentRepository) Assign(provider domain.Principal, patientID uint) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_id"}, {Name: "patient_id"}},
		DoNothing: true,
	}).Create(&models.PatientAssignment{
		ProviderID:   provider.ID,
		ProviderRole: provider.Role,
		PatientID:    patientID,
	}).Error
}

func (r *AssignmentRepository) Unassign(providerID, patientID uint) (int64, error) {
	res := r.db.Where("provider_id = ? AND patient_id = ?", providerID, patientID).Delete(&models.PatientAssignment{})
	return res.RowsAffected, res.Error
}

func (r *AssignmentRepository) IsAssigned(providerID, patientID uint) (bool, error) {
	var n int64
	err := r.db.Model(&models.PatientAssignment{}).
		Where("provider_id = ? AND patient_id = ?", providerID, patientID).Count(&n).Error
	return n > 0, err
}

// ListPatients returns the provider's patients, newest assignment first.
func (r *AssignmentRepository) ListPatients(providerID uint, search string, page, limit int) ([]models.User, int64, error) {
	q := r.db.Model(&models.User{}).
		Where("id IN (?)", r.db.Model(&models.PatientAssignment{}).Select("patient_id").Where("provider_id = ?", providerID))
	if s := strings.ToLower(strings.TrimSpace(search)); s != "" {
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(user_code) LIKE ?)", likePattern(s), likePattern(s))
	}
	var list []models.User
	total, err := listPage(q, page, limit, "name ASC", &list, "PatientProfile")
	return list, total, err
}

// ListProviders returns the assignments of a patient, optionally only for one role.
func (r *AssignmentRepository) ListProviders(patientID uint, role domain.Role) ([]models.PatientAssignment, error) {
	q := r.db.Where("patient_id = ?", patientID)
	if role != "" {
		q = q.Where("provider_role = ?", role)
	}
	var list []models.PatientAssignment
	err := q.Preload("Provider").Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *AssignmentRepository) AddHospitalDoctor(hospitalID, doctorID uint) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hospital_id"}, {Name: "doctor_id"}},
		DoNothing: true,
	}).Create(&models.HospitalDoctor{HospitalID: hospitalID, DoctorID: doctorID}).Error
}

func (r *AssignmentRepository) RemoveHospitalDoctor(hospitalID, doctorID uint) (int64, error) {
	res := r.db.Where("hospital_id = ? AND doctor_id = ?", hospitalID, doctorID).Delete(&models.HospitalDoctor{})
	return res.RowsAffected, res.Error
}

func (r *AssignmentRepository) ListHospitalDoctors(hospitalID uint) ([]models.User, error) {
	var list []models.User
	err := r.db.Where("id IN (?)", r.db.Model(&models.HospitalDoctor{}).Select("doctor_id").Where("hospital_id = ?", hospitalID)).
		Preload("DoctorProfile").Order("name ASC").Find(&list).Error
	return list, err
}

func (r *AssignmentRepository) ListDoctorHospitals(doctorID uint) ([]models.User, error) {
	var list []models.User
	err := r.db.Where("id IN (?)", r.db.Model(&models.HospitalDoctor{}).Select("hospital_id").Where("doctor_id = ?", doctorID)).
		Preload("HospitalProfile").Order("name ASC").Find(&list).Error
	return list, err
}

// SetClinicDoctor connects doctorID to the clinic, replacing any previous doctor.
// A doctor already connected to a different clinic yields ErrDoctorHasClinic.
func (r *AssignmentRepository) SetClinicDoctor(clinicID, doctorID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var n int64
		err := tx.Model(&models.ClinicProfile{}).
			Where("doctor_id = ? AND user_id <> ?", doctorID, clinicID).Count(&n).Error
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrDoctorHasClinic
		}
		res := tx.Model(&models.ClinicProfile{}).Where("user_id = ?", clinicID).Update("doctor_id", doctorID)
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrDoctorHasClinic
		}
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			p := &models.ClinicProfile{UserID: clinicID, DoctorID: &doctorID}
			if err := tx.Create(p).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrDoctorHasClinic
				}
				return err
			}
		}
		return nil
	})
}

func (r *AssignmentRepository) ClearClinicDoctor(clinicID uint) error {
	return r.db.Model(&models.ClinicProfile{}).Where("user_id = ?", clinicID).Update("doctor_id", nil).Error
}

// GetDoctorClinic returns the clinic the doctor belongs to, or gorm.ErrRecordNotFound.
func (r *AssignmentRepository) GetDoctorClinic(doctorID uint) (*models.User, error) {
	var clinic models.User
	err := r.db.Where("id IN (?)", r.db.Model(&models.ClinicProfile{}).Select("user_id").Where("doctor_id = ?", doctorID)).
		Preload("ClinicProfile").First(&clinic).Error
	if err != nil {
		return nil, err
	}
	return &clinic, nil
}
