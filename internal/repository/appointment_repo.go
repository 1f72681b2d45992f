package repository

import (
	"medlink/internal/domain"
	"medlink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(a *models.Appointment) error {
	return r.db.Omit(clause.Associations).Create(a).Error
}

func (r *AppointmentRepository) GetByID(id uint) (*models.Appointment, error) {
	var a models.Appointment
	err := r.db.Preload("Patient").Preload("Provider").First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListFor returns the appointments where the caller is the patient or the provider.
func (r *AppointmentRepository) ListFor(p domain.Principal, status string, page, limit int) ([]models.Appointment, int64, error) {
	q := r.db.Model(&models.Appointment{})
	if p.Role == domain.RolePatient {
		q = q.Where("patient_id = ?", p.ID)
	} else {
		q = q.Where("provider_id = ?", p.ID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []models.Appointment
	total, err := listPage(q, page, limit, "scheduled_at ASC", &list, "Patient", "Provider")
	return list, total, err
}

// TransitionStatus updates status unless the appointment already reached a terminal state.
func (r *AppointmentRepository) TransitionStatus(id uint, status, notes string) (bool, error) {
	updates := map[string]interface{}{"status": status}
	if notes != "" {
		updates["notes"] = notes
	}
	res := r.db.Model(&models.Appointment{}).
		Where("id = ? AND status NOT IN ?", id, []string{domain.AppointmentCompleted, domain.AppointmentCancelled}).
		Updates(updates)
	return res.RowsAffected == 1, res.Error
}

func (r *AppointmentRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.Appointment{}).Count(&n).Error
	return n, err
}
