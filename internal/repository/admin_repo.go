package repository

import (
	"strings"

	"medlink/internal/domain"
	"medlink/internal/models"

	"gorm.io/gorm"
)

type DashboardStats struct {
	UsersByRole          map[domain.Role]int64 `json:"users_by_role"`
	TotalUsers           int64                 `json:"total_users"`
	PendingVerifications int64                 `json:"pending_verifications"`
	TotalDocuments       int64                 `json:"total_documents"`
	TotalAppointments    int64                 `json:"total_appointments"`
	PendingReferrals     int64                 `json:"pending_referrals"`
	CompletedReferrals   int64                 `json:"completed_referrals"`
	TotalPointsAwarded   int64                 `json:"total_points_awarded"`
	TotalPrescriptions   int64                 `json:"total_prescriptions"`
	ActiveSchedules      int64                 `json:"medicine_schedules"`
}

type UserFilter struct {
	Search string
	Role   domain.Role
	Status string
	Page   int
	Limit  int
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetDashboardStats() (*DashboardStats, error) {
	s := DashboardStats{UsersByRole: make(map[domain.Role]int64)}
	var rows []struct {
		Role  domain.Role
		Count int64
	}
	if err := r.db.Model(&models.User{}).Select("role, COUNT(*) AS count").Group("role").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		s.UsersByRole[row.Role] = row.Count
		s.TotalUsers += row.Count
	}

	counts := []struct {
		q   *gorm.DB
		dst *int64
	}{
		{r.db.Model(&models.User{}).Where("verification_status = ? AND role <> ?", domain.VerificationPending, domain.RolePatient), &s.PendingVerifications},
		{r.db.Model(&models.MedDocument{}), &s.TotalDocuments},
		{r.db.Model(&models.Appointment{}), &s.TotalAppointments},
		{r.db.Model(&models.Referral{}).Where("status = ?", domain.ReferralStatusPending), &s.PendingReferrals},
		{r.db.Model(&models.Referral{}).Where("status = ?", domain.ReferralStatusCompleted), &s.CompletedReferrals},
		{r.db.Model(&models.Prescription{}), &s.TotalPrescriptions},
		{r.db.Model(&models.MedicineSchedule{}), &s.ActiveSchedules},
	}
	for _, c := range counts {
		if err := c.q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	var points struct{ Total int64 }
	err := r.db.Model(&models.RewardTransaction{}).Select("COALESCE(SUM(points), 0) AS total").Where("points > 0").Scan(&points).Error
	if err != nil {
		return nil, err
	}
	s.TotalPointsAwarded = points.Total
	return &s, nil
}

// ListUsers returns users with search, role and status filters and pagination.
func (r *AdminRepository) ListUsers(f UserFilter) ([]models.User, int64, error) {
	q := r.db.Model(&models.User{})
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(user_code) LIKE ?)", likePattern(s), likePattern(s), likePattern(s))
	}
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Status != "" {
		q = q.Where("verification_status = ?", f.Status)
	}
	var users []models.User
	total, err := listPage(q, f.Page, f.Limit, "created_at DESC", &users)
	return users, total, err
}

func (r *AdminRepository) UpdateVerification(id uint, status string) error {
	res := r.db.Model(&models.User{}).Where("id = ?", id).Update("verification_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteUser soft-deletes the account.
func (r *AdminRepository) DeleteUser(id uint) error {
	res := r.db.Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
