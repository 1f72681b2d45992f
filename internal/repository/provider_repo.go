package repository

import (
	"strings"

	"medlink/internal/domain"
	"medlink/internal/models"

	"gorm.io/gorm"
)

// ProviderFilter narrows a directory listing. Search matches name or city, case-insensitively.
type ProviderFilter struct {
	Role           domain.Role
	Search         string
	City           string
	Specialization string
	VerifiedOnly   bool
	Page           int
	Limit          int
}

// ProviderRepository serves the role directories (doctors, hospitals, clinics, ...).
type ProviderRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

func (r *ProviderRepository) List(f ProviderFilter) ([]models.User, int64, error) {
	q := r.db.Model(&models.User{}).Where("role = ?", f.Role)
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(city) LIKE ?)", likePattern(s), likePattern(s))
	}
	if city := strings.TrimSpace(f.City); city != "" {
		q = q.Where("LOWER(city) = ?", strings.ToLower(city))
	}
	if spec := strings.ToLower(strings.TrimSpace(f.Specialization)); spec != "" && f.Role == domain.RoleDoctor {
		q = q.Where("id IN (?)", r.db.Model(&models.DoctorProfile{}).
			Select("user_id").Where("LOWER(specialization) LIKE ?", likePattern(spec)))
	}
	if f.VerifiedOnly {
		q = q.Where("verification_status = ?", domain.VerificationVerified)
	}
	var list []models.User
	var preloads []string
	if assoc := models.ProfileAssociation(f.Role); assoc != "" {
		preloads = append(preloads, assoc)
	}
	total, err := listPage(q, f.Page, f.Limit, "created_at DESC", &list, preloads...)
	return list, total, err
}

// Featured returns the newest verified providers of role.
func (r *ProviderRepository) Featured(role domain.Role, n int) ([]models.User, error) {
	var list []models.User
	q := r.db.Where("role = ? AND verification_status = ?", role, domain.VerificationVerified)
	if assoc := models.ProfileAssociation(role); assoc != "" {
		q = q.Preload(assoc)
	}
	err := q.Order("created_at DESC").Limit(n).Find(&list).Error
	return list, err
}

// CountByRole returns live user counts keyed by role.
func (r *ProviderRepository) CountByRole(verifiedOnly bool) (map[domain.Role]int64, error) {
	var rows []struct {
		Role  domain.Role
		Count int64
	}
	q := r.db.Model(&models.User{}).Select("role, COUNT(*) AS count")
	if verifiedOnly {
		q = q.Where("verification_status = ?", domain.VerificationVerified)
	}
	if err := q.Group("role").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[domain.Role]int64, len(rows))
	for _, row := range rows {
		out[row.Role] = row.Count
	}
	return out, nil
}
