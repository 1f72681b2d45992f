package repository

import (
	"medlink/internal/domain"
	"medlink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// CreateWithProfile inserts the identity row and, when p is non-nil, its profile row.
func (r *UserRepository) CreateWithProfile(u *models.User, p models.Profile) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(u).Error; err != nil {
			return err
		}
		if p == nil {
			return nil
		}
		p.SetUserID(u.ID)
		return tx.Create(p).Error
	})
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	err := r.db.First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetWithProfile loads the user and the profile row matching its role.
func (r *UserRepository) GetWithProfile(id uint) (*models.User, error) {
	u, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	return u, r.loadProfile(u)
}

// GetByIDAndRole returns gorm.ErrRecordNotFound when the user exists with a different role.
func (r *UserRepository) GetByIDAndRole(id uint, role domain.Role) (*models.User, error) {
	var u models.User
	err := r.db.Where("id = ? AND role = ?", id, role).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, r.loadProfile(&u)
}

func (r *UserRepository) loadProfile(u *models.User) error {
	assoc := models.ProfileAssociation(u.Role)
	if assoc == "" {
		return nil
	}
	q := r.db.Preload(assoc)
	if u.Role == domain.RoleClinic {
		q = q.Preload("ClinicProfile.Doctor")
	}
	return q.First(u, u.ID).Error
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EmailExists also counts soft-deleted accounts since the unique index covers them.
func (r *UserRepository) EmailExists(email string) (bool, error) {
	var n int64
	err := r.db.Unscoped().Model(&models.User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

func (r *UserRepository) UserCodeExists(code string) (bool, error) {
	var n int64
	err := r.db.Unscoped().Model(&models.User{}).Where("user_code = ?", code).Count(&n).Error
	return n > 0, err
}

func (r *UserRepository) UpdatePassword(id uint, hash string) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash).Error
}

func (r *UserRepository) UpdateFCMToken(id uint, token string) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("fcm_token", token).Error
}

// UpdateSelf applies allow-listed identity and profile columns in one transaction.
func (r *UserRepository) UpdateSelf(id uint, role domain.Role, userCols, profileCols map[string]interface{}) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(userCols) > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", id).Updates(userCols).Error; err != nil {
				return err
			}
		}
		if len(profileCols) == 0 {
			return nil
		}
		p := models.NewProfile(role)
		if p == nil {
			return nil
		}
		var n int64
		if err := tx.Model(p).Where("user_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			p.SetUserID(id)
			if err := tx.Create(p).Error; err != nil {
				return err
			}
		}
		return tx.Model(models.NewProfile(role)).Where("user_id = ?", id).Updates(profileCols).Error
	})
}

// Exists reports whether a live user with id and role exists.
func (r *UserRepository) Exists(id uint, role domain.Role) (bool, error) {
	var n int64
	err := r.db.Model(&models.User{}).Where("id = ? AND role = ?", id, role).Count(&n).Error
	return n > 0, err
}

