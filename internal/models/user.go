package models

import (
	"time"

	"medlink/internal/domain"

	"gorm.io/gorm"
)

// User is the single identity row for every role. Role-specific fields live in the
// profile tables keyed by user id.
type User struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	UserCode           string         `gorm:"uniqueIndex;size:16;not null" json:"user_code"`
	Name               string         `gorm:"size:255;not null" json:"name"`
	Email              string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash       string         `gorm:"size:255" json:"-"`
	Phone              string         `gorm:"size:32" json:"phone"`
	Address            string         `gorm:"size:512" json:"address"`
	City               string         `gorm:"size:128;index" json:"city"`
	State              string         `gorm:"size:128" json:"state"`
	Pincode            string         `gorm:"size:16" json:"pincode"`
	AvatarURL          string         `gorm:"size:512" json:"avatar_url"`
	Role               domain.Role    `gorm:"size:20;not null;index" json:"role"`
	VerificationStatus string         `gorm:"size:20;not null;default:'PENDING';index" json:"verification_status"`
	RewardPoints       int64          `gorm:"not null;default:0" json:"reward_points"`
	FCMToken           string         `gorm:"size:512" json:"-"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	DoctorProfile        *DoctorProfile        `gorm:"foreignKey:UserID" json:"doctor_profile,omitempty"`
	PatientProfile       *PatientProfile       `gorm:"foreignKey:UserID" json:"patient_profile,omitempty"`
	HospitalProfile      *HospitalProfile      `gorm:"foreignKey:UserID" json:"hospital_profile,omitempty"`
	ClinicProfile        *ClinicProfile        `gorm:"foreignKey:UserID" json:"clinic_profile,omitempty"`
	CheckupCenterProfile *CheckupCenterProfile `gorm:"foreignKey:UserID" json:"checkup_center_profile,omitempty"`
	MedStoreProfile      *MedStoreProfile      `gorm:"foreignKey:UserID" json:"med_store_profile,omitempty"`
}

func (User) TableName() string { return "users" }

func (u *User) Principal() domain.Principal {
	return domain.Principal{Role: u.Role, ID: u.ID}
}

func (u *User) IsVerified() bool { return u.VerificationStatus == domain.VerificationVerified }

// ProfileAssociation returns the gorm association name holding the profile for role,
// or "" for roles without a profile table.
func ProfileAssociation(role domain.Role) string {
	switch role {
	case domain.RoleDoctor:
		return "DoctorProfile"
	case domain.RolePatient:
		return "PatientProfile"
	case domain.RoleHospital:
		return "HospitalProfile"
	case domain.RoleClinic:
		return "ClinicProfile"
	case domain.RoleCheckupCenter:
		return "CheckupCenterProfile"
	case domain.RoleMedStore:
		return "MedStoreProfile"
	}
	return ""
}
