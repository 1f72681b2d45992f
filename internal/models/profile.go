package models

import (
	"time"

	"medlink/internal/domain"
)

// Profile is implemented by every role-specific profile row.
type Profile interface {
	SetUserID(id uint)
}

type DoctorProfile struct {
	UserID          uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Specialization  string    `gorm:"size:128;index" json:"specialization"`
	Qualification   string    `gorm:"size:255" json:"qualification"`
	ExperienceYears int       `gorm:"not null;default:0" json:"experience_years"`
	ConsultationFee int64     `gorm:"not null;default:0" json:"consultation_fee"`
	LicenseNumber   string    `gorm:"size:64" json:"license_number"`
	Bio             string    `gorm:"type:text" json:"bio"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (DoctorProfile) TableName() string    { return "doctor_profiles" }
func (p *DoctorProfile) SetUserID(id uint) { p.UserID = id }

type PatientProfile struct {
	UserID           uint       `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	DateOfBirth      *time.Time `json:"date_of_birth"`
	Gender           string     `gorm:"size:16" json:"gender"`
	BloodGroup       string     `gorm:"size:8" json:"blood_group"`
	EmergencyContact string     `gorm:"size:64" json:"emergency_contact"`
	Allergies        string     `gorm:"type:text" json:"allergies"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (PatientProfile) TableName() string    { return "patient_profiles" }
func (p *PatientProfile) SetUserID(id uint) { p.UserID = id }

type HospitalProfile struct {
	UserID             uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	RegistrationNumber string    `gorm:"size:64" json:"registration_number"`
	TotalBeds          int       `gorm:"not null;default:0" json:"total_beds"`
	Departments        string    `gorm:"type:text" json:"departments"`
	EmergencyAvailable bool      `gorm:"not null;default:false" json:"emergency_available"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (HospitalProfile) TableName() string    { return "hospital_profiles" }
func (p *HospitalProfile) SetUserID(id uint) { p.UserID = id }

// ClinicProfile links at most one doctor; DoctorID is unique so a doctor belongs to one clinic.
type ClinicProfile struct {
	UserID             uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	RegistrationNumber string    `gorm:"size:64" json:"registration_number"`
	OpeningHours       string    `gorm:"size:128" json:"opening_hours"`
	DoctorID           *uint     `gorm:"uniqueIndex" json:"doctor_id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Doctor *User `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (ClinicProfile) TableName() string    { return "clinic_profiles" }
func (p *ClinicProfile) SetUserID(id uint) { p.UserID = id }

type CheckupCenterProfile struct {
	UserID             uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	RegistrationNumber string    `gorm:"size:64" json:"registration_number"`
	ServicesOffered    string    `gorm:"type:text" json:"services_offered"`
	HomeCollection     bool      `gorm:"not null;default:false" json:"home_collection"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (CheckupCenterProfile) TableName() string    { return "checkup_center_profiles" }
func (p *CheckupCenterProfile) SetUserID(id uint) { p.UserID = id }

type MedStoreProfile struct {
	UserID        uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	LicenseNumber string    `gorm:"size:64" json:"license_number"`
	OpeningHours  string    `gorm:"size:128" json:"opening_hours"`
	HomeDelivery  bool      `gorm:"not null;default:false" json:"home_delivery"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (MedStoreProfile) TableName() string    { return "med_store_profiles" }
func (p *MedStoreProfile) SetUserID(id uint) { p.UserID = id }

// NewProfile returns an empty profile row for role, or nil when the role has none.
func NewProfile(role domain.Role) Profile {
	switch role {
	case domain.RoleDoctor:
		return &DoctorProfile{}
	case domain.RolePatient:
		return &PatientProfile{}
	case domain.RoleHospital:
		return &HospitalProfile{}
	case domain.RoleClinic:
		return &ClinicProfile{}
	case domain.RoleCheckupCenter:
		return &CheckupCenterProfile{}
	case domain.RoleMedStore:
		return &MedStoreProfile{}
	}
	return nil
}

// ProfileColumns is the allow-list of self-editable profile columns per role.
var ProfileColumns = map[domain.Role]map[string]bool{
	domain.RoleDoctor: {
		"specialization": true, "qualification": true, "experience_years": true,
		"consultation_fee": true, "license_number": true, "bio": true,
	},
	domain.RolePatient: {
		"date_of_birth": true, "gender": true, "blood_group": true,
		"emergency_contact": true, "allergies": true,
	},
	domain.RoleHospital: {
		"registration_number": true, "total_beds": true, "departments": true, "emergency_available": true,
	},
	domain.RoleClinic: {
		"registration_number": true, "opening_hours": true,
	},
	domain.RoleCheckupCenter: {
		"registration_number": true, "services_offered": true, "home_collection": true,
	},
	domain.RoleMedStore: {
		"license_number": true, "opening_hours": true, "home_delivery": true,
	},
}

// UserColumns is the allow-list of self-editable identity columns.
var UserColumns = map[string]bool{
	"name": true, "phone": true, "address": true, "city": true,
	"state": true, "pincode": true, "avatar_url": true,
}
