package models

import (
	"time"

	"medlink/internal/domain"
)

// PatientAssignment links a provider (doctor, hospital, clinic, checkup center) to a patient.
type PatientAssignment struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	ProviderID   uint        `gorm:"not null;uniqueIndex:idx_assignment_provider_patient" json:"provider_id"`
	ProviderRole domain.Role `gorm:"size:20;not null;index" json:"provider_role"`
	PatientID    uint        `gorm:"not null;uniqueIndex:idx_assignment_provider_patient;index" json:"patient_id"`
	CreatedAt    time.Time   `json:"created_at"`

	Provider *User `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	Patient  *User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (PatientAssignment) TableName() string { return "patient_assignments" }

// HospitalDoctor is a doctor's affiliation with a hospital.
type HospitalDoctor struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	HospitalID uint      `gorm:"not null;uniqueIndex:idx_hospital_doctor" json:"hospital_id"`
	DoctorID   uint      `gorm:"not null;uniqueIndex:idx_hospital_doctor;index" json:"doctor_id"`
	CreatedAt  time.Time `json:"created_at"`

	Hospital *User `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
	Doctor   *User `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (HospitalDoctor) TableName() string { return "hospital_doctors" }

// NextVisit is the single upcoming visit a provider has planned for a patient.
// (provider_id, patient_id) is unique and written with an upsert.
type NextVisit struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	ProviderID   uint        `gorm:"not null;uniqueIndex:idx_next_visit_provider_patient" json:"provider_id"`
	ProviderRole domain.Role `gorm:"size:20;not null" json:"provider_role"`
	PatientID    uint        `gorm:"not null;uniqueIndex:idx_next_visit_provider_patient;index" json:"patient_id"`
	VisitDate    time.Time   `gorm:"not null" json:"visit_date"`
	Notes        string      `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`

	Provider *User `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	Patient  *User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (NextVisit) TableName() string { return "next_visits" }
