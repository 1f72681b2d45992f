package models

import "time"

type Prescription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DoctorID  uint      `gorm:"not null;index" json:"doctor_id"`
	PatientID uint      `gorm:"not null;index" json:"patient_id"`
	Diagnosis string    `gorm:"size:512" json:"diagnosis"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items   []PrescriptionItem `gorm:"foreignKey:PrescriptionID;constraint:OnDelete:CASCADE" json:"items"`
	Doctor  *User              `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Patient *User              `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Prescription) TableName() string { return "prescriptions" }

type PrescriptionItem struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	PrescriptionID uint   `gorm:"not null;index" json:"prescription_id"`
	MedicineName   string `gorm:"size:255;not null" json:"medicine_name"`
	Dosage         string `gorm:"size:128" json:"dosage"`
	TimesPerDay    int    `gorm:"not null" json:"times_per_day"`
	GapBetweenDays int    `gorm:"not null;default:0" json:"gap_between_days"`
	DurationDays   int    `gorm:"not null" json:"duration_days"`
	Instructions   string `gorm:"size:512" json:"instructions"`
}

func (PrescriptionItem) TableName() string { return "prescription_items" }
