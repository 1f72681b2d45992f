package models

import (
	"time"

	"medlink/internal/domain"
)

type Appointment struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	PatientID    uint        `gorm:"not null;index" json:"patient_id"`
	ProviderID   uint        `gorm:"not null;index" json:"provider_id"`
	ProviderRole domain.Role `gorm:"size:20;not null" json:"provider_role"`
	ScheduledAt  time.Time   `gorm:"not null;index" json:"scheduled_at"`
	Reason       string      `gorm:"size:512" json:"reason"`
	Status       string      `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	Notes        string      `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`

	Patient  *User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Provider *User `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
}

func (Appointment) TableName() string { return "appointments" }

func (a *Appointment) IsTerminal() bool {
	return a.Status == domain.AppointmentCompleted || a.Status == domain.AppointmentCancelled
}
