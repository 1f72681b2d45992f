package models

import (
	"time"

	"medlink/internal/domain"
)

// MedicineSchedule is a course of medicines for a patient starting at StartDate for NumberOfDays.
type MedicineSchedule struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	PatientID      uint        `gorm:"not null;index" json:"patient_id"`
	CreatedByID    uint        `gorm:"not null" json:"created_by_id"`
	CreatedByRole  domain.Role `gorm:"size:20;not null" json:"created_by_role"`
	PrescriptionID *uint       `gorm:"index" json:"prescription_id"`
	Title          string      `gorm:"size:255" json:"title"`
	StartDate      time.Time   `gorm:"not null" json:"start_date"`
	NumberOfDays   int         `gorm:"not null" json:"number_of_days"`
	Notes          string      `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`

	Items []ScheduledMedicineItem `gorm:"foreignKey:ScheduleID;constraint:OnDelete:CASCADE" json:"items"`
}

func (MedicineSchedule) TableName() string { return "medicine_schedules" }

type ScheduledMedicineItem struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	ScheduleID     uint   `gorm:"not null;index" json:"schedule_id"`
	MedicineName   string `gorm:"size:255;not null" json:"medicine_name"`
	Dosage         string `gorm:"size:128" json:"dosage"`
	TimesPerDay    int    `gorm:"not null" json:"times_per_day"`
	GapBetweenDays int    `gorm:"not null;default:0" json:"gap_between_days"`
	Instructions   string `gorm:"size:512" json:"instructions"`

	ReminderTimes []MedicineReminderTime `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"reminder_times"`
	Schedule      *MedicineSchedule      `gorm:"foreignKey:ScheduleID" json:"-"`
}

func (ScheduledMedicineItem) TableName() string { return "scheduled_medicine_items" }

// MedicineReminderTime is one daily clock time ("HH:MM") for an item, with intake counters.
type MedicineReminderTime struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	ItemID               uint       `gorm:"not null;index" json:"item_id"`
	TimeOfDay            string     `gorm:"size:5;not null;index" json:"time_of_day"`
	IsActive             bool       `gorm:"not null;default:true" json:"is_active"`
	LastTakenAt          *time.Time `json:"last_taken_at"`
	TotalTimesTaken      int        `gorm:"not null;default:0" json:"total_times_taken"`
	ConsecutiveDaysTaken int        `gorm:"not null;default:0" json:"consecutive_days_taken"`
	LastNotifiedAt       *time.Time `json:"-"`

	Item *ScheduledMedicineItem `gorm:"foreignKey:ItemID" json:"-"`
}

func (MedicineReminderTime) TableName() string { return "medicine_reminder_times" }

// GlobalMedicine is an admin-curated catalog entry used for lookup and search.
type GlobalMedicine struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"uniqueIndex;size:255;not null" json:"name"`
	GenericName  string    `gorm:"size:255;index" json:"generic_name"`
	Manufacturer string    `gorm:"size:255" json:"manufacturer"`
	Form         string    `gorm:"size:64" json:"form"`
	Strength     string    `gorm:"size:64" json:"strength"`
	Description  string    `gorm:"type:text" json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (GlobalMedicine) TableName() string { return "global_medicines" }
