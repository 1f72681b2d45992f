package models

import (
	"time"

	"medlink/internal/domain"
)

// RewardTransaction is an immutable ledger row; the user's reward_points counter moves by
// Points in the same transaction that writes it.
type RewardTransaction struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	UserID          uint        `gorm:"not null;index" json:"user_id"`
	UserRole        domain.Role `gorm:"size:20;not null" json:"user_role"`
	Points          int64       `gorm:"not null" json:"points"`
	TransactionType string      `gorm:"size:32;not null;index" json:"transaction_type"`
	Description     string      `gorm:"size:512" json:"description"`
	ReferralID      *uint       `gorm:"index" json:"referral_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

func (RewardTransaction) TableName() string { return "reward_transactions" }

// RewardSetting stores admin-configurable point amounts.
type RewardSetting struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Key         string    `gorm:"uniqueIndex;size:100;not null" json:"key"`
	Value       int64     `gorm:"not null" json:"value"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (RewardSetting) TableName() string { return "reward_settings" }
