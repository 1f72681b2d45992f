package models

import (
	"fmt"
	"time"

	"medlink/internal/domain"
)

// Referral records an introduction from Referrer to Referred. Service referrals carry
// ServiceType/PatientID and only reward the referrer. Status moves PENDING -> COMPLETED once.
// PairKey is unique: one standard referral per pair of users in either direction, and one
// service referral per referrer, referred, service type and patient.
type Referral struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	ReferrerID    uint        `gorm:"not null;index" json:"referrer_id"`
	ReferrerRole  domain.Role `gorm:"size:20;not null" json:"referrer_role"`
	ReferredID    uint        `gorm:"not null;index" json:"referred_id"`
	ReferredRole  domain.Role `gorm:"size:20;not null" json:"referred_role"`
	Status        string      `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	PointsAwarded int64       `gorm:"not null;default:0" json:"points_awarded"`
	ServiceType   *string     `gorm:"size:64" json:"service_type,omitempty"`
	PatientID     *uint       `gorm:"index" json:"patient_id,omitempty"`
	Notes         string      `gorm:"type:text" json:"notes"`
	PairKey       *string     `gorm:"size:191;uniqueIndex" json:"-"`
	CompletedAt   *time.Time  `json:"completed_at"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	Referrer *User `gorm:"foreignKey:ReferrerID" json:"referrer,omitempty"`
	Referred *User `gorm:"foreignKey:ReferredID" json:"referred,omitempty"`
}

func (Referral) TableName() string { return "referrals" }

func (r *Referral) IsServiceReferral() bool { return r.ServiceType != nil && *r.ServiceType != "" }

// SetPairKey derives PairKey from the parties and, for service referrals, the service.
func (r *Referral) SetPairKey() {
	var key string
	if r.IsServiceReferral() {
		var patient uint
		if r.PatientID != nil {
			patient = *r.PatientID
		}
		key = fmt.Sprintf("svc:%d:%d:%s:%d", r.ReferrerID, r.ReferredID, *r.ServiceType, patient)
	} else {
		lo, hi := r.ReferrerID, r.ReferredID
		if lo > hi {
			lo, hi = hi, lo
		}
		key = fmt.Sprintf("std:%d:%d", lo, hi)
	}
	r.PairKey = &key
}

func (r *Referral) ReferrerPrincipal() domain.Principal {
	return domain.Principal{Role: r.ReferrerRole, ID: r.ReferrerID}
}

func (r *Referral) ReferredPrincipal() domain.Principal {
	return domain.Principal{Role: r.ReferredRole, ID: r.ReferredID}
}
