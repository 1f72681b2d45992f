package models

import (
	"time"

	"medlink/internal/domain"

	"gorm.io/gorm"
)

// MedDocument is a prescription or medical report about PatientID, uploaded by any role.
type MedDocument struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	FileName         string         `gorm:"size:255;not null" json:"file_name"`
	FileURL          string         `gorm:"size:1024;not null" json:"file_url"`
	DocumentType     string         `gorm:"size:32;not null;index" json:"document_type"`
	Description      string         `gorm:"type:text" json:"description"`
	UploaderID       uint           `gorm:"not null;index" json:"uploaded_by_id"`
	UploaderRole     domain.Role    `gorm:"size:20;not null;index" json:"uploader_type"`
	PatientID        uint           `gorm:"not null;index" json:"patient_id"`
	SeekAvailability bool           `gorm:"not null;default:false;index" json:"seek_availability"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	Grants  []DocumentGrant `gorm:"foreignKey:DocumentID" json:"grants,omitempty"`
	Patient *User           `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (MedDocument) TableName() string { return "med_documents" }

// Uploader returns the uploading principal.
func (d *MedDocument) Uploader() domain.Principal {
	return domain.Principal{Role: d.UploaderRole, ID: d.UploaderID}
}

// GranteeIDs returns the ids granted for role, in grant order.
func (d *MedDocument) GranteeIDs(role domain.Role) []uint {
	ids := make([]uint, 0, len(d.Grants))
	for _, g := range d.Grants {
		if g.GranteeRole == role {
			ids = append(ids, g.GranteeID)
		}
	}
	return ids
}

// DocumentGrant allows one doctor or checkup center to view a document.
type DocumentGrant struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	DocumentID  uint        `gorm:"not null;uniqueIndex:idx_document_grantee" json:"document_id"`
	GranteeRole domain.Role `gorm:"size:20;not null;uniqueIndex:idx_document_grantee" json:"grantee_role"`
	GranteeID   uint        `gorm:"not null;uniqueIndex:idx_document_grantee;index" json:"grantee_id"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (DocumentGrant) TableName() string { return "document_grants" }

// MedStoreHandRaise records a med store's interest in fulfilling an open prescription.
type MedStoreHandRaise struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	MedDocumentID uint      `gorm:"not null;uniqueIndex:idx_hand_raise_document_store" json:"med_document_id"`
	MedStoreID    uint      `gorm:"not null;uniqueIndex:idx_hand_raise_document_store;index" json:"med_store_id"`
	Note          string    `gorm:"size:512" json:"note"`
	CreatedAt     time.Time `json:"created_at"`

	MedStore    *User        `gorm:"foreignKey:MedStoreID" json:"med_store,omitempty"`
	MedDocument *MedDocument `gorm:"foreignKey:MedDocumentID" json:"med_document,omitempty"`
}

func (MedStoreHandRaise) TableName() string { return "med_store_hand_raises" }
