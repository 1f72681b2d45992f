package repository

import (
	"medlink/internal/domain"
	"medlink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentFilter struct {
	PatientID    uint
	DocumentType string
	UploaderRole domain.Role
	Page         int
	Limit        int
}

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *models.MedDocument) error {
	return r.db.Omit(clause.Associations).Create(doc).Error
}

func (r *DocumentRepository) GetByID(id uint) (*models.MedDocument, error) {
	var doc models.MedDocument
	err := r.db.Preload("Grants", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).First(&doc, id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&models.DocumentGrant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("med_document_id = ?", id).Delete(&models.MedStoreHandRaise{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.MedDocument{}, id).Error
	})
}

// visibleTo is the SQL form of the document view rule: uploader, subject patient,
// or a doctor / checkup center holding a grant.
func (r *DocumentRepository) visibleTo(viewer domain.Principal) *gorm.DB {
	cond := r.db.Where("med_documents.uploader_id = ?", viewer.ID)
	switch viewer.Role {
	case domain.RolePatient:
		cond = cond.Or("med_documents.patient_id = ?", viewer.ID)
	case domain.RoleDoctor, domain.RoleCheckupCenter:
		cond = cond.Or("med_documents.id IN (?)", r.db.Model(&models.DocumentGrant{}).
			Select("document_id").Where("grantee_role = ? AND grantee_id = ?", viewer.Role, viewer.ID))
	}
	return cond
}

// ListVisible returns one page of documents the viewer may see, newest first.
func (r *DocumentRepository) ListVisible(viewer domain.Principal, f DocumentFilter) ([]models.MedDocument, int64, error) {
	q := r.db.Model(&models.MedDocument{}).Where(r.visibleTo(viewer))
	if f.PatientID != 0 {
		q = q.Where("med_documents.patient_id = ?", f.PatientID)
	}
	if f.DocumentType != "" {
		q = q.Where("med_documents.document_type = ?", f.DocumentType)
	}
	if f.UploaderRole != "" {
		q = q.Where("med_documents.uploader_role = ?", f.UploaderRole)
	}
	var list []models.MedDocument
	total, err := listPage(q, f.Page, f.Limit, "med_documents.created_at DESC", &list, "Grants")
	return list, total, err
}

// AddGrant is idempotent: a repeated grant leaves a single row.
func (r *DocumentRepository) AddGrant(documentID uint, grantee domain.Principal) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "document_id"}, {Name: "grantee_role"}, {Name: "grantee_id"}},
		DoNothing: true,
	}).Create(&models.DocumentGrant{
		DocumentID:  documentID,
		GranteeRole: grantee.Role,
		GranteeID:   grantee.ID,
	}).Error
}

func (r *DocumentRepository) RemoveGrant(documentID uint, grantee domain.Principal) (int64, error) {
	res := r.db.Where("document_id = ? AND grantee_role = ? AND grantee_id = ?", documentID, grantee.Role, grantee.ID).
		Delete(&models.DocumentGrant{})
	return res.RowsAffected, res.Error
}

func (r *DocumentRepository) HasGrant(documentID uint, grantee domain.Principal) (bool, error) {
	var n int64
	err := r.db.Model(&models.DocumentGrant{}).
		Where("document_id = ? AND grantee_role = ? AND grantee_id = ?", documentID, grantee.Role, grantee.ID).
		Count(&n).Error
	return n > 0, err
}

func (r *DocumentRepository) SetSeekAvailability(id uint, open bool) error {
	return r.db.Model(&models.MedDocument{}).Where("id = ?", id).Update("seek_availability", open).Error
}

// ListOpenPrescriptions returns prescriptions patients have opened to med stores.
func (r *DocumentRepository) ListOpenPrescriptions(page, limit int) ([]models.MedDocument, int64, error) {
	q := r.db.Model(&models.MedDocument{}).
		Where("seek_availability = ? AND document_type = ?", true, domain.DocumentTypePrescription)
	var list []models.MedDocument
	total, err := listPage(q, page, limit, "created_at DESC", &list, "Patient")
	return list, total, err
}

func (r *DocumentRepository) GetOpenPrescription(id uint) (*models.MedDocument, error) {
	var doc models.MedDocument
	err := r.db.Where("id = ? AND seek_availability = ? AND document_type = ?", id, true, domain.DocumentTypePrescription).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) CreateHandRaise(h *models.MedStoreHandRaise) error {
	return r.db.Omit(clause.Associations).Create(h).Error
}

func (r *DocumentRepository) DeleteHandRaise(documentID, storeID uint) (int64, error) {
	res := r.db.Where("med_document_id = ? AND med_store_id = ?", documentID, storeID).Delete(&models.MedStoreHandRaise{})
	return res.RowsAffected, res.Error
}

func (r *DocumentRepository) ListHandRaises(documentID uint) ([]models.MedStoreHandRaise, error) {
	var list []models.MedStoreHandRaise
	err := r.db.Where("med_document_id = ?", documentID).
		Preload("MedStore.MedStoreProfile").Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *DocumentRepository) ListHandRaisesByStore(storeID uint) ([]models.MedStoreHandRaise, error) {
	var list []models.MedStoreHandRaise
	err := r.db.Where("med_store_id = ?", storeID).Preload("MedDocument").Order("created_at DESC").Find(&list).Error
	return list, err
}

// RaisedDocumentIDs returns which of documentIDs the store has raised a hand for.
func (r *DocumentRepository) RaisedDocumentIDs(storeID uint, documentIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool)
	if len(documentIDs) == 0 {
		return out, nil
	}
	var ids []uint
	err := r.db.Model(&models.MedStoreHandRaise{}).
		Where("med_store_id = ? AND med_document_id IN ?", storeID, documentIDs).
		Pluck("med_document_id", &ids).Error
	for _, id := range ids {
		out[id] = true
	}
	return out, err
}

func (r *DocumentRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.MedDocument{}).Count(&n).Error
	return n, err
}
