package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"medlink/internal/domain"
	"medlink/internal/models"
	"medlink/internal/repository"
	"medlink/pkg/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type DocumentInput struct {
	FileName     string
	FileURL      string
	DocumentType string
	Description  string
	PatientID    uint
}

// Upload is a file received with a multipart document request.
type Upload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

// MarketRequest is an open prescription as a med store sees it.
type MarketRequest struct {
	models.MedDocument
	HandRaised bool `json:"hand_raised"`
}

// CanViewDocument: the uploader, the subject patient, or a doctor / checkup center the
// patient granted access to.
func CanViewDocument(doc *models.MedDocument, p domain.Principal) bool {
	if doc.UploaderID == p.ID {
		return true
	}
	switch p.Role {
	case domain.RolePatient:
		return doc.PatientID == p.ID
	case domain.RoleDoctor, domain.RoleCheckupCenter:
		for _, g := range doc.Grants {
			if g.GranteeRole == p.Role && g.GranteeID == p.ID {
				return true
			}
		}
	}
	return false
}

func isSubject(doc *models.MedDocument, p domain.Principal) bool {
	return p.Role == domain.RolePatient && doc.PatientID == p.ID
}

// CanManageDocument: the uploader or the subject patient may delete.
func CanManageDocument(doc *models.MedDocument, p domain.Principal) bool {
	return doc.UploaderID == p.ID || isSubject(doc, p)
}

type DocumentService struct {
	docs        *repository.DocumentRepository
	users       *repository.UserRepository
	assignments *repository.AssignmentRepository
	store       storage.FileStore
	notifier    Notifier
	log         *zap.Logger
}

func NewDocumentService(
	docs *repository.DocumentRepository,
	users *repository.UserRepository,
	assignments *repository.AssignmentRepository,
	store storage.FileStore,
	notifier Notifier,
	log *zap.Logger,
) *DocumentService {
	return &DocumentService{docs: docs, users: users, assignments: assignments, store: store, notifier: notifier, log: log}
}

// Create stores a document about a patient. Patients upload for themselves; providers only
// for patients assigned to them. With upload set the file goes to the configured store.
func (s *DocumentService) Create(ctx context.Context, uploader domain.Principal, in DocumentInput, upload *Upload) (*models.MedDocument, error) {
	in.DocumentType = strings.ToUpper(strings.TrimSpace(in.DocumentType))
	if !domain.IsDocumentType(in.DocumentType) {
		return nil, ErrInvalidInput
	}
	switch {
	case uploader.Role == domain.RolePatient:
		in.PatientID = uploader.ID
	case uploader.Role.IsProvider():
		ok, err := s.users.Exists(in.PatientID, domain.RolePatient)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrPatientNotFound
		}
		if err := requireAssigned(s.assignments, uploader.ID, in.PatientID); err != nil {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}
	if upload != nil {
		if s.store == nil {
			return nil, ErrStorageUnavailable
		}
		url, err := s.store.Upload(ctx, upload.Reader, upload.Size, upload.FileName, upload.ContentType)
		if err != nil {
			return nil, err
		}
		in.FileURL = url
		if in.FileName == "" {
			in.FileName = upload.FileName
		}
	}
	if strings.TrimSpace(in.FileURL) == "" || strings.TrimSpace(in.FileName) == "" {
		return nil, ErrInvalidInput
	}
	doc := &models.MedDocument{
		FileName:     strings.TrimSpace(in.FileName),
		FileURL:      strings.TrimSpace(in.FileURL),
		DocumentType: in.DocumentType,
		Description:  in.Description,
		UploaderID:   uploader.ID,
		UploaderRole: uploader.Role,
		PatientID:    in.PatientID,
	}
	if err := s.docs.Create(doc); err != nil {
		return nil, err
	}
	if uploader.Role != domain.RolePatient {
		notify(s.notifier, s.log, doc.PatientID, domain.NotificationDocumentShared, "New document",
			"A new "+strings.ToLower(strings.ReplaceAll(doc.DocumentType, "_", " "))+" was added to your records",
			map[string]interface{}{"document_id": doc.ID})
	}
	return doc, nil
}

func (s *DocumentService) List(viewer domain.Principal, f repository.DocumentFilter) ([]models.MedDocument, int64, error) {
	return s.docs.ListVisible(viewer, f)
}

func (s *DocumentService) load(id uint) (*models.MedDocument, error) {
	doc, err := s.docs.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	return doc, err
}

func (s *DocumentService) Get(viewer domain.Principal, id uint) (*models.MedDocument, error) {
	doc, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !CanViewDocument(doc, viewer) {
		return nil, ErrForbidden
	}
	return doc, nil
}

func (s *DocumentService) Delete(actor domain.Principal, id uint) error {
	doc, err := s.load(id)
	if err != nil {
		return err
	}
	if !CanManageDocument(doc, actor) {
		return ErrForbidden
	}
	return s.docs.Delete(id)
}

// Grant lets a doctor or checkup center view the document. Only the subject patient may
// grant, and granting twice leaves one permission.
func (s *DocumentService) Grant(actor domain.Principal, id uint, grantee domain.Principal) (*models.MedDocument, error) {
	doc, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !isSubject(doc, actor) {
		return nil, ErrForbidden
	}
	ok, err := s.users.Exists(grantee.ID, grantee.Role)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrGranteeNotFound
	}
	if err := s.docs.AddGrant(id, grantee); err != nil {
		return nil, err
	}
	notify(s.notifier, s.log, grantee.ID, domain.NotificationDocumentShared, "Document shared with you",
		"A patient shared "+doc.FileName+" with you", map[string]interface{}{"document_id": id})
	return s.load(id)
}

func (s *DocumentService) Revoke(actor domain.Principal, id uint, grantee domain.Principal) (*models.MedDocument, error) {
	doc, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !isSubject(doc, actor) {
		return nil, ErrForbidden
	}
	n, err := s.docs.RemoveGrant(id, grantee)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrGrantNotFound
	}
	return s.load(id)
}

// SetSeekAvailability opens or closes a prescription to med stores.
func (s *DocumentService) SetSeekAvailability(actor domain.Principal, id uint, open bool) (*models.MedDocument, error) {
	doc, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !isSubject(doc, actor) {
		return nil, ErrForbidden
	}
	if open && doc.DocumentType != domain.DocumentTypePrescription {
		return nil, ErrNotPrescription
	}
	if err := s.docs.SetSeekAvailability(id, open); err != nil {
		return nil, err
	}
	doc.SeekAvailability = open
	return doc, nil
}

func (s *DocumentService) HandRaises(actor domain.Principal, id uint) ([]models.MedStoreHandRaise, error) {
	doc, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !CanManageDocument(doc, actor) {
		return nil, ErrForbidden
	}
	return s.docs.ListHandRaises(id)
}

func (s *DocumentService) OpenRequests(storeID uint, page, limit int) ([]MarketRequest, int64, error) {
	docs, total, err := s.docs.ListOpenPrescriptions(page, limit)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]uint, len(docs))
	for i := range docs {
		ids[i] = docs[i].ID
	}
	raised, err := s.docs.RaisedDocumentIDs(storeID, ids)
	if err != nil {
		return nil, 0, err
	}
	out := make([]MarketRequest, len(docs))
	for i := range docs {
		out[i] = MarketRequest{MedDocument: docs[i], HandRaised: raised[docs[i].ID]}
	}
	return out, total, nil
}

// RaiseHand records that the store can fulfil an open prescription and tells the patient.
func (s *DocumentService) RaiseHand(store domain.Principal, documentID uint, note string) (*models.MedStoreHandRaise, error) {
	doc, err := s.docs.GetOpenPrescription(documentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotOpen
	}
	if err != nil {
		return nil, err
	}
	h := &models.MedStoreHandRaise{MedDocumentID: documentID, MedStoreID: store.ID, Note: strings.TrimSpace(note)}
	if err := s.docs.CreateHandRaise(h); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrHandRaiseExists
		}
		return nil, err
	}
	notify(s.notifier, s.log, doc.PatientID, domain.NotificationHandRaise, "A med store can fill your prescription",
		"A pharmacy raised its hand for "+doc.FileName,
		map[string]interface{}{"document_id": documentID, "med_store_id": store.ID})
	return h, nil
}

func (s *DocumentService) WithdrawHand(storeID, documentID uint) error {
	n, err := s.docs.DeleteHandRaise(documentID, storeID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrHandRaiseNotFound
	}
	return nil
}

func (s *DocumentService) StoreHandRaises(storeID uint) ([]models.MedStoreHandRaise, error) {
	return s.docs.ListHandRaisesByStore(storeID)
}
