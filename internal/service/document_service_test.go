package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"medlink/internal/domain"
	"medlink/internal/models"
	"medlink/internal/repository"
	"medlink/internal/testutil"
	"medlink/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	uploaded []string
	err      error
}

func (s *fakeStore) Upload(_ context.Context, file io.Reader, _ int64, fileName, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if _, err := io.ReadAll(file); err != nil {
		return "", err
	}
	s.uploaded = append(s.uploaded, fileName)
	return "https://files.example.test/" + fileName, nil
}

func newDocumentService(f *fixture, store storage.FileStore) *DocumentService {
	return NewDocumentService(repository.NewDocumentRepository(f.db), f.users, f.assign, store, f.notifier, zap.NewNop())
}

func TestCanViewDocument(t *testing.T) {
	doc := &models.MedDocument{
		UploaderID:   10,
		UploaderRole: domain.RoleClinic,
		PatientID:    20,
		Grants: []models.DocumentGrant{
			{GranteeRole: domain.RoleDoctor, GranteeID: 30},
			{GranteeRole: domain.RoleCheckupCenter, GranteeID: 40},
		},
	}
	tests := []struct {
		name string
		p    domain.Principal
		want bool
	}{
		{"uploader", domain.Principal{Role: domain.RoleClinic, ID: 10}, true},
		{"subject patient", domain.Principal{Role: domain.RolePatient, ID: 20}, true},
		{"granted doctor", domain.Principal{Role: domain.RoleDoctor, ID: 30}, true},
		{"granted checkup center", domain.Principal{Role: domain.RoleCheckupCenter, ID: 40}, true},
		{"id granted under other role", domain.Principal{Role: domain.RoleHospital, ID: 30}, false},
		{"other patient", domain.Principal{Role: domain.RolePatient, ID: 21}, false},
		{"ungranted doctor", domain.Principal{Role: domain.RoleDoctor, ID: 31}, false},
		{"admin", domain.Principal{Role: domain.RoleAdmin, ID: 1}, false},
		{"med store", domain.Principal{Role: domain.RoleMedStore, ID: 50}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanViewDocument(doc, tt.p))
		})
	}
}

func TestDocumentCreate_UploaderRules(t *testing.T) {
	f := newFixture(t)
	svc := newDocumentService(f, nil)
	patient := testutil.CreateUser(t, f.db, domain.RolePatient, "Pooja Shah")
	doctor := testutil.CreateUser(t, f.db, domain.RoleDoctor, "Vikram Das")
	store := testutil.CreateUser(t, f.db, domain.RoleMedStore, "Medplus")
	ctx := context.Background()

	in := DocumentInput{FileName: "rx.pdf", FileURL: "https://x.test/rx.pdf", DocumentType: "prescription", PatientID: 999}
	doc, err := svc.Create(ctx, patient.Principal(), in, nil)
	require.NoError(t, err)
	assert.Equal(t, patient.ID, doc.PatientID, "patients upload for themselves")
	assert.Equal(t, domain.DocumentTypePrescription, doc.DocumentType)
	assert.Equal(t, 0, f.notifier.count(domain.NotificationDocumentShared))

	in.PatientID = patient.ID
	_, err = svc.Create(ctx, doctor.Principal(), in, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	testutil.Assign(t, f.db, doctor, patient)
	_, err = svc.Create(ctx, doctor.Principal(), in, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.notifier.count(domain.NotificationDocumentShared))

	in.PatientID = 424242
	_, err = svc.Create(ctx, doctor.Principal(), in, nil)
	assert.ErrorIs(t, err, ErrPatientNotFound)

	_, err = svc.Create(ctx, store.Principal(), in, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(ctx, patient.Principal(), DocumentInput{FileName: "x", FileURL: "y", DocumentType: "XRAY"}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDocumentCreate_Upload(t *testing.T) {
	f := newFixture(t)
	patient := testutil.CreateUser(t, f.db, domain.RolePatient, "Arjun Menon")
	up := &Upload{Reader: strings.NewReader("%PDF-1.4"), Size: 8, FileName: "report.pdf", ContentType: "application/pdf"}

	_, err := newDocumentService(f, nil).Create(context.Background(), patient.Principal(),
		DocumentInput{DocumentType: domain.DocumentTypeMedicalReport}, up)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	store := &fakeStore{}
	doc, err := newDocumentService(f, store).Create(context.Background(), patient.Principal(),
		DocumentInput{DocumentType: domain.DocumentTypeMedicalReport}, up)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", doc.FileName)
	assert.Equal(t, "https://files.example.test/report.pdf", doc.FileURL)
	assert.Equal(t, []string{"report.pdf"}, store.uploaded)

	failing := &fakeStore{err: errors.New("bucket unreachable")}
	_, err = newDocumentService(f, failing).Create(context.Background(), patient.Principal(),
		DocumentInput{DocumentType: domain.DocumentTypeMedicalReport}, up)
	assert.Error(t, err)
}

func TestDocumentGrantRevoke(t *testing.T) {
	f := newFixture(t)
	svc := newDocumentService(f, nil)
	patient := testutil.CreateUser(t, f.db, domain.RolePatient, "Divya Pillai")
	doctor := testutil.CreateUser(t, f.db, domain.RoleDoctor, "Suresh Gupta")
	lab := testutil.CreateUser(t, f.db, domain.RoleCheckupCenter, "Metro Diagnostics")

	doc, err := svc.Create(context.Background(), patient.Principal(),
		DocumentInput{FileName: "mri.pdf", FileURL: "https://x.test/mri.pdf", DocumentType: domain.DocumentTypeMedicalReport}, nil)
	require.NoError(t, err)

	_, err = svc.Get(doctor.Principal(), doc.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Grant(doctor.Principal(), doc.ID, doctor.Principal())
	assert.ErrorIs(t, err, ErrForbidden, "only the subject patient grants")

	for i := 0; i < 2; i++ {
		got, err := svc.Grant(patient.Principal(), doc.ID, doctor.Principal())
		require.NoError(t, err)
		assert.Equal(t, []uint{doctor.ID}, got.GranteeIDs(domain.RoleDoctor))
	}
	docs := repository.NewDocumentRepository(f.db)
	granted, err := docs.HasGrant(doc.ID, doctor.Principal())
	require.NoError(t, err)
	assert.True(t, granted)
	_, err = svc.Grant(patient.Principal(), doc.ID, domain.Principal{Role: domain.RoleDoctor, ID: lab.ID})
	assert.ErrorIs(t, err, ErrGranteeNotFound)

	_, err = svc.Get(doctor.Principal(), doc.ID)
	require.NoError(t, err)
	list, total, err := svc.List(doctor.Principal(), repository.DocumentFilter{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)

	list, _, err = svc.List(lab.Principal(), repository.DocumentFilter{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := svc.Revoke(patient.Principal(), doc.ID, doctor.Principal())
	require.NoError(t, err)
	assert.Empty(t, got.GranteeIDs(domain.RoleDoctor))
	granted, err = docs.HasGrant(doc.ID, doctor.Principal())
	require.NoError(t, err)
	assert.False(t, granted)
	_, err = svc.Revoke(patient.Principal(), doc.ID, doctor.Principal())
	assert.ErrorIs(t, err, ErrGrantNotFound)
	_, err = svc.Get(doctor.Principal(), doc.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestMarketplace_HandRaise(t *testing.T) {
	f := newFixture(t)
	svc := newDocumentService(f, nil)
	patient := testutil.CreateUser(t, f.db, domain.RolePatient, "Ritu Verma")
	store := testutil.CreateUser(t, f.db, domain.RoleMedStore, "Wellness Forever")
	ctx := context.Background()

	report, err := svc.Create(ctx, patient.Principal(),
		DocumentInput{FileName: "blood.pdf", FileURL: "https://x.test/b.pdf", DocumentType: domain.DocumentTypeMedicalReport}, nil)
	require.NoError(t, err)
	_, err = svc.SetSeekAvailability(patient.Principal(), report.ID, true)
	assert.ErrorIs(t, err, ErrNotPrescription)

	rx, err := svc.Create(ctx, patient.Principal(),
		DocumentInput{FileName: "rx.jpg", FileURL: "https://x.test/rx.jpg", DocumentType: domain.DocumentTypePrescription}, nil)
	require.NoError(t, err)

	_, err = svc.RaiseHand(store.Principal(), rx.ID, "")
	assert.ErrorIs(t, err, ErrDocumentNotOpen)

	opened, err := svc.SetSeekAvailability(patient.Principal(), rx.ID, true)
	require.NoError(t, err)
	assert.True(t, opened.SeekAvailability)

	reqs, total, err := svc.OpenRequests(store.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, reqs, 1)
	assert.False(t, reqs[0].HandRaised)

	_, err = svc.RaiseHand(store.Principal(), rx.ID, "all in stock")
	require.NoError(t, err)
	_, err = svc.RaiseHand(store.Principal(), rx.ID, "again")
	assert.ErrorIs(t, err, ErrHandRaiseExists)
	assert.Equal(t, 1, f.notifier.count(domain.NotificationHandRaise))

	reqs, _, err = svc.OpenRequests(store.ID, 1, 20)
	require.NoError(t, err)
	assert.True(t, reqs[0].HandRaised)

	raises, err := svc.HandRaises(patient.Principal(), rx.ID)
	require.NoError(t, err)
	assert.Len(t, raises, 1)

	require.NoError(t, svc.WithdrawHand(store.ID, rx.ID))
	assert.ErrorIs(t, svc.WithdrawHand(store.ID, rx.ID), ErrHandRaiseNotFound)
}

func TestDocumentDelete(t *testing.T) {
	f := newFixture(t)
	svc := newDocumentService(f, nil)
	patient := testutil.CreateUser(t, f.db, domain.RolePatient, "Gita Rani")
	other := testutil.CreateUser(t, f.db, domain.RolePatient, "Not Her")

	doc, err := svc.Create(context.Background(), patient.Principal(),
		DocumentInput{FileName: "a.pdf", FileURL: "https://x.test/a.pdf", DocumentType: domain.DocumentTypePrescription}, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(other.Principal(), doc.ID), ErrForbidden)
	require.NoError(t, svc.Delete(patient.Principal(), doc.ID))
	_, err = svc.Get(patient.Principal(), doc.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}
