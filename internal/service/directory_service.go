package service

import (
	"errors"
	"strings"
	"time"

	"medlink/internal/domain"
	"medlink/internal/models"
	"medlink/internal/repository"

	"gorm.io/gorm"
)

// DirectoryService serves the provider directories, self-service profile edits and the
// provider-patient, hospital-doctor and clinic-doctor relationships.
type DirectoryService struct {
	users       *repository.UserRepository
	providers   *repository.ProviderRepository
	assignments *repository.AssignmentRepository
}

func NewDirectoryService(users *repository.UserRepository, providers *repository.ProviderRepository, assignments *repository.AssignmentRepository) *DirectoryService {
	return &DirectoryService{users: users, providers: providers, assignments: assignments}
}

// ProfileFields keeps the allow-listed profile columns for role. date_of_birth accepts
// YYYY-MM-DD or RFC3339.
func ProfileFields(role domain.Role, in map[string]interface{}) (map[string]interface{}, error) {
	allowed := models.ProfileColumns[role]
	out := make(map[string]interface{})
	for k, v := range in {
		if !allowed[k] {
			continue
		}
		if k == "date_of_birth" {
			t, err := parseDate(v)
			if err != nil {
				return nil, ErrInvalidInput
			}
			out[k] = t
			continue
		}
		out[k] = v
	}
	return out, nil
}

// UserFields keeps the self-editable identity columns.
func UserFields(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for k, v := range in {
		if models.UserColumns[k] {
			out[k] = v
		}
	}
	return out
}

func parseDate(v interface{}) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, ErrInvalidInput
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListProviders hides unverified providers from everyone but admins.
func (s *DirectoryService) ListProviders(viewer domain.Principal, f repository.ProviderFilter) ([]models.User, int64, error) {
	f.VerifiedOnly = viewer.Role != domain.RoleAdmin
	return s.providers.List(f)
}

func (s *DirectoryService) GetProvider(role domain.Role, id uint) (*models.User, error) {
	u, err := s.users.GetByIDAndRole(id, role)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProviderNotFound
	}
	return u, err
}

// UpdateSelf applies the allow-listed identity and profile fields and returns the fresh user.
func (s *DirectoryService) UpdateSelf(p domain.Principal, userIn, profileIn map[string]interface{}) (*models.User, error) {
	profileCols, err := ProfileFields(p.Role, profileIn)
	if err != nil {
		return nil, err
	}
	userCols := UserFields(userIn)
	if name, ok := userCols["name"].(string); ok && strings.TrimSpace(name) == "" {
		return nil, ErrInvalidInput
	}
	if err := s.users.UpdateSelf(p.ID, p.Role, userCols, profileCols); err != nil {
		return nil, err
	}
	u, err := s.users.GetWithProfile(p.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *DirectoryService) requireUser(id uint, role domain.Role, notFound error) error {
	ok, err := s.users.Exists(id, role)
	if err != nil {
		return err
	}
	if !ok {
		return notFound
	}
	return nil
}

func (s *DirectoryService) AssignPatient(provider domain.Principal, patientID uint) error {
	if !provider.Role.IsProvider() {
		return ErrForbidden
	}
	if err := s.requireUser(patientID, domain.RolePatient, ErrPatientNotFound); err != nil {
		return err
	}
	return s.assignments.Assign(provider, patientID)
}

func (s *DirectoryService) UnassignPatient(providerID, patientID uint) error {
	n, err := s.assignments.Unassign(providerID, patientID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotAssigned
	}
	return nil
}

func (s *DirectoryService) ListPatients(providerID uint, search string, page, limit int) ([]models.User, int64, error) {
	return s.assignments.ListPatients(providerID, search, page, limit)
}

func (s *DirectoryService) AddHospitalDoctor(hospitalID, doctorID uint) error {
	if err := s.requireUser(doctorID, domain.RoleDoctor, ErrDoctorNotFound); err != nil {
		return err
	}
	return s.assignments.AddHospitalDoctor(hospitalID, doctorID)
}

func (s *DirectoryService) RemoveHospitalDoctor(hospitalID, doctorID uint) error {
	n, err := s.assignments.RemoveHospitalDoctor(hospitalID, doctorID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotAssigned
	}
	return nil
}

func (s *DirectoryService) HospitalDoctors(hospitalID uint) ([]models.User, error) {
	if err := s.requireUser(hospitalID, domain.RoleHospital, ErrProviderNotFound); err != nil {
		return nil, err
	}
	return s.assignments.ListHospitalDoctors(hospitalID)
}

func (s *DirectoryService) DoctorHospitals(doctorID uint) ([]models.User, error) {
	return s.assignments.ListDoctorHospitals(doctorID)
}

func (s *DirectoryService) SetClinicDoctor(clinicID, doctorID uint) error {
	if err := s.requireUser(doctorID, domain.RoleDoctor, ErrDoctorNotFound); err != nil {
		return err
	}
	err := s.assignments.SetClinicDoctor(clinicID, doctorID)
	if errors.Is(err, repository.ErrDoctorHasClinic) {
		return ErrDoctorHasClinic
	}
	return err
}

func (s *DirectoryService) ClearClinicDoctor(clinicID uint) error {
	return s.assignments.ClearClinicDoctor(clinicID)
}

// DoctorClinic returns nil without error when the doctor has no clinic.
func (s *DirectoryService) DoctorClinic(doctorID uint) (*models.User, error) {
	c, err := s.assignments.GetDoctorClinic(doctorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return c, err
}

func (s *DirectoryService) PatientProviders(patientID uint, role domain.Role) ([]models.PatientAssignment, error) {
	return s.assignments.ListProviders(patientID, role)
}

// GetPatient lets the patient, an admin, or a provider the patient is assigned to read the record.
func (s *DirectoryService) GetPatient(viewer domain.Principal, patientID uint) (*models.User, error) {
	u, err := s.users.GetByIDAndRole(patientID, domain.RolePatient)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, err
	}
	switch {
	case viewer.Role == domain.RoleAdmin, viewer.Role == domain.RolePatient && viewer.ID == patientID:
		return u, nil
	case viewer.Role.IsProvider():
		ok, err := s.assignments.IsAssigned(viewer.ID, patientID)
		if err != nil {
			return nil, err
		}
		if ok {
			return u, nil
		}
	}
	return nil, ErrForbidden
}

func (s *DirectoryService) ListPatientsAdmin(search string, page, limit int) ([]models.User, int64, error) {
	return s.providers.List(repository.ProviderFilter{Role: domain.RolePatient, Search: search, Page: page, Limit: limit})
}

// requireAssigned fails with ErrPatientNotAssigned unless patientID is on the provider's list.
func requireAssigned(assignments *repository.AssignmentRepository, providerID, patientID uint) error {
	ok, err := assignments.IsAssigned(providerID, patientID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPatientNotAssigned
	}
	return nil
}
