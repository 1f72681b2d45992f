package service

import (
	"errors"
	"strings"

	"medlink/internal/models"
	"medlink/internal/repository"

	"gorm.io/gorm"
)

type MedicineInput struct {
	Name         string
	GenericName  string
	Manufacturer string
	Form         string
	Strength     string
	Description  string
}

func (in MedicineInput) apply(m *models.GlobalMedicine) {
	m.Name = strings.TrimSpace(in.Name)
	m.GenericName = strings.TrimSpace(in.GenericName)
	m.Manufacturer = in.Manufacturer
	m.Form = in.Form
	m.Strength = in.Strength
	m.Description = in.Description
}

// MedicineService manages the global medicine catalog.
type MedicineService struct {
	repo *repository.MedicineRepository
}

func NewMedicineService(repo *repository.MedicineRepository) *MedicineService {
	return &MedicineService{repo: repo}
}

func (s *MedicineService) List(search string, page, limit int) ([]models.GlobalMedicine, int64, error) {
	return s.repo.List(search, page, limit)
}

func (s *MedicineService) Get(id uint) (*models.GlobalMedicine, error) {
	m, err := s.repo.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMedicineNotFound
	}
	return m, err
}

func (s *MedicineService) Create(in MedicineInput) (*models.GlobalMedicine, error) {
	m := &models.GlobalMedicine{}
	in.apply(m)
	if m.Name == "" {
		return nil, ErrInvalidInput
	}
	if err := s.repo.Create(m); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrMedicineExists
		}
		return nil, err
	}
	return m, nil
}

func (s *MedicineService) Update(id uint, in MedicineInput) (*models.GlobalMedicine, error) {
	m, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	in.apply(m)
	if m.Name == "" {
		return nil, ErrInvalidInput
	}
	if err := s.repo.Update(m); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrMedicineExists
		}
		return nil, err
	}
	return m, nil
}

func (s *MedicineService) Delete(id uint) error {
	n, err := s.repo.Delete(id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMedicineNotFound
	}
	return nil
}
