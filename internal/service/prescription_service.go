package service

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"medlink/internal/domain"
	"medlink/internal/models"
	"medlink/internal/repository"

	"gorm.io/gorm"
)

type PrescriptionItemInput struct {
	MedicineName   string
	Dosage         string
	TimesPerDay    int
	GapBetweenDays int
	DurationDays   int
	Instructions   string
}

type PrescriptionService struct {
	prescriptions *repository.PrescriptionRepository
	assignments   *repository.AssignmentRepository
	schedules     *ScheduleService
}

func NewPrescriptionService(prescriptions *repository.PrescriptionRepository, assignments *repository.AssignmentRepository, schedules *ScheduleService) *PrescriptionService {
	return &PrescriptionService{prescriptions: prescriptions, assignments: assignments, schedules: schedules}
}

// Create writes a prescription for a patient assigned to the doctor.
func (s *PrescriptionService) Create(doctor domain.Principal, patientID uint, diagnosis, notes string, items []PrescriptionItemInput) (*models.Prescription, error) {
	if len(items) == 0 {
		return nil, ErrInvalidInput
	}
	if err := requireAssigned(s.assignments, doctor.ID, patientID); err != nil {
		return nil, err
	}
	p := &models.Prescription{
		DoctorID:  doctor.ID,
		PatientID: patientID,
		Diagnosis: strings.TrimSpace(diagnosis),
		Notes:     notes,
	}
	for _, it := range items {
		if strings.TrimSpace(it.MedicineName) == "" || it.TimesPerDay < 1 || it.TimesPerDay > 6 ||
			it.GapBetweenDays < 0 || it.DurationDays < 1 {
			return nil, ErrInvalidInput
		}
		p.Items = append(p.Items, models.PrescriptionItem{
			MedicineName:   strings.TrimSpace(it.MedicineName),
			Dosage:         it.Dosage,
			TimesPerDay:    it.TimesPerDay,
			GapBetweenDays: it.GapBetweenDays,
			DurationDays:   it.DurationDays,
			Instructions:   it.Instructions,
		})
	}
	if err := s.prescriptions.Create(p); err != nil {
		return nil, err
	}
	return s.prescriptions.GetByID(p.ID)
}

func (s *PrescriptionService) List(p domain.Principal, page, limit int) ([]models.Prescription, int64, error) {
	return s.prescriptions.ListFor(p, page, limit)
}

func (s *PrescriptionService) Get(viewer domain.Principal, id uint) (*models.Prescription, error) {
	p, err := s.prescriptions.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPrescriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	if viewer.Role != domain.RoleAdmin && p.DoctorID != viewer.ID && p.PatientID != viewer.ID {
		return nil, ErrForbidden
	}
	return p, nil
}

// CreateSchedule turns a prescription into a medicine schedule lasting as long as its
// longest item.
func (s *PrescriptionService) CreateSchedule(actor domain.Principal, id uint, startDate time.Time) (*models.MedicineSchedule, error) {
	p, err := s.Get(actor, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != p.PatientID && actor.ID != p.DoctorID {
		return nil, ErrForbidden
	}
	in := ScheduleInput{
		PatientID:      p.PatientID,
		PrescriptionID: &p.ID,
		Title:          p.Diagnosis,
		StartDate:      startDate,
		Notes:          p.Notes,
	}
	if in.Title == "" {
		in.Title = "Prescription #" + strconv.FormatUint(uint64(p.ID), 10)
	}
	for _, it := range p.Items {
		if it.DurationDays > in.NumberOfDays {
			in.NumberOfDays = it.DurationDays
		}
		in.Items = append(in.Items, ScheduleItemInput{
			MedicineName:   it.MedicineName,
			Dosage:         it.Dosage,
			TimesPerDay:    it.TimesPerDay,
			GapBetweenDays: it.GapBetweenDays,
			Instructions:   it.Instructions,
		})
	}
	return s.schedules.createSchedule(actor, in)
}
