package service

import (
	"errors"
	"strings"
	"time"

	"medlink/internal/domain"
	"medlink/internal/models"
	"medlink/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AppointmentService struct {
	appointments *repository.AppointmentRepository
	users        *repository.UserRepository
	assignments  *repository.AssignmentRepository
	notifier     Notifier
	log          *zap.Logger
	now          func() time.Time
}

func NewAppointmentService(
	appointments *repository.AppointmentRepository,
	users *repository.UserRepository,
	assignments *repository.AssignmentRepository,
	notifier Notifier,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{appointments: appointments, users: users, assignments: assignments, notifier: notifier, log: log, now: time.Now}
}

// Book creates a PENDING appointment with a doctor, hospital, clinic or checkup center.
func (s *AppointmentService) Book(patient domain.Principal, providerID uint, scheduledAt time.Time, reason string) (*models.Appointment, error) {
	if !scheduledAt.After(s.now()) {
		return nil, ErrAppointmentInPast
	}
	provider, err := s.users.GetByID(providerID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !provider.Role.IsProvider()) {
		return nil, ErrProviderNotFound
	}
	if err != nil {
		return nil, err
	}
	a := &models.Appointment{
		PatientID:    patient.ID,
		ProviderID:   provider.ID,
		ProviderRole: provider.Role,
		ScheduledAt:  scheduledAt,
		Reason:       strings.TrimSpace(reason),
		Status:       domain.AppointmentPending,
	}
	if err := s.appointments.Create(a); err != nil {
		return nil, err
	}
	notify(s.notifier, s.log, provider.ID, domain.NotificationNewAppointment, "New appointment request",
		"A patient requested an appointment on "+scheduledAt.Format("02 Jan 2006 15:04"),
		map[string]interface{}{"appointment_id": a.ID})
	return s.appointments.GetByID(a.ID)
}

func (s *AppointmentService) List(p domain.Principal, status string, page, limit int) ([]models.Appointment, int64, error) {
	return s.appointments.ListFor(p, strings.ToUpper(status), page, limit)
}

func (s *AppointmentService) Get(viewer domain.Principal, id uint) (*models.Appointment, error) {
	a, err := s.appointments.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}
	if viewer.Role != domain.RoleAdmin && a.PatientID != viewer.ID && a.ProviderID != viewer.ID {
		return nil, ErrForbidden
	}
	return a, nil
}

// allowedTransition: the provider confirms, completes or cancels; the patient can only cancel.
func allowedTransition(a *models.Appointment, actor domain.Principal, to string) bool {
	switch {
	case actor.ID == a.ProviderID:
		switch to {
		case domain.AppointmentConfirmed:
			return a.Status == domain.AppointmentPending
		case domain.AppointmentCompleted, domain.AppointmentCancelled:
			return true
		}
	case actor.ID == a.PatientID:
		return to == domain.AppointmentCancelled
	}
	return false
}

// UpdateStatus moves the appointment along its state machine and notifies the other party.
// Completing an appointment puts the patient on the provider's list.
func (s *AppointmentService) UpdateStatus(actor domain.Principal, id uint, status, notes string) (*models.Appointment, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	a, err := s.Get(actor, id)
	if err != nil {
		return nil, err
	}
	if a.IsTerminal() {
		return nil, ErrAppointmentTerminal
	}
	if a.PatientID != actor.ID && a.ProviderID != actor.ID {
		return nil, ErrForbidden
	}
	if !allowedTransition(a, actor, status) {
		return nil, ErrInvalidTransition
	}
	changed, err := s.appointments.TransitionStatus(id, status, notes)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrAppointmentTerminal
	}
	if status == domain.AppointmentCompleted {
		provider := domain.Principal{Role: a.ProviderRole, ID: a.ProviderID}
		if err := s.assignments.Assign(provider, a.PatientID); err != nil {
			s.log.Warn("assign after completed appointment failed", zap.Uint("appointment_id", id), zap.Error(err))
		}
	}
	other := a.PatientID
	if actor.ID == a.PatientID {
		other = a.ProviderID
	}
	notify(s.notifier, s.log, other, domain.NotificationAppointmentUpdate, "Appointment "+strings.ToLower(status),
		"Your appointment on "+a.ScheduledAt.Format("02 Jan 2006 15:04")+" is now "+strings.ToLower(status),
		map[string]interface{}{"appointment_id": id, "status": status})
	return s.appointments.GetByID(id)
}
