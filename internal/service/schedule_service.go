package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"medlink/internal/domain"
	"medlink/internal/models"
	"medlink/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ScheduleItemInput struct {
	MedicineName   string
	Dosage         string
	TimesPerDay    int
	GapBetweenDays int
	Instructions   string
	ReminderTimes  []string
}

type ScheduleInput struct {
	PatientID      uint
	PrescriptionID *uint
	Title          string
	StartDate      time.Time
	NumberOfDays   int
	Notes          string
	Items          []ScheduleItemInput
}

// UpcomingReminder is one dose due today or tomorrow.
type UpcomingReminder struct {
	ReminderID    uint      `json:"reminder_id"`
	ItemID        uint      `json:"item_id"`
	ScheduleID    uint      `json:"schedule_id"`
	ScheduleTitle string    `json:"schedule_title"`
	MedicineName  string    `json:"medicine_name"`
	Dosage        string    `json:"dosage"`
	Instructions  string    `json:"instructions"`
	TimeOfDay     string    `json:"time_of_day"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	Taken         bool      `json:"taken"`
}

type DoseResult struct {
	Reminder      *models.MedicineReminderTime `json:"reminder"`
	OnTime        bool                         `json:"on_time"`
	PointsAwarded int64                        `json:"points_awarded"`
}

// ScheduleService handles next visits, medicine schedules, dose confirmation and the
// reminder dispatch.
type ScheduleService struct {
	db          *gorm.DB
	schedules   *repository.ScheduleRepository
	nextVisits  *repository.NextVisitRepository
	assignments *repository.AssignmentRepository
	rewards     *RewardService
	notifier    Notifier
	loc         *time.Location
	log         *zap.Logger
	now         func() time.Time
}

func NewScheduleService(
	db *gorm.DB,
	schedules *repository.ScheduleRepository,
	nextVisits *repository.NextVisitRepository,
	assignments *repository.AssignmentRepository,
	rewards *RewardService,
	notifier Notifier,
	loc *time.Location,
	log *zap.Logger,
) *ScheduleService {
	if loc == nil {
		loc = time.UTC
	}
	return &ScheduleService{
		db:          db,
		schedules:   schedules,
		nextVisits:  nextVisits,
		assignments: assignments,
		rewards:     rewards,
		notifier:    notifier,
		loc:         loc,
		log:         log,
		now:         time.Now,
	}
}

// SetNextVisit records the provider's next visit with an assigned patient. Repeated calls
// overwrite the single row for the pair.
func (s *ScheduleService) SetNextVisit(provider domain.Principal, patientID uint, visitDate time.Time, notes string) (*models.NextVisit, error) {
	if err := requireAssigned(s.assignments, provider.ID, patientID); err != nil {
		return nil, err
	}
	nv, err := s.nextVisits.Upsert(&models.NextVisit{
		ProviderID:   provider.ID,
		ProviderRole: provider.Role,
		PatientID:    patientID,
		VisitDate:    visitDate,
		Notes:        notes,
	})
	if err != nil {
		return nil, err
	}
	notify(s.notifier, s.log, patientID, domain.NotificationNextVisit, "Next visit scheduled",
		"Your next visit is on "+visitDate.In(s.loc).Format("Mon, 02 Jan 2006"),
		map[string]interface{}{"provider_id": provider.ID, "visit_date": visitDate.Format(time.RFC3339)})
	return nv, nil
}

func (s *ScheduleService) ProviderNextVisits(providerID uint) ([]models.NextVisit, error) {
	return s.nextVisits.ListByProvider(providerID)
}

func (s *ScheduleService) PatientNextVisits(patientID uint) ([]models.NextVisit, error) {
	return s.nextVisits.ListByPatient(patientID)
}

// CreateSchedule builds a schedule for the caller (patient) or an assigned patient (doctor).
// Items without explicit reminder times get ReminderClockTimes(timesPerDay).
func (s *ScheduleService) CreateSchedule(creator domain.Principal, in ScheduleInput) (*models.MedicineSchedule, error) {
	switch creator.Role {
	case domain.RolePatient:
		in.PatientID = creator.ID
	case domain.RoleDoctor:
		if in.PatientID == 0 {
			return nil, ErrInvalidInput
		}
		if err := requireAssigned(s.assignments, creator.ID, in.PatientID); err != nil {
			return nil, err
		}
	default:
		return nil, ErrForbidden
	}
	return s.createSchedule(creator, in)
}

func (s *ScheduleService) createSchedule(creator domain.Principal, in ScheduleInput) (*models.MedicineSchedule, error) {
	if in.NumberOfDays < 1 || len(in.Items) == 0 {
		return nil, ErrInvalidInput
	}
	start := in.StartDate
	if start.IsZero() {
		start = s.now()
	}
	sched := &models.MedicineSchedule{
		PatientID:      in.PatientID,
		CreatedByID:    creator.ID,
		CreatedByRole:  creator.Role,
		PrescriptionID: in.PrescriptionID,
		Title:          strings.TrimSpace(in.Title),
		StartDate:      StartOfDay(start, s.loc),
		NumberOfDays:   in.NumberOfDays,
		Notes:          in.Notes,
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.MedicineName) == "" || it.TimesPerDay < 1 || it.GapBetweenDays < 0 {
			return nil, ErrInvalidInput
		}
		times := it.ReminderTimes
		if len(times) == 0 {
			times = ReminderClockTimes(it.TimesPerDay)
		}
		times, err := NormalizeClockTimes(times)
		if err != nil {
			return nil, err
		}
		item := models.ScheduledMedicineItem{
			MedicineName:   strings.TrimSpace(it.MedicineName),
			Dosage:         it.Dosage,
			TimesPerDay:    it.TimesPerDay,
			GapBetweenDays: it.GapBetweenDays,
			Instructions:   it.Instructions,
		}
		for _, t := range times {
			item.ReminderTimes = append(item.ReminderTimes, models.MedicineReminderTime{TimeOfDay: t, IsActive: true})
		}
		sched.Items = append(sched.Items, item)
	}
	if err := s.schedules.Create(sched); err != nil {
		return nil, err
	}
	return s.schedules.GetByID(sched.ID)
}

func (s *ScheduleService) canRead(viewer domain.Principal, sched *models.MedicineSchedule) (bool, error) {
	switch {
	case viewer.Role == domain.RoleAdmin:
		return true, nil
	case viewer.Role == domain.RolePatient:
		return sched.PatientID == viewer.ID, nil
	case sched.CreatedByID == viewer.ID:
		return true, nil
	case viewer.Role == domain.RoleDoctor:
		return s.assignments.IsAssigned(viewer.ID, sched.PatientID)
	}
	return false, nil
}

func canModify(actor domain.Principal, sched *models.MedicineSchedule) bool {
	return (actor.Role == domain.RolePatient && sched.PatientID == actor.ID) || sched.CreatedByID == actor.ID
}

// ListSchedules returns a patient's schedules. Doctors must name an assigned patient.
func (s *ScheduleService) ListSchedules(viewer domain.Principal, patientID uint) ([]models.MedicineSchedule, error) {
	switch viewer.Role {
	case domain.RolePatient:
		patientID = viewer.ID
	case domain.RoleDoctor:
		if patientID == 0 {
			return nil, ErrInvalidInput
		}
		if err := requireAssigned(s.assignments, viewer.ID, patientID); err != nil {
			return nil, err
		}
	case domain.RoleAdmin:
		if patientID == 0 {
			return nil, ErrInvalidInput
		}
	default:
		return nil, ErrForbidden
	}
	return s.schedules.ListByPatient(patientID)
}

func (s *ScheduleService) GetSchedule(viewer domain.Principal, id uint) (*models.MedicineSchedule, error) {
	sched, err := s.schedules.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	ok, err := s.canRead(viewer, sched)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return sched, nil
}

func (s *ScheduleService) DeleteSchedule(actor domain.Principal, id uint) error {
	sched, err := s.schedules.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrScheduleNotFound
	}
	if err != nil {
		return err
	}
	if !canModify(actor, sched) {
		return ErrForbidden
	}
	return s.schedules.Delete(id)
}

// UpdateReminderTimes replaces an item's daily reminder clock times.
func (s *ScheduleService) UpdateReminderTimes(actor domain.Principal, itemID uint, times []string) ([]models.MedicineReminderTime, error) {
	item, err := s.schedules.GetItem(itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	if item.Schedule == nil || !canModify(actor, item.Schedule) {
		return nil, ErrForbidden
	}
	norm, err := NormalizeClockTimes(times)
	if err != nil {
		return nil, err
	}
	if len(norm) == 0 {
		return nil, ErrInvalidInput
	}
	return s.schedules.ReplaceReminderTimes(itemID, norm)
}

// Upcoming lists the patient's doses for today and tomorrow, earliest first.
func (s *ScheduleService) Upcoming(patientID uint) ([]UpcomingReminder, error) {
	now := s.now()
	list, err := s.schedules.ListActive(patientID, now)
	if err != nil {
		return nil, err
	}
	out := []UpcomingReminder{}
	for _, day := range []time.Time{now, now.AddDate(0, 0, 1)} {
		for _, sched := range list {
			d := DaysBetween(sched.StartDate, day, s.loc)
			for _, item := range sched.Items {
				if !IsDoseDay(d, sched.NumberOfDays, item.GapBetweenDays) {
					continue
				}
				for _, rem := range item.ReminderTimes {
					if !rem.IsActive {
						continue
					}
					at, err := ClockOn(day, rem.TimeOfDay, s.loc)
					if err != nil {
						continue
					}
					out = append(out, UpcomingReminder{
						ReminderID:    rem.ID,
						ItemID:        item.ID,
						ScheduleID:    sched.ID,
						ScheduleTitle: sched.Title,
						MedicineName:  item.MedicineName,
						Dosage:        item.Dosage,
						Instructions:  item.Instructions,
						TimeOfDay:     rem.TimeOfDay,
						ScheduledAt:   at,
						Taken:         rem.LastTakenAt != nil && DaysBetween(*rem.LastTakenAt, day, s.loc) == 0,
					})
				}
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

// ConfirmDose records a dose for the patient's reminder and awards compliance points:
// the on-time amount within 30 minutes of that day's clock time, the late amount otherwise.
// A reminder counts once per dose day of its course; other days fail with ErrDoseNotDue and a
// repeat on the same day with ErrDoseAlreadyTaken.
func (s *ScheduleService) ConfirmDose(patient domain.Principal, reminderID uint, takenAt time.Time) (*DoseResult, error) {
	rem, err := s.schedules.GetReminder(reminderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReminderNotFound
	}
	if err != nil {
		return nil, err
	}
	if rem.Item == nil || rem.Item.Schedule == nil || rem.Item.Schedule.PatientID != patient.ID {
		return nil, ErrForbidden
	}
	if takenAt.IsZero() {
		takenAt = s.now()
	}
	sched := rem.Item.Schedule
	if !rem.IsActive || !IsDoseDay(DaysBetween(sched.StartDate, takenAt, s.loc), sched.NumberOfDays, rem.Item.GapBetweenDays) {
		return nil, ErrDoseNotDue
	}
	dayStart := StartOfDay(takenAt, s.loc)
	if rem.LastTakenAt != nil && !rem.LastTakenAt.Before(dayStart) {
		return nil, ErrDoseAlreadyTaken
	}
	scheduled, err := ClockOn(takenAt, rem.TimeOfDay, s.loc)
	if err != nil {
		return nil, err
	}
	onTime := IsOnTime(takenAt, scheduled)
	key, def := domain.SettingMedicineLatePoints, int64(domain.DefaultMedicineLatePoints)
	if onTime {
		key, def = domain.SettingMedicineOnTimePoints, domain.DefaultMedicineOnTimePoints
	}
	points, err := s.rewards.Setting(key, def)
	if err != nil {
		return nil, err
	}

	streak := NextStreak(rem.LastTakenAt, rem.ConsecutiveDaysTaken, takenAt, s.loc)
	var saved *models.MedicineReminderTime
	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.schedules.WithTx(tx)
		claimed, err := repo.ClaimIntake(rem.ID, dayStart, takenAt, streak)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrDoseAlreadyTaken
		}
		if saved, err = repo.GetReminder(rem.ID); err != nil {
			return err
		}
		if points == 0 {
			return nil
		}
		desc := fmt.Sprintf("%s taken late", rem.Item.MedicineName)
		if onTime {
			desc = fmt.Sprintf("%s taken on time", rem.Item.MedicineName)
		}
		return s.rewards.AwardPointsTx(tx, patient, points, domain.TxTypeMedicineCompliance, desc, nil)
	})
	if err != nil {
		return nil, err
	}
	return &DoseResult{Reminder: saved, OnTime: onTime, PointsAwarded: points}, nil
}

// DispatchDue sends MEDICINE_REMINDER notifications for reminders whose clock time is the
// minute of now. Each reminder is claimed with a conditional update so only one process
// notifies it per day.
func (s *ScheduleService) DispatchDue(now time.Time) (int, error) {
	clock := now.In(s.loc).Format("15:04")
	list, err := s.schedules.ListByClock(clock)
	if err != nil {
		return 0, err
	}
	dayStart := StartOfDay(now, s.loc)
	sent := 0
	for i := range list {
		rem := &list[i]
		if rem.Item == nil || rem.Item.Schedule == nil {
			continue
		}
		sched := rem.Item.Schedule
		if !IsDoseDay(DaysBetween(sched.StartDate, now, s.loc), sched.NumberOfDays, rem.Item.GapBetweenDays) {
			continue
		}
		claimed, err := s.schedules.ClaimNotification(rem.ID, dayStart, now)
		if err != nil {
			s.log.Warn("reminder claim failed", zap.Uint("reminder_id", rem.ID), zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}
		body := fmt.Sprintf("Time to take %s", rem.Item.MedicineName)
		if rem.Item.Dosage != "" {
			body += " (" + rem.Item.Dosage + ")"
		}
		notify(s.notifier, s.log, sched.PatientID, domain.NotificationMedicineReminder, "Medicine reminder", body,
			map[string]interface{}{"reminder_id": rem.ID, "schedule_id": sched.ID, "time_of_day": rem.TimeOfDay})
		sent++
	}
	return sent, nil
}

// RunDispatcher calls DispatchDue for every minute that elapsed since the previous tick,
// at most an hour back, until ctx is done.
func (s *ScheduleService) RunDispatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := s.now().Truncate(time.Minute).Add(-time.Minute)
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			current := t.Truncate(time.Minute)
			if current.Sub(last) > time.Hour {
				last = current.Add(-time.Hour)
			}
			for m := last.Add(time.Minute); !m.After(current); m = m.Add(time.Minute) {
				n, err := s.DispatchDue(m)
				if err != nil {
					s.log.Error("reminder dispatch failed", zap.Time("minute", m), zap.Error(err))
					continue
				}
				if n > 0 {
					s.log.Info("medicine reminders sent", zap.Int("count", n), zap.Time("minute", m))
				}
			}
			last = current
		}
	}
}
