package service

import (
	"sync"
	"testing"
	"time"

	"medlink/internal/domain"
	"medlink/internal/models"
	"medlink/internal/repository"
	"medlink/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newScheduleService(f *fixture, now time.Time) *ScheduleService {
	s := NewScheduleService(f.db,
		repository.NewScheduleRepository(f.db),
		repository.NewNextVisitRepository(f.db),
		f.assign, f.rewards, f.notifier, time.UTC, zap.NewNop())
	s.now = func() time.Time { return now }
	return s
}

func TestSetNextVisit_UpsertsSingleRow(t *testing.T) {
	f := newFixture(t)
	doctor := testutil.CreateUser(t, f.db, domain.RoleDoctor, "Anil Mehta")
	patient := testutil.CreateUser(t, f.db, domain.RolePatient, "Sara Khan")
	testutil.Assign(t, f.db, doctor, patient)
	svc := newScheduleService(f, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	first := time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)
	second := time.Date(2026, 3, 27, 10, 0, 0, 0, time.UTC)
	_, err := svc.SetNextVisit(doctor.Principal(), patient.ID, first, "bring reports")
	require.NoError(t, err)
	nv, err := svc.SetNextVisit(doctor.Principal(), patient.ID, second, "follow up")
	require.NoError(t, err)
	assert.True(t, nv.VisitDate.Equal(second))
	assert.Equal(t, "follow up", nv.Notes)

	n, err := repository.NewNextVisitRepository(f.db).CountForPair(doctor.ID, patient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 2, f.notifier.count(domain.NotificationNextVisit))
}

func TestSetNextVisit_ConcurrentCallsLeaveOneRow(t *testing.T) {
	f := newConcurrentFixture(t)
	clinic := testutil.CreateUser(t, f.db, domain.RoleClinic, "Lotus Clinic")
	patient := testutil.CreateUser(t, f.db, domain.RolePatient, "Joseph Paul")
	testutil.Assign(t, f.db, clinic, patient)
	svc := newScheduleService(f, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			at := time.Date(2026, 4, 1+i, 10, 0, 0, 0, time.UTC)
			_, err := svc.SetNextVisit(clinic.Principal(), patient.ID, at, "")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	n, err := repository.NewNextVisitRepository(f.db).CountForPair(clinic.ID, patient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSetNextVisit_RequiresAssignment(t *testing.T) {
	f := newFixture(t)
	doctor := testutil.CreateUser(t, f.db, domain.RoleDoctor, "Ishaan Roy")
	patient := testutil.CreateUser(t, f.db, domain.RolePatient, "Lena Dsouza")
	svc := newScheduleService(f, time.Now())

	_, err := svc.SetNextVisit(doctor.Principal(), patient.ID, time.Now().Add(48*time.Hour), "")
	assert.ErrorIs(t, err, ErrPatientNotAssigned)
}

func createDailySchedule(t *testing.T, svc *ScheduleService, patient *models.User, start time.Time, days, gap int) *models.MedicineSchedule {
	t.Helper()
	sched, err := svc.CreateSchedule(patient.Principal(), ScheduleInput{
		Title:        "Course",
		StartDate:    start,
		NumberOfDays: days,
		Items: []ScheduleItemInput{{
			MedicineName:   "Amoxicillin",
			Dosage:         "500mg",
			TimesPerDay:    1,
			GapBetweenDays: gap,
			ReminderTimes:  []string{"08:00"},
		}},
	})
	require.NoError(t, err)
	require.Len(t, sched.Items, 1)
	require.Len(t, sched.Items[0].ReminderTimes, 1)
	return sched
}

func TestCreateSchedule_DefaultReminderTimes(t *testing.T) {
	f := newFixture(t)
	patient := testutil.CreateUser(t, f.db, domain.RolePatient, "Tara Bose")
	svc := newScheduleService(f, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	sched, err := svc.CreateSchedule(patient.Principal(), ScheduleInput{
		NumberOfDays: 5,
		Items:        []ScheduleItemInput{{MedicineName: "Paracetamol", TimesPerDay: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, patient.ID, sched.PatientID)
	assert.True(t, sched.StartDate.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))

	var clocks []string
	for _, r := range sched.Items[0].ReminderTimes {
		clocks = append(clocks, r.TimeOfDay)
	}
	assert.Equal(t, []string{"06:00", "11:20", "16:40"}, clocks)

	_, err = svc.CreateSchedule(patient.Principal(), ScheduleInput{NumberOfDays: 0, Items: []ScheduleItemInput{{MedicineName: "X", TimesPerDay: 1}}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateSchedule_DoctorNeedsAssignedPatient(t *testing.T) {
	f := newFixture(t)
	doctor := testutil.CreateUser(t, f.db, domain.RoleDoctor, "Farah Ali")
	patient := testutil.CreateUser(t, f.db, domain.RolePatient, "Om Prakash")
	store := testutil.CreateUser(t, f.db, domain.RoleMedStore, "Apollo Store")
	svc := newScheduleService(f, time.Now())

	in := ScheduleInput{PatientID: patient.ID, NumberOfDays: 3, Items: []ScheduleItemInput{{MedicineName: "Vitamin D", TimesPerDay: 1}}}
	_, err := svc.CreateSchedule(doctor.Principal(), in)
	assert.ErrorIs(t, err, ErrPatientNotAssigned)

	testutil.Assign(t, f.db, doctor, patient)
	sched, err := svc.CreateSchedule(doctor.Principal(), in)
	require.NoError(t, err)
	assert.Equal(t, doctor.ID, sched.CreatedByID)

	_, err = svc.CreateSchedule(store.Principal(), in)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestConfirmDose_OnTimeThenLateWithStreak(t *testing.T) {
	f := newFixture(t)
	patient := testutil.CreateUser(t, f.db, domain.RolePatient, "Maya Nair")
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	svc := newScheduleService(f, start)
	sched := createDailySchedule(t, svc, patient, start, 7, 0)
	remID := sched.Items[0].ReminderTimes[0].ID

	res, err := svc.ConfirmDose(patient.Principal(), remID, time.Date(2026, 3, 10, 8, 20, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, res.OnTime)
	assert.Equal(t, int64(5), res.PointsAwarded)
	assert.Equal(t, 1, res.Reminder.ConsecutiveDaysTaken)

	res, err = svc.ConfirmDose(patient.Principal(), remID, time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, res.OnTime)
	assert.Equal(t, int64(1), res.PointsAwarded)
	assert.Equal(t, 2, res.Reminder.ConsecutiveDaysTaken)
	assert.Equal(t, 2, res.Reminder.TotalTimesTaken)

	counter, ledger := points(t, f, patient.ID)
	assert.Equal(t, int64(6), counter)
	assert.Equal(t, counter, ledger)

	other := testutil.CreateUser(t, f.db, domain.RolePatient, "Not Owner")
	_, err = svc.ConfirmDose(other.Principal(), remID, time.Time{})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.ConfirmDose(patient.Principal(), 987654, time.Time{})
	assert.ErrorIs(t, err, ErrReminderNotFound)
}

func TestConfirmDose_OnlyOncePerDoseDay(t *testing.T) {
	f := newFixture(t)
	patient := testutil.CreateUser(t, f.db, domain.RolePatient, "Kiran Das")
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	svc := newScheduleService(f, start)
	sched := createDailySchedule(t, svc, patient, start, 2, 1)
	remID := sched.Items[0].ReminderTimes[0].ID

	res, err := svc.ConfirmDose(patient.Principal(), remID, start.Add(8*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.PointsAwarded)

	for i := 0; i < 3; i++ {
		_, err = svc.ConfirmDose(patient.Principal(), remID, start.Add(8*time.Hour+time.Duration(i)*time.Minute))
		assert.ErrorIs(t, err, ErrDoseAlreadyTaken)
	}

	cases := map[string]time.Time{
		"gap day":             start.AddDate(0, 0, 1).Add(8 * time.Hour),
		"after course":        start.AddDate(0, 0, 50).Add(8 * time.Hour),
		"before course":       start.AddDate(0, 0, -1).Add(8 * time.Hour),
		"first day after end": start.AddDate(0, 0, 2).Add(8 * time.Hour),
	}
	for name, at := range cases {
		_, err := svc.ConfirmDose(patient.Principal(), remID, at)
		assert.ErrorIs(t, err, ErrDoseNotDue, name)
	}

	rem, err := repository.NewScheduleRepository(f.db).GetReminder(remID)
	require.NoError(t, err)
	assert.Equal(t, 1, rem.TotalTimesTaken)
	counter, ledger := points(t, f, patient.ID)
	assert.Equal(t, int64(5), counter)
	assert.Equal(t, counter, ledger)
}

func TestConfirmDose_ConcurrentConfirmsAwardOnce(t *testing.T) {
	f := newConcurrentFixture(t)
	patient := testutil.CreateUser(t, f.db, domain.RolePatient, "Vikram Shah")
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	svc := newScheduleService(f, start)
	sched := createDailySchedule(t, svc, patient, start, 5, 0)
	remID := sched.Items[0].ReminderTimes[0].ID

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.ConfirmDose(patient.Principal(), remID, start.Add(8*time.Hour))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, ErrDoseAlreadyTaken)
		}
	}
	assert.Equal(t, 1, ok)

	rem, err := repository.NewScheduleRepository(f.db).GetReminder(remID)
	require.NoError(t, err)
	assert.Equal(t, 1, rem.TotalTimesTaken)
	assert.Equal(t, 1, rem.ConsecutiveDaysTaken)
	counter, ledger := points(t, f, patient.ID)
	assert.Equal(t, int64(5), counter)
	assert.Equal(t, counter, ledger)
}

func TestDispatchDue_ClaimsOncePerDayAndRespectsGap(t *testing.T) {
	f := newFixture(t)
	patient := testutil.CreateUser(t, f.db, domain.RolePatient, "Rhea Sen")
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	svc := newScheduleService(f, start)
	createDailySchedule(t, svc, patient, start, 5, 1)

	day0 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	n, err := svc.DispatchDue(day0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = svc.DispatchDue(day0.Add(10 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, 0, n, "already claimed today")

	n, err = svc.DispatchDue(day0.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, n, "gap day")

	n, err = svc.DispatchDue(day0.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = svc.DispatchDue(day0.AddDate(0, 0, 6))
	require.NoError(t, err)
	assert.Equal(t, 0, n, "course finished")

	n, err = svc.DispatchDue(time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, n, "different minute")

	assert.Equal(t, 2, f.notifier.count(domain.NotificationMedicineReminder))
}

func TestUpcoming_TodayAndTomorrowSorted(t *testing.T) {
	f := newFixture(t)
	patient := testutil.CreateUser(t, f.db, domain.RolePatient, "Aarav Jain")
	now := time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)
	svc := newScheduleService(f, now)

	_, err := svc.CreateSchedule(patient.Principal(), ScheduleInput{
		StartDate:    now,
		NumberOfDays: 3,
		Items: []ScheduleItemInput{
			{MedicineName: "Metformin", TimesPerDay: 2, ReminderTimes: []string{"20:00", "08:00"}},
			{MedicineName: "Iron", TimesPerDay: 1, GapBetweenDays: 1, ReminderTimes: []string{"13:00"}},
		},
	})
	require.NoError(t, err)

	up, err := svc.Upcoming(patient.ID)
	require.NoError(t, err)
	// today: 08:00, 13:00, 20:00; tomorrow is a gap day for Iron
	require.Len(t, up, 5)
	for i := 1; i < len(up); i++ {
		assert.False(t, up[i].ScheduledAt.Before(up[i-1].ScheduledAt))
	}
	assert.Equal(t, "Metformin", up[0].MedicineName)
	assert.Equal(t, "Iron", up[1].MedicineName)
}

func TestUpdateReminderTimes(t *testing.T) {
	f := newFixture(t)
	patient := testutil.CreateUser(t, f.db, domain.RolePatient, "Nikhil Rao")
	svc := newScheduleService(f, time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC))
	sched := createDailySchedule(t, svc, patient, time.Time{}, 3, 0)
	itemID := sched.Items[0].ID

	got, err := svc.UpdateReminderTimes(patient.Principal(), itemID, []string{"21:00", "09:00"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "09:00", got[0].TimeOfDay)

	_, err = svc.UpdateReminderTimes(patient.Principal(), itemID, []string{"9am"})
	assert.ErrorIs(t, err, ErrInvalidClockTime)

	other := testutil.CreateUser(t, f.db, domain.RolePatient, "Other Patient")
	_, err = svc.UpdateReminderTimes(other.Principal(), itemID, []string{"10:00"})
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.DeleteSchedule(patient.Principal(), sched.ID))
	_, err = svc.GetSchedule(patient.Principal(), sched.ID)
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}
