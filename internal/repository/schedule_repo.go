package repository

import (
	"time"

	"medlink/internal/models"

	"gorm.io/gorm"
)

type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) WithTx(tx *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: tx}
}

// Create inserts the schedule with its items and their reminder times.
func (r *ScheduleRepository) Create(s *models.MedicineSchedule) error {
	return r.db.Create(s).Error
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.ReminderTimes", func(db *gorm.DB) *gorm.DB { return db.Order("time_of_day ASC") })
}

func (r *ScheduleRepository) GetByID(id uint) (*models.MedicineSchedule, error) {
	var s models.MedicineSchedule
	err := preloadItems(r.db).First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ScheduleRepository) ListByPatient(patientID uint) ([]models.MedicineSchedule, error) {
	var list []models.MedicineSchedule
	err := preloadItems(r.db).Where("patient_id = ?", patientID).Order("start_date DESC").Find(&list).Error
	return list, err
}

// ListActive returns the patient's schedules that have started by the day after from.
func (r *ScheduleRepository) ListActive(patientID uint, from time.Time) ([]models.MedicineSchedule, error) {
	var list []models.MedicineSchedule
	err := preloadItems(r.db).
		Where("patient_id = ? AND start_date <= ?", patientID, from.AddDate(0, 0, 1)).
		Order("start_date ASC").Find(&list).Error
	return list, err
}

// Delete removes the schedule together with its items and reminder times.
func (r *ScheduleRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		items := tx.Model(&models.ScheduledMedicineItem{}).Select("id").Where("schedule_id = ?", id)
		if err := tx.Where("item_id IN (?)", items).Delete(&models.MedicineReminderTime{}).Error; err != nil {
			return err
		}
		if err := tx.Where("schedule_id = ?", id).Delete(&models.ScheduledMedicineItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.MedicineSchedule{}, id).Error
	})
}

func (r *ScheduleRepository) GetItem(itemID uint) (*models.ScheduledMedicineItem, error) {
	var item models.ScheduledMedicineItem
	err := r.db.Preload("Schedule").First(&item, itemID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ReplaceReminderTimes swaps the item's reminder times for times.
func (r *ScheduleRepository) ReplaceReminderTimes(itemID uint, times []string) ([]models.MedicineReminderTime, error) {
	rows := make([]models.MedicineReminderTime, 0, len(times))
	for _, t := range times {
		rows = append(rows, models.MedicineReminderTime{ItemID: itemID, TimeOfDay: t, IsActive: true})
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", itemID).Delete(&models.MedicineReminderTime{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	return rows, err
}

func (r *ScheduleRepository) GetReminder(id uint) (*models.MedicineReminderTime, error) {
	var rem models.MedicineReminderTime
	err := r.db.Preload("Item.Schedule").First(&rem, id).Error
	if err != nil {
		return nil, err
	}
	return &rem, nil
}

// ClaimIntake records a dose at takenAt unless one was already recorded since dayStart.
// It reports whether this caller won the claim; the counters only move for the winner.
func (r *ScheduleRepository) ClaimIntake(id uint, dayStart, takenAt time.Time, streak int) (bool, error) {
	res := r.db.Model(&models.MedicineReminderTime{}).
		Where("id = ? AND (last_taken_at IS NULL OR last_taken_at < ?)", id, dayStart).
		Updates(map[string]interface{}{
			"last_taken_at":          takenAt,
			"total_times_taken":      gorm.Expr("total_times_taken + 1"),
			"consecutive_days_taken": streak,
		})
	return res.RowsAffected == 1, res.Error
}

// ListByClock returns active reminders set for clock ("HH:MM") with their item and schedule.
func (r *ScheduleRepository) ListByClock(clock string) ([]models.MedicineReminderTime, error) {
	var list []models.MedicineReminderTime
	err := r.db.Where("time_of_day = ? AND is_active = ?", clock, true).
		Preload("Item.Schedule").Find(&list).Error
	return list, err
}

// ClaimNotification marks the reminder as notified unless that already happened since
// dayStart. It reports whether this caller won the claim.
func (r *ScheduleRepository) ClaimNotification(id uint, dayStart, now time.Time) (bool, error) {
	res := r.db.Model(&models.MedicineReminderTime{}).
		Where("id = ? AND (last_notified_at IS NULL OR last_notified_at < ?)", id, dayStart).
		Update("last_notified_at", now)
	return res.RowsAffected == 1, res.Error
}
