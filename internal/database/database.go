package database

import (
	"errors"
	"fmt"
	"strings"

	"medlink/config"
	"medlink/internal/auth"
	"medlink/internal/domain"
	"medlink/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Dialector picks the gorm driver from the URL scheme: postgres:// and postgresql:// use
// Postgres, anything else is treated as a MySQL DSN.
func Dialector(url string) gorm.Dialector {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return postgres.Open(url)
	}
	return mysql.Open(url)
}

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	return open(cfg.URL, cfg)
}

// NewDirectDB opens the connection used for schema changes (DIRECT_URL when set).
func NewDirectDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	url := cfg.DirectURL
	if url == "" {
		url = cfg.URL
	}
	return open(url, cfg)
}

func open(url string, cfg *config.DatabaseConfig) (*gorm.DB, error) {
	if url == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	db, err := gorm.Open(Dialector(url), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.DoctorProfile{},
		&models.PatientProfile{},
		&models.HospitalProfile{},
		&models.ClinicProfile{},
		&models.CheckupCenterProfile{},
		&models.MedStoreProfile{},
		&models.PatientAssignment{},
		&models.HospitalDoctor{},
		&models.NextVisit{},
		&models.Appointment{},
		&models.MedDocument{},
		&models.DocumentGrant{},
		&models.MedStoreHandRaise{},
		&models.Prescription{},
		&models.PrescriptionItem{},
		&models.MedicineSchedule{},
		&models.ScheduledMedicineItem{},
		&models.MedicineReminderTime{},
		&models.GlobalMedicine{},
		&models.Referral{},
		&models.RewardTransaction{},
		&models.RewardSetting{},
		&models.Notification{},
		&models.AuditLog{},
	)
}

// SeedRewardSettings inserts the default point values that are not configured yet.
func SeedRewardSettings(db *gorm.DB) error {
	for key, value := range domain.DefaultRewardSettings {
		err := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.RewardSetting{Key: key, Value: value}).Error
		if err != nil {
			return fmt.Errorf("seed reward setting %s: %w", key, err)
		}
	}
	return nil
}

// SeedAdmin creates an ADMIN account for email when none exists. It returns true when a
// new account was created.
func SeedAdmin(db *gorm.DB, email, password, name string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	code, err := auth.GenerateUserCode(name, func(c string) (bool, error) {
		var n int64
		err := db.Model(&models.User{}).Unscoped().Where("user_code = ?", c).Count(&n).Error
		return n > 0, err
	})
	if err != nil {
		return false, err
	}
	admin := &models.User{
		UserCode:           code,
		Name:               name,
		Email:              email,
		PasswordHash:       string(hash),
		Role:               domain.RoleAdmin,
		VerificationStatus: domain.VerificationVerified,
	}
	if err := db.Create(admin).Error; err != nil {
		return false, err
	}
	return true, nil
}
