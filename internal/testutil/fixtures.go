package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"medlink/internal/domain"
	"medlink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seq atomic.Int64

// CreateUser inserts a VERIFIED user with an empty profile for role.
func CreateUser(t testing.TB, db *gorm.DB, role domain.Role, name string) *models.User {
	t.Helper()
	n := seq.Add(1)
	u := &models.User{
		UserCode:           fmt.Sprintf("T%05d", n),
		Name:               name,
		Email:              fmt.Sprintf("%s.%d@example.test", strings.ToLower(strings.ReplaceAll(name, " ", ".")), n),
		City:               "Pune",
		Role:               role,
		VerificationStatus: domain.VerificationVerified,
	}
	if err := db.Omit(clause.Associations).Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if p := models.NewProfile(role); p != nil {
		p.SetUserID(u.ID)
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("create profile: %v", err)
		}
	}
	return u
}

// Assign puts patient on provider's patient list.
func Assign(t testing.TB, db *gorm.DB, provider, patient *models.User) {
	t.Helper()
	err := db.Create(&models.PatientAssignment{
		ProviderID:   provider.ID,
		ProviderRole: provider.Role,
		PatientID:    patient.ID,
	}).Error
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
}
