package service

import (
	"testing"
	"time"

	"medlink/config"
	"medlink/internal/auth"
	"medlink/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthService(f *fixture) *AuthService {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret", Expiry: time.Hour, Issuer: "medlink"}}
	return NewAuthService(cfg, f.users, zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)

	u, token, err := svc.Register(RegisterInput{
		Name:     "Dr. Kavya Reddy",
		Email:    "  Kavya@Example.com ",
		Password: "s3cret-pass",
		Role:     domain.RoleDoctor,
		City:     "Hyderabad",
		Profile:  map[string]interface{}{"specialization": "Cardiology", "experience_years": 12, "password_hash": "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, "kavya@example.com", u.Email)
	assert.Equal(t, domain.VerificationPending, u.VerificationStatus)
	assert.NotEmpty(t, u.UserCode)
	require.NotNil(t, u.DoctorProfile)
	assert.Equal(t, "Cardiology", u.DoctorProfile.Specialization)
	assert.Equal(t, 12, u.DoctorProfile.ExperienceYears)

	claims, err := auth.ParseAccessToken(&config.JWTConfig{Secret: "test-secret"}, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, domain.RoleDoctor, claims.Role)

	got, _, err := svc.Login("KAVYA@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestRegister_PatientStartsVerified(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)

	u, _, err := svc.Register(RegisterInput{
		Name:     "Rohan Gupta",
		Email:    "rohan@example.com",
		Password: "pw123456",
		Role:     domain.RolePatient,
		Profile:  map[string]interface{}{"date_of_birth": "1990-05-17", "blood_group": "O+"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationVerified, u.VerificationStatus)
	require.NotNil(t, u.PatientProfile)
	require.NotNil(t, u.PatientProfile.DateOfBirth)
	assert.Equal(t, 1990, u.PatientProfile.DateOfBirth.Year())
	assert.Equal(t, "O+", u.PatientProfile.BloodGroup)
}

func TestRegister_Rejections(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	base := RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "pw123456", Role: domain.RolePatient}

	_, _, err := svc.Register(base)
	require.NoError(t, err)

	dup := base
	dup.Email = "ANA@example.com"
	_, _, err = svc.Register(dup)
	assert.ErrorIs(t, err, ErrEmailExists)

	admin := base
	admin.Email = "root@example.com"
	admin.Role = domain.RoleAdmin
	_, _, err = svc.Register(admin)
	assert.ErrorIs(t, err, ErrRoleNotAllowed)

	nurse := base
	nurse.Email = "nurse@example.com"
	nurse.Role = domain.Role("NURSE")
	_, _, err = svc.Register(nurse)
	assert.ErrorIs(t, err, ErrInvalidRole)

	badDate := base
	badDate.Email = "dob@example.com"
	badDate.Profile = map[string]interface{}{"date_of_birth": "17/05/1990"}
	_, _, err = svc.Register(badDate)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	_, _, err := svc.Register(RegisterInput{Name: "Lata", Email: "lata@example.com", Password: "right-pass", Role: domain.RolePatient})
	require.NoError(t, err)

	_, _, errUnknown := svc.Login("nobody@example.com", "right-pass")
	_, _, errWrong := svc.Login("lata@example.com", "wrong-pass")
	assert.ErrorIs(t, errUnknown, ErrInvalidCreds)
	assert.ErrorIs(t, errWrong, ErrInvalidCreds)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	u, _, err := svc.Register(RegisterInput{Name: "Manoj", Email: "manoj@example.com", Password: "old-pass", Role: domain.RolePatient})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(u.ID, "nope", "new-pass"), ErrInvalidCreds)
	require.NoError(t, svc.ChangePassword(u.ID, "old-pass", "new-pass"))

	_, _, err = svc.Login("manoj@example.com", "old-pass")
	assert.ErrorIs(t, err, ErrInvalidCreds)
	_, _, err = svc.Login("manoj@example.com", "new-pass")
	assert.NoError(t, err)
}

func TestLoginWithGoogle_RequiresExistingAccount(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	_, _, err := svc.LoginWithGoogle("ghost@example.com", "")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, _, err = svc.Register(RegisterInput{Name: "Zoya", Email: "zoya@example.com", Password: "pw123456", Role: domain.RolePatient})
	require.NoError(t, err)
	u, token, err := svc.LoginWithGoogle("Zoya@example.com", "https://img.example.test/z.png")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "https://img.example.test/z.png", u.AvatarURL)
}
