package domain

// Role identifies which kind of account a user is.
type Role string

const (
	RolePatient       Role = "PATIENT"
	RoleDoctor        Role = "DOCTOR"
	RoleHospital      Role = "HOSPITAL"
	RoleClinic        Role = "CLINIC"
	RoleCheckupCenter Role = "CHECKUP_CENTER"
	RoleMedStore      Role = "MED_STORE"
	RoleAdmin         Role = "ADMIN"
)

// Roles lists every role accepted at registration or in a token.
var Roles = []Role{RolePatient, RoleDoctor, RoleHospital, RoleClinic, RoleCheckupCenter, RoleMedStore, RoleAdmin}

// ProviderRoles are the roles that keep a patient list.
var ProviderRoles = []Role{RoleDoctor, RoleHospital, RoleClinic, RoleCheckupCenter}

// ParseRole normalises s (case-insensitive, '-' accepted for '_') and reports whether it is known.
func ParseRole(s string) (Role, bool) {
	b := []byte(s)
	for i, ch := range b {
		switch {
		case ch >= 'a' && ch <= 'z':
			b[i] = ch - 'a' + 'A'
		case ch == '-':
			b[i] = '_'
		}
	}
	r := Role(b)
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

func (r Role) IsProvider() bool {
	for _, p := range ProviderRoles {
		if r == p {
			return true
		}
	}
	return false
}

// Principal is the authenticated caller: a role-tagged user id.
type Principal struct {
	Role Role `json:"role"`
	ID   uint `json:"id"`
}

const (
	VerificationPending  = "PENDING"
	VerificationVerified = "VERIFIED"
	VerificationRejected = "REJECTED"
)

const (
	DocumentTypePrescription  = "PRESCRIPTION"
	DocumentTypeMedicalReport = "MEDICAL_REPORT"
)

func IsDocumentType(t string) bool {
	return t == DocumentTypePrescription || t == DocumentTypeMedicalReport
}

const (
	ReferralStatusPending   = "PENDING"
	ReferralStatusCompleted = "COMPLETED"
)

const (
	TxTypeReferral           = "REFERRAL"
	TxTypeServiceReferral    = "SERVICE_REFERRAL"
	TxTypeMedicineCompliance = "MEDICINE_COMPLIANCE"
	TxTypeAdminAdjustment    = "ADMIN_ADJUSTMENT"
)

// Reward setting keys and their defaults.
const (
	SettingReferralDefaultPoints = "referral_default_points"
	SettingMedicineOnTimePoints  = "medicine_on_time_points"
	SettingMedicineLatePoints    = "medicine_late_points"
	SettingServiceReferralPrefix = "service_referral_points:"
	DefaultReferralPoints        = 100
	DefaultServiceReferralPoints = 50
	DefaultMedicineOnTimePoints  = 5
	DefaultMedicineLatePoints    = 1
)

// DefaultRewardSettings are seeded at startup when absent.
var DefaultRewardSettings = map[string]int64{
	SettingReferralDefaultPoints: DefaultReferralPoints,
	SettingMedicineOnTimePoints:  DefaultMedicineOnTimePoints,
	SettingMedicineLatePoints:    DefaultMedicineLatePoints,
}

const (
	AppointmentPending   = "PENDING"
	AppointmentConfirmed = "CONFIRMED"
	AppointmentCompleted = "COMPLETED"
	AppointmentCancelled = "CANCELLED"
)

const (
	NotificationMedicineReminder   = "MEDICINE_REMINDER"
	NotificationAppointmentUpdate  = "APPOINTMENT_UPDATE"
	NotificationNewAppointment     = "NEW_APPOINTMENT"
	NotificationHandRaise          = "HAND_RAISE"
	NotificationDocumentShared     = "DOCUMENT_SHARED"
	NotificationVerificationUpdate = "VERIFICATION_UPDATE"
	NotificationPointsAwarded      = "POINTS_AWARDED"
	NotificationNextVisit          = "NEXT_VISIT"
)
