package service

import "errors"

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCreds       = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrRoleNotAllowed     = errors.New("role cannot self-register")
	ErrNoPasswordSet      = errors.New("account has no password; sign in with Google")
	ErrAccountNotFound    = errors.New("no account registered for this email")
	ErrUserNotFound       = errors.New("user not found")
	ErrProviderNotFound   = errors.New("provider not found")
	ErrPatientNotFound    = errors.New("patient not found")
	ErrDoctorNotFound     = errors.New("doctor not found")
	ErrForbidden          = errors.New("forbidden")
	ErrPatientNotAssigned = errors.New("patient is not assigned to this provider")
	ErrDoctorHasClinic    = errors.New("doctor is already connected to another clinic")
	ErrNotAssigned        = errors.New("assignment not found")
	ErrInvalidInput       = errors.New("invalid input")

	ErrDocumentNotFound   = errors.New("document not found")
	ErrGranteeNotFound    = errors.New("grantee not found")
	ErrGrantNotFound      = errors.New("permission not found")
	ErrNotPrescription    = errors.New("only prescriptions can be opened to med stores")
	ErrDocumentNotOpen    = errors.New("prescription is not open for med stores")
	ErrHandRaiseExists    = errors.New("hand already raised for this prescription")
	ErrHandRaiseNotFound  = errors.New("hand raise not found")
	ErrStorageUnavailable = errors.New("file storage is not configured")

	ErrReferralNotFound   = errors.New("referral not found")
	ErrReferralNotPending = errors.New("referral is not pending")
	ErrReferralExists     = errors.New("referral already exists for these parties")
	ErrSelfReferral       = errors.New("cannot refer yourself")
	ErrReferredNotFound   = errors.New("referred user not found")
	ErrSettingNotFound    = errors.New("reward setting not found")

	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrAppointmentInPast   = errors.New("scheduledAt must be in the future")
	ErrAppointmentTerminal = errors.New("appointment is already completed or cancelled")
	ErrInvalidTransition   = errors.New("status change not allowed")

	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrScheduleNotFound     = errors.New("medicine schedule not found")
	ErrItemNotFound         = errors.New("schedule item not found")
	ErrReminderNotFound     = errors.New("reminder not found")
	ErrDoseNotDue           = errors.New("no dose is scheduled for this reminder on that day")
	ErrDoseAlreadyTaken     = errors.New("dose already confirmed for that day")
	ErrInvalidClockTime     = errors.New("reminder times must be HH:MM")
	ErrMedicineNotFound     = errors.New("medicine not found")
	ErrMedicineExists       = errors.New("medicine with this name already exists")
	ErrQueryTooShort        = errors.New("search query must be at least 2 characters")

	ErrNotificationNotFound = errors.New("notification not found")
	ErrSelfDelete           = errors.New("admins cannot delete their own account")
)
