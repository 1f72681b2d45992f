package handler

import (
	"errors"
	"net/http"

	"medlink/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errorStatus = []struct {
	status int
	errs   []error
}{
	{http.StatusBadRequest, []error{
		service.ErrInvalidInput, service.ErrInvalidRole, service.ErrRoleNotAllowed, service.ErrSelfReferral,
		service.ErrNotPrescription, service.ErrAppointmentInPast, service.ErrInvalidClockTime,
		service.ErrQueryTooShort, service.ErrNoPasswordSet, service.ErrSelfDelete, service.ErrEmailExists,
	}},
	{http.StatusUnauthorized, []error{service.ErrInvalidCreds}},
	{http.StatusForbidden, []error{service.ErrForbidden, service.ErrPatientNotAssigned}},
	{http.StatusNotFound, []error{
		gorm.ErrRecordNotFound, service.ErrUserNotFound, service.ErrProviderNotFound, service.ErrPatientNotFound,
		service.ErrDoctorNotFound, service.ErrNotAssigned, service.ErrDocumentNotFound, service.ErrGranteeNotFound,
		service.ErrGrantNotFound, service.ErrDocumentNotOpen, service.ErrHandRaiseNotFound,
		service.ErrReferralNotFound, service.ErrReferredNotFound, service.ErrSettingNotFound,
		service.ErrAppointmentNotFound, service.ErrPrescriptionNotFound, service.ErrScheduleNotFound,
		service.ErrItemNotFound, service.ErrReminderNotFound, service.ErrMedicineNotFound,
		service.ErrNotificationNotFound, service.ErrAccountNotFound,
	}},
	{http.StatusConflict, []error{
		service.ErrDoctorHasClinic, service.ErrHandRaiseExists, service.ErrReferralNotPending,
		service.ErrAppointmentTerminal, service.ErrInvalidTransition, service.ErrMedicineExists,
		service.ErrReferralExists, service.ErrDoseNotDue, service.ErrDoseAlreadyTaken,
		gorm.ErrDuplicatedKey,
	}},
	{http.StatusServiceUnavailable, []error{service.ErrStorageUnavailable}},
}

// statusFor maps a service error to its HTTP status; unknown errors are 500.
func statusFor(err error) int {
	for _, group := range errorStatus {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.status
			}
		}
	}
	return http.StatusInternalServerError
}

// respondError writes {"error": msg}. Internal errors are logged and never leak their text.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	msg := err.Error()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		msg = "not found"
	}
	c.JSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
