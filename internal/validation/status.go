package validation

import (
	"strconv"
	"strings"
	"time"

	"kunjungan/internal/models"
)

const (
	MsgStatusInvalid    = "Status tidak valid. Gunakan: pending, approved, atau rejected"
	MsgReasonRequired   = "Alasan penolakan harus diisi"
	MsgPeriodRequired   = "Parameter bulan dan tahun wajib diisi"
	MsgPeriodMonthRange = "Bulan harus antara 1-12"
	MsgPeriodYear       = "Tahun tidak valid"
)

// Year bounds accepted by the recap report.
const (
	MinReportYear = 2000
	MaxReportYear = 2100
)

// ValidateStatusChange checks the admin's target status and reason. The
// status must be one of the lowercase values exactly.
func ValidateStatusChange(status, reason string) (models.StatusChange, error) {
	s := models.VisitStatus(status)
	if !s.Valid() {
		return models.StatusChange{}, models.NewValidationError(MsgStatusInvalid)
	}

	reason = strings.TrimSpace(reason)
	if s == models.VisitStatusRejected && reason == "" {
		return models.StatusChange{}, models.NewValidationError(MsgReasonRequired)
	}
	if s != models.VisitStatusRejected {
		reason = ""
	}
	return models.StatusChange{Status: s, RejectionReason: reason}, nil
}

// ParseReportPeriod parses the month and year query parameters.
func ParseReportPeriod(monthRaw, yearRaw string) (int, time.Month, error) {
	monthRaw = strings.TrimSpace(monthRaw)
	yearRaw = strings.TrimSpace(yearRaw)
	if monthRaw == "" || yearRaw == "" {
		return 0, 0, models.NewValidationError(MsgPeriodRequired)
	}

	month, err := strconv.Atoi(monthRaw)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, models.NewValidationError(MsgPeriodMonthRange)
	}
	year, err := strconv.Atoi(yearRaw)
	if err != nil || year < MinReportYear || year > MaxReportYear {
		return 0, 0, models.NewValidationError(MsgPeriodYear)
	}
	return year, time.Month(month), nil
}
