// Package validation holds the input rules for visit requests and admin accounts.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"kunjungan/internal/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

// MaxVisitors is the largest group accepted in one request.
const MaxVisitors = 1000

// Indonesian messages returned to the public form.
const (
	MsgRequired          = "Semua field wajib diisi"
	MsgInstitutionLength = "Nama institusi harus 2-255 karakter"
	MsgPurposeLength     = "Kebutuhan kunjungan minimal 10 karakter"
	MsgVisitorCount      = "Jumlah pengunjung harus berupa angka dan lebih dari 0."
	MsgVisitorMax        = "Jumlah pengunjung maksimal 1000 orang"
	MsgDateFormat        = "Format jadwal kunjungan tidak valid (YYYY-MM-DD)"
	MsgDateFuture        = "Jadwal kunjungan harus di masa mendatang"
	MsgDateWeekday       = "Harus hari kerja (Senin - Jumat)"
	MsgPhone             = "Nomor telepon tidak valid"
	MsgEmail             = "Format email tidak valid"
	MsgFileType          = "File pengantar harus berupa PDF"
)

var phonePattern = regexp.MustCompile(`^(\+62|62|0)8[1-9][0-9]{6,9}$`)

// VisitForm is the raw public submission before parsing.
type VisitForm struct {
	InstitutionName string `validate:"required,min=2,max=255"`
	Purpose         string `validate:"required,min=10"`
	VisitorCount    string `validate:"required,visitor_count,visitor_max"`
	ScheduledDate   string `validate:"required,date_layout,future_date,weekday"`
	Phone           string `validate:"required,id_phone"`
	Email           string `validate:"required,email,max=255"`
}

// messages maps field and failing tag to the user-facing message.
var messages = map[string]map[string]string{
	"InstitutionName": {"min": MsgInstitutionLength, "max": MsgInstitutionLength},
	"Purpose":         {"min": MsgPurposeLength},
	"VisitorCount":    {"visitor_count": MsgVisitorCount, "visitor_max": MsgVisitorMax},
	"ScheduledDate":   {"date_layout": MsgDateFormat, "future_date": MsgDateFuture, "weekday": MsgDateWeekday},
	"Phone":           {"id_phone": MsgPhone},
	"Email":           {"email": MsgEmail, "max": MsgEmail},
}

// IntakeValidator checks public submissions. The clock and location decide
// what "future" means.
type IntakeValidator struct {
	validate *validator.Validate
	loc      *time.Location
	now      func() time.Time
}

// NewIntakeValidator builds a validator judging dates in loc.
func NewIntakeValidator(loc *time.Location, now func() time.Time) *IntakeValidator {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	iv := &IntakeValidator{validate: validator.New(), loc: loc, now: now}

	mustRegister(iv.validate, "visitor_count", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Field().String())
		return err == nil && n > 0
	})
	mustRegister(iv.validate, "visitor_max", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Field().String())
		return err != nil || n <= MaxVisitors
	})
	mustRegister(iv.validate, "date_layout", func(fl validator.FieldLevel) bool {
		_, err := models.ParseDate(fl.Field().String())
		return err == nil
	})
	mustRegister(iv.validate, "future_date", func(fl validator.FieldLevel) bool {
		d, err := models.ParseDate(fl.Field().String())
		return err != nil || d.After(iv.today().Time)
	})
	mustRegister(iv.validate, "weekday", func(fl validator.FieldLevel) bool {
		d, err := models.ParseDate(fl.Field().String())
		if err != nil {
			return true
		}
		wd := d.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	})
	mustRegister(iv.validate, "id_phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	return iv
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// today is the current calendar date in the office time zone.
func (iv *IntakeValidator) today() models.Date {
	return models.NewDate(iv.now().In(iv.loc))
}

// Normalize trims every field and strips separators from the phone number.
func (f *VisitForm) Normalize() {
	f.InstitutionName = strings.TrimSpace(f.InstitutionName)
	f.Purpose = strings.TrimSpace(f.Purpose)
	f.VisitorCount = strings.TrimSpace(f.VisitorCount)
	f.ScheduledDate = strings.TrimSpace(f.ScheduledDate)
	f.Phone = strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(f.Phone))
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
}

// Validate normalizes the form and returns the parsed visit request, or a
// validation AppError carrying the first failing rule's message.
func (iv *IntakeValidator) Validate(form VisitForm) (*models.VisitRequest, error) {
	form.Normalize()

	if err := iv.validate.Struct(form); err != nil {
		return nil, models.NewValidationError(messageFor(err))
	}

	count, _ := strconv.Atoi(form.VisitorCount)
	date, _ := models.ParseDate(form.ScheduledDate)
	return &models.VisitRequest{
		InstitutionName: form.InstitutionName,
		Purpose:         form.Purpose,
		VisitorCount:    count,
		ScheduledDate:   date,
		Phone:           form.Phone,
		Email:           form.Email,
		Status:          models.VisitStatusPending,
	}, nil
}

func messageFor(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return MsgRequired
	}
	for _, fe := range errs {
		if fe.Tag() == "required" {
			return MsgRequired
		}
	}
	fe := errs[0]
	if msg, ok := messages[fe.Field()][fe.Tag()]; ok {
		return msg
	}
	return MsgRequired
}

// ValidateCoverLetter checks the size cap and that content is really a PDF.
// declaredType is the client-supplied content type and may be empty.
func ValidateCoverLetter(content []byte, declaredType string, maxBytes int64) error {
	if maxBytes > 0 && int64(len(content)) > maxBytes {
		return models.NewValidationError(fmt.Sprintf("Ukuran file maksimal %dMB", maxBytes/(1024*1024)))
	}
	if len(content) == 0 {
		return models.NewValidationError(MsgFileType)
	}

	declared := strings.ToLower(strings.TrimSpace(strings.SplitN(declaredType, ";", 2)[0]))
	if declared != "" && declared != "application/pdf" && declared != "application/octet-stream" {
		return models.NewValidationError(MsgFileType)
	}
	if !mimetype.Detect(content).Is("application/pdf") {
		return models.NewValidationError(MsgFileType)
	}
	return nil
}
