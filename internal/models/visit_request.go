package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// VisitStatus defines lifecycle states for a visit request.
type VisitStatus string

const (
	// VisitStatusPending indicates the request is awaiting review.
	VisitStatusPending VisitStatus = "pending"
	// VisitStatusApproved indicates the request was accepted.
	VisitStatusApproved VisitStatus = "approved"
	// VisitStatusRejected indicates the request was denied.
	VisitStatusRejected VisitStatus = "rejected"
)

// Valid reports whether s is one of the three known states.
func (s VisitStatus) Valid() bool {
	switch s {
	case VisitStatusPending, VisitStatusApproved, VisitStatusRejected:
		return true
	}
	return false
}

// Label returns the Indonesian display label used in responses.
func (s VisitStatus) Label() string {
	switch s {
	case VisitStatusApproved:
		return "Disetujui"
	case VisitStatusRejected:
		return "Ditolak"
	default:
		return "Menunggu"
	}
}

// DateLayout is the wire and storage layout of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day, kept at UTC midnight.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in t's location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD" and RFC 3339 timestamps.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	if parsed, err := ParseDate(s); err == nil {
		*d = parsed
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	*d = NewDate(t)
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = NewDate(v)
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
	return nil
}

func (d *Date) scanString(s string) error {
	if len(s) < len(DateLayout) {
		return fmt.Errorf("invalid date %q", s)
	}
	parsed, err := ParseDate(s[:len(DateLayout)])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GormDataType keeps the column a plain date on every dialect.
func (Date) GormDataType() string {
	return "date"
}

// VisitRequest is one submitted application to visit the office.
type VisitRequest struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	InstitutionName string      `gorm:"column:nama_institusi;size:255;not null" json:"nama_institusi"`
	Purpose         string      `gorm:"column:kebutuhan_kunjungan;type:text;not null" json:"kebutuhan_kunjungan"`
	VisitorCount    int         `gorm:"column:jumlah_pengunjung;not null" json:"jumlah_pengunjung"`
	ScheduledDate   Date        `gorm:"column:jadwal_kunjungan;not null;index" json:"jadwal_kunjungan"`
	Phone           string      `gorm:"column:nomor_telepon;size:20;not null" json:"nomor_telepon"`
	Email           string      `gorm:"column:email;size:255;not null" json:"email"`
	CoverLetterFile *string     `gorm:"column:file_pengantar;size:255" json:"file_pengantar"`
	Status          VisitStatus `gorm:"column:status;type:varchar(20);not null;default:'pending';index" json:"status"`
	RejectionReason *string     `gorm:"column:rejection_reason;type:text" json:"rejection_reason"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// TableName keeps the table name used by the existing deployment.
func (VisitRequest) TableName() string {
	return "kunjungan"
}

// HasCoverLetter reports whether a stored document is attached.
func (v *VisitRequest) HasCoverLetter() bool {
	return v.CoverLetterFile != nil && *v.CoverLetterFile != ""
}

// StatusChange is the admin-supplied target of a status transition.
type StatusChange struct {
	Status          VisitStatus
	RejectionReason string
}

// MsgVisitNotFound is returned for unknown visit request ids.
const MsgVisitNotFound = "Data kunjungan tidak ditemukan"
