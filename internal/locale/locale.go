// Package locale formats dates and numbers for Indonesian readers.
package locale

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

var weekdayNames = [...]string{
	"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu",
}

var printer = message.NewPrinter(language.Indonesian)

// MonthName returns the Indonesian month name, or "" for values outside 1..12.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// WeekdayName returns the Indonesian weekday name.
func WeekdayName(d time.Weekday) string {
	return weekdayNames[d]
}

// ShortDate renders d/m/yyyy.
func ShortDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}

// LongDate renders "14 Oktober 2025".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), MonthName(t.Month()), t.Year())
}

// LongDateWithWeekday renders "Selasa, 14 Oktober 2025".
func LongDateWithWeekday(t time.Time) string {
	return WeekdayName(t.Weekday()) + ", " + LongDate(t)
}

// MonthYear renders "Oktober 2025".
func MonthYear(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", MonthName(month), year)
}

// Number groups digits the Indonesian way: 1.234.567.
func Number(n int64) string {
	return printer.Sprintf("%d", n)
}

// PeriodLabel renders "Oktober 2025 (3 kunjungan)".
func PeriodLabel(year int, month time.Month, count int64) string {
	return fmt.Sprintf("%s (%s kunjungan)", MonthYear(year, month), Number(count))
}
