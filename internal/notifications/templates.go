// Package notifications renders and delivers the visit request emails.
package notifications

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"kunjungan/internal/branding"
	"kunjungan/internal/locale"
	"kunjungan/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Template identifies one of the fixed email layouts.
type Template string

const (
	// TemplateConfirmation acknowledges a new submission.
	TemplateConfirmation Template = "confirmation"
	// TemplateApproved announces an approval.
	TemplateApproved Template = "approved"
	// TemplateRejected announces a rejection with its reason.
	TemplateRejected Template = "rejected"
)

func (t Template) file() string {
	return string(t) + ".html"
}

// Subject returns the email subject line for t.
func (t Template) Subject(p *branding.Profile) string {
	switch t {
	case TemplateApproved:
		return "✅ Pengajuan Kunjungan Disetujui - " + p.Secretariat
	case TemplateRejected:
		return "❌ Pengajuan Kunjungan Ditolak - " + p.Secretariat
	default:
		return "Konfirmasi Pengajuan Kunjungan - " + p.Secretariat
	}
}

// TemplateForStatus picks the notification for a status a visit moved into.
// Pending has no email.
func TemplateForStatus(s models.VisitStatus) (Template, bool) {
	switch s {
	case models.VisitStatusApproved:
		return TemplateApproved, true
	case models.VisitStatusRejected:
		return TemplateRejected, true
	}
	return "", false
}

// Message is a rendered email ready for a Mailer.
type Message struct {
	To      string
	Subject string
	HTML    string
}

type emailView struct {
	Profile     *branding.Profile
	Institution string
	Purpose     string
	Visitors    string
	Date        string
	Phone       string
	Reason      string
}

func newEmailView(p *branding.Profile, v *models.VisitRequest) emailView {
	view := emailView{
		Profile:     p,
		Institution: v.InstitutionName,
		Purpose:     v.Purpose,
		Visitors:    locale.Number(int64(v.VisitorCount)),
		Date:        locale.LongDateWithWeekday(v.ScheduledDate.Time),
		Phone:       v.Phone,
	}
	if v.RejectionReason != nil {
		view.Reason = *v.RejectionReason
	}
	return view
}

// Render builds the message for visit v. It has no side effects.
func Render(p *branding.Profile, t Template, v *models.VisitRequest) (Message, error) {
	if v == nil {
		return Message{}, fmt.Errorf("render %s: nil visit", t)
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, t.file(), newEmailView(p, v)); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", t, err)
	}
	return Message{
		To:      strings.TrimSpace(v.Email),
		Subject: t.Subject(p),
		HTML:    buf.String(),
	}, nil
}

// RenderConfirmation renders the submission acknowledgement.
func RenderConfirmation(p *branding.Profile, v *models.VisitRequest) (Message, error) {
	return Render(p, TemplateConfirmation, v)
}

// RenderApproved renders the approval notice.
func RenderApproved(p *branding.Profile, v *models.VisitRequest) (Message, error) {
	return Render(p, TemplateApproved, v)
}

// RenderRejected renders the rejection notice carrying reason.
func RenderRejected(p *branding.Profile, v *models.VisitRequest, reason string) (Message, error) {
	if v == nil {
		return Render(p, TemplateRejected, nil)
	}
	withReason := *v
	withReason.RejectionReason = &reason
	return Render(p, TemplateRejected, &withReason)
}
