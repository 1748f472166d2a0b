package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"kunjungan/internal/config"
	"kunjungan/internal/middleware"
)

// ErrTransportNotConfigured is reported by the no-op mailer.
var ErrTransportNotConfigured = errors.New("email transport not configured")

const (
	gmailHost = "smtp.gmail.com"
	gmailPort = 587
	sslPort   = 465
)

// Result is the outcome of one delivery attempt. Delivery failures are
// reported here rather than returned as errors.
type Result struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

func failed(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

// Mailer delivers a rendered message.
type Mailer interface {
	Send(ctx context.Context, msg Message) Result
}

// SMTPSettings configures an SMTPMailer.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SettingsFromConfig resolves the SMTP transport, applying the gmail preset
// when EMAIL_SERVICE=gmail and no host is given.
func SettingsFromConfig(cfg *config.Config) SMTPSettings {
	s := SMTPSettings{
		Host:     cfg.EmailHost,
		Port:     cfg.EmailPort,
		Username: cfg.EmailUser,
		Password: cfg.EmailPassword,
		From:     cfg.SenderAddress(),
		Timeout:  cfg.EmailSendTimeout(),
	}
	if cfg.EmailService == "gmail" && s.Host == "" {
		s.Host = gmailHost
		s.Port = gmailPort
	}
	if s.Port == 0 {
		s.Port = gmailPort
	}
	return s
}

// Configured reports whether enough is known to reach a server.
func (s SMTPSettings) Configured() bool {
	return s.Host != "" && s.Username != ""
}

// SMTPMailer sends through an SMTP relay. Port 465 uses implicit TLS and
// every other port requires STARTTLS.
type SMTPMailer struct {
	settings SMTPSettings
	client   *mail.Client
}

// NewSMTPMailer builds the shared SMTP client.
func NewSMTPMailer(s SMTPSettings) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(s.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.Username),
		mail.WithPassword(s.Password),
	}
	if s.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.Timeout))
	}
	if s.Port == sslPort {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(s.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTPMailer{settings: s, client: client}, nil
}

func (m *SMTPMailer) buildMessage(msg Message) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.From(m.settings.From); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetDate()
	out.SetMessageID()
	out.SetBodyString(mail.TypeTextHTML, msg.HTML)
	return out, nil
}

// Send implements Mailer.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) Result {
	if strings.TrimSpace(msg.To) == "" {
		return failed(errors.New("recipient is empty"))
	}
	out, err := m.buildMessage(msg)
	if err != nil {
		return failed(err)
	}
	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return failed(fmt.Errorf("send email: %w", err))
	}

	var id string
	if ids := out.GetGenHeader(mail.HeaderMessageID); len(ids) > 0 {
		id = ids[0]
	}
	return Result{Success: true, MessageID: id}
}

type noopMailer struct{}

func (noopMailer) Send(ctx context.Context, msg Message) Result {
	middleware.Logger.DebugContext(ctx, "Email transport not configured, message dropped",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return failed(ErrTransportNotConfigured)
}

// NewMailer returns the SMTP mailer, or a no-op mailer when EMAIL_HOST or
// EMAIL_USER are unset.
func NewMailer(cfg *config.Config) (Mailer, error) {
	s := SettingsFromConfig(cfg)
	if !s.Configured() {
		middleware.Logger.Warn("Email transport not configured, notifications are disabled")
		return noopMailer{}, nil
	}
	return NewSMTPMailer(s)
}
