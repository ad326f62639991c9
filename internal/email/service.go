package email

import (
	"context"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/medconnect-api/internal/config"
	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
)

type Service interface {
	SendPasswordReset(ctx context.Context, email string, code string) error
	SendWelcome(ctx context.Context, email string, name string) error
	SendAppointmentBooked(ctx context.Context, apt *model.Appointment) error
	SendAppointmentCancelled(ctx context.Context, apt *model.Appointment) error
	SendContactReceived(ctx context.Context, contact *model.Contact) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

// NewService returns an SMTP mailer when credentials are configured and a
// logging mailer otherwise.
func NewService(cfg config.EmailConfig, logger *logger.Logger) Service {
	var sender sender
	if cfg.User != "" && cfg.Password != "" {
		sender = &smtpSender{
			dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
			from:   cfg.From,
		}
	} else {
		sender = &logSender{logger: logger}
	}
	return &service{sender: sender, support: cfg.SupportEmail}
}

type sender interface {
	send(ctx context.Context, to, subject, body string) error
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

func (s *smtpSender) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

type logSender struct {
	logger *logger.Logger
}

func (s *logSender) send(ctx context.Context, to, subject, _ string) error {
	s.logger.WithContext(ctx).Info("email delivery disabled, message logged only", "to", to, "subject", subject)
	return nil
}

type service struct {
	sender  sender
	support string
}

func (s *service) SendPasswordReset(ctx context.Context, email string, code string) error {
	body := fmt.Sprintf(`<p>Your MedConnect password reset code is <b>%s</b>.</p>
<p>The code expires in 10 minutes. If you did not request a reset, ignore this email.</p>`, code)
	return s.sender.send(ctx, email, "Password reset code", body)
}

func (s *service) SendWelcome(ctx context.Context, email string, name string) error {
	body := fmt.Sprintf("<p>Welcome to MedConnect, %s.</p>", html.EscapeString(name))
	return s.sender.send(ctx, email, "Welcome to MedConnect", body)
}

func (s *service) SendAppointmentBooked(ctx context.Context, apt *model.Appointment) error {
	if apt.PatientEmail == "" {
		return nil
	}
	body := fmt.Sprintf(`<p>Hello %s,</p>
<p>Your appointment with %s on %s at %s is booked and awaiting confirmation.</p>`,
		html.EscapeString(apt.PatientName), html.EscapeString(apt.DoctorName), apt.SlotDate, apt.SlotTime)
	return s.sender.send(ctx, apt.PatientEmail, "Appointment booked", body)
}

func (s *service) SendAppointmentCancelled(ctx context.Context, apt *model.Appointment) error {
	if apt.PatientEmail == "" {
		return nil
	}
	body := fmt.Sprintf(`<p>Hello %s,</p>
<p>Your appointment with %s on %s at %s was cancelled.</p>`,
		html.EscapeString(apt.PatientName), html.EscapeString(apt.DoctorName), apt.SlotDate, apt.SlotTime)
	if apt.PaymentStatus == model.PaymentStatusRefunded {
		body += fmt.Sprintf("<p>A refund of %.2f has been issued.</p>", apt.RefundAmount)
	}
	return s.sender.send(ctx, apt.PatientEmail, "Appointment cancelled", body)
}

func (s *service) SendContactReceived(ctx context.Context, contact *model.Contact) error {
	if s.support == "" {
		return nil
	}
	body := fmt.Sprintf(`<p>From: %s &lt;%s&gt; %s</p><p>Subject: %s</p><p>%s</p>`,
		html.EscapeString(contact.Name), html.EscapeString(contact.Email), html.EscapeString(contact.Phone),
		html.EscapeString(contact.Subject), html.EscapeString(contact.Message))
	return s.sender.send(ctx, s.support, "New contact form submission", body)
}

func (s *service) SendCustom(ctx context.Context, to string, subject string, content string) error {
	return s.sender.send(ctx, to, subject, content)
}
