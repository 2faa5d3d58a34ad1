package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	appconfig "techstore-server/internal/config"
	"techstore-server/internal/interfaces"

	"go.uber.org/zap"
)

var _ interfaces.MailSender = (*smtpSender)(nil)

// smtpSender delivers mail over plain SMTP with optional AUTH PLAIN.
type smtpSender struct {
	addr   string
	host   string
	from   string
	auth   smtp.Auth
	logger *zap.Logger
}

// NewSMTPSender builds a MailSender from config.
func NewSMTPSender(cfg *appconfig.Config, logger *zap.Logger) interfaces.MailSender {
	s := &smtpSender{
		addr:   fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		host:   cfg.SMTPHost,
		from:   cfg.SMTPFrom,
		logger: logger.Named("SMTPSender"),
	}
	if cfg.SMTPUsername != "" && cfg.SMTPPassword != "" {
		s.auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return s
}

// Send delivers a single HTML email. Callers treat failure as non-fatal.
func (s *smtpSender) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("no recipient specified")
	}

	var msg strings.Builder
	msg.WriteString("From: " + s.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")

	s.logger.Debug("Sending email", zap.String("to", to), zap.String("subject", subject))
	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg.String())); err != nil {
		s.logger.Error("Failed to send email", zap.Error(err), zap.String("to", to))
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	s.logger.Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
