package notify

import (
	"gopkg.in/gomail.v2"

	"github.com/TaniaLee11/opsflow-circle-sub004/internal/config"
)

type mailSender interface {
	Send(to, subject, body string) error
}

type smtpSender struct {
	dialer   *gomail.Dialer
	fromAddr string
	fromName string
}

// newSMTPSender returns nil when no SMTP host is configured.
func newSMTPSender(cfg config.NotificationConfig) mailSender {
	if cfg.SMTPHost == "" {
		return nil
	}
	return &smtpSender{
		dialer:   gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		fromAddr: cfg.EmailFrom,
		fromName: cfg.EmailFromName,
	}
}

func (s *smtpSender) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", s.fromAddr, s.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return s.dialer.DialAndSend(msg)
}
