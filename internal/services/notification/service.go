// Package notification delivers best-effort operations alerts.
package notification

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/smtp"

	"donare/internal/config"
	errs "donare/internal/errors"
)

// Service sends alert mail to the operations address. With no SMTP host
// configured it degrades to logging, which keeps alert failures non-fatal
// in every environment.
type Service struct {
	cfg config.AlertConfig
}

// NewService creates a new notification service.
func NewService(cfg config.AlertConfig) *Service {
	return &Service{cfg: cfg}
}

// Alert emails the operations address with the raw error text. Failure to
// send is reported to the caller but is never fatal to the surfaced error.
func (s *Service) Alert(ctx context.Context, subject, body string) error {
	if s.cfg.SMTPHost == "" {
		log.Printf("ops alert (mail disabled): %s: %s", subject, body)
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.cfg.From, s.cfg.To, subject, body)

	addr := net.JoinHostPort(s.cfg.SMTPHost, s.cfg.SMTPPort)
	if err := smtp.SendMail(addr, nil, s.cfg.From, []string{s.cfg.To}, []byte(msg)); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrNotificationFailed, err)
	}
	return nil
}
