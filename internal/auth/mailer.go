package auth

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer sends magic link emails.
type Mailer struct {
	config Config
}

// NewMailer creates a mailer with the given config.
func NewMailer(config Config) *Mailer {
	return &Mailer{config: config}
}

// SendMagicLink sends a magic link email or logs it in dev mode.
// Returns the magic link URL (useful for dev mode logging by caller).
func (m *Mailer) SendMagicLink(email, token string) (string, error) {
	link := fmt.Sprintf("%s/auth/verify?token=%s", m.config.BaseURL, token)

	subject := "LocalHarvest Login Link"
	body := fmt.Sprintf(
		"Click the link below to log in to LocalHarvest:\n\n%s\n\nThis link expires in 15 minutes and can only be used once.",
		link,
	)

	if err := m.send(email, subject, body); err != nil {
		return "", err
	}

	return link, nil
}

// SendCLIMagicLink sends a magic link that redirects to /cli/auth/verify.
func (m *Mailer) SendCLIMagicLink(email, token string) (string, error) {
	link := fmt.Sprintf("%s/cli/auth/verify?token=%s", m.config.BaseURL, token)

	subject := "LocalHarvest CLI Login Link"
	body := fmt.Sprintf(
		"Click the link below to log in to the LocalHarvest CLI:\n\n%s\n\nThis link expires in 15 minutes and can only be used once.",
		link,
	)

	if err := m.send(email, subject, body); err != nil {
		return "", err
	}

	return link, nil
}

func (m *Mailer) send(to, subject, body string) error {
	if m.config.DevMode {
		fmt.Printf("[DEV] Mail to %s: %s\n", to, body)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.SMTPFrom)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.config.SMTPHost, m.config.SMTPPort, m.config.SMTPUser, m.config.SMTPPass)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
