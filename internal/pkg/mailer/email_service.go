package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendMagicLink(toEmail, token string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	clientURL   string
}

func NewEmailService(host string, port int, username, password, senderEmail, clientURL string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		clientURL:   clientURL,
	}
}

func (s *emailService) SendMagicLink(toEmail, token string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your sign-in link")

	// The link points to the FRONTEND, which exchanges the token via /auth/verify
	signInLink := fmt.Sprintf("%s/auth/callback?token=%s", s.clientURL, token)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Sign in to Squish</h2>
			<p>Click the button below to start meditating:</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Sign In</a>
			<p>Or copy this link:</p>
			<p>%s</p>
			<p>This link will expire in 15 minutes and can be used once.</p>
			<p>If you didn't request this, please ignore this email.</p>
		</div>
	`, signInLink, signInLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send magic link to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Magic link sent to %s\n", toEmail)
	return nil
}
