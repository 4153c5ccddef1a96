package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendReportReady(toEmail, fullName, requestId string) error
	SendReportFailed(toEmail, fullName, reason string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	clientURL   string
}

func NewEmailService(host string, port int, username, password, senderName, clientURL string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: username,
		senderName:  senderName,
		clientURL:   clientURL,
	}
}

func (s *emailService) SendReportReady(toEmail, fullName, requestId string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your development blueprint is ready")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hi %s,</h2>
			<p>Your personal development blueprint has finished generating.</p>
			<p><a href="%s/report/%s" style="color: #4CAF50;">View your blueprint</a></p>
			<p>If you didn't request this, please ignore this email.</p>
		</div>
	`, fullName, s.clientURL, requestId)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send report-ready mail: %w", err)
	}
	return nil
}

func (s *emailService) SendReportFailed(toEmail, fullName, reason string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "We couldn't generate your blueprint")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hi %s,</h2>
			<p>Unfortunately your blueprint generation did not complete.</p>
			<p>Reason: <b>%s</b></p>
			<p>You can submit a new request at any time.</p>
		</div>
	`, fullName, reason)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send report-failed mail: %w", err)
	}
	return nil
}
