package utils

import (
	"fmt"
	"net/smtp"
)

// SMTPMailer sends plain-text email over SMTP.
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Send delivers a plain-text message to a single recipient.
func (m SMTPMailer) Send(to, subject, body string) error {
	if m.Host == "" || m.Port == "" || m.Username == "" || m.Password == "" {
		return fmt.Errorf("smtp not configured")
	}

	addr := m.Host + ":" + m.Port
	header := m.From
	if header == "" {
		header = m.Username
	}

	msg := "From: " + header + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n" +
		body + "\r\n"

	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	// envelope sender must be a bare address; the display name stays in the header
	return smtp.SendMail(addr, auth, m.Username, []string{to}, []byte(msg))
}
