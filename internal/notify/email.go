package notify

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"brightlend/internal/models"
)

// ReminderMailer sends the email copy of a callback reminder to the staff
// member who scheduled it.
type ReminderMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewReminderMailer(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) *ReminderMailer {
	return &ReminderMailer{
		dialer: gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:   fromEmail,
	}
}

func (s *ReminderMailer) SendCallbackReminder(toEmail string, lead *models.Lead, cb *models.Callback) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Callback due: %s %s", lead.FirstName, lead.LastName))

	body := fmt.Sprintf(`
		<h3>Callback reminder</h3>
		<p><strong>%s %s</strong> (%s lead) is due for a follow-up.</p>
		<p>Scheduled for: %s</p>
		<p>Note: %s</p>
		<p>Phone: %s &mdash; Email: %s</p>
	`, lead.FirstName, lead.LastName, lead.Origin,
		cb.ScheduledFor.Format(time.RFC1123), cb.Note, lead.Phone, lead.Email)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send callback reminder: %w", err)
	}
	return nil
}
