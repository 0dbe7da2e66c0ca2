package services

import (
	"fmt"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type EmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	baseURL   string
}

func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	fromEmail := os.Getenv("SENDGRID_NOTIFICATIONS_FROM_EMAIL")
	fromName := os.Getenv("SENDGRID_FROM_NAME")
	baseURL := os.Getenv("APP_BASE_URL")

	client := sendgrid.NewSendClient(apiKey)

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		baseURL:   baseURL,
	}
}

func (s *EmailService) send(toEmail, toName, subject, plainContent, htmlContent string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainContent, htmlContent)

	response, err := s.client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email to %s: %d", toEmail, response.StatusCode)
	}
	return nil
}

// SendInvitationEmail sends a family invitation with an accept link
func (s *EmailService) SendInvitationEmail(toEmail, familyName, inviterName, token string) error {
	subject := fmt.Sprintf("%s invited you to join %s", inviterName, familyName)
	acceptURL := fmt.Sprintf("%s/families/accept/%s", s.baseURL, token)
	plainContent := fmt.Sprintf("%s has invited you to join the family '%s'. Accept here: %s", inviterName, familyName, acceptURL)
	htmlContent := fmt.Sprintf("<p>%s has invited you to join the family '<strong>%s</strong>'.</p><p><a href=\"%s\">Accept invitation</a></p>",
		inviterName, familyName, acceptURL)

	return s.send(toEmail, toEmail, subject, plainContent, htmlContent)
}

// SendAlarmEmail delivers a fired health-event reminder
func (s *EmailService) SendAlarmEmail(toEmail, toName, title, body string) error {
	subject := fmt.Sprintf("Reminder: %s", title)
	plainContent := fmt.Sprintf("Hello %s, %s", toName, body)
	htmlContent := fmt.Sprintf("<p>Hello %s,</p><p>%s</p>", toName, body)

	return s.send(toEmail, toName, subject, plainContent, htmlContent)
}

// SendAlertActivatedEmail notifies a family member that an alert went live
func (s *EmailService) SendAlertActivatedEmail(toEmail, toName, childName, details string) error {
	subject := fmt.Sprintf("URGENT: missing-child alert for %s", childName)
	plainContent := fmt.Sprintf("Hello %s, %s", toName, details)
	htmlContent := fmt.Sprintf("<p>Hello %s,</p><p><strong>%s</strong></p>", toName, details)

	return s.send(toEmail, toName, subject, plainContent, htmlContent)
}

// SendAlertResolvedEmail notifies a family member that the alert is resolved
func (s *EmailService) SendAlertResolvedEmail(toEmail, toName, childName string) error {
	subject := fmt.Sprintf("Resolved: %s has been found safe", childName)
	plainContent := fmt.Sprintf("Hello %s, %s has been found safe. The alert is now resolved.", toName, childName)
	htmlContent := fmt.Sprintf("<p>Hello %s,</p><p><strong>%s</strong> has been found safe. The alert is now resolved.</p>", toName, childName)

	return s.send(toEmail, toName, subject, plainContent, htmlContent)
}
