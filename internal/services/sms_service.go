package services

import (
	"errors"
	"os"
	"strings"

	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// ErrSMSNotConfigured is returned when Twilio credentials are missing
var ErrSMSNotConfigured = errors.New("twilio client not configured")

// SMSService wraps Twilio messaging for alert fan-out
type SMSService struct {
	client     *twilio.RestClient
	fromNumber string
}

// NewSMSService creates a Twilio-backed SMS sender. When credentials are
// missing the service is inert and Send returns ErrSMSNotConfigured.
func NewSMSService() *SMSService {
	accountSID := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	fromNumber := os.Getenv("TWILIO_FROM_NUMBER")

	if accountSID == "" || authToken == "" || fromNumber == "" {
		return &SMSService{}
	}

	return &SMSService{
		client:     twilio.NewRestClientWithParams(twilio.ClientParams{Username: accountSID, Password: authToken}),
		fromNumber: fromNumber,
	}
}

// Enabled reports whether Twilio credentials were provided
func (s *SMSService) Enabled() bool {
	return s.client != nil
}

// Send delivers an SMS to the given E.164 number
func (s *SMSService) Send(to, body string) error {
	if s.client == nil {
		return ErrSMSNotConfigured
	}

	recipient := strings.TrimSpace(to)
	if recipient == "" {
		return errors.New("recipient number missing")
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(recipient)
	params.SetFrom(s.fromNumber)
	params.SetBody(body)

	_, err := s.client.Api.CreateMessage(params)
	return err
}
