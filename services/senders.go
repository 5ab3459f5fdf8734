package services

import (
	"fmt"

	"comptapilot-backend/config"

	log "github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	gomail "gopkg.in/gomail.v2"
)

// EmailSender delivers one rendered message to one address.
type EmailSender interface {
	Send(to, subject, body string) error
}

// SMSSender delivers one rendered message to one internationally formatted
// phone number.
type SMSSender interface {
	Send(to, body string) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.EmailAddress, cfg.EmailPassword),
		from:   cfg.EmailAddress,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", to, err)
	}
	return nil
}

type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(cfg *config.Config) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		}),
		from: cfg.TwilioPhoneNumber,
	}
}

func (s *TwilioSender) Send(to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s failed: %w", to, err)
	}
	if resp.Sid != nil {
		log.WithFields(log.Fields{"to": to, "sid": *resp.Sid}).Info("SMS sent")
	} else {
		log.WithField("to", to).Info("SMS sent, no SID returned")
	}
	return nil
}
