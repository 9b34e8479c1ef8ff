package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"journal-backend/internal/domain"
	"journal-backend/internal/logger"
)

//go:embed templates/mail/*.html templates/mail/*.txt
var mailTemplates embed.FS

// sendFunc delivers a composed message and returns the provider status code and body.
type sendFunc func(msg *mail.SGMailV3) (int, string, error)

type emailService struct {
	fromEmail string
	fromName  string
	html      *htmltemplate.Template
	text      *texttemplate.Template
	send      sendFunc
}

func NewEmailService(apiKey, fromEmail, fromName string) (EmailService, error) {
	client := sendgrid.NewSendClient(apiKey)
	svc, err := newEmailService(fromEmail, fromName, func(msg *mail.SGMailV3) (int, string, error) {
		resp, err := client.Send(msg)
		if err != nil {
			return 0, "", err
		}
		return resp.StatusCode, resp.Body, nil
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func newEmailService(fromEmail, fromName string, send sendFunc) (*emailService, error) {
	html, err := htmltemplate.ParseFS(mailTemplates, "templates/mail/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse html mail templates: %w", err)
	}
	text, err := texttemplate.ParseFS(mailTemplates, "templates/mail/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse text mail templates: %w", err)
	}
	return &emailService{fromEmail: fromEmail, fromName: fromName, html: html, text: text, send: send}, nil
}

// render returns the plain text and html bodies of m.
func (s *emailService) render(m *domain.Mail) (string, string, error) {
	var text, html bytes.Buffer
	if err := s.text.ExecuteTemplate(&text, m.Template+".txt", m.Data); err != nil {
		return "", "", fmt.Errorf("render %s text: %w", m.Template, err)
	}
	if err := s.html.ExecuteTemplate(&html, m.Template+".html", m.Data); err != nil {
		return "", "", fmt.Errorf("render %s html: %w", m.Template, err)
	}
	return text.String(), html.String(), nil
}

func (s *emailService) Send(ctx context.Context, m *domain.Mail) error {
	plainText, htmlContent, err := s.render(m)
	if err != nil {
		return err
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(m.ToName, m.To)
	message := mail.NewSingleEmail(from, m.Subject, recipient, plainText, htmlContent)

	logger.ExternalServiceCall("sendgrid", "Send", "to", m.To, "template", m.Template)
	status, body, err := s.send(message)
	if err == nil && status >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", status, body)
	}
	logger.ExternalServiceResult("sendgrid", "Send", err, "status", status)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
