package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/fleuri/fleuri-api/internal/config"
	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/fleuri/fleuri-api/pkg/logger"
	"github.com/resend/resend-go/v2"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
}

func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:       cfg,
		resendClient: client,
	}
}

func (s *EmailService) SendRecoveryCode(ctx context.Context, user *models.User, code string) error {
	data := struct {
		Name    string
		Code    string
		Minutes int
	}{
		Name:    user.FullName,
		Code:    code,
		Minutes: 15,
	}

	return s.send(user.Email, "Your Fleuri reset code", "reset_code.html", data)
}

func (s *EmailService) SendAccountCreated(ctx context.Context, user *models.User) error {
	data := struct {
		Name   string
		AppURL string
	}{
		Name:   user.FullName,
		AppURL: "https://app.fleuri.app",
	}

	return s.send(user.Email, "Welcome to Fleuri!", "account_created.html", data)
}

// SendCommissionDecision notifies the requesting admin of the outcome of
// a commission rate change request
func (s *EmailService) SendCommissionDecision(ctx context.Context, user *models.User, change *models.CommissionRateChange) error {
	data := struct {
		Name        string
		ChangeID    uint
		Status      string
		PctBps      int
		EffectiveAt string
		AppURL      string
	}{
		Name:        user.FullName,
		ChangeID:    change.ID,
		Status:      change.Status,
		PctBps:      change.PctBps,
		EffectiveAt: change.EffectiveAt.Format("2006-01-02"),
		AppURL:      "https://app.fleuri.app",
	}

	subject := fmt.Sprintf("Commission change #%d %s", change.ID, change.Status)
	return s.send(user.Email, subject, "commission_decision.html", data)
}

func (s *EmailService) send(to, subject, tmpl string, data interface{}) error {
	// Resend disabled (e.g. development without an API key): log and move on
	if s.config.ResendAPIKey == "" {
		logger.Info(fmt.Sprintf("[Email Skipped] To: %s | Subject: %s", to, subject))
		return nil
	}

	body, err := s.renderTemplate(tmpl, data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	if _, err := s.resendClient.Emails.Send(params); err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", to, err))
		return err
	}

	logger.Info(fmt.Sprintf("[Email Sent] To: %s | Subject: %s", to, subject))
	return nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}

	return buf.String(), nil
}
