package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/sjperalta/fintera-tuition/internal/config"
	"github.com/sjperalta/fintera-tuition/internal/models"
	"github.com/sjperalta/fintera-tuition/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

// ErrEmailNotConfigured is returned when reminders cannot be delivered because
// the Resend API key is missing
var ErrEmailNotConfigured = errors.New("email is not configured: RESEND_API_KEY is not set")

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

// Configured reports whether emails can be delivered at all
func (s *EmailService) Configured() bool {
	return s.config.EnableEmailNotifications && s.config.ResendAPIKey != "" && s.config.FromEmail != ""
}

// checkEmailPreconditions returns false with a nil error when notifications
// are switched off, and an error when delivery is impossible
func (s *EmailService) checkEmailPreconditions(student *models.Student, operation string) (bool, error) {
	if !s.config.EnableEmailNotifications {
		logger.Debug("email notifications disabled", "operation", operation, "student_id", student.ID)
		return false, nil
	}
	if s.config.ResendAPIKey == "" {
		return false, ErrEmailNotConfigured
	}
	if s.config.FromEmail == "" {
		return false, errors.New("email is not configured: FROM_EMAIL is not set")
	}
	if student.GuardianEmail == "" {
		return false, errors.New("email address is empty")
	}
	return true, nil
}

type duesReminderData struct {
	SchoolName     string
	GuardianName   string
	StudentName    string
	ClassName      string
	AsOf           string
	DueAmount      string
	TotalExpected  string
	TotalPaid      string
	OverduePeriods []string
}

// SendDuesReminder emails the guardian of a student with outstanding fees.
// It reports false without error when notifications are off or not configured.
func (s *EmailService) SendDuesReminder(ctx context.Context, student *models.Student, dues *StudentDues, asOf time.Time) (bool, error) {
	ok, err := s.checkEmailPreconditions(student, "dues reminder")
	if errors.Is(err, ErrEmailNotConfigured) {
		logger.Warn("dues reminder skipped, email is not configured", "student_id", student.ID)
		return false, nil
	}
	if !ok {
		return false, err
	}

	guardian := student.GuardianName
	if guardian == "" {
		guardian = "Parent/Guardian"
	}
	data := duesReminderData{
		SchoolName:     s.config.SchoolName,
		GuardianName:   guardian,
		StudentName:    student.FullName,
		ClassName:      student.ClassName,
		AsOf:           asOf.Format("02 Jan 2006"),
		DueAmount:      dues.DueAmount.StringFixed(2),
		TotalExpected:  dues.TotalExpected.StringFixed(2),
		TotalPaid:      dues.TotalPaid.StringFixed(2),
		OverduePeriods: dues.OverduePeriods,
	}

	body, err := s.renderTemplate("dues_reminder.html", data)
	if err != nil {
		return false, err
	}

	subject := fmt.Sprintf("Outstanding fees for %s", student.FullName)
	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{student.GuardianEmail},
		Subject: subject,
		Html:    body,
	}
	if _, err := s.resendClient.Emails.Send(params); err != nil {
		logger.Error("failed to send dues reminder", "student_id", student.ID, "to", student.GuardianEmail, "error", err)
		return false, err
	}

	logger.Info("dues reminder sent", "student_id", student.ID, "to", student.GuardianEmail, "due", data.DueAmount)
	return true, nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
