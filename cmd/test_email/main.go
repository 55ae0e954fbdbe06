package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-tuition/internal/config"
	"github.com/sjperalta/fintera-tuition/internal/models"
	"github.com/sjperalta/fintera-tuition/internal/reconciliation"
	"github.com/sjperalta/fintera-tuition/internal/services"
	"github.com/sjperalta/fintera-tuition/pkg/logger"
)

// Sends a sample dues reminder so the Resend setup and template can be checked
func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Setup("development")

	if cfg.ResendAPIKey == "" {
		log.Fatal("RESEND_API_KEY is not set")
	}
	cfg.EnableEmailNotifications = true

	emailService := services.NewEmailService(cfg)

	toEmail := os.Getenv("TEST_EMAIL_TO")
	if toEmail == "" {
		toEmail = "test@example.com"
		log.Println("TEST_EMAIL_TO not set, using test@example.com. Emails might fail if the domain is not verified.")
	}

	student := &models.Student{
		ID:            1,
		FullName:      "Test Student",
		ClassName:     "5A",
		GuardianName:  "Test Guardian",
		GuardianEmail: toEmail,
	}
	dues := &services.StudentDues{
		StudentID:      student.ID,
		FullName:       student.FullName,
		Status:         reconciliation.BalanceDue,
		TotalExpected:  decimal.NewFromInt(4000),
		TotalPaid:      decimal.NewFromInt(2000),
		DueAmount:      decimal.NewFromInt(2000),
		OverduePeriods: []string{"Ashadh"},
		MonthsOverdue:  1,
	}

	log.Printf("Sending dues reminder to %s...", toEmail)
	sent, err := emailService.SendDuesReminder(context.Background(), student, dues, time.Now())
	if err != nil {
		log.Fatalf("Failed to send dues reminder: %v", err)
	}
	if !sent {
		log.Fatal("Dues reminder was skipped, check FROM_EMAIL")
	}
	log.Println("Dues reminder sent successfully!")
}
