package services

import (
	"time"

	"github.com/sjperalta/fintera-tuition/internal/config"
	"github.com/sjperalta/fintera-tuition/internal/jobs"
	"github.com/sjperalta/fintera-tuition/internal/reconciliation"
	"github.com/sjperalta/fintera-tuition/internal/repository"
)

// Services holds all service instances
type Services struct {
	Reconciliation *ReconciliationService
	Payment        *PaymentService
	Dues           *DuesService
	Audit          *AuditService
	Email          *EmailService
	Export         *ExportService
	Job            *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, engine *reconciliation.Engine, cfg *config.Config) *Services {
	auditSvc := NewAuditService(repos.Audit)
	emailSvc := NewEmailService(cfg)
	reconciliationSvc := NewReconciliationService(repos.Student, repos.FeeStructure, repos.Payment, engine, cfg.ReconciliationCacheTTL)

	// one reminder per guardian per interval, less an hour of scheduling slack
	cooldown := cfg.ReminderInterval - time.Hour
	if cooldown < 0 {
		cooldown = 0
	}
	duesSvc := NewDuesService(repos.Student, reconciliationSvc, emailSvc, worker, cooldown)

	return &Services{
		Reconciliation: reconciliationSvc,
		Payment:        NewPaymentService(repos.Payment, repos.Student, reconciliationSvc, auditSvc),
		Dues:           duesSvc,
		Audit:          auditSvc,
		Email:          emailSvc,
		Export:         NewExportService(),
		Job:            NewJobService(worker, duesSvc, reconciliationSvc),
	}
}
