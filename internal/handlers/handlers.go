package handlers

import (
	"github.com/sjperalta/fintera-tuition/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health         *HealthHandler
	Reconciliation *ReconciliationHandler
	Payment        *PaymentHandler
	Report         *ReportHandler
	Audit          *AuditHandler
	Job            *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, schoolName string) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(),
		Reconciliation: NewReconciliationHandler(svcs.Reconciliation),
		Payment:        NewPaymentHandler(svcs.Payment),
		Report:         NewReportHandler(svcs.Dues, svcs.Export, schoolName),
		Audit:          NewAuditHandler(svcs.Audit),
		Job:            NewJobHandler(svcs.Job),
	}
}
