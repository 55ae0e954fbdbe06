package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-tuition/internal/reconciliation"
	"github.com/sjperalta/fintera-tuition/internal/services"
)

type ReconciliationHandler struct {
	reconciliationService *services.ReconciliationService
}

func NewReconciliationHandler(reconciliationService *services.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationService: reconciliationService}
}

// ReconciliationResponse is the reconciliation of one student. Month lists
// hold period names, or full period statuses with months=detail.
type ReconciliationResponse struct {
	StudentID           uint                               `json:"student_id"`
	AsOf                string                             `json:"as_of"`
	NoFeeStructure      bool                               `json:"no_fee_structure"`
	Policy              string                             `json:"policy,omitempty"`
	Periods             []reconciliation.PeriodStatus      `json:"periods"`
	PaidMonths          json.RawMessage                    `json:"paid_months" swaggertype:"array,string"`
	PartiallyPaidMonths json.RawMessage                    `json:"partially_paid_months" swaggertype:"array,string"`
	UnpaidMonths        json.RawMessage                    `json:"unpaid_months" swaggertype:"array,string"`
	Unassigned          []reconciliation.UnassignedPayment `json:"unassigned"`
	Balance             reconciliation.BalanceSummary      `json:"balance"`
	Summary             reconciliation.MonthSummary        `json:"summary"`
	Warnings            []reconciliation.Warning           `json:"warnings,omitempty"`
}

func newReconciliationResponse(studentID uint, asOf time.Time, result *reconciliation.Result, detailed bool) (*ReconciliationResponse, error) {
	resp := &ReconciliationResponse{
		StudentID:      studentID,
		AsOf:           asOf.Format(dateLayout),
		NoFeeStructure: result.NoFeeStructure,
		Policy:         result.Policy,
		Periods:        result.Periods,
		Unassigned:     result.Unassigned,
		Balance:        result.Balance,
		Summary:        result.Summary,
		Warnings:       result.Warnings,
	}
	lists := []struct {
		class reconciliation.Classification
		dst   *json.RawMessage
	}{
		{reconciliation.FullyPaid, &resp.PaidMonths},
		{reconciliation.PartiallyPaid, &resp.PartiallyPaidMonths},
		{reconciliation.Unpaid, &resp.UnpaidMonths},
	}
	for _, l := range lists {
		data, err := reconciliation.MarshalMonthEntries(result.MonthEntries(l.class, detailed))
		if err != nil {
			return nil, err
		}
		*l.dst = data
	}
	return resp, nil
}

// @Summary Student Reconciliation
// @Description Reconcile a student's payments against their fee structure
// @Tags Reconciliation
// @Produce json
// @Param student_id path int true "Student ID"
// @Param as_of query string false "Reconcile as of date (YYYY-MM-DD), defaults to today"
// @Param months query string false "Month list format" Enums(labels, detail) default(labels)
// @Success 200 {object} ReconciliationResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /students/{student_id}/reconciliation [get]
func (h *ReconciliationHandler) Show(c *gin.Context) {
	studentID, ok := paramID(c, "student_id")
	if !ok {
		return
	}
	asOf, ok := asOfDate(c)
	if !ok {
		return
	}

	var detailed bool
	switch c.DefaultQuery("months", "labels") {
	case "labels":
	case "detail":
		detailed = true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "months must be labels or detail"})
		return
	}

	result, err := h.reconciliationService.ReconcileStudent(c.Request.Context(), studentID, asOf)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := newReconciliationResponse(studentID, asOf, result, detailed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
