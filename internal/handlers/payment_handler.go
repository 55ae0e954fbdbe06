package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-tuition/internal/middleware"
	"github.com/sjperalta/fintera-tuition/internal/models"
	"github.com/sjperalta/fintera-tuition/internal/repository"
	"github.com/sjperalta/fintera-tuition/internal/services"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// RecordPaymentRequest is the body of a new payment
type RecordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"900.00"`
	PaymentDate string          `json:"payment_date" binding:"required" example:"2025-04-10"`
	Period      string          `json:"period" example:"Baisakh"`
	Status      string          `json:"status" example:"PAID"`
	Reference   string          `json:"reference" example:"RCPT-2025-0001"`
	Note        string          `json:"note"`
}

// VoidPaymentRequest is the body of a void
type VoidPaymentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func paymentResponses(payments []models.Payment) []models.PaymentResponse {
	responses := make([]models.PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, payments[i].ToResponse())
	}
	return responses
}

// @Summary List Payments
// @Description Get a paginated list of payments across students
// @Tags Payments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param student_id query int false "Filter by student"
// @Param status query string false "Filter by status"
// @Param period query string false "Filter by period tag"
// @Param start_date query string false "Paid on or after (YYYY-MM-DD)"
// @Param end_date query string false "Paid on or before (YYYY-MM-DD)"
// @Param search query string false "Search by reference"
// @Param sort query string false "Sort as field-direction, e.g. payment_date-desc"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /payments [get]
func (h *PaymentHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PerPage < 1 || query.PerPage > 200 {
		query.PerPage = 20
	}
	query.Filters["student_id"] = c.Query("student_id")
	query.Filters["status"] = strings.ToUpper(c.Query("status"))
	query.Filters["period_tag"] = c.Query("period")
	query.Filters["start_date"] = c.Query("start_date")
	query.Filters["end_date"] = c.Query("end_date")
	query.Search = c.Query("search")

	// Parse sort parameter (format: field-direction)
	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	payments, total, err := h.paymentService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": paymentResponses(payments),
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Student Payments
// @Description Get the full payment history of a student, voided payments included
// @Tags Payments
// @Produce json
// @Param student_id path int true "Student ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /students/{student_id}/payments [get]
func (h *PaymentHandler) IndexByStudent(c *gin.Context) {
	studentID, ok := paramID(c, "student_id")
	if !ok {
		return
	}

	payments, err := h.paymentService.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": paymentResponses(payments)})
}

// @Summary Record Payment
// @Description Record a payment for a student. The body may be flat or wrapped as {"payment": {...}}.
// @Tags Payments
// @Accept json
// @Produce json
// @Param student_id path int true "Student ID"
// @Param payment body RecordPaymentRequest true "Payment"
// @Success 201 {object} models.PaymentResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /students/{student_id}/payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	studentID, ok := paramID(c, "student_id")
	if !ok {
		return
	}

	var req RecordPaymentRequest
	if err := BindNestedOrFlat(c, "payment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	paymentDate, err := time.Parse(dateLayout, req.PaymentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_date must be a date in YYYY-MM-DD format"})
		return
	}

	payment, err := h.paymentService.Record(c.Request.Context(), services.RecordPaymentInput{
		StudentID:   studentID,
		Amount:      req.Amount,
		PaymentDate: paymentDate,
		Status:      strings.ToUpper(strings.TrimSpace(req.Status)),
		Period:      req.Period,
		Reference:   req.Reference,
		Note:        req.Note,
	}, middleware.GetAuditContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment.ToResponse())
}

// @Summary Void Payment
// @Description Cancel a recorded payment so it no longer counts toward any balance
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Param void body VoidPaymentRequest true "Reason"
// @Success 200 {object} models.PaymentResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id}/void [post]
func (h *PaymentHandler) Void(c *gin.Context) {
	paymentID, ok := paramID(c, "payment_id")
	if !ok {
		return
	}

	var req VoidPaymentRequest
	if err := BindNestedOrFlat(c, "void", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.paymentService.Void(c.Request.Context(), paymentID, req.Reason, middleware.GetAuditContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment.ToResponse())
}
