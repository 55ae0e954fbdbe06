package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/sjperalta/fintera-tuition/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentHandler_Create(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodPost, "/students/1/payments",
		`{"payment": {"amount": "1000.00", "payment_date": "2025-06-12", "period": "Ashadh", "reference": "RCPT-77"}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.PaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.PaymentStatusPaid, resp.Status)
	assert.Equal(t, "RCPT-77", resp.Reference)

	require.Len(t, s.audits.entries, 1)
	assert.Equal(t, uint(7), s.audits.entries[0].UserID)

	// the next reconciliation sees the new payment
	w = s.do(http.MethodGet, "/students/1/reconciliation?as_of=2025-07-15", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"paid_months":["Baisakh","Jestha","Ashadh"]`)
}

func TestPaymentHandler_CreateFlatBody(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodPost, "/students/1/payments",
		`{"amount": 250, "payment_date": "2025-06-12", "status": "partially_paid", "period": "Ashadh"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"PARTIALLY_PAID"`)
}

func TestPaymentHandler_CreateErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"missing date", "/students/1/payments", `{"amount": "10"}`, http.StatusBadRequest},
		{"bad date", "/students/1/payments", `{"amount": "10", "payment_date": "12/06/2025"}`, http.StatusBadRequest},
		{"empty body", "/students/1/payments", "", http.StatusBadRequest},
		{"zero amount", "/students/1/payments", `{"amount": "0", "payment_date": "2025-06-12"}`, http.StatusBadRequest},
		{"unknown period", "/students/1/payments", `{"amount": "10", "payment_date": "2025-06-12", "period": "Term 1"}`, http.StatusBadRequest},
		{"unknown student", "/students/404/payments", `{"amount": "10", "payment_date": "2025-06-12"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			w := s.do(http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Empty(t, s.audits.entries)
		})
	}
}

func TestPaymentHandler_Void(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodPost, "/payments/1/void", `{"reason": "cheque bounced"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"VOIDED"`)

	w = s.do(http.MethodPost, "/payments/1/void", `{"void": {"reason": "again"}}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/payments/2/void", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/payments/99/void", `{"reason": "typo"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentHandler_IndexByStudent(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodGet, "/students/1/payments", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Payments []models.PaymentResponse `json:"payments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Payments, 2)

	w = s.do(http.MethodGet, "/students/2/payments", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"payments": []}`, w.Body.String())
}

func TestPaymentHandler_Index(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodGet, "/payments?status=paid&period=Jestha&sort=payment_date-desc&per_page=500", "")
	require.Equal(t, http.StatusOK, w.Code)

	query := s.payments.lastList
	require.NotNil(t, query)
	assert.Equal(t, "PAID", query.Filters["status"])
	assert.Equal(t, "Jestha", query.Filters["period_tag"])
	assert.Equal(t, "payment_date", query.SortBy)
	assert.Equal(t, "desc", query.SortDir)
	assert.Equal(t, 20, query.PerPage, "oversized pages fall back to the default")

	var resp struct {
		Pagination struct {
			Total      int64 `json:"total"`
			TotalPages int64 `json:"total_pages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Pagination.Total)
	assert.Equal(t, int64(1), resp.Pagination.TotalPages)
}
