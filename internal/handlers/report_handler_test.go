package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportHandler_DuesJSON(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodGet, "/reports/dues?as_of=2025-07-15", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AsOf     string `json:"as_of"`
		Status   string `json:"status"`
		Count    int    `json:"count"`
		TotalDue string `json:"total_due"`
		Students []struct {
			StudentID      uint     `json:"student_id"`
			OverduePeriods []string `json:"overdue_periods"`
		} `json:"students"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "2025-07-15", resp.AsOf)
	assert.Equal(t, "DUE", resp.Status)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "2000.00", resp.TotalDue)
	require.Len(t, resp.Students, 1)
	assert.Equal(t, uint(1), resp.Students[0].StudentID)
	assert.Equal(t, []string{"Ashadh"}, resp.Students[0].OverduePeriods)
}

func TestReportHandler_DuesFilters(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodGet, "/reports/dues?as_of=2025-07-15&status=all&class_name=5B", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.Contains(t, w.Body.String(), `"status":"ALL"`)

	w = s.do(http.MethodGet, "/reports/dues?status=OWING", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/reports/dues?format=docx", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandler_DuesDownloads(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		format      string
		contentType string
		magic       []byte
	}{
		{"csv", "text/csv", []byte("Roll No,Student")},
		{"xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", []byte("PK")},
		{"pdf", "application/pdf", []byte("%PDF")},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			w := s.do(http.MethodGet, "/reports/dues?as_of=2025-07-15&format="+tt.format, "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
			assert.Equal(t, "attachment; filename=dues_report_2025-07-15."+tt.format, w.Header().Get("Content-Disposition"))
			assert.True(t, bytes.HasPrefix(w.Body.Bytes(), tt.magic))
		})
	}
}
