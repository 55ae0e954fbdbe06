package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-tuition/internal/services"
)

type ReportHandler struct {
	duesService   *services.DuesService
	exportService *services.ExportService
	schoolName    string
}

func NewReportHandler(duesService *services.DuesService, exportService *services.ExportService, schoolName string) *ReportHandler {
	return &ReportHandler{duesService: duesService, exportService: exportService, schoolName: schoolName}
}

var exportContentTypes = map[string]string{
	"csv":  "text/csv",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"pdf":  "application/pdf",
}

// @Summary Dues Report
// @Description List active students by balance status, largest amount due first, as JSON or as a CSV, XLSX or PDF download
// @Tags Reports
// @Produce json
// @Produce octet-stream
// @Param as_of query string false "Reconcile as of date (YYYY-MM-DD), defaults to today"
// @Param status query string false "Balance status" Enums(DUE, CLEARED, PREPAID, ALL) default(DUE)
// @Param class_name query string false "Only students of this class"
// @Param overdue_only query bool false "Only students with overdue months"
// @Param format query string false "Output format" Enums(json, csv, xlsx, pdf) default(json)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /reports/dues [get]
func (h *ReportHandler) Dues(c *gin.Context) {
	asOf, ok := asOfDate(c)
	if !ok {
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	if _, known := exportContentTypes[format]; !known && format != "json" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid format (json, csv, xlsx, pdf)"})
		return
	}

	filter := services.DuesFilter{
		Status:      c.Query("status"),
		ClassName:   c.Query("class_name"),
		OverdueOnly: c.Query("overdue_only") == "true",
	}
	rows, err := h.duesService.StudentsWithDues(c.Request.Context(), asOf, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	status := strings.ToUpper(filter.Status)
	if status == "" {
		status = "DUE"
	}
	report := &services.DuesReport{SchoolName: h.schoolName, AsOf: asOf, Status: status, Rows: rows}

	var data []byte
	var filename string

	switch format {
	case "json":
		c.JSON(http.StatusOK, gin.H{
			"as_of":     asOf.Format(dateLayout),
			"status":    status,
			"count":     len(rows),
			"total_due": report.TotalDue().Round(2).StringFixed(2),
			"students":  rows,
		})
		return
	case "csv":
		data, filename, err = h.exportService.DuesCSV(c.Request.Context(), report)
	case "xlsx":
		data, filename, err = h.exportService.DuesXLSX(c.Request.Context(), report)
	case "pdf":
		data, filename, err = h.exportService.DuesPDF(c.Request.Context(), report)
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to generate %s: %v", format, err)})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, exportContentTypes[format], data)
}

