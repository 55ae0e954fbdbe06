package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-tuition/internal/services"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobSvc *services.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobSvc,
	}
}

// Status returns the current worker status
// @Summary Get background job status
// @Description Get statistics about background jobs (active, completed, failed, queue length, schedules)
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.JobStatus
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.jobService.GetStatus())
}

// SendReminders queues a dues reminder scan now
// @Summary Send dues reminders
// @Description Queue a scan that emails guardians of students with overdue months
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 202 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /jobs/dues-reminders [post]
func (h *JobHandler) SendReminders(c *gin.Context) {
	if err := h.jobService.TriggerReminders(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "dues reminder scan queued"})
}
