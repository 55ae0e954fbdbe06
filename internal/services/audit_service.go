package services

import (
	"context"

	"github.com/sjperalta/fintera-tuition/internal/models"
	"github.com/sjperalta/fintera-tuition/internal/repository"
	"github.com/sjperalta/fintera-tuition/pkg/logger"
)

type AuditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Log records an audit entry. Failures are logged and never fail the caller.
func (s *AuditService) Log(ctx context.Context, actor models.AuditContext, action, entity string, entityID, studentID uint, details string) {
	entry := &models.AuditLog{
		UserID:    actor.UserID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		StudentID: studentID,
		Details:   details,
		IPAddress: actor.IPAddress,
		UserAgent: actor.UserAgent,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		logger.Error("failed to write audit log",
			"action", action, "entity", entity, "entity_id", entityID, "error", err)
	}
}

// List retrieves audit logs with filters
func (s *AuditService) List(ctx context.Context, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	return s.repo.List(ctx, query)
}
