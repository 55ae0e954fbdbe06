package repository

import (
	"context"

	"github.com/sjperalta/fintera-tuition/internal/models"
	"gorm.io/gorm"
)

// AuditRepository defines the interface for audit log access
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, query *ListQuery) ([]models.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepository) List(ctx context.Context, query *ListQuery) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	db := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if v := query.Filters["student_id"]; v != "" {
		db = db.Where("student_id = ?", v)
	}
	if v := query.Filters["action"]; v != "" {
		db = db.Where("action = ?", v)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.paginate(db, nil, "created_at DESC, id DESC").Find(&logs).Error
	return logs, total, err
}
