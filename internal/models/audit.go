package models

import (
	"time"
)

// Audit actions
const (
	AuditActionRecord = "RECORD"
	AuditActionVoid   = "VOID"
)

// AuditLog records who changed a student's payment history
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"` // staff member from the JWT
	Action    string    `gorm:"size:50;not null" json:"action"`
	Entity    string    `gorm:"size:50;not null" json:"entity"`
	EntityID  uint      `gorm:"index" json:"entity_id"`
	StudentID uint      `gorm:"index" json:"student_id"`
	Details   string    `gorm:"type:text" json:"details"`
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditContext carries the request metadata attached to audit entries
type AuditContext struct {
	UserID    uint
	IPAddress string
	UserAgent string
}
