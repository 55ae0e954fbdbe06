package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-tuition/internal/reconciliation"
	"gorm.io/gorm"
)

// Payment represents money recorded against a student's fees
type Payment struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	StudentID        uint            `gorm:"not null;index" json:"student_id"`
	Amount           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentDate      time.Time       `gorm:"type:date;not null;index" json:"payment_date"`
	Status           string          `gorm:"default:UNPAID;not null;index" json:"status"`
	PeriodTag        *string         `gorm:"index" json:"period_tag"`
	Reference        string          `gorm:"uniqueIndex;not null" json:"reference"`
	Note             *string         `gorm:"type:text" json:"note,omitempty"`
	RecordedByUserID *uint           `json:"recorded_by_user_id,omitempty"`
	VoidedAt         *time.Time      `json:"voided_at,omitempty"`
	VoidReason       *string         `gorm:"type:text" json:"void_reason,omitempty"`
	CreatedAt        time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	// Associations
	Student Student `gorm:"foreignKey:StudentID" json:"-"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// Payment status constants
const (
	PaymentStatusPaid          = string(reconciliation.PaymentPaid)
	PaymentStatusUnpaid        = string(reconciliation.PaymentUnpaid)
	PaymentStatusPartiallyPaid = string(reconciliation.PaymentPartiallyPaid)
	PaymentStatusOverdue       = string(reconciliation.PaymentOverdue)
	PaymentStatusVoided        = string(reconciliation.PaymentVoided)
)

// BeforeCreate hook for setting defaults
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.Status == "" {
		p.Status = PaymentStatusUnpaid
	}
	if p.Reference == "" {
		p.Reference = NewReceiptReference()
	}
	return nil
}

// NewReceiptReference generates a receipt number for payments recorded
// without one
func NewReceiptReference() string {
	return "RCPT-" + uuid.New().String()
}

// MayRecord returns true if money can be recorded against the payment
func (p *Payment) MayRecord() bool {
	return p.Status == PaymentStatusUnpaid || p.Status == PaymentStatusOverdue
}

// MayComplete returns true if a partial payment can be settled
func (p *Payment) MayComplete() bool {
	return p.Status == PaymentStatusPartiallyPaid
}

// MayMarkOverdue returns true if the payment can be flagged overdue
func (p *Payment) MayMarkOverdue() bool {
	return p.Status == PaymentStatusUnpaid
}

// MayVoid returns true if the payment can still be voided
func (p *Payment) MayVoid() bool {
	return p.Status != PaymentStatusVoided
}

// IsVoided returns true if the payment was cancelled
func (p *Payment) IsVoided() bool {
	return p.Status == PaymentStatusVoided
}

// ToEngine converts the persisted payment to the reconciliation input
func (p *Payment) ToEngine() reconciliation.Payment {
	tag := ""
	if p.PeriodTag != nil {
		tag = *p.PeriodTag
	}
	return reconciliation.Payment{
		ID:        strconv.FormatUint(uint64(p.ID), 10),
		Amount:    p.Amount,
		Date:      p.PaymentDate,
		Status:    reconciliation.PaymentStatus(p.Status),
		PeriodTag: tag,
	}
}

// PaymentsToEngine converts a payment history
func PaymentsToEngine(payments []Payment) []reconciliation.Payment {
	out := make([]reconciliation.Payment, 0, len(payments))
	for i := range payments {
		out = append(out, payments[i].ToEngine())
	}
	return out
}

// PaymentResponse is the JSON response format for payments
type PaymentResponse struct {
	ID          uint            `json:"id"`
	StudentID   uint            `json:"student_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"payment_date"`
	Status      string          `json:"status"`
	PeriodTag   *string         `json:"period_tag"`
	Reference   string          `json:"reference"`
	Note        *string         `json:"note,omitempty"`
	VoidedAt    *time.Time      `json:"voided_at,omitempty"`
	VoidReason  *string         `json:"void_reason,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		StudentID:   p.StudentID,
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate.Format("2006-01-02"),
		Status:      p.Status,
		PeriodTag:   p.PeriodTag,
		Reference:   p.Reference,
		Note:        p.Note,
		VoidedAt:    p.VoidedAt,
		VoidReason:  p.VoidReason,
		CreatedAt:   p.CreatedAt,
	}
}
