package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-tuition/internal/models"
	"github.com/sjperalta/fintera-tuition/internal/repository"
	"github.com/sjperalta/fintera-tuition/internal/statemachine"
	"github.com/sjperalta/fintera-tuition/pkg/logger"
	"gorm.io/gorm"
)

// RecordPaymentInput is a payment as entered by staff
type RecordPaymentInput struct {
	StudentID   uint
	Amount      decimal.Decimal
	PaymentDate time.Time
	Status      string // PAID or PARTIALLY_PAID; empty means PAID
	Period      string // optional period name the payment covers
	Reference   string
	Note        string
}

type PaymentService struct {
	paymentRepo    repository.PaymentRepository
	studentRepo    repository.StudentRepository
	reconciliation *ReconciliationService
	auditSvc       *AuditService
	now            func() time.Time
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	studentRepo repository.StudentRepository,
	reconciliation *ReconciliationService,
	auditSvc *AuditService,
) *PaymentService {
	return &PaymentService{
		paymentRepo:    paymentRepo,
		studentRepo:    studentRepo,
		reconciliation: reconciliation,
		auditSvc:       auditSvc,
		now:            time.Now,
	}
}

// Record validates and stores a new payment, then invalidates the
// student's cached reconciliation
func (s *PaymentService) Record(ctx context.Context, input RecordPaymentInput, actor models.AuditContext) (*models.Payment, error) {
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
	}
	if input.PaymentDate.IsZero() {
		return nil, fmt.Errorf("%w: payment_date is required", ErrInvalidInput)
	}
	status := input.Status
	if status == "" {
		status = models.PaymentStatusPaid
	}
	if status != models.PaymentStatusPaid && status != models.PaymentStatusPartiallyPaid {
		return nil, fmt.Errorf("%w: status must be %s or %s", ErrInvalidInput,
			models.PaymentStatusPaid, models.PaymentStatusPartiallyPaid)
	}

	student, err := s.studentRepo.FindByID(ctx, input.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	cal, structure, err := s.reconciliation.CalendarFor(ctx, student, input.PaymentDate)
	if err != nil {
		return nil, err
	}
	if structure != nil {
		if structure.ValidFrom != nil && input.PaymentDate.Before(*structure.ValidFrom) {
			return nil, fmt.Errorf("%w: payment_date is before the fee structure starts", ErrInvalidInput)
		}
		if structure.ValidUntil != nil && input.PaymentDate.After(*structure.ValidUntil) {
			return nil, fmt.Errorf("%w: payment_date is after the fee structure ends", ErrInvalidInput)
		}
		if structure.ValidFrom == nil && input.PaymentDate.Before(cal.Start()) {
			return nil, fmt.Errorf("%w: payment_date is before academic year %d starts", ErrInvalidInput, structure.AcademicYear)
		}
		if structure.ValidUntil == nil && !input.PaymentDate.Before(cal.End().AddDate(0, 0, 1)) {
			return nil, fmt.Errorf("%w: payment_date is after academic year %d ends", ErrInvalidInput, structure.AcademicYear)
		}
	}

	payment := &models.Payment{
		StudentID:   student.ID,
		Amount:      input.Amount,
		PaymentDate: input.PaymentDate,
		Status:      models.PaymentStatusUnpaid,
		Reference:   strings.TrimSpace(input.Reference),
	}
	if period := strings.TrimSpace(input.Period); period != "" {
		p, ok := cal.Lookup(period)
		if !ok {
			return nil, fmt.Errorf("%w: unknown period %q", ErrInvalidInput, period)
		}
		payment.PeriodTag = &p.Name
	}
	if note := strings.TrimSpace(input.Note); note != "" {
		payment.Note = &note
	}
	if actor.UserID != 0 {
		recordedBy := actor.UserID
		payment.RecordedByUserID = &recordedBy
	}

	if err := statemachine.NewPaymentFSM(payment).Record(ctx, status); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrDuplicateReference) {
			return nil, fmt.Errorf("%w: reference %q already recorded", ErrDuplicate, payment.Reference)
		}
		return nil, err
	}
	s.reconciliation.Invalidate(student.ID)

	s.auditSvc.Log(ctx, actor, models.AuditActionRecord, "Payment", payment.ID, student.ID,
		fmt.Sprintf("Recorded %s payment %s of %s", payment.Status, payment.Reference, payment.Amount.StringFixed(2)))

	logger.Info("payment recorded",
		"payment_id", payment.ID, "student_id", student.ID, "amount", payment.Amount.String(), "status", payment.Status)
	return payment, nil
}

// Void cancels a payment; a voided payment no longer counts toward any balance
func (s *PaymentService) Void(ctx context.Context, paymentID uint, reason string, actor models.AuditContext) (*models.Payment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}

	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	previous := payment.Status
	if err := statemachine.NewPaymentFSM(payment).Void(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	now := s.now()
	payment.VoidedAt = &now
	payment.VoidReason = &reason

	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}
	s.reconciliation.Invalidate(payment.StudentID)

	s.auditSvc.Log(ctx, actor, models.AuditActionVoid, "Payment", payment.ID, payment.StudentID,
		fmt.Sprintf("Voided %s payment %s: %s", previous, payment.Reference, reason))

	logger.Info("payment voided", "payment_id", payment.ID, "student_id", payment.StudentID, "previous_status", previous)
	return payment, nil
}

// ListByStudent returns a student's full payment history, oldest first
func (s *PaymentService) ListByStudent(ctx context.Context, studentID uint) ([]models.Payment, error) {
	if _, err := s.studentRepo.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.paymentRepo.FindByStudent(ctx, studentID)
}

// List searches payments across students
func (s *PaymentService) List(ctx context.Context, query *repository.ListQuery) ([]models.Payment, int64, error) {
	return s.paymentRepo.List(ctx, query)
}
