package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-tuition/internal/jobs"
	"github.com/sjperalta/fintera-tuition/internal/models"
	"github.com/sjperalta/fintera-tuition/internal/reconciliation"
	"github.com/sjperalta/fintera-tuition/internal/repository"
	"github.com/sjperalta/fintera-tuition/pkg/logger"
	"github.com/sjperalta/fintera-tuition/pkg/metrics"
)

// StatusAll disables the balance status filter of a dues listing
const StatusAll = "ALL"

// DuesFilter narrows a dues listing
type DuesFilter struct {
	Status      string // CLEARED, DUE, PREPAID or ALL; empty means DUE
	ClassName   string
	OverdueOnly bool
}

// StudentDues is one row of the dues report
type StudentDues struct {
	StudentID       uint                         `json:"student_id"`
	FullName        string                       `json:"full_name"`
	RollNumber      string                       `json:"roll_number"`
	ClassName       string                       `json:"class_name"`
	GuardianName    string                       `json:"guardian_name"`
	GuardianEmail   string                       `json:"guardian_email"`
	NoFeeStructure  bool                         `json:"no_fee_structure"`
	Status          reconciliation.BalanceStatus `json:"status"`
	TotalExpected   decimal.Decimal              `json:"total_expected"`
	TotalPaid       decimal.Decimal              `json:"total_paid"`
	UnassignedTotal decimal.Decimal              `json:"unassigned_total"`
	DueAmount       decimal.Decimal              `json:"due_amount"`
	PrepaidAmount   decimal.Decimal              `json:"prepaid_amount"`
	Percentage      int64                        `json:"percentage"`
	OverduePeriods  []string                     `json:"overdue_periods"`
	MonthsOverdue   int                          `json:"months_overdue"`
}

// ReminderSender delivers a dues reminder; false without error means skipped
type ReminderSender interface {
	SendDuesReminder(ctx context.Context, student *models.Student, dues *StudentDues, asOf time.Time) (bool, error)
}

// DuesService answers cohort questions ("who still owes fees") on top of
// per-student reconciliation
type DuesService struct {
	studentRepo    repository.StudentRepository
	reconciliation *ReconciliationService
	mailer         ReminderSender
	worker         *jobs.Worker
	cooldown       time.Duration
}

func NewDuesService(
	studentRepo repository.StudentRepository,
	reconciliation *ReconciliationService,
	mailer ReminderSender,
	worker *jobs.Worker,
	cooldown time.Duration,
) *DuesService {
	return &DuesService{
		studentRepo:    studentRepo,
		reconciliation: reconciliation,
		mailer:         mailer,
		worker:         worker,
		cooldown:       cooldown,
	}
}

// NewStudentDues condenses a reconciliation result into a report row
func NewStudentDues(student *models.Student, result *reconciliation.Result) StudentDues {
	row := StudentDues{
		StudentID:       student.ID,
		FullName:        student.FullName,
		RollNumber:      student.RollNumber,
		ClassName:       student.ClassName,
		GuardianName:    student.GuardianName,
		GuardianEmail:   student.GuardianEmail,
		NoFeeStructure:  result.NoFeeStructure,
		Status:          result.Balance.Status,
		TotalExpected:   result.Balance.TotalExpected,
		TotalPaid:       result.Balance.TotalPaid,
		UnassignedTotal: result.Balance.UnassignedTotal,
		DueAmount:       result.Balance.DueAmount,
		PrepaidAmount:   result.Balance.PrepaidAmount,
		Percentage:      result.Balance.Percentage,
		OverduePeriods:  []string{},
	}
	for _, p := range result.OverduePeriods() {
		row.OverduePeriods = append(row.OverduePeriods, p.Period.Name)
		if p.MonthsOverdue > row.MonthsOverdue {
			row.MonthsOverdue = p.MonthsOverdue
		}
	}
	return row
}

func normalizeStatus(status string) (string, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	switch status {
	case "":
		return string(reconciliation.BalanceDue), nil
	case StatusAll, string(reconciliation.BalanceDue), string(reconciliation.BalanceCleared), string(reconciliation.BalancePrepaid):
		return status, nil
	default:
		return "", fmt.Errorf("%w: unknown balance status %q", ErrInvalidInput, status)
	}
}

// StudentsWithDues reconciles every active student and returns the rows
// matching the filter, largest amount due first
func (s *DuesService) StudentsWithDues(ctx context.Context, asOf time.Time, filter DuesFilter) ([]StudentDues, error) {
	students, err := s.studentRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return s.collect(ctx, students, asOf, filter)
}

func (s *DuesService) collect(ctx context.Context, students []models.Student, asOf time.Time, filter DuesFilter) ([]StudentDues, error) {
	status, err := normalizeStatus(filter.Status)
	if err != nil {
		return nil, err
	}

	rows := make([]StudentDues, 0, len(students))
	for i := range students {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		student := &students[i]
		if filter.ClassName != "" && !strings.EqualFold(student.ClassName, filter.ClassName) {
			continue
		}
		result, err := s.reconciliation.Reconcile(ctx, student, asOf)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile student %d: %w", student.ID, err)
		}
		row := NewStudentDues(student, result)
		if status != StatusAll && string(row.Status) != status {
			continue
		}
		if filter.OverdueOnly && len(row.OverduePeriods) == 0 {
			continue
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if c := rows[i].DueAmount.Cmp(rows[j].DueAmount); c != 0 {
			return c > 0
		}
		if rows[i].FullName != rows[j].FullName {
			return rows[i].FullName < rows[j].FullName
		}
		return rows[i].StudentID < rows[j].StudentID
	})
	return rows, nil
}

// SendReminders queues a reminder for every student with overdue periods
// whose guardian was not reminded within the cooldown. It returns the number
// of reminders queued.
func (s *DuesService) SendReminders(ctx context.Context, now time.Time) (int, error) {
	students, err := s.studentRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list students: %w", err)
	}
	rows, err := s.collect(ctx, students, now, DuesFilter{OverdueOnly: true})
	if err != nil {
		return 0, err
	}

	byID := make(map[uint]*models.Student, len(students))
	for i := range students {
		byID[students[i].ID] = &students[i]
	}

	queued := 0
	for i := range rows {
		row := rows[i]
		student, ok := byID[row.StudentID]
		if !ok {
			continue
		}
		if !student.HasGuardianEmail() {
			metrics.ObserveReminder("skipped")
			continue
		}
		if student.ReminderSentAt != nil && now.Sub(*student.ReminderSentAt) < s.cooldown {
			metrics.ObserveReminder("skipped")
			continue
		}

		queued++
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			sent, err := s.mailer.SendDuesReminder(ctx, student, &row, now)
			if err != nil {
				metrics.ObserveReminder("failed")
				return fmt.Errorf("dues reminder for student %d: %w", student.ID, err)
			}
			if !sent {
				metrics.ObserveReminder("skipped")
				return nil
			}
			metrics.ObserveReminder("sent")
			return s.studentRepo.MarkReminderSent(ctx, student.ID, now)
		})
	}

	logger.Info("dues reminders queued", "queued", queued, "students_overdue", len(rows))
	return queued, nil
}
