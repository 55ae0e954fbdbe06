// Package reconciliation compares a student's expected tuition obligations with
// the payments recorded against them.
//
// The engine is a pure function of its inputs: it never reads the system clock,
// performs no I/O and keeps no state between calls, so it is safe to call
// concurrently and two calls with identical inputs return deeply equal results.
package reconciliation

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeItem is one billable component of a fee structure.
type FeeItem struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	IsOptional bool            `json:"is_optional"`
	DueDate    *time.Time      `json:"due_date,omitempty"`
}

// FeeStructure is the set of items billed to a student for one academic year.
// ValidFrom and ValidUntil are optional; when set they bound both the periods
// that are reconciled and the payments that are accepted. A missing bound
// falls back to the edge of the reconciled academic year.
//
// The academic year is the one containing ValidFrom. Without ValidFrom it is
// AcademicYear, the Gregorian year the academic year starts in, and when that
// is zero too it is the year containing asOf.
type FeeStructure struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	AcademicYear int        `json:"academic_year,omitempty"`
	Items        []FeeItem  `json:"items"`
	ValidFrom    *time.Time `json:"valid_from,omitempty"`
	ValidUntil   *time.Time `json:"valid_until,omitempty"`
	Version      string     `json:"version,omitempty"`
}

// MandatoryTotal sums the amounts of all non-optional items.
func (s *FeeStructure) MandatoryTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		if !item.IsOptional {
			total = total.Add(item.Amount)
		}
	}
	return total
}

// OptionalTotal sums the amounts of all optional items.
func (s *FeeStructure) OptionalTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		if item.IsOptional {
			total = total.Add(item.Amount)
		}
	}
	return total
}

// PaymentStatus is the lifecycle state of a recorded payment.
type PaymentStatus string

const (
	PaymentPaid          PaymentStatus = "PAID"
	PaymentUnpaid        PaymentStatus = "UNPAID"
	PaymentPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentOverdue       PaymentStatus = "OVERDUE"
	PaymentVoided        PaymentStatus = "VOIDED"
)

// Contributes reports whether money recorded with this status counts toward
// an obligation. UNPAID and OVERDUE records describe a missing payment and
// carry no money; VOIDED records were cancelled.
func (s PaymentStatus) Contributes() bool {
	return s == PaymentPaid || s == PaymentPartiallyPaid
}

// Known reports whether s is one of the defined statuses.
func (s PaymentStatus) Known() bool {
	switch s {
	case PaymentPaid, PaymentUnpaid, PaymentPartiallyPaid, PaymentOverdue, PaymentVoided:
		return true
	}
	return false
}

// Payment is a single recorded payment. An empty PeriodTag means the payer did
// not say which period the money covers.
type Payment struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Status    PaymentStatus   `json:"status"`
	PeriodTag string          `json:"period_tag,omitempty"`
}

// Classification is the payment state of a single period.
type Classification string

const (
	FullyPaid     Classification = "FULLY_PAID"
	PartiallyPaid Classification = "PARTIALLY_PAID"
	Unpaid        Classification = "UNPAID"
)

// PeriodStatus is the derived state of one period.
type PeriodStatus struct {
	Period            Period          `json:"period"`
	ExpectedAmount    decimal.Decimal `json:"expected_amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	RemainingAmount   decimal.Decimal `json:"remaining_amount"`
	PaymentPercentage int64           `json:"payment_percentage"`
	Classification    Classification  `json:"classification"`
	MonthsOverdue     int             `json:"months_overdue"`
	IsOverdue         bool            `json:"is_overdue"`
	PaymentIDs        []string        `json:"payment_ids,omitempty"`
}

// DisplayPercentage is PaymentPercentage clamped to [0, 100] for progress bars.
func (p PeriodStatus) DisplayPercentage() int64 {
	return clampPercent(p.PaymentPercentage)
}

// BalanceStatus is the aggregate standing of a student.
type BalanceStatus string

const (
	BalanceCleared BalanceStatus = "CLEARED"
	BalanceDue     BalanceStatus = "DUE"
	BalancePrepaid BalanceStatus = "PREPAID"
)

// BalanceSummary aggregates all processed periods and the unassigned pool.
type BalanceSummary struct {
	TotalExpected   decimal.Decimal `json:"total_expected"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	UnassignedTotal decimal.Decimal `json:"unassigned_total"`
	Status          BalanceStatus   `json:"status"`
	DueAmount       decimal.Decimal `json:"due_amount"`
	PrepaidAmount   decimal.Decimal `json:"prepaid_amount"`
	Percentage      int64           `json:"percentage"`
}

// DisplayPercentage is Percentage clamped to [0, 100].
func (b BalanceSummary) DisplayPercentage() int64 {
	return clampPercent(b.Percentage)
}

// UnassignedReason explains why a payment could not be attributed to a
// processed period.
type UnassignedReason string

const (
	ReasonUntagged      UnassignedReason = "untagged"
	ReasonOutsideWindow UnassignedReason = "outside_window"
	ReasonUnknownPeriod UnassignedReason = "unknown_period"
	ReasonNoStructure   UnassignedReason = "no_structure"
)

// UnassignedPayment is a payment that counts toward the aggregate balance but
// not toward any single period.
type UnassignedPayment struct {
	PaymentID string           `json:"payment_id"`
	Amount    decimal.Decimal  `json:"amount"`
	Date      time.Time        `json:"date"`
	PeriodTag string           `json:"period_tag,omitempty"`
	Reason    UnassignedReason `json:"reason"`
}

// WarningCode identifies a payment excluded from reconciliation.
type WarningCode string

const (
	WarnNegativeAmount  WarningCode = "negative_amount"
	WarnOutsideValidity WarningCode = "outside_validity"
	WarnOutsideYear     WarningCode = "outside_academic_year"
	WarnUnknownStatus   WarningCode = "unknown_status"
)

// Warning describes an input record the engine skipped.
type Warning struct {
	PaymentID string      `json:"payment_id"`
	Code      WarningCode `json:"code"`
	Message   string      `json:"message"`
}

// MonthSummary counts processed periods per classification.
type MonthSummary struct {
	FullyPaid     int `json:"fully_paid"`
	PartiallyPaid int `json:"partially_paid"`
	Unpaid        int `json:"unpaid"`
}

// Result is the full output of one reconciliation.
type Result struct {
	NoFeeStructure      bool                `json:"no_fee_structure"`
	AsOf                time.Time           `json:"as_of"`
	Policy              string              `json:"policy,omitempty"`
	Periods             []PeriodStatus      `json:"periods"`
	PaidMonths          []PeriodStatus      `json:"paid_months"`
	PartiallyPaidMonths []PeriodStatus      `json:"partially_paid_months"`
	UnpaidMonths        []PeriodStatus      `json:"unpaid_months"`
	Unassigned          []UnassignedPayment `json:"unassigned"`
	Balance             BalanceSummary      `json:"balance"`
	Summary             MonthSummary        `json:"summary"`
	Warnings            []Warning           `json:"warnings,omitempty"`
}

// OverduePeriods returns the processed periods flagged overdue, in calendar order.
func (r *Result) OverduePeriods() []PeriodStatus {
	var out []PeriodStatus
	for _, p := range r.Periods {
		if p.IsOverdue {
			out = append(out, p)
		}
	}
	return out
}

func clampPercent(v int64) int64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
