package reconciliation

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Engine reconciles fee structures against payments. An Engine is immutable
// once built and may be shared between goroutines.
type Engine struct {
	calendar   *Calendar
	firstMonth time.Month
	names      []string
	policy     AmortizationPolicy
	places     int32
}

// Option configures an Engine.
type Option func(*Engine)

// WithCalendar pins the engine to a fixed calendar instead of deriving the
// academic year from each call.
func WithCalendar(cal *Calendar) Option {
	return func(e *Engine) { e.calendar = cal }
}

// WithAcademicYear sets the first Gregorian month and period names used to
// derive a monthly calendar per call.
func WithAcademicYear(firstMonth time.Month, names []string) Option {
	return func(e *Engine) {
		e.firstMonth = firstMonth
		if names != nil {
			e.names = names
		}
	}
}

// WithPolicy sets the amortization policy.
func WithPolicy(p AmortizationPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithCurrencyPlaces sets the number of decimal places per-period and
// aggregate expected amounts are rounded to. Defaults to 2.
func WithCurrencyPlaces(places int32) Option {
	return func(e *Engine) { e.places = places }
}

// NewEngine builds an engine, validating the calendar configuration.
func NewEngine(opts ...Option) (*Engine, error) {
	e := newDefaultEngine()
	for _, opt := range opts {
		opt(e)
	}
	if e.policy == nil {
		e.policy = EqualAmortization{}
	}
	if e.places < 0 {
		return nil, fmt.Errorf("currency places must not be negative, got %d", e.places)
	}
	if e.calendar == nil {
		if e.firstMonth < time.January || e.firstMonth > time.December {
			return nil, fmt.Errorf("%w: first month %d", ErrInvalidCalendar, e.firstMonth)
		}
		if _, err := MonthlyCalendar(2000, e.firstMonth, e.names); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func newDefaultEngine() *Engine {
	return &Engine{
		firstMonth: DefaultFirstMonth,
		names:      DefaultPeriodNames,
		policy:     EqualAmortization{},
		places:     2,
	}
}

var defaultEngine = newDefaultEngine()

// Reconcile runs the default engine: a monthly calendar starting in
// DefaultFirstMonth with equal amortization.
func Reconcile(structure *FeeStructure, payments []Payment, asOf time.Time) *Result {
	return defaultEngine.Reconcile(structure, payments, asOf)
}

// Policy returns the engine's amortization policy.
func (e *Engine) Policy() AmortizationPolicy {
	return e.policy
}

// CalendarFor returns the calendar a reconciliation of structure at asOf uses.
// The academic year is anchored on the structure's ValidFrom, then on its
// AcademicYear, then on asOf.
func (e *Engine) CalendarFor(structure *FeeStructure, asOf time.Time) *Calendar {
	if e.calendar != nil {
		return e.calendar
	}
	year := AcademicYearFor(asOf, e.firstMonth)
	switch {
	case structure == nil:
	case structure.ValidFrom != nil:
		year = AcademicYearFor(*structure.ValidFrom, e.firstMonth)
	case structure.AcademicYear > 0:
		year = structure.AcademicYear
	}
	cal, err := MonthlyCalendar(year, e.firstMonth, e.names)
	if err != nil {
		// names and month were validated by NewEngine
		panic(err)
	}
	return cal
}

// Reconcile computes per-period status and the aggregate balance of one
// student. It never fails for well-typed input: records it cannot use are
// skipped and reported in Result.Warnings.
func (e *Engine) Reconcile(structure *FeeStructure, payments []Payment, asOf time.Time) *Result {
	day := dateOf(asOf)
	res := &Result{
		AsOf:                day,
		Periods:             []PeriodStatus{},
		PaidMonths:          []PeriodStatus{},
		PartiallyPaidMonths: []PeriodStatus{},
		UnpaidMonths:        []PeriodStatus{},
		Unassigned:          []UnassignedPayment{},
	}

	var cal *Calendar
	if structure != nil {
		cal = e.CalendarFor(structure, day)
	}
	accepted, warnings := screen(structure, cal, payments)
	res.Warnings = warnings

	if structure == nil {
		res.NoFeeStructure = true
		for _, p := range accepted {
			res.Unassigned = append(res.Unassigned, toUnassigned(p, ReasonNoStructure))
		}
		sortUnassigned(res.Unassigned)
		pool := sumUnassigned(res.Unassigned)
		res.Balance = BalanceSummary{
			TotalExpected:   decimal.Zero,
			TotalPaid:       pool,
			UnassignedTotal: pool,
			Status:          BalanceCleared,
			DueAmount:       decimal.Zero,
			PrepaidAmount:   decimal.Zero,
		}
		return res
	}

	schedule := e.policy.Schedule(structure, cal)
	res.Policy = e.policy.Name()
	lo, hi := window(cal, structure, day)

	tagged := make(map[int][]Payment)
	for _, p := range accepted {
		if p.PeriodTag == "" {
			res.Unassigned = append(res.Unassigned, toUnassigned(p, ReasonUntagged))
			continue
		}
		period, ok := cal.Lookup(p.PeriodTag)
		if !ok {
			res.Unassigned = append(res.Unassigned, toUnassigned(p, ReasonUnknownPeriod))
			continue
		}
		if period.Index < lo || period.Index >= hi {
			res.Unassigned = append(res.Unassigned, toUnassigned(p, ReasonOutsideWindow))
			continue
		}
		tagged[period.Index] = append(tagged[period.Index], p)
	}
	sortUnassigned(res.Unassigned)

	periodPaid := decimal.Zero
	for i := lo; i < hi; i++ {
		expected := schedule.Expected(i).Round(e.places)
		status := periodStatus(cal, i, expected, tagged[i], day)
		periodPaid = periodPaid.Add(status.PaidAmount)

		res.Periods = append(res.Periods, status)
		switch status.Classification {
		case FullyPaid:
			res.PaidMonths = append(res.PaidMonths, status)
		case PartiallyPaid:
			res.PartiallyPaidMonths = append(res.PartiallyPaidMonths, status)
		default:
			res.UnpaidMonths = append(res.UnpaidMonths, status)
		}
	}
	res.Summary = MonthSummary{
		FullyPaid:     len(res.PaidMonths),
		PartiallyPaid: len(res.PartiallyPaidMonths),
		Unpaid:        len(res.UnpaidMonths),
	}

	totalExpected := schedule.CumulativeThrough(hi).Sub(schedule.CumulativeThrough(lo)).Round(e.places)
	pool := sumUnassigned(res.Unassigned)
	res.Balance = balance(totalExpected, periodPaid.Add(pool), pool)
	return res
}

// screen drops records that carry no usable money and reports the ones that
// are malformed. Zero amounts are kept and contribute nothing.
func screen(structure *FeeStructure, cal *Calendar, payments []Payment) ([]Payment, []Warning) {
	var accepted []Payment
	var warnings []Warning
	for _, p := range payments {
		switch {
		case !p.Status.Known():
			warnings = append(warnings, Warning{
				PaymentID: p.ID,
				Code:      WarnUnknownStatus,
				Message:   fmt.Sprintf("unknown payment status %q", p.Status),
			})
			continue
		case !p.Status.Contributes():
			continue
		case p.Amount.IsNegative():
			warnings = append(warnings, Warning{
				PaymentID: p.ID,
				Code:      WarnNegativeAmount,
				Message:   fmt.Sprintf("negative amount %s", p.Amount),
			})
			continue
		}
		if structure != nil {
			if code, out := outsideValidity(structure, cal, p.Date); out {
				warnings = append(warnings, Warning{
					PaymentID: p.ID,
					Code:      code,
					Message:   outsideMessage(code, p.Date),
				})
				continue
			}
		}
		accepted = append(accepted, p)
	}
	return accepted, warnings
}

// outsideValidity checks date against the structure's bounds, using the
// calendar's first and last day for a bound the structure leaves unset.
func outsideValidity(structure *FeeStructure, cal *Calendar, date time.Time) (WarningCode, bool) {
	if date.IsZero() {
		return "", false
	}
	d := dateOf(date)
	switch {
	case structure.ValidFrom != nil:
		if d.Before(dateOf(*structure.ValidFrom)) {
			return WarnOutsideValidity, true
		}
	case d.Before(cal.Start()):
		return WarnOutsideYear, true
	}
	switch {
	case structure.ValidUntil != nil:
		if d.After(dateOf(*structure.ValidUntil)) {
			return WarnOutsideValidity, true
		}
	case d.After(cal.End()):
		return WarnOutsideYear, true
	}
	return "", false
}

func outsideMessage(code WarningCode, date time.Time) string {
	if code == WarnOutsideYear {
		return fmt.Sprintf("payment dated %s is outside the academic year being reconciled", date.Format("2006-01-02"))
	}
	return fmt.Sprintf("payment dated %s is outside the fee structure's validity", date.Format("2006-01-02"))
}

// window returns the half-open index range of periods that have started by
// day and fall inside the structure's validity.
func window(cal *Calendar, structure *FeeStructure, day time.Time) (int, int) {
	lo, hi := 0, 0
	if structure.ValidFrom != nil {
		from := dateOf(*structure.ValidFrom)
		for lo < cal.Len() && cal.Period(lo).End.Before(from) {
			lo++
		}
	}
	for hi < cal.Len() {
		start := cal.Period(hi).Start
		if start.After(day) {
			break
		}
		if structure.ValidUntil != nil && start.After(dateOf(*structure.ValidUntil)) {
			break
		}
		hi++
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func periodStatus(cal *Calendar, i int, expected decimal.Decimal, payments []Payment, day time.Time) PeriodStatus {
	sortPayments(payments)

	paid := decimal.Zero
	var ids []string
	for _, p := range payments {
		paid = paid.Add(p.Amount)
		ids = append(ids, p.ID)
	}

	remaining := expected.Sub(paid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	status := PeriodStatus{
		Period:            cal.Period(i),
		ExpectedAmount:    expected,
		PaidAmount:        paid,
		RemainingAmount:   remaining,
		PaymentPercentage: percent(paid, expected),
		PaymentIDs:        ids,
	}

	switch {
	case paid.GreaterThanOrEqual(expected):
		status.Classification = FullyPaid
	case paid.IsPositive():
		status.Classification = PartiallyPaid
	default:
		status.Classification = Unpaid
	}

	if status.Classification == Unpaid && status.Period.End.Before(day) {
		status.IsOverdue = true
		status.MonthsOverdue = cal.periodsEndedAfter(i, day)
	}
	return status
}

func balance(expected, paid, pool decimal.Decimal) BalanceSummary {
	b := BalanceSummary{
		TotalExpected:   expected,
		TotalPaid:       paid,
		UnassignedTotal: pool,
		DueAmount:       decimal.Zero,
		PrepaidAmount:   decimal.Zero,
		Percentage:      percent(paid, expected),
	}
	switch paid.Cmp(expected) {
	case 0:
		b.Status = BalanceCleared
	case -1:
		b.Status = BalanceDue
		b.DueAmount = expected.Sub(paid)
	default:
		b.Status = BalancePrepaid
		b.PrepaidAmount = paid.Sub(expected)
	}
	return b
}

// percent is round(part/whole*100), half away from zero, 0 when whole is 0.
func percent(part, whole decimal.Decimal) int64 {
	if whole.IsZero() {
		return 0
	}
	return part.Mul(hundred).Div(whole).Round(0).IntPart()
}

func toUnassigned(p Payment, reason UnassignedReason) UnassignedPayment {
	return UnassignedPayment{
		PaymentID: p.ID,
		Amount:    p.Amount,
		Date:      p.Date,
		PeriodTag: p.PeriodTag,
		Reason:    reason,
	}
}

func sumUnassigned(pool []UnassignedPayment) decimal.Decimal {
	total := decimal.Zero
	for _, u := range pool {
		total = total.Add(u.Amount)
	}
	return total
}

func sortPayments(payments []Payment) {
	sort.SliceStable(payments, func(i, j int) bool {
		if !payments[i].Date.Equal(payments[j].Date) {
			return payments[i].Date.Before(payments[j].Date)
		}
		return payments[i].ID < payments[j].ID
	})
}

func sortUnassigned(pool []UnassignedPayment) {
	sort.SliceStable(pool, func(i, j int) bool {
		if !pool[i].Date.Equal(pool[j].Date) {
			return pool[i].Date.Before(pool[j].Date)
		}
		return pool[i].PaymentID < pool[j].PaymentID
	})
}
