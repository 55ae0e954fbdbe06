package reconciliation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AmortizationPolicy decides how a structure's mandatory total is spread over
// the periods of a calendar.
type AmortizationPolicy interface {
	Name() string
	Schedule(structure *FeeStructure, cal *Calendar) Schedule
}

// Schedule is the unrounded obligation of each period.
type Schedule interface {
	// Expected returns the obligation of the period at index.
	Expected(index int) decimal.Decimal
	// CumulativeThrough returns the obligation of the first n periods,
	// computed from unrounded totals.
	CumulativeThrough(n int) decimal.Decimal
}

// PolicyByName resolves a configured policy name.
func PolicyByName(name string) (AmortizationPolicy, error) {
	switch name {
	case "", EqualAmortization{}.Name():
		return EqualAmortization{}, nil
	case DueDateBucketing{}.Name():
		return DueDateBucketing{}, nil
	}
	return nil, fmt.Errorf("unknown amortization policy %q", name)
}

// EqualAmortization divides the mandatory total evenly across all periods.
type EqualAmortization struct{}

func (EqualAmortization) Name() string { return "equal" }

func (EqualAmortization) Schedule(structure *FeeStructure, cal *Calendar) Schedule {
	total := structure.MandatoryTotal()
	n := decimal.NewFromInt(int64(cal.Len()))
	return equalSchedule{
		total:     total,
		count:     cal.Len(),
		perPeriod: total.Div(n),
	}
}

type equalSchedule struct {
	total     decimal.Decimal
	count     int
	perPeriod decimal.Decimal
}

func (s equalSchedule) Expected(int) decimal.Decimal {
	return s.perPeriod
}

func (s equalSchedule) CumulativeThrough(n int) decimal.Decimal {
	n = clampCount(n, s.count)
	if n == s.count {
		return s.total
	}
	return s.total.Mul(decimal.NewFromInt(int64(n))).Div(decimal.NewFromInt(int64(s.count)))
}

// DueDateBucketing charges each dated mandatory item to the period containing
// its due date. Items dated before the calendar fall into the first period,
// items dated after it into the last; undated items are amortised equally.
type DueDateBucketing struct{}

func (DueDateBucketing) Name() string { return "due_date" }

func (DueDateBucketing) Schedule(structure *FeeStructure, cal *Calendar) Schedule {
	s := bucketSchedule{
		buckets: make([]decimal.Decimal, cal.Len()),
		count:   cal.Len(),
		spread:  decimal.Zero,
	}
	for i := range s.buckets {
		s.buckets[i] = decimal.Zero
	}
	for _, item := range structure.Items {
		if item.IsOptional {
			continue
		}
		if item.DueDate == nil {
			s.spread = s.spread.Add(item.Amount)
			continue
		}
		idx := bucketIndex(cal, *item.DueDate)
		s.buckets[idx] = s.buckets[idx].Add(item.Amount)
	}
	return s
}

func bucketIndex(cal *Calendar, due time.Time) int {
	if p, ok := cal.PeriodAt(due); ok {
		return p.Index
	}
	if dateOf(due).Before(cal.Start()) {
		return 0
	}
	return cal.Len() - 1
}

type bucketSchedule struct {
	buckets []decimal.Decimal
	count   int
	spread  decimal.Decimal
}

func (s bucketSchedule) Expected(index int) decimal.Decimal {
	share := s.spread.Div(decimal.NewFromInt(int64(s.count)))
	return s.buckets[index].Add(share)
}

func (s bucketSchedule) CumulativeThrough(n int) decimal.Decimal {
	n = clampCount(n, s.count)
	total := decimal.Zero
	for i := 0; i < n; i++ {
		total = total.Add(s.buckets[i])
	}
	if n == s.count {
		return total.Add(s.spread)
	}
	spread := s.spread.Mul(decimal.NewFromInt(int64(n))).Div(decimal.NewFromInt(int64(s.count)))
	return total.Add(spread)
}

func clampCount(n, limit int) int {
	if n < 0 {
		return 0
	}
	if n > limit {
		return limit
	}
	return n
}
