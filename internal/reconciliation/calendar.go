package reconciliation

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidCalendar is returned when period boundaries cannot form a calendar.
var ErrInvalidCalendar = errors.New("invalid academic calendar")

// DefaultPeriodNames are the twelve month names of the academic year, in order.
var DefaultPeriodNames = []string{
	"Baisakh", "Jestha", "Ashadh", "Shrawan", "Bhadra", "Ashwin",
	"Kartik", "Mangsir", "Poush", "Magh", "Falgun", "Chaitra",
}

// DefaultFirstMonth is the Gregorian month the default academic year starts in.
const DefaultFirstMonth = time.April

// Period is one named interval of the academic calendar. Start and End are
// dates at midnight UTC; End is the last day of the period, inclusive.
type Period struct {
	Index int       `json:"index"`
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Calendar is an ordered, gap-free partition of one academic year.
type Calendar struct {
	periods []Period
	byName  map[string]int
}

// NewCalendar builds a calendar from caller-supplied period starts. Each period
// ends the day before the next one starts; the last ends on yearEnd.
func NewCalendar(names []string, starts []time.Time, yearEnd time.Time) (*Calendar, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no periods", ErrInvalidCalendar)
	}
	if len(names) != len(starts) {
		return nil, fmt.Errorf("%w: %d names for %d start dates", ErrInvalidCalendar, len(names), len(starts))
	}

	cal := &Calendar{
		periods: make([]Period, len(names)),
		byName:  make(map[string]int, len(names)),
	}
	end := dateOf(yearEnd)

	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("%w: period %d has no name", ErrInvalidCalendar, i+1)
		}
		if _, dup := cal.byName[name]; dup {
			return nil, fmt.Errorf("%w: duplicate period name %q", ErrInvalidCalendar, name)
		}
		start := dateOf(starts[i])
		if i > 0 && !start.After(cal.periods[i-1].Start) {
			return nil, fmt.Errorf("%w: period %q does not start after %q", ErrInvalidCalendar, name, names[i-1])
		}
		cal.byName[name] = i
		cal.periods[i] = Period{Index: i, Name: name, Start: start}
	}

	last := len(names) - 1
	if end.Before(cal.periods[last].Start) {
		return nil, fmt.Errorf("%w: year ends before period %q starts", ErrInvalidCalendar, names[last])
	}
	for i := 0; i < last; i++ {
		cal.periods[i].End = cal.periods[i+1].Start.AddDate(0, 0, -1)
	}
	cal.periods[last].End = end

	return cal, nil
}

// MonthlyCalendar builds a twelve-period calendar whose periods are the
// Gregorian months starting at firstMonth of year. Nil names selects
// DefaultPeriodNames.
func MonthlyCalendar(year int, firstMonth time.Month, names []string) (*Calendar, error) {
	if names == nil {
		names = DefaultPeriodNames
	}
	if len(names) != 12 {
		return nil, fmt.Errorf("%w: monthly calendar needs 12 names, got %d", ErrInvalidCalendar, len(names))
	}
	starts := make([]time.Time, 12)
	for i := range starts {
		starts[i] = time.Date(year, firstMonth+time.Month(i), 1, 0, 0, 0, 0, time.UTC)
	}
	yearEnd := time.Date(year, firstMonth+12, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return NewCalendar(names, starts, yearEnd)
}

// AcademicYearFor returns the Gregorian year in which the academic year
// containing t started.
func AcademicYearFor(t time.Time, firstMonth time.Month) int {
	if t.Month() >= firstMonth {
		return t.Year()
	}
	return t.Year() - 1
}

// Len returns the number of periods.
func (c *Calendar) Len() int {
	return len(c.periods)
}

// Periods returns a copy of the periods in canonical order.
func (c *Calendar) Periods() []Period {
	out := make([]Period, len(c.periods))
	copy(out, c.periods)
	return out
}

// Period returns the period at index i.
func (c *Calendar) Period(i int) Period {
	return c.periods[i]
}

// Lookup finds a period by name.
func (c *Calendar) Lookup(name string) (Period, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Period{}, false
	}
	return c.periods[i], true
}

// PeriodAt returns the period containing date t.
func (c *Calendar) PeriodAt(t time.Time) (Period, bool) {
	d := dateOf(t)
	for _, p := range c.periods {
		if !d.Before(p.Start) && !d.After(p.End) {
			return p, true
		}
	}
	return Period{}, false
}

// Start returns the first day of the calendar.
func (c *Calendar) Start() time.Time {
	return c.periods[0].Start
}

// End returns the last day of the calendar.
func (c *Calendar) End() time.Time {
	return c.periods[len(c.periods)-1].End
}

// periodsEndedAfter counts whole periods that ended strictly before asOf among
// those following index i. Past the calendar's last day the count continues in
// Gregorian months.
func (c *Calendar) periodsEndedAfter(i int, asOf time.Time) int {
	n := 0
	for j := i + 1; j < len(c.periods); j++ {
		if c.periods[j].End.Before(asOf) {
			n++
		}
	}
	if !c.End().Before(asOf) {
		return n
	}
	next := c.End().AddDate(0, 0, 1)
	for k := 1; ; k++ {
		end := next.AddDate(0, k, 0).AddDate(0, 0, -1)
		if !end.Before(asOf) {
			break
		}
		n++
	}
	return n
}

// dateOf truncates t to its calendar date at midnight UTC, keeping the date
// as seen in t's own location.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
