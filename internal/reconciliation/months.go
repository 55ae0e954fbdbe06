package reconciliation

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MonthEntry is one element of a month list as exchanged with API clients.
// It is either a MonthLabel or a MonthDetail; consumers switch on the type.
type MonthEntry interface {
	MonthName() string
	monthEntry()
}

// MonthLabel is the bare period name.
type MonthLabel string

func (l MonthLabel) MonthName() string { return string(l) }
func (MonthLabel) monthEntry()         {}

// MonthDetail carries the full status of a period.
type MonthDetail struct {
	PeriodStatus
}

func (d MonthDetail) MonthName() string { return d.Period.Name }
func (MonthDetail) monthEntry()         {}

// MonthEntries returns the periods of one classification as labels, or as
// details when detailed is set.
func (r *Result) MonthEntries(class Classification, detailed bool) []MonthEntry {
	var src []PeriodStatus
	switch class {
	case FullyPaid:
		src = r.PaidMonths
	case PartiallyPaid:
		src = r.PartiallyPaidMonths
	case Unpaid:
		src = r.UnpaidMonths
	}
	out := make([]MonthEntry, 0, len(src))
	for _, p := range src {
		if detailed {
			out = append(out, MonthDetail{PeriodStatus: p})
		} else {
			out = append(out, MonthLabel(p.Period.Name))
		}
	}
	return out
}

// DecodeMonthEntries parses a JSON array whose elements are period names or
// period status objects.
func DecodeMonthEntries(data []byte) ([]MonthEntry, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode month entries: %w", err)
	}
	out := make([]MonthEntry, 0, len(raw))
	for i, elem := range raw {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 {
			return nil, fmt.Errorf("decode month entries: element %d is empty", i)
		}
		switch elem[0] {
		case '"':
			var label string
			if err := json.Unmarshal(elem, &label); err != nil {
				return nil, fmt.Errorf("decode month entries: element %d: %w", i, err)
			}
			out = append(out, MonthLabel(label))
		case '{':
			var detail MonthDetail
			if err := json.Unmarshal(elem, &detail.PeriodStatus); err != nil {
				return nil, fmt.Errorf("decode month entries: element %d: %w", i, err)
			}
			if detail.Period.Name == "" {
				return nil, fmt.Errorf("decode month entries: element %d has no period name", i)
			}
			out = append(out, detail)
		default:
			return nil, fmt.Errorf("decode month entries: element %d is neither a string nor an object", i)
		}
	}
	return out, nil
}

// MarshalMonthEntries encodes entries so DecodeMonthEntries reads them back.
func MarshalMonthEntries(entries []MonthEntry) ([]byte, error) {
	raw := make([]any, 0, len(entries))
	for _, e := range entries {
		switch v := e.(type) {
		case MonthLabel:
			raw = append(raw, string(v))
		case MonthDetail:
			raw = append(raw, v.PeriodStatus)
		default:
			return nil, fmt.Errorf("unsupported month entry %T", e)
		}
	}
	return json.Marshal(raw)
}
