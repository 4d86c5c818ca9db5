// Package frequency maps donation-type labels onto charge cadences.
package frequency

import (
	"fmt"
	"strings"
	"time"

	errs "donare/internal/errors"
)

// Code is the canonical frequency code persisted on schedule details.
type Code int

const (
	None      Code = 0
	Monthly   Code = 1
	Yearly    Code = 2
	Daily     Code = 3
	Weekly    Code = 4
	Quarterly Code = 5
)

// Iteration ceilings, one per class, all sized to a five-year horizon.
const (
	DailyCeiling     = 1825
	WeeklyCeiling    = 260
	MonthlyCeiling   = 60
	QuarterlyCeiling = 20
	YearlyCeiling    = 5
)

// Class describes one frequency cadence: its persisted code, the interval
// count recorded on detail rows, the processor-side billing interval, the
// next-charge-date step, and the iteration ceiling.
type Class struct {
	Code       Code
	Interval   int    // recorded interval unit count
	Unit       string // processor interval unit: day, week, month, year
	UnitCount  int64  // processor interval_count
	Ceiling    int
	stepMonths int
	stepDays   int
}

// Recurring reports whether the class bills more than once.
func (c Class) Recurring() bool {
	return c.Code != None
}

// NextDate applies the class's next-charge-date step to the given date.
func (c Class) NextDate(from time.Time) time.Time {
	if c.stepMonths == 0 && c.stepDays == 0 {
		return from
	}
	return from.AddDate(0, c.stepMonths, c.stepDays)
}

var classes = map[Code]Class{
	None:      {Code: None},
	Monthly:   {Code: Monthly, Interval: 1, Unit: "month", UnitCount: 1, Ceiling: MonthlyCeiling, stepMonths: 1},
	Yearly:    {Code: Yearly, Interval: 12, Unit: "year", UnitCount: 1, Ceiling: YearlyCeiling, stepMonths: 12},
	Daily:     {Code: Daily, Interval: 1, Unit: "day", UnitCount: 1, Ceiling: DailyCeiling, stepDays: 1},
	Weekly:    {Code: Weekly, Interval: 7, Unit: "week", UnitCount: 1, Ceiling: WeeklyCeiling, stepDays: 7},
	Quarterly: {Code: Quarterly, Interval: 3, Unit: "month", UnitCount: 3, Ceiling: QuarterlyCeiling, stepMonths: 3},
}

var labels = map[string]Code{
	"single":    None,
	"month":     Monthly,
	"monthly":   Monthly,
	"year":      Yearly,
	"yearly":    Yearly,
	"day":       Daily,
	"daily":     Daily,
	"week":      Weekly,
	"weekly":    Weekly,
	"quarter":   Quarterly,
	"quarterly": Quarterly,
}

// Classify resolves a donation-type label, case-insensitively and in both
// short and long forms, to its frequency class.
func Classify(label string) (Class, error) {
	code, ok := labels[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return Class{}, fmt.Errorf("%w: %q", errs.ErrUnsupportedFrequency, label)
	}
	return classes[code], nil
}

// ClassFor returns the class for an already-resolved code.
func ClassFor(code Code) Class {
	return classes[code]
}
