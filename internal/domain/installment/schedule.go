package installment

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleEntry is one installment of a single order line.
type ScheduleEntry struct {
	MonthNumber int
	Date        time.Time
	Amount      decimal.Decimal
}

// ScheduleDate computes the calendar date for payment monthNumber of a plan
// starting at start. It adds monthNumber months to start's (year, month)
// keeping start's day-of-month; when the target month is shorter, the day is
// clamped to the last day of that month instead of rolling into the next one.
// offsetDays calendar days are then added to the clamped date.
//
// Every month is computed independently from the original start day, so a
// clamp in February does not shorten the day for March onwards.
func ScheduleDate(start time.Time, monthNumber, offsetDays int) time.Time {
	year, month, day := start.Date()

	total := int(month) - 1 + monthNumber
	year += total / 12
	month = time.Month(total%12 + 1)

	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}

	d := time.Date(year, month, day, 0, 0, 0, 0, start.Location())
	return d.AddDate(0, 0, offsetDays)
}

// lastDayOfMonth returns the number of days in the given month.
// Day 0 of the following month normalizes to the last day of this one.
func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// BuildSchedule produces the full per-line schedule: one entry per month from
// 1 to the tariff's payments count, each carrying the same installment amount.
func BuildSchedule(start time.Time, tariff *Tariff, monthly decimal.Decimal) []ScheduleEntry {
	entries := make([]ScheduleEntry, 0, tariff.PaymentsCount)
	for month := 1; month <= tariff.PaymentsCount; month++ {
		entries = append(entries, ScheduleEntry{
			MonthNumber: month,
			Date:        ScheduleDate(start, month, tariff.OffsetDays),
			Amount:      monthly,
		})
	}
	return entries
}
