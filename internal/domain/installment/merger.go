package installment

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// MergedEntry is one month of the combined customer-facing schedule.
type MergedEntry struct {
	MonthNumber int
	Date        time.Time
	Amount      decimal.Decimal
}

// Merge combines per-line schedules into a single timeline keyed by month
// number. Amounts for a shared month are summed; the date comes from the
// first line seen for that month. The result is ordered ascending by month.
//
// Merging is a read-time view only: the per-line entries it consumes are what
// gets persisted.
func Merge(schedules ...[]ScheduleEntry) []MergedEntry {
	byMonth := make(map[int]*MergedEntry)
	for _, schedule := range schedules {
		for _, entry := range schedule {
			if existing, ok := byMonth[entry.MonthNumber]; ok {
				existing.Amount = existing.Amount.Add(entry.Amount)
				continue
			}
			byMonth[entry.MonthNumber] = &MergedEntry{
				MonthNumber: entry.MonthNumber,
				Date:        entry.Date,
				Amount:      entry.Amount,
			}
		}
	}

	merged := make([]MergedEntry, 0, len(byMonth))
	for _, entry := range byMonth {
		merged = append(merged, *entry)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].MonthNumber < merged[j].MonthNumber
	})
	return merged
}
