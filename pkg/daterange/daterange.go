// Package daterange partitions a span of calendar days into contiguous
// chunk-sized date ranges for independent availability queries.
package daterange

import (
	"fmt"
	"math"
	"time"
)

// DateFormat is the wire format for calendar dates (zero-padded).
const DateFormat = "2006-01-02"

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of calendar days covered by the range, inclusive.
// Rounds the elapsed time so ranges crossing a DST transition still count
// whole calendar days.
func (r DateRange) Days() int {
	return int(math.Round(r.End.Sub(r.Start).Hours()/24)) + 1
}

// StartDate returns the start formatted as YYYY-MM-DD.
func (r DateRange) StartDate() string {
	return r.Start.Format(DateFormat)
}

// EndDate returns the end formatted as YYYY-MM-DD.
func (r DateRange) EndDate() string {
	return r.End.Format(DateFormat)
}

// String implements fmt.Stringer.
func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.StartDate(), r.EndDate())
}

// MarshalJSON serializes the range as {"start":"YYYY-MM-DD","end":"YYYY-MM-DD"}.
func (r DateRange) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"start":%q,"end":%q}`, r.StartDate(), r.EndDate())), nil
}

// Partition splits the next totalDays calendar days into contiguous,
// non-overlapping ranges of chunkSizeDays each, anchored at today's local
// midnight. The final range is truncated so the ranges cover exactly
// totalDays days. The number of ranges is ceil(totalDays/chunkSizeDays).
//
// All positive inputs are valid; chunkSizeDays >= totalDays yields a single
// range spanning the whole window.
func Partition(chunkSizeDays, totalDays int) []DateRange {
	return PartitionFrom(Today(), chunkSizeDays, totalDays)
}

// PartitionFrom is Partition with an explicit anchor date. The anchor's
// time-of-day is zeroed in its own location.
func PartitionFrom(anchor time.Time, chunkSizeDays, totalDays int) []DateRange {
	start := midnight(anchor)

	count := (totalDays + chunkSizeDays - 1) / chunkSizeDays
	ranges := make([]DateRange, 0, count)

	remaining := totalDays
	for remaining > 0 {
		span := chunkSizeDays
		if span > remaining {
			span = remaining
		}
		ranges = append(ranges, DateRange{
			Start: start,
			End:   start.AddDate(0, 0, span-1),
		})
		start = start.AddDate(0, 0, span)
		remaining -= span
	}

	return ranges
}

// Today returns the current local date at midnight.
func Today() time.Time {
	return midnight(time.Now())
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
