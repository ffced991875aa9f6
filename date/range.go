package date

import "time"

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// Covering returns the smallest range of days that contains every instant of
// the half-open interval [start, end). The interval must not be empty.
func Covering(start, end time.Time) Range {
	// end is excluded: the last instant is the one just before it.
	return Range{From: Of(start), To: Of(end.Add(-time.Nanosecond))}
}

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns the number of days in the range.
func (r Range) Days() int {
	return int(r.To.time().Sub(r.From.time())/(24*time.Hour)) + 1
}

// Closed reports whether the whole range is before today, i.e. no new record
// can appear in it anymore.
func (r Range) Closed(today Date) bool { return r.To.Before(today) }

func (r Range) String() string { return r.From.String() + ".." + r.To.String() }
