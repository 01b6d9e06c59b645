// Package daterange computes the calendar-day boundaries a date
// sub-operator resolves to.
//
// Every computation takes "now" as a parameter. The caller samples the
// clock once per filter evaluation and converts it into the resolved zone,
// so all relative dates in one filter agree.
//
// Results are calendar days: midnight in the zone of now. Formatting for
// SQL happens in the field handlers.
package daterange

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/changsongyang/nocodb/internal/filtererr"
	"github.com/changsongyang/nocodb/internal/filterir"
)

// MaxDays bounds numeric sub-operator arguments.
const MaxDays = 100000

// DateLayout is the canonical comparison format of Date columns.
const DateLayout = "2006-01-02"

// Range is the result of a sub-operator computation.
//
// Point sub-operators set only Anchor. Window sub-operators set Anchor to
// the earlier boundary and End to the later one.
type Range struct {
	Anchor time.Time
	End    time.Time
	HasEnd bool
}

// Lower returns the earlier boundary.
func (r Range) Lower() time.Time {
	if r.HasEnd && r.End.Before(r.Anchor) {
		return r.End
	}
	return r.Anchor
}

// Upper returns the later boundary (the anchor for point ranges).
func (r Range) Upper() time.Time {
	if r.HasEnd && r.End.After(r.Anchor) {
		return r.End
	}
	return r.Anchor
}

// String renders the range as "YYYY-MM-DD" or "[YYYY-MM-DD, YYYY-MM-DD]".
func (r Range) String() string {
	if !r.HasEnd {
		return FormatDate(r.Anchor)
	}
	return fmt.Sprintf("[%s, %s]", FormatDate(r.Lower()), FormatDate(r.Upper()))
}

// Compute resolves a sub-operator against now.
//
// arg is the sub-operator operand: a day count for daysAgo, daysFromNow,
// pastNumberOfDays and nextNumberOfDays, a date for exactDate, ignored
// otherwise. exactDate accepts YYYY-MM-DD and then any of layouts (Go
// layouts, e.g. a converted column display format); the literal is read
// as a calendar day and never shifted between zones.
func Compute(sub filterir.SubOp, arg any, now time.Time, layouts ...string) (Range, error) {
	today := Day(now)

	switch sub {
	case filterir.SubOpToday:
		return point(today), nil
	case filterir.SubOpTomorrow:
		return point(AddDays(today, 1)), nil
	case filterir.SubOpYesterday:
		return point(AddDays(today, -1)), nil
	case filterir.SubOpOneWeekAgo:
		return point(AddDays(today, -7)), nil
	case filterir.SubOpOneWeekFromNow:
		return point(AddDays(today, 7)), nil
	case filterir.SubOpOneMonthAgo:
		return point(AddMonths(today, -1)), nil
	case filterir.SubOpOneMonthFromNow:
		return point(AddMonths(today, 1)), nil

	case filterir.SubOpDaysAgo, filterir.SubOpDaysFromNow:
		n, err := DayCount(sub, arg)
		if err != nil {
			return Range{}, err
		}
		if sub == filterir.SubOpDaysAgo {
			n = -n
		}
		return point(AddDays(today, n)), nil

	case filterir.SubOpExactDate:
		d, err := ParseDay(arg, now.Location(), layouts...)
		if err != nil {
			return Range{}, filtererr.InvalidFilterValue("", "", string(sub), arg,
				"cannot parse %v as a date (YYYY-MM-DD)", arg)
		}
		return point(d), nil

	case filterir.SubOpPastWeek:
		return window(AddDays(today, -7), today), nil
	case filterir.SubOpPastMonth:
		return window(AddMonths(today, -1), today), nil
	case filterir.SubOpPastYear:
		return window(AddMonths(today, -12), today), nil
	case filterir.SubOpNextWeek:
		return window(today, AddDays(today, 7)), nil
	case filterir.SubOpNextMonth:
		return window(today, AddMonths(today, 1)), nil
	case filterir.SubOpNextYear:
		return window(today, AddMonths(today, 12)), nil

	case filterir.SubOpPastNumberOfDays, filterir.SubOpNextNumberOfDays:
		n, err := DayCount(sub, arg)
		if err != nil {
			return Range{}, err
		}
		if sub == filterir.SubOpPastNumberOfDays {
			return window(AddDays(today, -n), today), nil
		}
		return window(today, AddDays(today, n)), nil
	}

	return Range{}, filtererr.InvalidFilterValue("", "", string(sub), arg, "unknown sub-operator %q", sub)
}

func point(d time.Time) Range {
	return Range{Anchor: d}
}

func window(lo, hi time.Time) Range {
	return Range{Anchor: lo, End: hi, HasEnd: true}
}

// Day truncates t to midnight of its calendar day in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays moves a calendar day by n days. Unlike adding 24h multiples it
// is correct across DST transitions.
func AddDays(day time.Time, n int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, day.Location())
}

// AddMonths moves a calendar day by n months, clamping to the last day of
// the target month (Mar 31 - 1 month = Feb 28).
func AddMonths(day time.Time, n int) time.Time {
	y, m, d := day.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, day.Location())
	if last := DaysIn(first); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, day.Location())
}

// DaysIn returns the number of days in t's month.
func DaysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// StartOfDay returns the first instant of day.
func StartOfDay(day time.Time) time.Time {
	return Day(day)
}

// EndOfDay returns the last representable microsecond of day.
func EndOfDay(day time.Time) time.Time {
	return AddDays(Day(day), 1).Add(-time.Microsecond)
}

// FormatDate renders a calendar day as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DayCount reads the numeric operand of a sub-operator. Only decimal
// integers in [0, MaxDays] are accepted.
func DayCount(sub filterir.SubOp, arg any) (int, error) {
	invalid := func() error {
		return filtererr.InvalidFilterValue("", "", string(sub), arg,
			"expected a whole number of days between 0 and %d, got %v", MaxDays, arg)
	}

	var n int64
	switch v := arg.(type) {
	case nil:
		return 0, invalid()
	case string:
		s := strings.TrimSpace(v)
		if s == "" || strings.TrimLeft(s, "0123456789") != "" {
			return 0, invalid()
		}
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, invalid()
		}
		n = parsed
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, invalid()
		}
		n = int64(v)
	case float32:
		f := float64(v)
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, invalid()
		}
		n = int64(f)
	case bool:
		return 0, invalid()
	default:
		parsed, err := cast.ToInt64E(v)
		if err != nil {
			return 0, invalid()
		}
		n = parsed
	}

	if n < 0 || n > MaxDays {
		return 0, invalid()
	}
	return int(n), nil
}

// ParseDay reads a calendar day from a literal operand.
//
// Strings are tried as YYYY-MM-DD first, then against layouts. A
// time.Time contributes its calendar day in loc. The result is midnight
// in loc.
func ParseDay(arg any, loc *time.Location, layouts ...string) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch v := arg.(type) {
	case time.Time:
		return Day(v.In(loc)), nil
	case string:
		s := strings.TrimSpace(v)
		if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
			return t, nil
		}
		for _, layout := range layouts {
			if layout == "" {
				continue
			}
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return Day(t), nil
			}
		}
		return time.Time{}, fmt.Errorf("parse date %q", v)
	}
	return time.Time{}, fmt.Errorf("parse date: unsupported operand type %T", arg)
}
