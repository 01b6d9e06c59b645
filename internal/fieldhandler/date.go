package fieldhandler

import (
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/changsongyang/nocodb/internal/daterange"
	"github.com/changsongyang/nocodb/internal/filtererr"
	"github.com/changsongyang/nocodb/internal/filterir"
	"github.com/changsongyang/nocodb/internal/model"
	"github.com/changsongyang/nocodb/internal/sqlfrag"
	"github.com/changsongyang/nocodb/internal/timezone"
)

const (
	// TimestampLayout renders instant comparands.
	TimestampLayout = "2006-01-02 15:04:05.999999"

	// StorageTimestampLayout renders canonical DateTime storage values.
	StorageTimestampLayout = "2006-01-02 15:04:05"
)

// ValueFormat is the formatting strategy of a date-like column.
type ValueFormat struct {
	// Name identifies the strategy in debug logs.
	Name string

	// DayGranular is true when the column holds calendar days, so a day
	// is a single comparable value rather than a span of instants.
	DayGranular bool

	// Lower and Upper render the first and last comparable value of a
	// calendar day (midnight in the resolved zone).
	Lower func(day time.Time) sqlfrag.Value
	Upper func(day time.Time) sqlfrag.Value

	// Canonical renders a parsed user input for storage.
	Canonical func(t time.Time) string
}

// DayFormat compares YYYY-MM-DD strings regardless of display format.
var DayFormat = ValueFormat{
	Name:        "date",
	DayGranular: true,
	Lower:       func(day time.Time) sqlfrag.Value { return sqlfrag.DateValue(daterange.FormatDate(day)) },
	Upper:       func(day time.Time) sqlfrag.Value { return sqlfrag.DateValue(daterange.FormatDate(day)) },
	Canonical:   daterange.FormatDate,
}

// InstantFormat compares UTC timestamps spanning the day in its zone.
var InstantFormat = ValueFormat{
	Name: "datetime",
	Lower: func(day time.Time) sqlfrag.Value {
		return sqlfrag.TimestampValue(daterange.StartOfDay(day).UTC().Format(TimestampLayout))
	},
	Upper: func(day time.Time) sqlfrag.Value {
		return sqlfrag.TimestampValue(daterange.EndOfDay(day).UTC().Format(TimestampLayout))
	},
	Canonical: func(t time.Time) string { return t.UTC().Format(StorageTimestampLayout) },
}

// dateComparator is the date-like behavior shared by DateHandler and
// DateTimeHandler.
type dateComparator struct {
	uidt   model.UIType
	format ValueFormat
}

func (d dateComparator) handler() {}

// Type returns the logical column type handled.
func (d dateComparator) Type() model.UIType { return d.uidt }

// Format returns the value formatting strategy.
func (d dateComparator) Format() ValueFormat { return d.format }

// Timezone resolves the zone for c.
func (d dateComparator) Timezone(s *Scope, c *filterir.Comparison) string {
	return timezone.Resolve(c.Meta, c.Column, s.Zones)
}

// ComparisonOp compares the column against a calendar day.
//
//	eq   day-granular: f = D          otherwise: f BETWEEN lo AND hi
//	neq  day-granular: (f <> D OR f IS NULL)
//	     otherwise:    (f < lo OR f > hi OR f IS NULL)
//	gt   f > hi    gte  f >= lo    lt  f < lo    lte  f <= hi
func (d dateComparator) ComparisonOp(s *Scope, c *filterir.Comparison, cmp sqlfrag.Cmp, day time.Time) string {
	b := s.Builder
	f := field(c)
	slog.Debug("comparisonOp",
		"handler", d.format.Name,
		"field", c.Field,
		"cmp", string(cmp),
		"day", daterange.FormatDate(day),
		"timezone", day.Location().String())

	switch cmp {
	case sqlfrag.Eq:
		if d.format.DayGranular {
			return b.Compare(f, sqlfrag.Eq, d.format.Lower(day))
		}
		return b.Between(f, d.format.Lower(day), d.format.Upper(day))
	case sqlfrag.Ne:
		if d.format.DayGranular {
			return b.Compare(f, sqlfrag.Ne, d.format.Lower(day))
		}
		return b.Or(
			b.Compare(f, sqlfrag.Lt, d.format.Lower(day)),
			b.Compare(f, sqlfrag.Gt, d.format.Upper(day)),
			b.IsNull(f),
		)
	case sqlfrag.Gt, sqlfrag.Lte:
		return b.Compare(f, cmp, d.format.Upper(day))
	default: // Gte, Lt
		return b.Compare(f, cmp, d.format.Lower(day))
	}
}

// ComparisonBetween matches the inclusive day range [lo, hi].
func (d dateComparator) ComparisonBetween(s *Scope, c *filterir.Comparison, lo, hi time.Time) string {
	slog.Debug("comparisonBetween",
		"handler", d.format.Name,
		"field", c.Field,
		"from", daterange.FormatDate(lo),
		"to", daterange.FormatDate(hi))
	return s.Builder.Between(field(c), d.format.Lower(lo), d.format.Upper(hi))
}

// anchor resolves the point sub-operator of c to a calendar day in the
// comparison's zone.
func (d dateComparator) anchor(s *Scope, c *filterir.Comparison) (time.Time, error) {
	if !c.SubOp.IsPoint() {
		if c.SubOp == "" {
			return time.Time{}, filtererr.InvalidFilterValue(c.Field, string(c.Op), "", c.Value(),
				"date operator %q requires a sub-operator", c.Op)
		}
		return time.Time{}, filtererr.UnsupportedOperator(c.Field, string(d.uidt), string(c.Op), string(c.SubOp))
	}
	now := s.Now.In(timezone.Load(d.Timezone(s, c)))
	r, err := daterange.Compute(c.SubOp, c.Value(), now, d.layouts(c)...)
	if err != nil {
		return time.Time{}, filtererr.Annotate(err, c.Field, string(d.uidt), string(c.Op))
	}
	slog.Debug("anchor resolved",
		"handler", d.format.Name,
		"field", c.Field,
		"sub_op", string(c.SubOp),
		"anchor", r.String())
	return r.Anchor, nil
}

func (d dateComparator) layouts(c *filterir.Comparison) []string {
	if c.Column == nil {
		return nil
	}
	return daterange.DisplayLayouts(c.Column.Meta.DateFormat, "")
}

func (d dateComparator) compare(s *Scope, c *filterir.Comparison, cmp sqlfrag.Cmp) (string, error) {
	day, err := d.anchor(s, c)
	if err != nil {
		return "", err
	}
	return d.ComparisonOp(s, c, cmp, day), nil
}

// FilterEq matches rows on the anchor day.
func (d dateComparator) FilterEq(s *Scope, c *filterir.Comparison) (string, error) {
	return d.compare(s, c, sqlfrag.Eq)
}

// FilterNeq matches rows off the anchor day, including NULL rows.
func (d dateComparator) FilterNeq(s *Scope, c *filterir.Comparison) (string, error) {
	return d.compare(s, c, sqlfrag.Ne)
}

// FilterGt matches rows after the anchor day.
func (d dateComparator) FilterGt(s *Scope, c *filterir.Comparison) (string, error) {
	return d.compare(s, c, sqlfrag.Gt)
}

// FilterGte matches rows on or after the anchor day.
func (d dateComparator) FilterGte(s *Scope, c *filterir.Comparison) (string, error) {
	return d.compare(s, c, sqlfrag.Gte)
}

// FilterLt matches rows before the anchor day.
func (d dateComparator) FilterLt(s *Scope, c *filterir.Comparison) (string, error) {
	return d.compare(s, c, sqlfrag.Lt)
}

// FilterLte matches rows on or before the anchor day.
func (d dateComparator) FilterLte(s *Scope, c *filterir.Comparison) (string, error) {
	return d.compare(s, c, sqlfrag.Lte)
}

// Filter dispatches every operator a date-like column supports.
func (d dateComparator) Filter(s *Scope, c *filterir.Comparison) (string, error) {
	switch c.Op {
	case filterir.OpEq:
		return d.FilterEq(s, c)
	case filterir.OpNeq:
		return d.FilterNeq(s, c)
	case filterir.OpGt:
		return d.FilterGt(s, c)
	case filterir.OpGte:
		return d.FilterGte(s, c)
	case filterir.OpLt:
		return d.FilterLt(s, c)
	case filterir.OpLte:
		return d.FilterLte(s, c)
	case filterir.OpIsWithin:
		return d.filterWithin(s, c)
	case filterir.OpBtw, filterir.OpNbtw:
		return d.filterBetween(s, c)
	case filterir.OpBlank, filterir.OpNull:
		return s.Builder.IsNull(field(c)), nil
	case filterir.OpNotBlank, filterir.OpNotNull:
		return s.Builder.IsNotNull(field(c)), nil
	}
	return "", filtererr.UnsupportedOperator(c.Field, string(d.uidt), string(c.Op), string(c.SubOp))
}

func (d dateComparator) filterWithin(s *Scope, c *filterir.Comparison) (string, error) {
	if !c.SubOp.IsWindow() {
		if c.SubOp == "" {
			return "", filtererr.InvalidFilterValue(c.Field, string(c.Op), "", c.Value(),
				"isWithin requires a sub-operator")
		}
		return "", filtererr.UnsupportedOperator(c.Field, string(d.uidt), string(c.Op), string(c.SubOp))
	}
	now := s.Now.In(timezone.Load(d.Timezone(s, c)))
	r, err := daterange.Compute(c.SubOp, c.Value(), now)
	if err != nil {
		return "", filtererr.Annotate(err, c.Field, string(d.uidt), string(c.Op))
	}
	return d.ComparisonBetween(s, c, r.Lower(), r.Upper()), nil
}

func (d dateComparator) filterBetween(s *Scope, c *filterir.Comparison) (string, error) {
	if len(c.Values) != 2 {
		return "", filtererr.InvalidFilterValue(c.Field, string(c.Op), "", c.Values,
			"%s takes exactly 2 values, got %d", c.Op, len(c.Values))
	}
	loc := timezone.Load(d.Timezone(s, c))
	var days [2]time.Time
	for i, v := range c.Values {
		day, err := daterange.ParseDay(v, loc, d.layouts(c)...)
		if err != nil {
			return "", filtererr.InvalidFilterValue(c.Field, string(c.Op), "", v,
				"cannot parse %v as a date (YYYY-MM-DD)", v)
		}
		days[i] = day
	}

	if c.Op == filterir.OpNbtw {
		return s.Builder.NotBetween(field(c), d.format.Lower(days[0]), d.format.Upper(days[1])), nil
	}
	return d.ComparisonBetween(s, c, days[0], days[1]), nil
}

// ParseUserInput validates a date value for the column.
//
// nil and "" pass through unchanged. time.Time values, numeric UNIX
// timestamps, ISO strings and strings in the column's display format are
// accepted; the result is the canonical storage value.
func (d dateComparator) ParseUserInput(value any, col *model.Column) (any, error) {
	if value == nil {
		return nil, nil
	}
	if s, ok := value.(string); ok && s == "" {
		return value, nil
	}

	t, ok := d.parseTime(value, col)
	if !ok {
		title, uidt := "", string(d.uidt)
		if col != nil {
			title = col.Title
		}
		return nil, filtererr.InvalidValueForField(title, uidt, value)
	}
	return d.format.Canonical(t), nil
}

// Unix seconds outside 0001-01-01T00:00:00Z..9999-12-31T23:59:59Z have no
// four-digit year and are rejected.
const (
	minUnixSeconds = -62135596800
	maxUnixSeconds = 253402300799
)

func (d dateComparator) parseTime(value any, col *model.Column) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case bool:
		return time.Time{}, false
	case float32, float64:
		secs := cast.ToFloat64(v)
		if math.IsNaN(secs) || math.IsInf(secs, 0) || secs < minUnixSeconds || secs > maxUnixSeconds {
			return time.Time{}, false
		}
		whole := int64(secs)
		return time.Unix(whole, int64((secs-float64(whole))*1e9)).UTC(), true
	case string:
		s := strings.TrimSpace(v)
		if t, err := cast.ToTimeInDefaultLocationE(s, time.UTC); err == nil {
			return t, true
		}
		if col != nil {
			for _, layout := range daterange.DisplayLayouts(col.Meta.DateFormat, col.Meta.TimeFormat) {
				if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
					return t, true
				}
			}
		}
		return time.Time{}, false
	}

	secs, err := cast.ToInt64E(value)
	if err != nil || secs < minUnixSeconds || secs > maxUnixSeconds {
		return time.Time{}, false
	}
	return time.Unix(secs, 0).UTC(), true
}

// DateTimeHandler handles DateTime, CreatedTime and LastModifiedTime
// columns: values are instants, compared in UTC across the span of the
// anchor day in the resolved zone.
type DateTimeHandler struct {
	dateComparator
}

func newDateTimeHandler(uidt model.UIType) *DateTimeHandler {
	return &DateTimeHandler{dateComparator{uidt: uidt, format: InstantFormat}}
}

// DateHandler handles Date columns: values are calendar days compared as
// YYYY-MM-DD regardless of the display format.
type DateHandler struct {
	dateComparator
}

var (
	_ DateLike = (*DateHandler)(nil)
	_ DateLike = (*DateTimeHandler)(nil)
)
