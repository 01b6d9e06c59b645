// Package fieldhandler is the dispatch table from logical column type to
// filter handler.
//
// # Architecture
//
// Every column type has one Handler variant. Handlers are stateless and
// safe for concurrent use; per-evaluation state (the SQL builder and the
// sampled "now") travels in a Scope.
//
//	filterir.Comparison ──► For(column.UIDT) ──► Handler.Filter ──► SQL expression
//
// Date-like types (Date, DateTime, CreatedTime, LastModifiedTime) share one
// comparator strategy parameterized by a ValueFormat: day-granular for
// Date, zone-normalized instants for the others.
package fieldhandler

import (
	"fmt"
	"time"

	"github.com/changsongyang/nocodb/internal/filterir"
	"github.com/changsongyang/nocodb/internal/model"
	"github.com/changsongyang/nocodb/internal/sqlfrag"
	"github.com/changsongyang/nocodb/internal/timezone"
)

// Scope is the per-evaluation state handed to handlers.
type Scope struct {
	// Builder collects the bound values of the WHERE clause being built.
	Builder *sqlfrag.Builder

	// Now is sampled once per evaluation. Handlers convert it into the
	// resolved zone; they never read the clock.
	Now time.Time

	// Zones carries the view/base timezone defaults.
	Zones timezone.Options
}

// Handler is the uniform filter contract of a column type.
//
// This is a sealed interface - only types in this package implement it.
type Handler interface {
	// Type returns the logical column type handled.
	Type() model.UIType

	// ParseUserInput validates a value written to a column and returns the
	// canonical storage value. nil and "" pass through unchanged.
	ParseUserInput(value any, col *model.Column) (any, error)

	FilterEq(s *Scope, c *filterir.Comparison) (string, error)
	FilterNeq(s *Scope, c *filterir.Comparison) (string, error)
	FilterGt(s *Scope, c *filterir.Comparison) (string, error)
	FilterGte(s *Scope, c *filterir.Comparison) (string, error)
	FilterLt(s *Scope, c *filterir.Comparison) (string, error)
	FilterLte(s *Scope, c *filterir.Comparison) (string, error)

	// Filter dispatches any operator of the comparison.
	Filter(s *Scope, c *filterir.Comparison) (string, error)

	handler() // Marker method - seals interface to this package
}

// DateLike is implemented by the date-like handlers.
type DateLike interface {
	Handler

	// Timezone returns the zone used to interpret relative dates for c.
	Timezone(s *Scope, c *filterir.Comparison) string

	// ComparisonOp compares the column against the calendar day.
	ComparisonOp(s *Scope, c *filterir.Comparison, cmp sqlfrag.Cmp, day time.Time) string

	// ComparisonBetween matches the inclusive day range [lo, hi].
	ComparisonBetween(s *Scope, c *filterir.Comparison, lo, hi time.Time) string
}

var (
	dateTimeHandler         = newDateTimeHandler(model.UITypeDateTime)
	createdTimeHandler      = newDateTimeHandler(model.UITypeCreatedTime)
	lastModifiedTimeHandler = newDateTimeHandler(model.UITypeLastModifiedTime)
	dateHandler             = &DateHandler{dateComparator{uidt: model.UITypeDate, format: DayFormat}}
)

// For returns the handler for a logical column type.
func For(uidt model.UIType) (Handler, error) {
	switch uidt {
	case model.UITypeID, model.UITypeNumber, model.UITypeDecimal, model.UITypeCurrency,
		model.UITypePercent, model.UITypeRating:
		return newNumberHandler(uidt), nil
	case model.UITypeSingleLineText, model.UITypeLongText, model.UITypeEmail,
		model.UITypeURL, model.UITypePhoneNumber:
		return newTextHandler(uidt), nil
	case model.UITypeCheckbox:
		return newCheckboxHandler(), nil
	case model.UITypeSingleSelect, model.UITypeMultiSelect:
		return newSelectHandler(uidt), nil
	case model.UITypeDate:
		return dateHandler, nil
	case model.UITypeDateTime:
		return dateTimeHandler, nil
	case model.UITypeCreatedTime:
		return createdTimeHandler, nil
	case model.UITypeLastModifiedTime:
		return lastModifiedTimeHandler, nil
	}
	return nil, fmt.Errorf("no filter handler for column type %q", uidt)
}

// MustFor is For for types known to be valid.
func MustFor(uidt model.UIType) Handler {
	h, err := For(uidt)
	if err != nil {
		panic(err)
	}
	return h
}

// field returns the physical column name a comparison filters on.
func field(c *filterir.Comparison) string {
	if c.Column != nil {
		return c.Column.Name()
	}
	return c.Field
}

func columnType(c *filterir.Comparison) string {
	if c.Column != nil {
		return string(c.Column.UIDT)
	}
	return ""
}
