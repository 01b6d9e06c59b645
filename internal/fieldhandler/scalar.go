package fieldhandler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/changsongyang/nocodb/internal/filtererr"
	"github.com/changsongyang/nocodb/internal/filterir"
	"github.com/changsongyang/nocodb/internal/model"
	"github.com/changsongyang/nocodb/internal/sqlfrag"
)

// scalar implements the comparison capabilities shared by the text and
// number handlers. operand converts one filter value into a comparand.
type scalar struct {
	uidt    model.UIType
	operand func(v any) (sqlfrag.Value, error)
}

func (s scalar) handler() {}

// Type returns the logical column type handled.
func (s scalar) Type() model.UIType { return s.uidt }

func (s scalar) value(c *filterir.Comparison, v any) (sqlfrag.Value, error) {
	out, err := s.operand(v)
	if err != nil {
		return sqlfrag.Value{}, filtererr.InvalidFilterValue(c.Field, string(c.Op), "", v,
			"%v is not a valid %s value", v, s.uidt)
	}
	return out, nil
}

func (s scalar) compare(sc *Scope, c *filterir.Comparison, cmp sqlfrag.Cmp) (string, error) {
	v, err := s.value(c, c.Value())
	if err != nil {
		return "", err
	}
	return sc.Builder.Compare(field(c), cmp, v), nil
}

// FilterEq matches equal values. A nil operand matches NULL rows.
func (s scalar) FilterEq(sc *Scope, c *filterir.Comparison) (string, error) {
	if c.Value() == nil {
		return sc.Builder.IsNull(field(c)), nil
	}
	return s.compare(sc, c, sqlfrag.Eq)
}

// FilterNeq matches different values and NULL rows. A nil operand
// matches non-NULL rows.
func (s scalar) FilterNeq(sc *Scope, c *filterir.Comparison) (string, error) {
	if c.Value() == nil {
		return sc.Builder.IsNotNull(field(c)), nil
	}
	return s.compare(sc, c, sqlfrag.Ne)
}

func (s scalar) FilterGt(sc *Scope, c *filterir.Comparison) (string, error) {
	return s.compare(sc, c, sqlfrag.Gt)
}

func (s scalar) FilterGte(sc *Scope, c *filterir.Comparison) (string, error) {
	return s.compare(sc, c, sqlfrag.Gte)
}

func (s scalar) FilterLt(sc *Scope, c *filterir.Comparison) (string, error) {
	return s.compare(sc, c, sqlfrag.Lt)
}

func (s scalar) FilterLte(sc *Scope, c *filterir.Comparison) (string, error) {
	return s.compare(sc, c, sqlfrag.Lte)
}

func (s scalar) filterIn(sc *Scope, c *filterir.Comparison) (string, error) {
	values := make([]sqlfrag.Value, 0, len(c.Values))
	for _, v := range c.Values {
		out, err := s.value(c, v)
		if err != nil {
			return "", err
		}
		values = append(values, out)
	}
	return sc.Builder.In(field(c), values...), nil
}

func (s scalar) unsupported(c *filterir.Comparison) error {
	return filtererr.UnsupportedOperator(c.Field, string(s.uidt), string(c.Op), string(c.SubOp))
}

// TextHandler handles free-text columns.
type TextHandler struct {
	scalar
}

func newTextHandler(uidt model.UIType) *TextHandler {
	return &TextHandler{scalar{uidt: uidt, operand: func(v any) (sqlfrag.Value, error) {
		s, err := cast.ToStringE(v)
		if err != nil {
			return sqlfrag.Value{}, err
		}
		return sqlfrag.PlainValue(s), nil
	}}}
}

// FilterEq treats an empty operand as blank.
func (h *TextHandler) FilterEq(sc *Scope, c *filterir.Comparison) (string, error) {
	if s, ok := c.Value().(string); ok && s == "" {
		return sc.Builder.IsBlank(field(c)), nil
	}
	return h.scalar.FilterEq(sc, c)
}

// Filter dispatches the text operators.
func (h *TextHandler) Filter(sc *Scope, c *filterir.Comparison) (string, error) {
	b := sc.Builder
	switch c.Op {
	case filterir.OpEq:
		return h.FilterEq(sc, c)
	case filterir.OpNeq:
		return h.FilterNeq(sc, c)
	case filterir.OpGt:
		return h.FilterGt(sc, c)
	case filterir.OpGte:
		return h.FilterGte(sc, c)
	case filterir.OpLt:
		return h.FilterLt(sc, c)
	case filterir.OpLte:
		return h.FilterLte(sc, c)
	case filterir.OpLike, filterir.OpNlike:
		s, err := cast.ToStringE(c.Value())
		if err != nil {
			return "", filtererr.InvalidFilterValue(c.Field, string(c.Op), "", c.Value(), "expected text")
		}
		return b.Like(field(c), "%"+s+"%", c.Op == filterir.OpNlike), nil
	case filterir.OpIn:
		return h.filterIn(sc, c)
	case filterir.OpBlank:
		return b.IsBlank(field(c)), nil
	case filterir.OpNotBlank:
		return b.IsNotBlank(field(c)), nil
	case filterir.OpEmpty:
		return b.Compare(field(c), sqlfrag.Eq, sqlfrag.PlainValue("")), nil
	case filterir.OpNotEmpty:
		return b.Compare(field(c), sqlfrag.Ne, sqlfrag.PlainValue("")), nil
	case filterir.OpNull:
		return b.IsNull(field(c)), nil
	case filterir.OpNotNull:
		return b.IsNotNull(field(c)), nil
	}
	return "", h.unsupported(c)
}

// ParseUserInput coerces the value to text. Email columns require an "@".
func (h *TextHandler) ParseUserInput(value any, col *model.Column) (any, error) {
	if value == nil {
		return nil, nil
	}
	s, err := cast.ToStringE(value)
	if err != nil || (h.uidt == model.UITypeEmail && s != "" && !strings.Contains(s, "@")) {
		return nil, filtererr.InvalidValueForField(titleOf(col), string(h.uidt), value)
	}
	return s, nil
}

// NumberHandler handles numeric columns, including the ID column.
type NumberHandler struct {
	scalar
}

func newNumberHandler(uidt model.UIType) *NumberHandler {
	return &NumberHandler{scalar{uidt: uidt, operand: func(v any) (sqlfrag.Value, error) {
		n, err := toNumber(v)
		if err != nil {
			return sqlfrag.Value{}, err
		}
		return sqlfrag.PlainValue(n), nil
	}}}
}

// Filter dispatches the numeric operators.
func (h *NumberHandler) Filter(sc *Scope, c *filterir.Comparison) (string, error) {
	b := sc.Builder
	switch c.Op {
	case filterir.OpEq:
		return h.FilterEq(sc, c)
	case filterir.OpNeq:
		return h.FilterNeq(sc, c)
	case filterir.OpGt:
		return h.FilterGt(sc, c)
	case filterir.OpGte:
		return h.FilterGte(sc, c)
	case filterir.OpLt:
		return h.FilterLt(sc, c)
	case filterir.OpLte:
		return h.FilterLte(sc, c)
	case filterir.OpBtw, filterir.OpNbtw:
		if len(c.Values) != 2 {
			return "", filtererr.InvalidFilterValue(c.Field, string(c.Op), "", c.Values,
				"%s takes exactly 2 values, got %d", c.Op, len(c.Values))
		}
		lo, err := h.value(c, c.Values[0])
		if err != nil {
			return "", err
		}
		hi, err := h.value(c, c.Values[1])
		if err != nil {
			return "", err
		}
		if c.Op == filterir.OpNbtw {
			return b.NotBetween(field(c), lo, hi), nil
		}
		return b.Between(field(c), lo, hi), nil
	case filterir.OpIn:
		return h.filterIn(sc, c)
	case filterir.OpBlank, filterir.OpNull, filterir.OpEmpty:
		return b.IsNull(field(c)), nil
	case filterir.OpNotBlank, filterir.OpNotNull, filterir.OpNotEmpty:
		return b.IsNotNull(field(c)), nil
	}
	return "", h.unsupported(c)
}

// ParseUserInput coerces the value to a number. Rating values cannot be
// negative.
func (h *NumberHandler) ParseUserInput(value any, col *model.Column) (any, error) {
	if value == nil {
		return nil, nil
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return nil, nil
	}
	n, err := toNumber(value)
	if err != nil {
		return nil, filtererr.InvalidValueForField(titleOf(col), string(h.uidt), value)
	}
	if h.uidt == model.UITypeRating && cast.ToFloat64(n) < 0 {
		return nil, filtererr.InvalidValueForField(titleOf(col), string(h.uidt), value)
	}
	return n, nil
}

// toNumber returns an int64 for integral input and a float64 otherwise.
// Strings are read as decimal.
func toNumber(v any) (any, error) {
	switch n := v.(type) {
	case nil:
		return nil, fmt.Errorf("missing number")
	case bool:
		return nil, fmt.Errorf("boolean is not a number")
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("parse number %q", n)
		}
		return f, nil
	case float32, float64:
		f := cast.ToFloat64(n)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f), nil
		}
		return f, nil
	}
	return cast.ToInt64E(v)
}

func titleOf(col *model.Column) string {
	if col == nil {
		return ""
	}
	return col.Title
}
