package fieldhandler

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/changsongyang/nocodb/internal/filtererr"
	"github.com/changsongyang/nocodb/internal/filterir"
	"github.com/changsongyang/nocodb/internal/model"
	"github.com/changsongyang/nocodb/internal/sqlfrag"
)

// CheckboxHandler handles boolean columns. NULL reads as unchecked.
type CheckboxHandler struct {
	scalar
}

func newCheckboxHandler() *CheckboxHandler {
	return &CheckboxHandler{scalar{uidt: model.UITypeCheckbox, operand: func(v any) (sqlfrag.Value, error) {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return sqlfrag.Value{}, err
		}
		return sqlfrag.PlainValue(b), nil
	}}}
}

func (h *CheckboxHandler) checked(sc *Scope, c *filterir.Comparison, want bool) string {
	b := sc.Builder
	f := field(c)
	if want {
		return b.Compare(f, sqlfrag.Eq, sqlfrag.PlainValue(true))
	}
	return b.Or(b.Compare(f, sqlfrag.Eq, sqlfrag.PlainValue(false)), b.IsNull(f))
}

// FilterEq matches the boolean operand.
func (h *CheckboxHandler) FilterEq(sc *Scope, c *filterir.Comparison) (string, error) {
	v, err := h.value(c, c.Value())
	if err != nil {
		return "", err
	}
	return h.checked(sc, c, v.V.(bool)), nil
}

// FilterNeq matches the opposite of the boolean operand.
func (h *CheckboxHandler) FilterNeq(sc *Scope, c *filterir.Comparison) (string, error) {
	v, err := h.value(c, c.Value())
	if err != nil {
		return "", err
	}
	return h.checked(sc, c, !v.V.(bool)), nil
}

// Filter dispatches the checkbox operators.
func (h *CheckboxHandler) Filter(sc *Scope, c *filterir.Comparison) (string, error) {
	switch c.Op {
	case filterir.OpChecked:
		return h.checked(sc, c, true), nil
	case filterir.OpNotChecked:
		return h.checked(sc, c, false), nil
	case filterir.OpEq:
		return h.FilterEq(sc, c)
	case filterir.OpNeq:
		return h.FilterNeq(sc, c)
	case filterir.OpNull, filterir.OpBlank:
		return sc.Builder.IsNull(field(c)), nil
	case filterir.OpNotNull, filterir.OpNotBlank:
		return sc.Builder.IsNotNull(field(c)), nil
	}
	return "", h.unsupported(c)
}

// ParseUserInput coerces the value to a boolean.
func (h *CheckboxHandler) ParseUserInput(value any, col *model.Column) (any, error) {
	if value == nil {
		return nil, nil
	}
	if s, ok := value.(string); ok && s == "" {
		return nil, nil
	}
	b, err := cast.ToBoolE(value)
	if err != nil {
		return nil, filtererr.InvalidValueForField(titleOf(col), string(h.uidt), value)
	}
	return b, nil
}

// SelectHandler handles SingleSelect and MultiSelect columns.
//
// Multi-select values are stored as comma-separated option titles
// ("a,b"); an option matches when it is the whole value or one of its
// comma-delimited elements.
type SelectHandler struct {
	scalar
}

func newSelectHandler(uidt model.UIType) *SelectHandler {
	return &SelectHandler{scalar{uidt: uidt, operand: func(v any) (sqlfrag.Value, error) {
		s, err := cast.ToStringE(v)
		if err != nil {
			return sqlfrag.Value{}, err
		}
		return sqlfrag.PlainValue(s), nil
	}}}
}

func (h *SelectHandler) multi() bool {
	return h.uidt == model.UITypeMultiSelect
}

// options flattens the operands into trimmed option titles.
func (h *SelectHandler) options(c *filterir.Comparison) ([]string, error) {
	var out []string
	for _, v := range c.Values {
		if v == nil {
			continue
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, filtererr.InvalidFilterValue(c.Field, string(c.Op), "", v, "expected option title")
		}
		for _, opt := range strings.Split(s, ",") {
			if opt = strings.TrimSpace(opt); opt != "" {
				out = append(out, opt)
			}
		}
	}
	if len(out) == 0 {
		return nil, filtererr.InvalidFilterValue(c.Field, string(c.Op), "", c.Values, "at least one option is required")
	}
	return out, nil
}

// has matches rows containing opt.
func (h *SelectHandler) has(sc *Scope, c *filterir.Comparison, opt string) string {
	b := sc.Builder
	f := field(c)
	if !h.multi() {
		return b.Compare(f, sqlfrag.Eq, sqlfrag.PlainValue(opt))
	}
	return b.Or(
		b.Compare(f, sqlfrag.Eq, sqlfrag.PlainValue(opt)),
		b.Like(f, opt+",%", false),
		b.Like(f, "%,"+opt, false),
		b.Like(f, "%,"+opt+",%", false),
	)
}

// Filter dispatches the select operators.
func (h *SelectHandler) Filter(sc *Scope, c *filterir.Comparison) (string, error) {
	b := sc.Builder
	f := field(c)
	switch c.Op {
	case filterir.OpEq:
		return h.FilterEq(sc, c)
	case filterir.OpNeq:
		return h.FilterNeq(sc, c)
	case filterir.OpLike, filterir.OpNlike:
		s, err := cast.ToStringE(c.Value())
		if err != nil {
			return "", filtererr.InvalidFilterValue(c.Field, string(c.Op), "", c.Value(), "expected text")
		}
		return b.Like(f, "%"+s+"%", c.Op == filterir.OpNlike), nil
	case filterir.OpIn, filterir.OpAnyOf, filterir.OpNAnyOf, filterir.OpAllOf, filterir.OpNAllOf:
		opts, err := h.options(c)
		if err != nil {
			return "", err
		}
		parts := make([]string, len(opts))
		for i, opt := range opts {
			parts[i] = h.has(sc, c, opt)
		}
		switch c.Op {
		case filterir.OpAllOf:
			return b.And(parts...), nil
		case filterir.OpNAllOf:
			return b.Or(b.Not(b.And(parts...)), b.IsNull(f)), nil
		case filterir.OpNAnyOf:
			return b.Or(b.Not(b.Or(parts...)), b.IsNull(f)), nil
		}
		return b.Or(parts...), nil
	case filterir.OpBlank:
		return b.IsBlank(f), nil
	case filterir.OpNotBlank:
		return b.IsNotBlank(f), nil
	case filterir.OpEmpty:
		return b.Compare(f, sqlfrag.Eq, sqlfrag.PlainValue("")), nil
	case filterir.OpNotEmpty:
		return b.Compare(f, sqlfrag.Ne, sqlfrag.PlainValue("")), nil
	case filterir.OpNull:
		return b.IsNull(f), nil
	case filterir.OpNotNull:
		return b.IsNotNull(f), nil
	}
	return "", h.unsupported(c)
}

// ParseUserInput joins option lists into the stored comma-separated form.
// Option titles are trimmed and empty entries dropped, matching how filter
// operands are split.
func (h *SelectHandler) ParseUserInput(value any, col *model.Column) (any, error) {
	if value == nil {
		return nil, nil
	}
	var opts []string
	if s, ok := value.(string); ok {
		opts = strings.Split(s, ",")
	} else {
		var err error
		if opts, err = cast.ToStringSliceE(value); err != nil {
			return nil, filtererr.InvalidValueForField(titleOf(col), string(h.uidt), value)
		}
	}
	kept := opts[:0]
	for _, opt := range opts {
		if opt = strings.TrimSpace(opt); opt != "" {
			kept = append(kept, opt)
		}
	}
	if !h.multi() && len(kept) > 1 {
		return nil, filtererr.InvalidValueForField(titleOf(col), string(h.uidt), value)
	}
	return strings.Join(kept, ","), nil
}
