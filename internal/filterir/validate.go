package filterir

import (
	"fmt"

	"github.com/changsongyang/nocodb/internal/filtererr"
)

// Validate checks a bound filter tree.
//
// Rules:
//   - every Comparison is bound to a column and uses a known operator
//   - a date-aware operator on a date-like column carries a sub-operator;
//     btw, nbtw, blank and notblank take literal values or none instead
//   - sub-operators appear only on date-like columns, window sub-operators
//     only with isWithin, point sub-operators only with eq..lte
//   - operand counts match the operator and sub-operator
//
// Validate stops at the first violation: a single bad leaf invalidates the
// whole expression.
func Validate(n Node) error {
	var err error
	Walk(n, func(node Node) bool {
		if err != nil {
			return false
		}
		switch v := node.(type) {
		case *Comparison:
			err = validateComparison(v)
		case *Not:
			if v.Child == nil {
				err = fmt.Errorf("not: child is required")
			}
		case *Group:
			if v.Logical != LogicalAnd && v.Logical != LogicalOr {
				err = fmt.Errorf("group: unknown logical operator %q", v.Logical)
			}
		}
		return err == nil
	})
	return err
}

func validateComparison(c *Comparison) error {
	if c.Column == nil {
		return fmt.Errorf("comparison on %q is not bound to a column", c.Field)
	}
	if _, ok := ParseOp(string(c.Op)); !ok {
		return filtererr.UnsupportedOperator(c.Field, string(c.Column.UIDT), string(c.Op), "")
	}

	dateLike := c.Column.UIDT.IsDateLike()

	if c.SubOp != "" {
		if _, ok := ParseSubOp(string(c.SubOp)); !ok {
			return filtererr.InvalidFilterValue(c.Field, string(c.Op), string(c.SubOp), c.SubOp,
				"unknown sub-operator %q", c.SubOp)
		}
		if !dateLike || !c.Op.IsDateAware() {
			return filtererr.UnsupportedOperator(c.Field, string(c.Column.UIDT), string(c.Op), string(c.SubOp))
		}
		if c.Op == OpIsWithin && !c.SubOp.IsWindow() {
			return filtererr.UnsupportedOperator(c.Field, string(c.Column.UIDT), string(c.Op), string(c.SubOp))
		}
		if c.Op != OpIsWithin && c.SubOp.IsWindow() {
			return filtererr.UnsupportedOperator(c.Field, string(c.Column.UIDT), string(c.Op), string(c.SubOp))
		}

		want := 0
		if c.SubOp.TakesArg() {
			want = 1
		}
		if len(c.Values) != want {
			return filtererr.InvalidFilterValue(c.Field, string(c.Op), string(c.SubOp), c.Values,
				"sub-operator %q takes %d value(s), got %d", c.SubOp, want, len(c.Values))
		}
		return nil
	}

	if dateLike && c.Op.IsDateAware() {
		return filtererr.InvalidFilterValue(c.Field, string(c.Op), "", c.Value(),
			"date operator %q requires a sub-operator", c.Op)
	}

	switch {
	case c.Op.TakesNoValue():
		// extra operands are ignored, as the DSL allows (field,blank,)
	case c.Op == OpBtw || c.Op == OpNbtw:
		if len(c.Values) != 2 {
			return filtererr.InvalidFilterValue(c.Field, string(c.Op), "", c.Values,
				"%s takes exactly 2 values, got %d", c.Op, len(c.Values))
		}
	case c.Op == OpIn || c.Op == OpAllOf || c.Op == OpAnyOf || c.Op == OpNAllOf || c.Op == OpNAnyOf:
		if len(c.Values) == 0 {
			return filtererr.InvalidFilterValue(c.Field, string(c.Op), "", nil,
				"%s takes at least one value", c.Op)
		}
	default:
		if len(c.Values) > 1 {
			return filtererr.InvalidFilterValue(c.Field, string(c.Op), "", c.Values,
				"%s takes a single value, got %d", c.Op, len(c.Values))
		}
	}
	return nil
}
