package filterir

import (
	"fmt"

	"github.com/changsongyang/nocodb/internal/filtererr"
	"github.com/changsongyang/nocodb/internal/model"
)

// Bind resolves every comparison's field against the table and returns a
// bound copy of the tree. The input tree is not modified, so a parsed
// filter can be bound concurrently for several evaluations.
//
// For a date-like column with a date-aware operator, a leading operand
// that names a sub-operator is moved into SubOp.
func Bind(n Node, table *model.Table) (Node, error) {
	if n == nil {
		return nil, nil
	}
	if table == nil {
		return nil, fmt.Errorf("bind filter: nil table")
	}

	switch node := n.(type) {
	case *Comparison:
		return bindComparison(node, table)
	case *Group:
		out := &Group{Logical: node.Logical, Children: make([]Node, 0, len(node.Children))}
		for _, child := range node.Children {
			bound, err := Bind(child, table)
			if err != nil {
				return nil, err
			}
			out.Children = append(out.Children, bound)
		}
		return out, nil
	case *Not:
		child, err := Bind(node.Child, table)
		if err != nil {
			return nil, err
		}
		return &Not{Child: child}, nil
	default:
		return nil, fmt.Errorf("unsupported filter node type: %T", n)
	}
}

func bindComparison(c *Comparison, table *model.Table) (*Comparison, error) {
	col, ok := table.ColumnByID(c.Field)
	if !ok {
		col, ok = table.ColumnByTitle(c.Field)
	}
	if !ok {
		return nil, filtererr.UnknownField(c.Field)
	}

	out := &Comparison{
		ID:     c.ID,
		Field:  col.Title,
		Op:     c.Op,
		SubOp:  c.SubOp,
		Values: append([]any(nil), c.Values...),
		Column: col,
	}
	if c.Meta != nil {
		meta := *c.Meta
		out.Meta = &meta
	}

	if col.UIDT.IsDateLike() && c.Op.IsDateAware() && out.SubOp == "" && len(out.Values) > 0 {
		if s, isString := out.Values[0].(string); isString {
			if sub, known := ParseSubOp(s); known {
				out.SubOp = sub
				out.Values = out.Values[1:]
			}
		}
	}

	return out, nil
}
