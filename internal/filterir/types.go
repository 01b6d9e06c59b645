package filterir

import "github.com/changsongyang/nocodb/internal/model"

// Node represents a filter expression in the filter IR.
//
// This is a sealed interface - only types in this package implement it.
// Node types:
//   - Comparison: a leaf predicate on one field
//   - Group: AND / OR of child nodes
//   - Not: negation of a child node
type Node interface {
	filterNode() // Marker method - seals interface to this package
}

// FilterMeta is the per-filter metadata object attached to a filter row.
type FilterMeta struct {
	// Timezone overrides the zone used to resolve relative dates.
	Timezone string `json:"timezone,omitempty" yaml:"timezone,omitempty"`
}

// Comparison is a leaf predicate: field, operator, optional date
// sub-operator and zero or more literal values.
//
// Semantics:
//
//	(Field, Op[, SubOp][, Values...])
//
// Example:
//
//	Comparison{Field: "Date", Op: OpEq, SubOp: SubOpExactDate, Values: []any{"2026-01-15"}}
//
// is written in the DSL as (Date,eq,exactDate,2026-01-15).
//
// Comparisons are ephemeral: built per evaluation and discarded once SQL
// has been generated.
type Comparison struct {
	// ID identifies the filter row this comparison came from (optional).
	ID string

	// Field is the column title (or id) as written by the user.
	Field string

	// Op is the comparison operator.
	Op Op

	// SubOp is the date sub-operator. Empty until binding for DSL input.
	SubOp SubOp

	// Values are the literal operands. nil elements are SQL NULL.
	Values []any

	// Meta is the per-filter metadata (timezone override).
	Meta *FilterMeta

	// Column is the bound column; nil until Bind succeeds.
	Column *model.Column
}

func (*Comparison) filterNode() {}

// Value returns the first operand, or nil.
func (c *Comparison) Value() any {
	if len(c.Values) == 0 {
		return nil
	}
	return c.Values[0]
}

// Group joins its children with a logical connective.
//
// An empty group is vacuously true and compiles to no restriction.
type Group struct {
	Logical  Logical
	Children []Node
}

func (*Group) filterNode() {}

// Not negates its child.
type Not struct {
	Child Node
}

func (*Not) filterNode() {}

// And builds a conjunction.
func And(children ...Node) *Group {
	return &Group{Logical: LogicalAnd, Children: children}
}

// Or builds a disjunction.
func Or(children ...Node) *Group {
	return &Group{Logical: LogicalOr, Children: children}
}

// Walk visits every node depth-first, parents before children.
// Returning false from fn stops descent below that node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch node := n.(type) {
	case *Group:
		for _, child := range node.Children {
			Walk(child, fn)
		}
	case *Not:
		Walk(node.Child, fn)
	}
}

// Comparisons returns every leaf of the tree in order.
func Comparisons(n Node) []*Comparison {
	var out []*Comparison
	Walk(n, func(node Node) bool {
		if c, ok := node.(*Comparison); ok {
			out = append(out, c)
		}
		return true
	})
	return out
}
