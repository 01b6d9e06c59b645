// Package filterir provides the intermediate representation of a filter
// expression: a tree of per-field comparisons joined by logical groups.
//
// ARCHITECTURE:
//
// The filter IR sits between the textual filter DSL (or the JSON filter
// rows stored on a view) and the per-column-type SQL handlers:
//
//	[filter DSL]  ─┐
//	               ├→ [Filter IR] → [field handlers] → [SQL fragment]
//	[filter rows] ─┘
//
// SEALED INTERFACES:
//
// Node is a sealed interface using the marker method pattern. Only
// Comparison, Group and Not implement it, so the compiler's type switch
// is exhaustive:
//
//	switch n := node.(type) {
//	case *Comparison:
//	    // dispatch to the column's handler
//	case *Group:
//	    // AND / OR of children
//	case *Not:
//	    // negate child
//	}
//
// BINDING:
//
// The parser does not know column types, so a freshly parsed Comparison
// carries its operand tokens in Values. Binding attaches the Column and,
// for date-like columns with a date-aware operator, moves the first token
// into SubOp. Validate checks the bound tree.
package filterir
