// Package engine evaluates filters: it is the glue between the parser, the
// column binder and the field handler dispatch table.
//
// ARCHITECTURE:
//
//	filter text / rows
//	      │ filterparse
//	      ▼
//	filterir.Node ── Bind(table) ── Validate
//	      │
//	      ▼ per comparison: fieldhandler.For(column.UIDT).Filter
//	SQL expression ── sqlfrag.Builder.Build ──► Fragment{SQL, Args}
//
// The engine never builds a full query and never touches a database; the
// caller embeds the fragment (see store.Find).
//
// CRITICAL PATTERNS:
//
// Single "now":
// The Clock is sampled once at the start of each evaluation and handed to
// every handler, so all relative dates in one filter are consistent.
//
// All-or-nothing:
// Errors are returned synchronously as *filtererr.Error values. A single
// bad leaf fails the evaluation; there is no partial filter.
package engine
