package filterparse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/changsongyang/nocodb/internal/filtererr"
	"github.com/changsongyang/nocodb/internal/filterir"
)

// rowNamespace derives stable ids for rows stored without one.
var rowNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("nocofilter:filter-row"))

// Row is a stored view filter as the REST layer produces it.
type Row struct {
	ID              string               `json:"id,omitempty" yaml:"id,omitempty"`
	FkColumnID      string               `json:"fk_column_id,omitempty" yaml:"fk_column_id,omitempty"`
	Field           string               `json:"field,omitempty" yaml:"field,omitempty"`
	ComparisonOp    string               `json:"comparison_op,omitempty" yaml:"comparison_op,omitempty"`
	ComparisonSubOp string               `json:"comparison_sub_op,omitempty" yaml:"comparison_sub_op,omitempty"`
	LogicalOp       string               `json:"logical_op,omitempty" yaml:"logical_op,omitempty"`
	Value           any                  `json:"value,omitempty" yaml:"value,omitempty"`
	Meta            *filterir.FilterMeta `json:"meta,omitempty" yaml:"meta,omitempty"`
	IsGroup         bool                 `json:"is_group,omitempty" yaml:"is_group,omitempty"`
	Children        []Row                `json:"children,omitempty" yaml:"children,omitempty"`
}

// FromJSON decodes a JSON array of filter rows and converts it.
func FromJSON(data []byte) (filterir.Node, error) {
	var rows []Row
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rows); err != nil {
		return nil, filtererr.InvalidSyntax(-1, "decode filter rows: %v", err)
	}
	return FromRows(rows)
}

// FromRows converts stored filter rows into a filter tree.
//
// Sibling rows are joined by each row's logical_op (the first row's is
// ignored) with AND binding tighter than OR, the way chained where/orWhere
// calls evaluate. A group row contributes its children as one operand.
func FromRows(rows []Row) (filterir.Node, error) {
	return fromRows(rows, "")
}

func fromRows(rows []Row, path string) (filterir.Node, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	var (
		disjuncts []filterir.Node
		current   []filterir.Node
	)
	flush := func() {
		switch len(current) {
		case 0:
		case 1:
			disjuncts = append(disjuncts, current[0])
		default:
			disjuncts = append(disjuncts, filterir.And(current...))
		}
		current = nil
	}

	for i, r := range rows {
		rowPath := fmt.Sprintf("%s/%d", path, i)
		n, err := fromRow(r, rowPath)
		if err != nil {
			return nil, err
		}
		if n == nil {
			continue
		}

		logical := strings.ToLower(strings.TrimSpace(r.LogicalOp))
		if i > 0 && logical == "or" {
			flush()
		} else if i > 0 && logical != "" && logical != "and" && logical != "not" {
			return nil, filtererr.InvalidSyntax(-1, "row %s: unknown logical_op %q", rowPath, r.LogicalOp)
		}
		if logical == "not" {
			n = &filterir.Not{Child: n}
		}
		current = append(current, n)
	}
	flush()

	switch len(disjuncts) {
	case 0:
		return nil, nil
	case 1:
		return disjuncts[0], nil
	}
	return filterir.Or(disjuncts...), nil
}

func fromRow(r Row, path string) (filterir.Node, error) {
	if r.IsGroup {
		return fromRows(r.Children, path)
	}

	field := r.FkColumnID
	if field == "" {
		field = r.Field
	}
	if field == "" {
		return nil, filtererr.InvalidSyntax(-1, "row %s: fk_column_id is required", path)
	}
	op, ok := filterir.ParseOp(r.ComparisonOp)
	if !ok {
		return nil, filtererr.InvalidSyntax(-1, "row %s: unknown comparison_op %q", path, r.ComparisonOp)
	}

	c := &filterir.Comparison{
		ID:     r.ID,
		Field:  field,
		Op:     op,
		Values: rowValues(op, r.Value),
		Meta:   r.Meta,
	}
	if c.ID == "" {
		c.ID = uuid.NewSHA1(rowNamespace, []byte(path)).String()
	}
	if r.ComparisonSubOp != "" {
		sub, ok := filterir.ParseSubOp(r.ComparisonSubOp)
		if !ok {
			return nil, filtererr.InvalidFilterValue(field, string(op), r.ComparisonSubOp, r.ComparisonSubOp,
				"unknown sub-operator %q", r.ComparisonSubOp)
		}
		c.SubOp = sub
	}
	return c, nil
}

// rowValues spreads a stored value into comparison operands. List
// operators accept a JSON array or a comma-separated string.
func rowValues(op filterir.Op, v any) []any {
	if op.TakesNoValue() || v == nil {
		return nil
	}
	if list, ok := v.([]any); ok {
		return list
	}

	switch op {
	case filterir.OpBtw, filterir.OpNbtw, filterir.OpIn:
		if s, ok := v.(string); ok {
			parts := strings.Split(s, ",")
			out := make([]any, len(parts))
			for i, part := range parts {
				out[i] = strings.TrimSpace(part)
			}
			return out
		}
	}

	if n, ok := v.(float64); ok && n == float64(int64(n)) {
		return []any{strconv.FormatInt(int64(n), 10)}
	}
	return []any{v}
}
