package fieldhandler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/changsongyang/nocodb/internal/dialect"
	"github.com/changsongyang/nocodb/internal/filtererr"
	"github.com/changsongyang/nocodb/internal/filterir"
	"github.com/changsongyang/nocodb/internal/model"
	"github.com/changsongyang/nocodb/internal/timezone"
)

func TestFor_CoversEveryUIType(t *testing.T) {
	for _, uidt := range model.AllUITypes() {
		t.Run(string(uidt), func(t *testing.T) {
			h, err := For(uidt)
			require.NoError(t, err)
			assert.Equal(t, uidt, h.Type())

			_, isDateLike := h.(DateLike)
			assert.Equal(t, uidt.IsDateLike(), isDateLike)
		})
	}

	_, err := For(model.UIType("Formula"))
	assert.Error(t, err)
}

func TestNonDateHandlers(t *testing.T) {
	title := &model.Column{Title: "Title", UIDT: model.UITypeSingleLineText}
	score := &model.Column{Title: "Score", ColumnName: "score", UIDT: model.UITypeNumber}
	done := &model.Column{Title: "Done", UIDT: model.UITypeCheckbox}
	status := &model.Column{Title: "Status", UIDT: model.UITypeSingleSelect}
	tags := &model.Column{Title: "Tags", UIDT: model.UITypeMultiSelect}

	testCases := []struct {
		name     string
		cmp      *filterir.Comparison
		wantSQL  string
		wantArgs []any
	}{
		{"text eq", leaf(title, filterir.OpEq, "", "hello"), `"Title" = ?`, []any{"hello"}},
		{"text eq empty is blank", leaf(title, filterir.OpEq, "", ""), `("Title" IS NULL OR "Title" = ?)`, []any{""}},
		{"text eq null", leaf(title, filterir.OpEq, "", nil), `"Title" IS NULL`, nil},
		{"text neq", leaf(title, filterir.OpNeq, "", "x"), `("Title" <> ? OR "Title" IS NULL)`, []any{"x"}},
		{"text like", leaf(title, filterir.OpLike, "", "ell"), `"Title" LIKE ?`, []any{"%ell%"}},
		{"text in", leaf(title, filterir.OpIn, "", "a", "b"), `"Title" IN (?, ?)`, []any{"a", "b"}},
		{"text blank", leaf(title, filterir.OpBlank, ""), `("Title" IS NULL OR "Title" = ?)`, []any{""}},
		{"text notblank", leaf(title, filterir.OpNotBlank, ""), `("Title" IS NOT NULL AND "Title" <> ?)`, []any{""}},
		{"text empty is empty string only", leaf(title, filterir.OpEmpty, ""), `"Title" = ?`, []any{""}},
		{"text notempty keeps null", leaf(title, filterir.OpNotEmpty, ""), `("Title" <> ? OR "Title" IS NULL)`, []any{""}},
		{"number uses column name", leaf(score, filterir.OpGt, "", "3"), `"score" > ?`, []any{int64(3)}},
		{"number decimal", leaf(score, filterir.OpLte, "", "2.5"), `"score" <= ?`, []any{2.5}},
		{"number btw", leaf(score, filterir.OpBtw, "", 1, "5"), `"score" BETWEEN ? AND ?`, []any{int64(1), int64(5)}},
		{"number blank", leaf(score, filterir.OpBlank, ""), `"score" IS NULL`, nil},
		{"checked", leaf(done, filterir.OpChecked, ""), `"Done" = ?`, []any{true}},
		{"notchecked", leaf(done, filterir.OpNotChecked, ""), `("Done" = ? OR "Done" IS NULL)`, []any{false}},
		{"checkbox eq false", leaf(done, filterir.OpEq, "", "false"), `("Done" = ? OR "Done" IS NULL)`, []any{false}},
		{"single select empty", leaf(status, filterir.OpEmpty, ""), `"Status" = ?`, []any{""}},
		{"single select anyof", leaf(status, filterir.OpAnyOf, "", "todo,doing"), `("Status" = ? OR "Status" = ?)`, []any{"todo", "doing"}},
		{
			"multi select anyof",
			leaf(tags, filterir.OpAnyOf, "", "red"),
			`("Tags" = ? OR "Tags" LIKE ? OR "Tags" LIKE ? OR "Tags" LIKE ?)`,
			[]any{"red", "red,%", "%,red", "%,red,%"},
		},
		{
			"multi select nanyof",
			leaf(tags, filterir.OpNAnyOf, "", "red"),
			`(NOT (("Tags" = ? OR "Tags" LIKE ? OR "Tags" LIKE ? OR "Tags" LIKE ?)) OR "Tags" IS NULL)`,
			[]any{"red", "red,%", "%,red", "%,red,%"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := compileLeaf(t, dialect.SQLite, timezone.Options{}, evalNow, tc.cmp)
			require.NoError(t, err)
			assert.Equal(t, tc.wantSQL, f.SQL)
			if tc.wantArgs == nil {
				assert.Empty(t, f.Args)
			} else {
				assert.Equal(t, tc.wantArgs, f.Args)
			}
		})
	}
}

func TestNonDateHandlers_Errors(t *testing.T) {
	score := &model.Column{Title: "Score", UIDT: model.UITypeNumber}
	title := &model.Column{Title: "Title", UIDT: model.UITypeLongText}
	done := &model.Column{Title: "Done", UIDT: model.UITypeCheckbox}

	testCases := []struct {
		name string
		cmp  *filterir.Comparison
		code filtererr.Code
	}{
		{"number not numeric", leaf(score, filterir.OpEq, "", "abc"), filtererr.CodeInvalidFilterValue},
		{"number like", leaf(score, filterir.OpLike, "", "1"), filtererr.CodeUnsupportedOperator},
		{"text btw", leaf(title, filterir.OpBtw, "", "a", "b"), filtererr.CodeUnsupportedOperator},
		{"checkbox gt", leaf(done, filterir.OpGt, "", "true"), filtererr.CodeUnsupportedOperator},
		{"checkbox bad bool", leaf(done, filterir.OpEq, "", "maybe"), filtererr.CodeInvalidFilterValue},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compileLeaf(t, dialect.SQLite, timezone.Options{}, evalNow, tc.cmp)
			require.Error(t, err)
			assert.Equal(t, tc.code, filtererr.CodeOf(err))
		})
	}
}

func TestNonDateHandlers_ParseUserInput(t *testing.T) {
	testCases := []struct {
		name  string
		uidt  model.UIType
		value any
		want  any
	}{
		{"text from number", model.UITypeSingleLineText, 42, "42"},
		{"email", model.UITypeEmail, "a@b.c", "a@b.c"},
		{"number from string", model.UITypeNumber, "7", int64(7)},
		{"decimal", model.UITypeDecimal, "1.25", 1.25},
		{"number blank", model.UITypeNumber, " ", nil},
		{"checkbox", model.UITypeCheckbox, "true", true},
		{"multi select list", model.UITypeMultiSelect, []any{"red", "blue"}, "red,blue"},
		{"multi select list trimmed", model.UITypeMultiSelect, []any{" red", "blue ", ""}, "red,blue"},
		{"multi select string trimmed", model.UITypeMultiSelect, "a, b", "a,b"},
		{"multi select string empty entries", model.UITypeMultiSelect, " a ,, b ,", "a,b"},
		{"single select trimmed", model.UITypeSingleSelect, " todo ", "todo"},
		{"single select", model.UITypeSingleSelect, "todo", "todo"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			col := &model.Column{Title: "F", UIDT: tc.uidt}
			got, err := MustFor(tc.uidt).ParseUserInput(tc.value, col)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	rejects := []struct {
		uidt  model.UIType
		value any
	}{
		{model.UITypeEmail, "nobody"},
		{model.UITypeNumber, "seven"},
		{model.UITypeRating, -1},
		{model.UITypeCheckbox, "maybe"},
		{model.UITypeSingleSelect, "a,b"},
	}
	for _, r := range rejects {
		col := &model.Column{Title: "F", UIDT: r.uidt}
		_, err := MustFor(r.uidt).ParseUserInput(r.value, col)
		assert.True(t, filtererr.IsInvalidValueForField(err), "%s %v: %v", r.uidt, r.value, err)
	}
}
