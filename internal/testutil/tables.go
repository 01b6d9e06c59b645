package testutil

import "github.com/changsongyang/nocodb/internal/model"

// TasksTable returns a fresh table covering the common column types.
//
// Columns: Id (ID), Title (SingleLineText), Due (Date), Created
// (CreatedTime), Score (Number), Done (Checkbox), Tags (MultiSelect).
// Each call returns new values so tests may modify them.
func TasksTable() *model.Table {
	return &model.Table{
		ID:        "tbl_tasks",
		Title:     "Tasks",
		TableName: "tasks",
		Columns: []*model.Column{
			{ID: "col_id", Title: "Id", ColumnName: "id", UIDT: model.UITypeID},
			{ID: "col_title", Title: "Title", ColumnName: "title", UIDT: model.UITypeSingleLineText},
			{ID: "col_due", Title: "Due", ColumnName: "due", UIDT: model.UITypeDate},
			{ID: "col_created", Title: "Created", ColumnName: "created", UIDT: model.UITypeCreatedTime},
			{ID: "col_score", Title: "Score", ColumnName: "score", UIDT: model.UITypeNumber},
			{ID: "col_done", Title: "Done", ColumnName: "done", UIDT: model.UITypeCheckbox},
			{ID: "col_tags", Title: "Tags", ColumnName: "tags", UIDT: model.UITypeMultiSelect},
		},
	}
}

// DatesTable returns a single Date column table named "Date", the shape
// used by the date filter scenarios.
func DatesTable() *model.Table {
	return &model.Table{
		ID:        "tbl_dates",
		Title:     "Dates",
		TableName: "dates",
		Columns: []*model.Column{
			{ID: "col_id", Title: "Id", ColumnName: "id", UIDT: model.UITypeID},
			{ID: "col_date", Title: "Date", ColumnName: "date", UIDT: model.UITypeDate},
		},
	}
}
