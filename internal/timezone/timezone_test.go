package timezone

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"

	"github.com/changsongyang/nocodb/internal/filterir"
	"github.com/changsongyang/nocodb/internal/model"
)

func TestResolve_Precedence(t *testing.T) {
	col := &model.Column{Title: "Due", UIDT: model.UITypeDate, Meta: model.ColumnMeta{Timezone: "Europe/Berlin"}}
	bare := &model.Column{Title: "Due", UIDT: model.UITypeDate}
	opts := Options{ViewTimezone: "America/New_York", BaseTimezone: "Asia/Tokyo"}

	testCases := []struct {
		name string
		meta *filterir.FilterMeta
		col  *model.Column
		opts Options
		want string
	}{
		{"filter meta wins", &filterir.FilterMeta{Timezone: "Asia/Kolkata"}, col, opts, "Asia/Kolkata"},
		{"column meta", nil, col, opts, "Europe/Berlin"},
		{"empty filter meta", &filterir.FilterMeta{}, col, opts, "Europe/Berlin"},
		{"view", nil, bare, opts, "America/New_York"},
		{"base", nil, bare, Options{BaseTimezone: "Asia/Tokyo"}, "Asia/Tokyo"},
		{"default", nil, nil, Options{}, Default},
		{"invalid skipped", &filterir.FilterMeta{Timezone: "Mars/Olympus"}, bare, opts, "America/New_York"},
		{"all invalid", &filterir.FilterMeta{Timezone: "nope"}, nil, Options{BaseTimezone: "also/nope"}, Default},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.meta, tc.col, tc.opts))
		})
	}
}

func TestLoad(t *testing.T) {
	loc := Load("Asia/Kolkata")
	ts := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC).In(loc)
	assert.Equal(t, 5, ts.Hour())
	assert.Equal(t, 30, ts.Minute())

	assert.Equal(t, time.UTC, Load("not/a-zone"))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(Default))
	assert.False(t, Valid("Nowhere/Special"))
}
