// Package timezone resolves the IANA zone used to interpret relative-date
// sub-operators.
package timezone

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/changsongyang/nocodb/internal/filterir"
	"github.com/changsongyang/nocodb/internal/model"
)

// Default is the zone used when nothing else is configured.
const Default = "Etc/UTC"

// Options carries the view and base level zone settings.
type Options struct {
	// ViewTimezone is the zone configured on the view being filtered.
	ViewTimezone string

	// BaseTimezone is the zone configured on the base (or process).
	BaseTimezone string
}

// Resolve picks the zone for one comparison.
//
// Precedence (highest first):
//  1. per-filter meta.timezone
//  2. column meta.timezone
//  3. view timezone
//  4. base timezone
//  5. Etc/UTC
//
// Names that fail to load are skipped with a warning. Resolve never fails.
func Resolve(meta *filterir.FilterMeta, col *model.Column, opts Options) string {
	candidates := make([]string, 0, 4)
	if meta != nil {
		candidates = append(candidates, meta.Timezone)
	}
	if col != nil {
		candidates = append(candidates, col.Meta.Timezone)
	}
	candidates = append(candidates, opts.ViewTimezone, opts.BaseTimezone)

	for _, name := range candidates {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, err := loadCached(name); err != nil {
			slog.Warn("ignoring invalid timezone", "timezone", name, "error", err)
			continue
		}
		return name
	}
	return Default
}

// Load returns the location for a zone name. Unknown names fall back to
// UTC, so a name returned by Resolve always loads.
func Load(name string) *time.Location {
	loc, err := loadCached(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Valid reports whether name is a loadable IANA zone.
func Valid(name string) bool {
	_, err := loadCached(name)
	return err == nil
}

var cache sync.Map // name -> *time.Location

func loadCached(name string) (*time.Location, error) {
	if v, ok := cache.Load(name); ok {
		return v.(*time.Location), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	cache.Store(name, loc)
	return loc, nil
}
