package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWallClock_ReturnsUTC(t *testing.T) {
	before := time.Now()
	now := WallClock{}.Now()

	assert.Equal(t, time.UTC, now.Location())
	assert.False(t, now.Before(before.Add(-time.Second)))
}

func TestClockFunc(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var c Clock = ClockFunc(func() time.Time { return at })
	assert.Equal(t, at, c.Now())
}

func TestFixedGenerator_RepeatsLast(t *testing.T) {
	gen := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", gen.Generate())
	assert.Equal(t, "b", gen.Generate())
	assert.Equal(t, "b", gen.Generate())

	assert.Equal(t, "eval-default", NewFixedGenerator().Generate())
}

func TestUUIDv7Generator_Unique(t *testing.T) {
	gen := UUIDv7Generator{}
	a, b := gen.Generate(), gen.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
