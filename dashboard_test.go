package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthBounds(t *testing.T) {
	start, end := monthBounds(2025, 3)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), end)

	// the last day of the month is inside [start, end), the first of the next is not
	lastDay := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	assert.True(t, !lastDay.Before(start) && lastDay.Before(end))
	firstOfNext := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, firstOfNext.Before(end))
}

func TestMonthBoundsFebruary(t *testing.T) {
	// leap year
	start, end := monthBounds(2024, 2)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), end)

	feb29 := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	assert.True(t, feb29.Before(end))
}

func TestMonthBoundsDecemberRollsYear(t *testing.T) {
	start, end := monthBounds(2025, 12)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), end)
}
