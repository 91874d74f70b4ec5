package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridStartsOnMonday(t *testing.T) {
	cases := []struct {
		name      string
		anchor    time.Time
		wantStart time.Time
	}{
		{
			// September 2025 starts on a Monday, so the grid starts on the 1st.
			name:      "month starting on monday",
			anchor:    time.Date(2025, time.September, 15, 10, 30, 0, 0, time.UTC),
			wantStart: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			// June 2025 starts on a Sunday, so the grid reaches back six days.
			name:      "month starting on sunday",
			anchor:    time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2025, time.May, 26, 0, 0, 0, 0, time.UTC),
		},
		{
			// August 2025 starts on a Friday.
			name:      "month starting on friday",
			anchor:    time.Date(2025, time.August, 20, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2025, time.July, 28, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGrid(tc.anchor)
			assert.Equal(t, tc.wantStart, g.Days[0])
			assert.Equal(t, time.Monday, g.Days[0].Weekday())
		})
	}
}

func TestGridAlwaysHas42ConsecutiveDays(t *testing.T) {
	g := NewGrid(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, g.Days, 42)
	for i := 1; i < len(g.Days); i++ {
		assert.Equal(t, g.Days[i-1].AddDate(0, 0, 1), g.Days[i])
	}
}

func TestGridWindowCoversAllCells(t *testing.T) {
	g := NewGrid(time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC))
	from, to := g.Window()
	assert.Equal(t, g.Days[0], from)
	assert.Equal(t, g.Days[0].AddDate(0, 0, 42), to)
	last := g.Days[41]
	assert.True(t, last.Before(to))
}

func TestGridOutsideMonth(t *testing.T) {
	g := NewGrid(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, g.OutsideMonth(time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, g.OutsideMonth(time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, g.OutsideMonth(time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)))
}

func TestGridNextPrevRoundTrip(t *testing.T) {
	g := NewGrid(time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.July, g.Next().Anchor.Month())
	assert.Equal(t, time.May, g.Prev().Anchor.Month())
	assert.Equal(t, g.Anchor, g.Next().Prev().Anchor)
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, time.June, 17, 23, 59, 0, 0, time.UTC)
	b := time.Date(2025, time.June, 17, 0, 1, 0, 0, time.UTC)
	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(a, b.AddDate(0, 0, 1)))
}
