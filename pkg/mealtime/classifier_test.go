package mealtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultWindows(t *testing.T) Windows {
	t.Helper()
	w, err := NewWindows("05:00-10:00", "11:00-13:00", "14:00-16:00")
	require.NoError(t, err)
	return w
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 14, hour, minute, 0, 0, time.Local)
}

func TestClassifyDefaultWindows(t *testing.T) {
	w := defaultWindows(t)

	tests := []struct {
		name string
		t    time.Time
		want Category
	}{
		{"early breakfast scan", at(6, 30), Breakfast},
		{"gap between lunch and dinner", at(13, 30), Snack},
		{"lunch", at(12, 0), Lunch},
		{"dinner", at(15, 59), Dinner},
		{"late night", at(23, 0), Snack},
		{"before breakfast", at(4, 59), Snack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.t, w))
		})
	}
}

func TestClassifyHalfOpenBoundaries(t *testing.T) {
	w := defaultWindows(t)

	// Start is inclusive, end is exclusive.
	assert.Equal(t, Breakfast, Classify(at(5, 0), w))
	assert.Equal(t, Snack, Classify(at(10, 0), w))
	assert.Equal(t, Lunch, Classify(at(11, 0), w))
	assert.Equal(t, Snack, Classify(at(13, 0), w))
}

func TestClassifyOverlapResolvesByCheckOrder(t *testing.T) {
	// Overlapping configuration is allowed; breakfast wins over lunch in
	// the overlap regardless of window size.
	w, err := NewWindows("05:00-12:00", "11:00-13:00", "14:00-16:00")
	require.NoError(t, err)

	assert.Equal(t, Breakfast, Classify(at(11, 30), w))
	assert.Equal(t, Lunch, Classify(at(12, 30), w))
}

func TestClassifyDinnerWrapsPastMidnight(t *testing.T) {
	w, err := NewWindows("05:00-10:00", "11:00-13:00", "21:00-01:00")
	require.NoError(t, err)

	assert.Equal(t, Dinner, Classify(at(23, 30), w))
	assert.Equal(t, Dinner, Classify(at(0, 30), w))
	assert.Equal(t, Snack, Classify(at(1, 0), w))
	assert.Equal(t, Snack, Classify(at(20, 59), w))
}

func TestNewWindowsRejectsWrappingBreakfastAndLunch(t *testing.T) {
	_, err := NewWindows("22:00-02:00", "11:00-13:00", "14:00-16:00")
	assert.Error(t, err)

	_, err = NewWindows("05:00-10:00", "23:00-01:00", "14:00-16:00")
	assert.Error(t, err)
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("05:30-10:15")
	require.NoError(t, err)
	assert.Equal(t, 5*60+30, w.Start)
	assert.Equal(t, 10*60+15, w.End)

	_, err = ParseWindow("5am-10am")
	assert.Error(t, err)

	_, err = ParseWindow("05:00")
	assert.Error(t, err)
}
