package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)

	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{"padded", "Mar 04 24 07:30 PM", time.Date(2024, 3, 4, 19, 30, 0, 0, loc)},
		{"unpadded", "Mar 4 24 7:30 PM", time.Date(2024, 3, 4, 19, 30, 0, 0, loc)},
		{"morning", "Dec 31 23 11:05 AM", time.Date(2023, 12, 31, 11, 5, 0, 0, loc)},
		{"lowercase meridiem", "Mar 4 24 7:30 pm", time.Date(2024, 3, 4, 19, 30, 0, 0, loc)},
		{"mixed case", "mar 4 24 7:30 Pm", time.Date(2024, 3, 4, 19, 30, 0, 0, loc)},
		{"extra whitespace", "  Jan 15  25   9:00 AM ", time.Date(2025, 1, 15, 9, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.value, loc)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestParseDateInvalid(t *testing.T) {
	for _, value := range []string{"", "   ", "2024-03-04", "Mar 4 24"} {
		_, err := ParseDate(value, time.UTC)
		assert.Error(t, err, "value %q", value)
	}
}

func TestFlyerEnd(t *testing.T) {
	f := Flyer{StartDate: "Feb 1 24 6:00 PM", EndDate: "Feb 1 24 9:00 pm"}

	end, err := f.End(time.UTC)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 2, 1, 21, 0, 0, 0, time.UTC).Equal(end))
}
