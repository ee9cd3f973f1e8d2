package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyClockFormats(t *testing.T) {
	c := NewClassifier(time.UTC)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		clock  string
		hour   int
		minute int
		second int
	}{
		{"24h", "14:30", 14, 30, 0},
		{"pm with minutes", "2:30 PM", 14, 30, 0},
		{"pm without minutes", "2 PM", 14, 0, 0},
		{"lowercase meridiem", "2:30pm", 14, 30, 0},
		{"midnight am", "12:00 AM", 0, 0, 0},
		{"noon pm", "12:15 PM", 12, 15, 0},
		{"bare twelve is noon", "12", 12, 0, 0},
		{"seconds", "09:15:20", 9, 15, 20},
		{"seconds with meridiem", "9:15:20 am", 9, 15, 20},
		{"padded", "  7:05  ", 7, 5, 0},
		{"24h hour with pm", "13 PM", 13, 0, 0},
		{"24h hour with minutes and pm", "14:30 PM", 14, 30, 0},
		{"zero am", "0 AM", 0, 0, 0},
		{"zero am with minutes", "0:30 AM", 0, 30, 0},
		{"zero pm", "0 PM", 12, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify("2024-03-10", tt.clock, now)
			require.NotNil(t, got.At)
			assert.Equal(t, tt.hour, got.At.Hour())
			assert.Equal(t, tt.minute, got.At.Minute())
			assert.Equal(t, tt.second, got.At.Second())
			assert.Equal(t, 10, got.At.Day())
		})
	}
}

func TestClassifyEmptyTimeFallsBackToMidnight(t *testing.T) {
	c := NewClassifier(time.UTC)
	now := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)

	got := c.Classify("2024-03-10", "", now)
	require.NotNil(t, got.At)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), *got.At)
	assert.True(t, got.Expired)
}

func TestClassifyYesterdayWithoutTimeIsExpired(t *testing.T) {
	c := NewClassifier(time.Local)
	now := time.Now()
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")

	got := c.Classify(yesterday, "", now)
	assert.True(t, got.Expired)
}

func TestClassifyMissingDate(t *testing.T) {
	c := NewClassifier(time.UTC)
	now := time.Now()

	for _, date := range []string{"", "not-a-date", "2024-13-45"} {
		got := c.Classify(date, "2:30 PM", now)
		assert.Nil(t, got.At, date)
		assert.False(t, got.Expired, date)
	}
}

func TestClassifyMalformedTime(t *testing.T) {
	c := NewClassifier(time.UTC)
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, clock := range []string{"half past two", "25:00", "10:75", "9:15:61", "24 PM"} {
		got := c.Classify("2024-03-10", clock, now)
		assert.Nil(t, got.At, clock)
		assert.False(t, got.Expired, clock)
	}
}

func TestClassifyFutureIsActive(t *testing.T) {
	c := NewClassifier(time.UTC)
	now := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)

	assert.False(t, c.Classify("2024-03-10", "2:30 PM", now).Expired)
	assert.True(t, c.Classify("2024-03-10", "1:59 PM", now).Expired)
}

func TestClassifyEqualInstantIsNotExpired(t *testing.T) {
	c := NewClassifier(time.UTC)
	now := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)

	assert.False(t, c.Classify("2024-03-10", "14:30", now).Expired)
}

func TestClassifyISODateKeepsWrittenDay(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	c := NewClassifier(loc)

	got := c.Classify("2024-03-10T00:00:00.000Z", "9:00 AM", time.Time{})
	require.NotNil(t, got.At)
	assert.Equal(t, time.Date(2024, 3, 10, 9, 0, 0, 0, loc), *got.At)
}

func TestClassifyRecordUsesParsedDay(t *testing.T) {
	c := NewClassifier(time.UTC)
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	got := c.ClassifyRecord(Record{Date: "garbage", Day: day, Time: "8 AM"}, day)
	require.NotNil(t, got.At)
	assert.Equal(t, 8, got.At.Hour())
}
