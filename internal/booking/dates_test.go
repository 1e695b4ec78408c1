package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateKeyDropsTimeOfDay(t *testing.T) {
	morning := time.Date(2024, 6, 15, 8, 30, 0, 0, time.UTC)
	evening := time.Date(2024, 6, 15, 23, 59, 59, 0, time.UTC)

	assert.Equal(t, "2024-06-15", DateKey(morning))
	assert.Equal(t, DateKey(morning), DateKey(evening))
}

func TestDateKeyMatchesIndexAcrossMonth(t *testing.T) {
	dates := []AvailableDate{
		{ID: "a1", Date: "2024-06-01"},
		{ID: "a2", Date: "2024-06-15"},
		{ID: "a3", Date: "2024-06-30"},
	}
	idx := Index(dates)

	// every day of the displayed month resolves the same record the
	// slice lookup would have found
	start := MonthStart(time.Date(2024, 6, 20, 14, 0, 0, 0, time.UTC))
	for d := start; d.Month() == time.June; d = d.AddDate(0, 0, 1) {
		key := DateKey(d)
		var want *AvailableDate
		for i := range dates {
			if dates[i].Date == key {
				want = &dates[i]
			}
		}
		got, ok := idx[key]
		if want == nil {
			assert.False(t, ok, "unexpected record for %s", key)
			continue
		}
		require.True(t, ok, "missing record for %s", key)
		assert.Equal(t, want.ID, got.ID)
	}
}

func TestIndexKeepsFirstDuplicate(t *testing.T) {
	idx := Index([]AvailableDate{
		{ID: "first", Date: "2024-06-15"},
		{ID: "second", Date: "2024-06-15"},
	})
	require.Len(t, idx, 1)
	assert.Equal(t, "first", idx["2024-06-15"].ID)
}

func TestMonthHelpers(t *testing.T) {
	mid := time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-01", MonthKey(mid))
	assert.Equal(t, "2023-12", MonthKey(PrevMonth(mid)))
	assert.Equal(t, "2024-02", MonthKey(NextMonth(mid)))
	assert.Equal(t, 1, MonthStart(mid).Day())
}

func TestValidatePublish(t *testing.T) {
	valid := PublishRequest{
		Date: "2024-06-15",
		TimeSlots: []SlotSpan{
			{StartTime: "09:00", EndTime: "09:30"},
			{StartTime: "10:00", EndTime: "10:30"},
		},
	}
	assert.NoError(t, ValidatePublish(valid))

	cases := []struct {
		name string
		req  PublishRequest
	}{
		{"bad date", PublishRequest{Date: "June 15", TimeSlots: valid.TimeSlots}},
		{"no slots", PublishRequest{Date: "2024-06-15"}},
		{"bad start", PublishRequest{Date: "2024-06-15", TimeSlots: []SlotSpan{{StartTime: "9am", EndTime: "09:30"}}}},
		{"end before start", PublishRequest{Date: "2024-06-15", TimeSlots: []SlotSpan{{StartTime: "09:30", EndTime: "09:00"}}}},
		{"end equals start", PublishRequest{Date: "2024-06-15", TimeSlots: []SlotSpan{{StartTime: "09:00", EndTime: "09:00"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, ValidatePublish(tc.req))
		})
	}
}
