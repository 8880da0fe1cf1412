package app_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moods/internal/app"
	"moods/internal/domain"
)

type mockLister struct {
	entries []domain.MoodEntry
}

func (m *mockLister) List() []domain.MoodEntry {
	return m.entries
}

func at(day, hour int) int64 {
	return time.Date(2026, 2, day, hour, 0, 0, 0, time.UTC).UnixMilli()
}

func TestSummarize(t *testing.T) {
	lister := &mockLister{entries: []domain.MoodEntry{
		{Mood: happy, Timestamp: at(8, 9)},
		{Mood: sad, Timestamp: at(8, 8)},
		{Mood: happy, Timestamp: at(7, 20)},
		{Mood: happy, Timestamp: at(1, 12)},
	}}
	today := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)
	svc := app.NewAnalyticsService(lister).WithLocation(time.UTC).WithClock(fixedClock(today))

	s := svc.Summarize(3)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, []app.MoodCount{{Mood: happy, Count: 3}, {Mood: sad, Count: 1}}, s.ByMood)

	require.Len(t, s.Daily, 3)
	assert.Equal(t, "2026-02-06", s.Daily[0].Day)
	assert.Zero(t, s.Daily[0].Total)
	assert.Empty(t, s.Daily[0].Moods)

	assert.Equal(t, "2026-02-07", s.Daily[1].Day)
	assert.Equal(t, 1, s.Daily[1].Total)

	assert.Equal(t, "2026-02-08", s.Daily[2].Day)
	assert.Equal(t, 2, s.Daily[2].Total)
	assert.Equal(t, []app.MoodCount{{Mood: happy, Count: 1}, {Mood: sad, Count: 1}}, s.Daily[2].Moods)
}

func TestSummarize_DaysClamped(t *testing.T) {
	svc := app.NewAnalyticsService(&mockLister{}).WithLocation(time.UTC)

	tests := []struct {
		name string
		days int
		want int
	}{
		{"default", 0, 7},
		{"negative", -3, 7},
		{"in range", 30, 30},
		{"too many", 1000, 366},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := svc.Summarize(tc.days)
			assert.Len(t, s.Daily, tc.want)
			assert.Zero(t, s.Total)
			assert.NotNil(t, s.ByMood)
		})
	}
}

func TestSummarize_OverProvider(t *testing.T) {
	now := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)
	p := newProvider(t, newMockKV(), app.ProviderOptions{Now: fixedClock(now)})
	_, err := p.SelectMood(t.Context(), sad)
	require.NoError(t, err)

	s := app.NewAnalyticsService(p).WithLocation(time.UTC).WithClock(fixedClock(now)).Summarize(1)
	assert.Equal(t, 1, s.Total)
	require.Len(t, s.Daily, 1)
	assert.Equal(t, []app.MoodCount{{Mood: sad, Count: 1}}, s.Daily[0].Moods)
}
