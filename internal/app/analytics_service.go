package app

import (
	"sort"
	"time"

	"moods/internal/domain"
)

const (
	defaultAnalyticsDays = 7
	maxAnalyticsDays     = 366
)

// MoodLister is the read side of the provider used by analytics.
type MoodLister interface {
	List() []domain.MoodEntry
}

// AnalyticsService summarises the mood list for charts.
type AnalyticsService struct {
	moods MoodLister
	loc   *time.Location
	now   func() time.Time
}

// NewAnalyticsService creates an AnalyticsService over moods, bucketing days
// in the local time zone.
func NewAnalyticsService(moods MoodLister) *AnalyticsService {
	return &AnalyticsService{moods: moods, loc: time.Local, now: time.Now}
}

// WithLocation buckets days in loc instead of time.Local.
func (s *AnalyticsService) WithLocation(loc *time.Location) *AnalyticsService {
	s.loc = loc
	return s
}

// WithClock replaces the clock used to pick "today".
func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	s.now = now
	return s
}

// MoodCount is how often one mood option was selected.
type MoodCount struct {
	Mood  domain.MoodOption `json:"mood"`
	Count int               `json:"count"`
}

// DayCount holds the selections made on one local day.
type DayCount struct {
	Day   string      `json:"day"`
	Total int         `json:"total"`
	Moods []MoodCount `json:"moods"`
}

// Summary is the result of Summarize.
type Summary struct {
	Total  int         `json:"total"`
	ByMood []MoodCount `json:"byMood"`
	Daily  []DayCount  `json:"daily"`
}

// Summarize counts every entry by mood, and the entries of the last days
// local days (oldest first) by mood. days is clamped to [1, 366]; zero or
// negative selects the default of 7.
func (s *AnalyticsService) Summarize(days int) Summary {
	if days <= 0 {
		days = defaultAnalyticsDays
	}
	if days > maxAnalyticsDays {
		days = maxAnalyticsDays
	}

	entries := s.moods.List()

	byDay := make(map[string][]domain.MoodEntry)
	for _, e := range entries {
		day := domain.LocalDay(e.Timestamp, s.loc)
		byDay[day] = append(byDay[day], e)
	}

	today := s.now().In(s.loc)
	daily := make([]DayCount, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format("2006-01-02")
		dayEntries := byDay[day]
		daily = append(daily, DayCount{
			Day:   day,
			Total: len(dayEntries),
			Moods: countMoods(dayEntries),
		})
	}

	return Summary{
		Total:  len(entries),
		ByMood: countMoods(entries),
		Daily:  daily,
	}
}

// countMoods groups entries by option, most frequent first and ties broken
// by description then emoji.
func countMoods(entries []domain.MoodEntry) []MoodCount {
	counts := make(map[domain.MoodOption]int)
	for _, e := range entries {
		counts[e.Mood]++
	}

	out := make([]MoodCount, 0, len(counts))
	for mood, n := range counts {
		out = append(out, MoodCount{Mood: mood, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Mood.Description != out[j].Mood.Description {
			return out[i].Mood.Description < out[j].Mood.Description
		}
		return out[i].Mood.Emoji < out[j].Mood.Emoji
	})
	return out
}
