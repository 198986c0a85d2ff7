package services

import (
	"testing"
	"time"

	"routeerp_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expStart ClockTime
		expEnd   ClockTime
	}{
		{name: "morning", input: "09:00-10:30", expStart: ClockTime{9, 0}, expEnd: ClockTime{10, 30}},
		{name: "single digit hour", input: "8:15-9:45", expStart: ClockTime{8, 15}, expEnd: ClockTime{9, 45}},
		{name: "surrounding spaces", input: " 14:00 - 16:00 ", expStart: ClockTime{14, 0}, expEnd: ClockTime{16, 0}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			start, end, err := ParseTimeRange(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expStart, start)
			assert.Equal(t, tc.expEnd, end)
		})
	}
}

func TestParseTimeRangeInvalid(t *testing.T) {
	for _, input := range []string{"", "invalid", "09:00", "25:00-26:00", "09:60-10:00", "10:00-09:00", "09:00-09:00", "9-10"} {
		_, _, err := ParseTimeRange(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestParseWeekday(t *testing.T) {
	day, err := ParseWeekday(" Monday ")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, day)

	_, err = ParseWeekday("someday")
	assert.Error(t, err)
}

func TestWeekStart(t *testing.T) {
	now := time.Date(2024, 1, 3, 15, 4, 5, 0, time.UTC) // Wednesday
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), WeekStart(now))

	sunday := time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), WeekStart(sunday))
}

func TestGenerateSessionsWeekly(t *testing.T) {
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	groups := []models.Group{{
		BaseModel: models.BaseModel{ID: "g1"},
		Name:      "Full Stack A",
		Subject:   "Go",
		Schedules: []models.GroupSchedule{
			{Day: "monday", Time: "09:00-10:30", Room: "Lab 1"},
		},
	}}

	sessions := GenerateSessions(groups, now, 4)
	require.Len(t, sessions, 4)

	for w, s := range sessions {
		day := time.Date(2024, 1, 1+7*w, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, day.Add(9*time.Hour), s.Start)
		assert.Equal(t, day.Add(10*time.Hour+30*time.Minute), s.End)
		assert.Equal(t, "g1", s.GroupID)
		assert.Equal(t, "Lab 1", s.Room)
		assert.Equal(t, "Full Stack A · Go", s.Title)
		assert.Equal(t, groupPalette[0], s.Color.Background)
	}
	assert.Equal(t, "g1-0-w0", sessions[0].ID)
	assert.Equal(t, "g1-0-w3", sessions[3].ID)
}

func TestGenerateSessionsSkipsMalformedEntries(t *testing.T) {
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	groups := []models.Group{{
		BaseModel: models.BaseModel{ID: "g1"},
		Name:      "Backend B",
		Color:     "#123456",
		Schedules: []models.GroupSchedule{
			{Day: "funday", Time: "09:00-10:00"},
			{Day: "tuesday", Time: "nonsense"},
			{Day: "thursday", Time: "14:00-16:00"},
		},
	}}

	sessions := GenerateSessions(groups, now, 2)
	require.Len(t, sessions, 2)
	for _, s := range sessions {
		assert.Equal(t, time.Thursday, s.Start.Weekday())
		assert.Equal(t, "#123456", s.Color.Background)
		assert.Equal(t, "Backend B", s.Title)
	}
}

func TestGenerateSessionsDefaultsHorizon(t *testing.T) {
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	groups := []models.Group{{BaseModel: models.BaseModel{ID: "g1"}, Name: "A", Schedules: []models.GroupSchedule{{Day: "friday", Time: "10:00-11:00"}}}}

	assert.Len(t, GenerateSessions(groups, now, 0), DefaultCalendarWeeks)
	assert.Empty(t, GenerateSessions(nil, now, 4))
}

func TestSessionsBetween(t *testing.T) {
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	groups := []models.Group{{BaseModel: models.BaseModel{ID: "g1"}, Name: "A", Schedules: []models.GroupSchedule{
		{Day: "monday", Time: "09:00-10:00"},
		{Day: "thursday", Time: "09:00-10:00"},
	}}}
	sessions := GenerateSessions(groups, now, 2)

	// generation order is kept: monday entries first, then thursday
	upcoming := SessionsBetween(sessions, now, now.Add(7*24*time.Hour))
	require.Len(t, upcoming, 2)
	assert.Equal(t, time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC), upcoming[0].Start)
	assert.Equal(t, time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC), upcoming[1].Start)
}
