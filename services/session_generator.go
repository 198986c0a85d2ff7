package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"routeerp_go/models"

	"github.com/sirupsen/logrus"
)

// DefaultCalendarWeeks is how many weeks of sessions are generated when the
// caller does not ask for a horizon.
const DefaultCalendarWeeks = 4

// groupPalette colors groups that carry no color of their own, by position.
var groupPalette = []string{"#3b82f6", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6", "#ec4899", "#14b8a6", "#6366f1"}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ClockTime is an hour and minute of the day.
type ClockTime struct {
	Hour   int
	Minute int
}

func (c ClockTime) minutes() int { return c.Hour*60 + c.Minute }

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// ParseWeekday maps an English weekday name, in any case, to time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", name)
	}
	return day, nil
}

// ParseTimeRange parses "HH:MM-HH:MM" in 24-hour form. The end must come
// after the start.
func ParseTimeRange(value string) (ClockTime, ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(value), "-")
	if len(parts) != 2 {
		return ClockTime{}, ClockTime{}, fmt.Errorf("time range %q must look like HH:MM-HH:MM", value)
	}
	start, err := parseClock(parts[0])
	if err != nil {
		return ClockTime{}, ClockTime{}, fmt.Errorf("time range %q: %w", value, err)
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return ClockTime{}, ClockTime{}, fmt.Errorf("time range %q: %w", value, err)
	}
	if end.minutes() <= start.minutes() {
		return ClockTime{}, ClockTime{}, fmt.Errorf("time range %q ends before it starts", value)
	}
	return start, end, nil
}

func parseClock(value string) (ClockTime, error) {
	hm := strings.Split(strings.TrimSpace(value), ":")
	if len(hm) != 2 || len(hm[1]) != 2 || len(hm[0]) == 0 || len(hm[0]) > 2 {
		return ClockTime{}, fmt.Errorf("clock %q must be HH:MM", value)
	}
	hour, err := strconv.Atoi(hm[0])
	if err != nil || hour < 0 || hour > 23 {
		return ClockTime{}, fmt.Errorf("clock %q has an invalid hour", value)
	}
	minute, err := strconv.Atoi(hm[1])
	if err != nil || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("clock %q has an invalid minute", value)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// ValidateSchedule checks a schedule entry the same way the generator reads it.
func ValidateSchedule(entry models.GroupSchedule) error {
	if _, err := ParseWeekday(entry.Day); err != nil {
		return err
	}
	_, _, err := ParseTimeRange(entry.Time)
	return err
}

// WeekStart returns midnight of the Sunday that opens now's week, in now's location.
func WeekStart(now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return midnight.AddDate(0, 0, -int(now.Weekday()))
}

// GenerateSessions expands each group's weekly schedule into dated sessions
// for weeks consecutive weeks, starting with the week containing now. Output
// holds one session per (group, entry, week), ordered the same way. Entries
// that do not parse are skipped.
func GenerateSessions(groups []models.Group, now time.Time, weeks int) []models.Session {
	if weeks <= 0 {
		weeks = DefaultCalendarWeeks
	}
	weekStart := WeekStart(now)
	loc := now.Location()

	var sessions []models.Session
	for gi, group := range groups {
		color := sessionColor(group, gi)
		for ei, entry := range group.Schedules {
			weekday, err := ParseWeekday(entry.Day)
			if err != nil {
				logrus.WithFields(logrus.Fields{"group_id": group.ID, "entry": ei}).WithError(err).Warn("Skipping schedule entry")
				continue
			}
			start, end, err := ParseTimeRange(entry.Time)
			if err != nil {
				logrus.WithFields(logrus.Fields{"group_id": group.ID, "entry": ei}).WithError(err).Warn("Skipping schedule entry")
				continue
			}

			for w := 0; w < weeks; w++ {
				day := weekStart.AddDate(0, 0, int(weekday)+7*w)
				sessions = append(sessions, models.Session{
					ID:        fmt.Sprintf("%s-%d-w%d", group.ID, ei, w),
					Title:     sessionTitle(group),
					Start:     time.Date(day.Year(), day.Month(), day.Day(), start.Hour, start.Minute, 0, 0, loc),
					End:       time.Date(day.Year(), day.Month(), day.Day(), end.Hour, end.Minute, 0, 0, loc),
					Color:     color,
					GroupID:   group.ID,
					GroupName: group.Name,
					Subject:   group.Subject,
					Room:      entry.Room,
				})
			}
		}
	}
	return sessions
}

// SessionsBetween keeps the sessions starting in [from, to).
func SessionsBetween(sessions []models.Session, from, to time.Time) []models.Session {
	var out []models.Session
	for _, s := range sessions {
		if !s.Start.Before(from) && s.Start.Before(to) {
			out = append(out, s)
		}
	}
	return out
}

func sessionTitle(group models.Group) string {
	if group.Subject == "" {
		return group.Name
	}
	return group.Name + " · " + group.Subject
}

func sessionColor(group models.Group, index int) models.SessionColor {
	color := group.Color
	if color == "" {
		color = groupPalette[index%len(groupPalette)]
	}
	return models.SessionColor{Background: color, Border: color, Text: "#ffffff"}
}
