package services

import (
	"context"
	"time"

	"routeerp_go/models"
)

// CalendarView is what the calendar page renders.
type CalendarView struct {
	WeekStart time.Time        `json:"week_start"`
	Weeks     int              `json:"weeks"`
	Sessions  []models.Session `json:"sessions"`
	Notes     []models.Note    `json:"notes"`
}

// CalendarService derives a user's sessions from the groups they take part in.
type CalendarService struct {
	groups *GroupService
	notes  *NoteBook
	weeks  int
}

// NewCalendarService builds calendars weeks ahead; weeks <= 0 uses the default.
func NewCalendarService(groups *GroupService, notes *NoteBook, weeks int) *CalendarService {
	if weeks <= 0 {
		weeks = DefaultCalendarWeeks
	}
	return &CalendarService{groups: groups, notes: notes, weeks: weeks}
}

// Notes exposes the note book backing the calendar.
func (s *CalendarService) Notes() *NoteBook {
	return s.notes
}

// Sessions generates the user's sessions for the configured horizon.
func (s *CalendarService) Sessions(ctx context.Context, user *models.User, now time.Time) ([]models.Session, error) {
	groups, err := s.groups.VisibleTo(ctx, user)
	if err != nil {
		return nil, err
	}
	sessions := GenerateSessions(groups, now, s.weeks)
	if sessions == nil {
		sessions = []models.Session{}
	}
	return sessions, nil
}

// Calendar returns the user's sessions together with their notes.
func (s *CalendarService) Calendar(ctx context.Context, user *models.User, now time.Time) (*CalendarView, error) {
	sessions, err := s.Sessions(ctx, user, now)
	if err != nil {
		return nil, err
	}
	return &CalendarView{
		WeekStart: WeekStart(now),
		Weeks:     s.weeks,
		Sessions:  sessions,
		Notes:     s.notes.List(user.ID),
	}, nil
}

// Upcoming returns the user's sessions starting within the next d.
func (s *CalendarService) Upcoming(ctx context.Context, user *models.User, now time.Time, d time.Duration) ([]models.Session, error) {
	sessions, err := s.Sessions(ctx, user, now)
	if err != nil {
		return nil, err
	}
	upcoming := SessionsBetween(sessions, now, now.Add(d))
	if upcoming == nil {
		upcoming = []models.Session{}
	}
	return upcoming, nil
}
